package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/cors"

	"github.com/marcus-crane/tunestatus/artwork"
	"github.com/marcus-crane/tunestatus/widget"
)

const (
	defaultHistoryLimit = 7
	maxHistoryLimit     = 100
	maxControlBody      = 4096
)

func renderJSONMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

func renderJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to encode response", slog.String("error", err.Error()))
	}
}

func RegisterRoutes(mux *http.ServeMux, app *App) http.Handler {
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintln(w, "TuneStatus is running. Try /api/playing or /events?stream=playback")
	})

	mux.HandleFunc("/static/", func(w http.ResponseWriter, r *http.Request) {
		cover := strings.TrimPrefix(r.URL.Path, "/static/")
		image, contentType, err := app.covers.Load(cover)
		if errors.Is(err, artwork.ErrInvalidCover) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if err != nil {
			w.WriteHeader(http.StatusGone)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=31622400")
		w.Header().Set("Content-Type", contentType)
		w.Write(image)
	})

	mux.HandleFunc("/api/playing", func(w http.ResponseWriter, r *http.Request) {
		current := app.player.Current()
		if r.URL.Query().Get("expand") == "artwork" {
			renderJSON(w, current.WithArtwork())
			return
		}
		renderJSON(w, current)
	})

	mux.HandleFunc("/api/snapshot", func(w http.ResponseWriter, r *http.Request) {
		renderJSON(w, app.snapshots.Load())
	})

	mux.HandleFunc("/api/history", func(w http.ResponseWriter, r *http.Request) {
		limit := defaultHistoryLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				renderJSONMessage(w, http.StatusBadRequest, "limit must be a positive number")
				return
			}
			limit = min(n, maxHistoryLimit)
		}
		results, err := app.history.History(limit)
		if err != nil {
			slog.Error("Failed to load history", slog.String("error", err.Error()))
			renderJSONMessage(w, http.StatusInternalServerError, "failed to load history")
			return
		}
		renderJSON(w, results)
	})

	mux.HandleFunc("/api/sessions", func(w http.ResponseWriter, r *http.Request) {
		renderJSON(w, app.events.Sessions())
	})

	mux.HandleFunc("/api/control/", func(w http.ResponseWriter, r *http.Request) {
		command := strings.TrimPrefix(r.URL.Path, "/api/control/")
		var run func(context.Context) error
		switch command {
		case "playpause":
			run = app.player.PlayPause
		case "next":
			run = app.player.Next
		case "previous":
			run = app.player.Previous
		case "activate":
			run = app.player.Activate
		default:
			renderJSONMessage(w, http.StatusNotFound, fmt.Sprintf("unknown command %q", command))
			return
		}
		if !validControlRequest(w, r, app.cfg.Server.ControlSecret, widget.ControlRequest{Command: command}) {
			return
		}
		renderControlResult(w, run(r.Context()))
	})

	mux.HandleFunc("/api/volume", func(w http.ResponseWriter, r *http.Request) {
		level, err := strconv.Atoi(r.URL.Query().Get("level"))
		if err != nil {
			renderJSONMessage(w, http.StatusBadRequest, "level must be a number between 0 and 100")
			return
		}
		if !validControlRequest(w, r, app.cfg.Server.ControlSecret, widget.ControlRequest{Command: "volume", Level: &level}) {
			return
		}
		renderControlResult(w, app.player.SetVolume(r.Context(), level))
	})

	mux.Handle("/events", app.events)

	c := cors.New(cors.Options{
		AllowedOrigins: app.cfg.Origins(),
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept", widget.SignatureHeader},
	})

	return c.Handler(mux)
}

// validControlRequest writes an error response and returns false when the
// request should not be acted on. Control calls must be JSON POSTs, which
// browsers cannot send cross-origin without a preflight. When a secret is
// configured the body must be signed and must name the same command and
// level as the URL.
func validControlRequest(w http.ResponseWriter, r *http.Request, secret string, want widget.ControlRequest) bool {
	if r.Method != http.MethodPost {
		renderJSONMessage(w, http.StatusMethodNotAllowed, "That method is invalid for this endpoint")
		return false
	}
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		renderJSONMessage(w, http.StatusUnsupportedMediaType, "control requests must be application/json")
		return false
	}
	if secret == "" {
		return true
	}

	signature := r.Header.Get(widget.SignatureHeader)
	if signature == "" {
		renderJSONMessage(w, http.StatusUnauthorized, "no signature was provided")
		return false
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxControlBody))
	if err != nil {
		renderJSONMessage(w, http.StatusBadRequest, "failed to read request body as part of signature validation")
		return false
	}
	if err := widget.Verify(body, signature, secret); err != nil {
		slog.With(slog.Any("error", err)).Warn("Failed signature validation")
		renderJSONMessage(w, http.StatusUnauthorized, "signature failed validation")
		return false
	}

	var got widget.ControlRequest
	if err := json.Unmarshal(body, &got); err != nil {
		renderJSONMessage(w, http.StatusBadRequest, "signed body is not a control request")
		return false
	}
	if !sameControl(got, want) {
		slog.Warn("Signed body does not match control request",
			slog.String("path", r.URL.Path),
			slog.String("command", got.Command))
		renderJSONMessage(w, http.StatusUnauthorized, "signed body does not match this request")
		return false
	}
	return true
}

func sameControl(a, b widget.ControlRequest) bool {
	if a.Command != b.Command {
		return false
	}
	if a.Level == nil || b.Level == nil {
		return a.Level == nil && b.Level == nil
	}
	return *a.Level == *b.Level
}

// A failed control is the player app's fault, not ours.
func renderControlResult(w http.ResponseWriter, err error) {
	if err == nil {
		renderJSONMessage(w, http.StatusOK, "ok")
		return
	}
	renderJSONMessage(w, http.StatusBadGateway, err.Error())
}
