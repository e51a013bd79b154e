package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/marcus-crane/tunestatus/config"
	"github.com/marcus-crane/tunestatus/db"
	"github.com/marcus-crane/tunestatus/notify"
	"github.com/marcus-crane/tunestatus/snapshot"
	"github.com/marcus-crane/tunestatus/widget"
)

func init() {
	// AppKit and the notification run loop have to stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string
	var cfg config.Config

	root := &cobra.Command{
		Use:           "tunestatus",
		Short:         "Now playing for Music and Spotify in the menu bar",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			loaded, err := config.Load(envFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg = loaded
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: cfg.GetLogLevel(),
			})))
			return nil
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional dotenv file")

	run := newRunCmd(&cfg)
	root.RunE = run.RunE
	root.Flags().AddFlagSet(run.Flags())

	root.AddCommand(run)
	root.AddCommand(newWidgetCmd(&cfg))
	root.AddCommand(newSnapshotCmd(&cfg))
	root.AddCommand(newControlCmd(&cfg))
	root.AddCommand(newVolumeCmd(&cfg))
	root.AddCommand(newHistoryCmd(&cfg))
	return root
}

func newRunCmd(cfg *config.Config) *cobra.Command {
	var headless bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the tray app, local API and background jobs",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := NewApp(*cfg)
			if err != nil {
				return err
			}
			if err := app.Start(ctx); err != nil {
				stop()
				app.Shutdown()
				return err
			}

			if headless || cfg.TuneStatus.Headless {
				notify.RunMainLoop(ctx)
			} else {
				runTray(ctx, stop, app)
			}

			stop()
			slog.Info("TuneStatus is shutting down")
			return app.Shutdown()
		},
	}
	cmd.Flags().BoolVar(&headless, "headless", false, "run without the menu bar item")
	return cmd
}

func newWidgetCmd(cfg *config.Config) *cobra.Command {
	var readOnly bool
	cmd := &cobra.Command{
		Use:   "widget",
		Short: "Show the now playing panel in the terminal",
		RunE: func(_ *cobra.Command, _ []string) error {
			var control widget.Controller
			if !readOnly {
				control = widget.NewClient(cfg.Server.Addr, cfg.Server.ControlSecret)
			}
			m := widget.New(snapshot.NewStore(cfg.SnapshotPath()), control)
			_, err := tea.NewProgram(m).Run()
			return err
		},
	}
	cmd.Flags().BoolVar(&readOnly, "read-only", false, "do not send playback controls")
	return cmd
}

func newSnapshotCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Print the last shared now playing snapshot as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(snapshot.NewStore(cfg.SnapshotPath()).Load())
		},
	}
}

func newControlCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:       "control <playpause|next|previous|activate>",
		Short:     "Send a playback control to the running app",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"playpause", "next", "previous", "activate"},
		RunE: func(cmd *cobra.Command, args []string) error {
			client := widget.NewClient(cfg.Server.Addr, cfg.Server.ControlSecret)
			return client.Control(cmd.Context(), args[0])
		},
	}
}

func newVolumeCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "volume <0-100>",
		Short: "Set the volume of the active player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("volume must be a number: %w", err)
			}
			client := widget.NewClient(cfg.Server.Addr, cfg.Server.ControlSecret)
			return client.Volume(cmd.Context(), level)
		},
	}
}

func newHistoryCmd(cfg *config.Config) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently played tracks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := db.NewSqliteStore(cfg.TuneStatus.DbPath)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.ApplyMigrations(); err != nil {
				return err
			}
			results, err := store.History(limit)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no history")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, item := range results {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					item.CreatedAt.Local().Format("2006-01-02 15:04"),
					item.Title, item.Subtitle, item.Source, item.Status)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of entries to show")
	return cmd
}
