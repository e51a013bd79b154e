// Package scripting sends one-shot AppleScript commands to named applications.
package scripting

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Command is either a canned phrase addressed to an application or a
// bespoke script body.
type Command struct {
	App    string
	Phrase string
	Body   string
}

func Phrase(app, phrase string) Command {
	return Command{App: app, Phrase: phrase}
}

func Script(body string) Command {
	return Command{Body: body}
}

func (c Command) Source() string {
	if c.Body != "" {
		return c.Body
	}
	return fmt.Sprintf("tell application %q to %s", c.App, c.Phrase)
}

func (c Command) String() string {
	if c.Body != "" {
		return "<script>"
	}
	return fmt.Sprintf("%s: %s", c.App, c.Phrase)
}

// ScriptError reports a failed script run. The target app not running and
// AppleScript errors both end up here.
type ScriptError struct {
	Command Command
	Stderr  string
	Err     error
}

func (e *ScriptError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("script %s failed: %v: %s", e.Command, e.Err, e.Stderr)
	}
	return fmt.Sprintf("script %s failed: %v", e.Command, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

type Runner interface {
	Run(ctx context.Context, cmd Command) (string, error)
}

var execCommand = exec.CommandContext

// Osascript runs commands through the osascript binary. Each call blocks the
// calling goroutine until the script returns.
type Osascript struct {
	Timeout time.Duration
}

func NewOsascript(timeout time.Duration) *Osascript {
	return &Osascript{Timeout: timeout}
}

func (o *Osascript) Run(ctx context.Context, cmd Command) (string, error) {
	if o.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.Timeout)
		defer cancel()
	}

	c := execCommand(ctx, "osascript", "-e", cmd.Source())

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	if err := c.Run(); err != nil {
		return "", &ScriptError{
			Command: cmd,
			Stderr:  strings.TrimSpace(stderr.String()),
			Err:     err,
		}
	}
	return strings.TrimSpace(stdout.String()), nil
}

// RunString is for callers that treat scripting failures as "no data".
func RunString(ctx context.Context, r Runner, cmd Command) string {
	out, err := r.Run(ctx, cmd)
	if err != nil {
		slog.Debug("Scripting call returned no data", slog.String("error", err.Error()))
		return ""
	}
	return out
}

// IsRunning checks for the app without launching it, which a plain
// "tell application" would do.
func IsRunning(ctx context.Context, r Runner, app string) bool {
	out, err := r.Run(ctx, Script(fmt.Sprintf("application %q is running", app)))
	return err == nil && out == "true"
}
