package scripting

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if os.Getenv("GO_TEST_MODE_OSASCRIPT") == "1" {
		fmt.Fprint(os.Stdout, os.Getenv("MOCK_STDOUT"))
		fmt.Fprint(os.Stderr, os.Getenv("MOCK_STDERR"))
		if os.Getenv("MOCK_FAIL") == "1" {
			os.Exit(1)
		}
		os.Exit(0)
	}

	os.Exit(m.Run())
}

func mockExecCommand(t *testing.T, stdout, stderr string, fail bool, gotArgs *[]string) {
	originalExecCommand := execCommand
	t.Cleanup(func() {
		execCommand = originalExecCommand
	})

	execCommand = func(ctx context.Context, command string, args ...string) *exec.Cmd {
		if gotArgs != nil {
			*gotArgs = append([]string{command}, args...)
		}
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestMain")
		failFlag := "0"
		if fail {
			failFlag = "1"
		}
		cmd.Env = []string{
			"GO_TEST_MODE_OSASCRIPT=1",
			"MOCK_STDOUT=" + stdout,
			"MOCK_STDERR=" + stderr,
			"MOCK_FAIL=" + failFlag,
		}
		return cmd
	}
}

func TestCommand_Source(t *testing.T) {
	assert.Equal(t, `tell application "Music" to player state`, Phrase("Music", "player state").Source())
	assert.Equal(t, "return 1", Script("return 1").Source())
}

func TestOsascript_Run(t *testing.T) {
	var args []string
	mockExecCommand(t, "  playing\n", "", false, &args)

	out, err := NewOsascript(0).Run(context.Background(), Phrase("Spotify", "player state"))
	require.NoError(t, err)
	assert.Equal(t, "playing", out)
	assert.Equal(t, []string{"osascript", "-e", `tell application "Spotify" to player state`}, args)
}

func TestOsascript_RunFailure(t *testing.T) {
	mockExecCommand(t, "", "execution error: Spotify got an error (-1728)", true, nil)

	out, err := NewOsascript(0).Run(context.Background(), Phrase("Spotify", "player state"))
	assert.Empty(t, out)

	var scriptErr *ScriptError
	require.True(t, errors.As(err, &scriptErr))
	assert.Equal(t, "execution error: Spotify got an error (-1728)", scriptErr.Stderr)
	assert.Equal(t, "Spotify", scriptErr.Command.App)
}

func TestRunString_SwallowsFailures(t *testing.T) {
	mockExecCommand(t, "", "boom", true, nil)
	assert.Equal(t, "", RunString(context.Background(), NewOsascript(0), Script("error")))
}

func TestIsRunning(t *testing.T) {
	var args []string
	mockExecCommand(t, "true", "", false, &args)
	assert.True(t, IsRunning(context.Background(), NewOsascript(0), "Music"))
	assert.Equal(t, `application "Music" is running`, args[2])

	mockExecCommand(t, "false", "", false, nil)
	assert.False(t, IsRunning(context.Background(), NewOsascript(0), "Music"))
}
