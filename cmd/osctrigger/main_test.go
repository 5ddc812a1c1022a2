package main

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/eiannone/keyboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/showcontroller/osctrigger/config"
	"github.com/showcontroller/osctrigger/listener"
)

func TestParseArgsDefaults(t *testing.T) {
	opts, cfg, err := parseArgs(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.True(t, opts.console)
	assert.False(t, opts.tray)
}

func TestParseArgsFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trigger.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 9000\nkey: ENTER\nwindow: Show\n"), 0o644))

	opts, cfg, err := parseArgs(flag.NewFlagSet("test", flag.ContinueOnError), []string{
		"-config", path, "-key", "ctrl+F5", "-continuous", "-tcp", "-poll", "10ms", "-dry-run",
	})
	require.NoError(t, err)
	assert.True(t, opts.dryRun)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "Show", cfg.TargetWindow)
	assert.Equal(t, "ctrl+F5", cfg.Key)
	assert.True(t, cfg.Continuous)
	assert.Equal(t, config.TransportTCP, cfg.Transport)
	assert.Equal(t, 10*time.Millisecond, cfg.PollInterval)
}

func TestParseArgsErrors(t *testing.T) {
	_, _, err := parseArgs(flag.NewFlagSet("test", flag.ContinueOnError), []string{"-config", "/does/not/exist.yaml"})
	assert.Error(t, err)

	_, _, err = parseArgs(flag.NewFlagSet("test", flag.ContinueOnError), []string{"stray"})
	assert.Error(t, err)
}

func TestConsoleCommand(t *testing.T) {
	assert.Equal(t, cmdStart, consoleCommand('s', 0))
	assert.Equal(t, cmdStop, consoleCommand('X', 0))
	assert.Equal(t, cmdQuit, consoleCommand('q', 0))
	assert.Equal(t, cmdQuit, consoleCommand(0, keyboard.KeyEsc))
	assert.Equal(t, cmdQuit, consoleCommand(0, keyboard.KeyCtrlC))
	assert.Equal(t, cmdNone, consoleCommand('a', 0))
}

func TestStatusTextWithoutSession(t *testing.T) {
	assert.Equal(t, "Stopped", statusText(listener.NewController(listener.Options{})))
}

func TestPumpKeysStopsWhenDone(t *testing.T) {
	read := func() (rune, keyboard.Key, error) { return 'a', 0, nil }
	presses := make(chan keyPress)
	done := make(chan struct{})
	returned := make(chan error, 1)
	go func() { returned <- pumpKeys(read, presses, done) }()

	assert.Equal(t, keyPress{char: 'a'}, <-presses)
	close(done)
	select {
	case err := <-returned:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("key reader still blocked after done")
	}
}

func TestPumpKeysClosesOnReadError(t *testing.T) {
	cause := errors.New("tty gone")
	read := func() (rune, keyboard.Key, error) { return 0, 0, cause }
	presses := make(chan keyPress)

	assert.ErrorIs(t, pumpKeys(read, presses, make(chan struct{})), cause)
	_, ok := <-presses
	assert.False(t, ok)
}

func TestStatusTextShowsStartFailure(t *testing.T) {
	ctrl := listener.NewController(listener.Options{Status: discardStatus{}})
	cfg := config.Default()
	cfg.Key = "NOT_A_KEY"

	require.Error(t, ctrl.Start(*cfg))
	assert.Contains(t, statusText(ctrl), "Start failed")
	assert.Contains(t, statusText(ctrl), "NOT_A_KEY")
}

type discardStatus struct{}

func (discardStatus) Log(string) {}
