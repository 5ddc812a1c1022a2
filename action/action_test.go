package action

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/showcontroller/osctrigger/keymap"
)

type fakeRobot struct {
	activated []string
	tapped    []string
	mods      [][]interface{}
	activeErr error
	tapErr    error
}

func (f *fakeRobot) robot() *Robot {
	return &Robot{
		focus: func(w string) error {
			f.activated = append(f.activated, w)
			return f.activeErr
		},
		tap: func(k string, mods ...interface{}) error {
			f.tapped = append(f.tapped, k)
			f.mods = append(f.mods, mods)
			return f.tapErr
		},
	}
}

func TestRobotFire(t *testing.T) {
	f := &fakeRobot{}
	err := f.robot().Fire("Show Control", "F5", keymap.Alt|keymap.Ctrl)
	require.NoError(t, err)
	assert.Equal(t, []string{"Show Control"}, f.activated)
	assert.Equal(t, []string{"f5"}, f.tapped)
	assert.Equal(t, []interface{}{"ctrl", "alt"}, f.mods[0])
}

func TestRobotFireWithoutWindow(t *testing.T) {
	f := &fakeRobot{}
	require.NoError(t, f.robot().Fire("", "SPACE", 0))
	assert.Empty(t, f.activated)
	assert.Equal(t, []string{"space"}, f.tapped)
	assert.Empty(t, f.mods[0])
}

func TestRobotMissingWindowStillTaps(t *testing.T) {
	f := &fakeRobot{activeErr: ErrWindowNotFound}
	err := f.robot().Fire("Gone", "A", 0)
	assert.ErrorIs(t, err, ErrWindowNotFound)
	assert.Equal(t, []string{"a"}, f.tapped)
}

func TestRobotFocusErrorIsReported(t *testing.T) {
	cause := errors.New("no display")
	f := &fakeRobot{activeErr: cause}
	err := f.robot().Fire("Show", "A", 0)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrWindowNotFound)
	assert.Equal(t, []string{"a"}, f.tapped)
}

// desktop maps pids to window titles.
type desktop map[int]string

func (d desktop) pids() ([]int, error) {
	pids := make([]int, 0, len(d))
	for pid := range d {
		pids = append(pids, pid)
	}
	sort.Ints(pids)
	return pids, nil
}

func (d desktop) title(pid int) string {
	return d[pid]
}

func TestFindWindowNeedsExactTitle(t *testing.T) {
	d := desktop{10: "", 20: "Show Control - Main", 30: "show control", 40: "Show Control"}

	tests := []struct {
		name    string
		title   string
		wantPid int
		wantErr error
	}{
		{"exact", "Show Control", 40, nil},
		{"longer title", "Show Control - Main", 20, nil},
		{"substring", "Show", 0, ErrWindowNotFound},
		{"single letter", "o", 0, ErrWindowNotFound},
		{"default placeholder", "YourTargetWindow", 0, ErrWindowNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pid, err := findWindow(tt.title, d.pids, d.title)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantPid, pid)
		})
	}
}

func TestFindWindowPropagatesListError(t *testing.T) {
	cause := errors.New("proc unavailable")
	_, err := findWindow("Show", func() ([]int, error) { return nil, cause }, desktop{}.title)
	assert.ErrorIs(t, err, cause)
}

func TestRobotUnknownTitleStillTaps(t *testing.T) {
	d := desktop{1: "Terminal", 2: "Browser"}
	var tapped []string
	r := &Robot{
		focus: func(window string) error {
			_, err := findWindow(window, d.pids, d.title)
			return err
		},
		tap: func(k string, mods ...interface{}) error {
			tapped = append(tapped, k)
			return nil
		},
	}

	err := r.Fire("YourTargetWindow", "SPACE", 0)
	assert.ErrorIs(t, err, ErrWindowNotFound)
	assert.Equal(t, []string{"space"}, tapped)
}

func TestRobotTapError(t *testing.T) {
	f := &fakeRobot{tapErr: errors.New("no display")}
	err := f.robot().Fire("", "A", keymap.Shift)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHIFT+A")
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	var s Sink = r
	require.NoError(t, s.Fire("w", "SPACE", keymap.Ctrl))
	r.Err = errors.New("boom")
	assert.Error(t, s.Fire("w", "ENTER", 0))

	assert.Equal(t, 2, r.Count())
	assert.Equal(t, Request{Window: "w", Key: "SPACE", Mods: keymap.Ctrl}, r.Requests()[0])
}

func TestSinkFunc(t *testing.T) {
	called := false
	var s Sink = SinkFunc(func(window string, key keymap.Key, mods keymap.Modifiers) error {
		called = true
		return nil
	})
	require.NoError(t, s.Fire("", "A", 0))
	assert.True(t, called)
}
