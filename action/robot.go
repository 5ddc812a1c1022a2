package action

import (
	"fmt"

	"github.com/go-vgo/robotgo"

	"github.com/showcontroller/osctrigger/keymap"
)

// Robot injects keys through robotgo.
type Robot struct {
	// focus and tap are swapped out in tests.
	focus func(window string) error
	tap   func(key string, mods ...interface{}) error
}

func NewRobot() *Robot {
	return &Robot{
		focus: focusWindow,
		tap:   robotgo.KeyTap,
	}
}

// Fire focuses the window titled window, when one is named, then taps key
// with mods held. A window that cannot be focused is reported after the key has been sent.
func (r *Robot) Fire(window string, key keymap.Key, mods keymap.Modifiers) error {
	var focusErr error
	if window != "" {
		if err := r.focus(window); err != nil {
			focusErr = fmt.Errorf("focus %q: %w", window, err)
		}
	}

	args := make([]interface{}, 0, 3)
	for _, m := range mods.RobotNames() {
		args = append(args, m)
	}
	if err := r.tap(key.RobotName(), args...); err != nil {
		return fmt.Errorf("tap %s: %w", keymap.Chord(key, mods), err)
	}
	return focusErr
}
