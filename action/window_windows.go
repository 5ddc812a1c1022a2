//go:build windows

package action

import "github.com/go-vgo/robotgo"

// focusWindow brings the top-level window with this exact title forward.
func focusWindow(title string) error {
	hwnd := robotgo.FindWindow(title)
	if hwnd == 0 {
		return ErrWindowNotFound
	}
	robotgo.SetActiveWindow(hwnd)
	return nil
}
