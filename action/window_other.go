//go:build !windows

package action

import "github.com/go-vgo/robotgo"

// focusWindow brings the window with this exact title forward.
func focusWindow(title string) error {
	pid, err := findWindow(title, robotgo.Pids, func(pid int) string {
		return robotgo.GetTitle(pid)
	})
	if err != nil {
		return err
	}
	return robotgo.ActivePid(pid)
}
