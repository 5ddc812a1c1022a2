package action

// findWindow returns the first pid whose window title equals title exactly.
// Substring and case-insensitive matches do not count.
func findWindow(title string, pids func() ([]int, error), titleOf func(pid int) string) (int, error) {
	list, err := pids()
	if err != nil {
		return 0, err
	}
	for _, pid := range list {
		if titleOf(pid) == title {
			return pid, nil
		}
	}
	return 0, ErrWindowNotFound
}
