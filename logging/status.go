package logging

import "log/slog"

// StatusLog adapts a category logger to the one-method status sink the
// listener reports lifecycle events to. The handler stamps each record with
// the time.
type StatusLog struct {
	logger *slog.Logger
}

// Status returns a status sink writing Info records to category.
func Status(category LogCategory) StatusLog {
	return StatusLog{logger: Get(category)}
}

func (s StatusLog) Log(message string) {
	s.logger.Info(message)
}
