// Package action delivers a fired trigger to the desktop: bring the target
// window forward and tap a key chord.
package action

import (
	"errors"
	"sync"

	"github.com/showcontroller/osctrigger/keymap"
)

// ErrWindowNotFound is returned when no window has the requested title. The
// key is still sent to whatever window has focus.
var ErrWindowNotFound = errors.New("target window not found")

// Sink performs a fire request. Implementations should return quickly; the
// listener calls Fire synchronously and only logs the error.
type Sink interface {
	Fire(window string, key keymap.Key, mods keymap.Modifiers) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(window string, key keymap.Key, mods keymap.Modifiers) error

func (f SinkFunc) Fire(window string, key keymap.Key, mods keymap.Modifiers) error {
	return f(window, key, mods)
}

// Request is one recorded Fire call.
type Request struct {
	Window string
	Key    keymap.Key
	Mods   keymap.Modifiers
}

// Recorder is a Sink that only remembers what it was asked to do. It backs
// the dry-run mode and tests.
type Recorder struct {
	mu       sync.Mutex
	requests []Request
	Err      error
}

func (r *Recorder) Fire(window string, key keymap.Key, mods keymap.Modifiers) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, Request{Window: window, Key: key, Mods: mods})
	return r.Err
}

// Requests returns a copy of every recorded call.
func (r *Recorder) Requests() []Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Request(nil), r.requests...)
}

// Count returns the number of recorded calls.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}
