package listener

import (
	"errors"
	"sync"

	"github.com/showcontroller/osctrigger/config"
)

// ErrAlreadyRunning is returned by Controller.Start while a session is live.
var ErrAlreadyRunning = errors.New("listener already running")

// Controller holds at most one live session and runs its Listen loop. It is
// what start/stop controls talk to.
type Controller struct {
	opts Options

	mu      sync.Mutex
	session *Session
	lastErr error
}

func NewController(opts Options) *Controller {
	return &Controller{opts: opts}
}

// Start binds a fresh session for cfg and starts listening in the
// background. A finished session is released first so its port is free.
func (c *Controller) Start(cfg config.Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old := c.session; old != nil {
		if old.Running() {
			return ErrAlreadyRunning
		}
		old.Stop()
		<-old.Done()
		c.session = nil
	}

	s, err := Start(cfg, c.opts)
	c.lastErr = err
	if err != nil {
		return err
	}
	c.session = s
	go s.Listen()
	return nil
}

// Stop ends the current session, if any. It does not wait for the listen
// goroutine; use Wait for that.
func (c *Controller) Stop() {
	c.mu.Lock()
	s := c.session
	c.mu.Unlock()
	if s != nil {
		s.Stop()
	}
}

// Wait blocks until the current session's listen loop has returned.
func (c *Controller) Wait() {
	c.mu.Lock()
	s := c.session
	c.mu.Unlock()
	if s != nil {
		<-s.Done()
	}
}

// Running reports whether a session is live.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil && c.session.Running()
}

// Session returns the most recent session, or nil.
func (c *Controller) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Err returns the error of the last Start that failed to bind or validate,
// or nil once a later Start has succeeded. ErrAlreadyRunning is not kept.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}
