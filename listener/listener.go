// Package listener owns the socket a trigger listens on. A Session binds
// once, runs its receive loop on one goroutine and feeds every packet through
// the decoder, the matcher and the firing policy.
package listener

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/showcontroller/osctrigger/action"
	"github.com/showcontroller/osctrigger/config"
	"github.com/showcontroller/osctrigger/keymap"
	"github.com/showcontroller/osctrigger/logging"
	"github.com/showcontroller/osctrigger/osc"
	"github.com/showcontroller/osctrigger/trigger"
)

// StatusLogger receives one line per lifecycle event.
type StatusLogger interface {
	Log(message string)
}

// Options carries the collaborators of a session.
type Options struct {
	Sink   action.Sink
	Status StatusLogger
	// Observe, when set, sees every decoded message before matching.
	Observe func(osc.Message)
}

// Session is one bind-listen-stop cycle. Create it with Start, run Listen on
// its own goroutine and end it with Stop from any goroutine.
type Session struct {
	cfg     config.Config
	target  trigger.Target
	policy  *trigger.Policy
	key     keymap.Key
	mods    keymap.Modifiers
	sink    action.Sink
	status  StatusLogger
	observe func(osc.Message)
	log     *slog.Logger

	src       source
	closeOnce sync.Once
	// stateMu orders Stop against the start of a fire.
	stateMu sync.Mutex
	running atomic.Bool
	fires   atomic.Int64
	done    chan struct{}
}

// Start validates cfg and binds the socket. On error nothing is left open.
func Start(cfg config.Config, opts Options) (*Session, error) {
	status := opts.Status
	if status == nil {
		status = logging.Status(logging.LISTENER)
	}
	if err := cfg.Validate(); err != nil {
		status.Log(fmt.Sprintf("Invalid configuration: %v", err))
		return nil, err
	}

	src, err := openSource(&cfg)
	if err != nil {
		status.Log(fmt.Sprintf("Bind failed: %v", err))
		return nil, err
	}

	opts.Status = status
	s := newSession(cfg, src, opts)

	mode := "one-shot"
	if cfg.Continuous {
		mode = "continuous"
	}
	status.Log(fmt.Sprintf("Listening on %s (%s, %s) for %s = %g",
		src.LocalAddr(), cfg.Transport, mode, cfg.TargetAddress, cfg.TargetValue))
	return s, nil
}

// newSession wires a validated config to an open source.
func newSession(cfg config.Config, src source, opts Options) *Session {
	key, mods, _ := cfg.Chord()
	sink := opts.Sink
	if sink == nil {
		sink = &action.Recorder{}
	}

	s := &Session{
		cfg:     cfg,
		target:  trigger.Target{Address: cfg.TargetAddress, Value: cfg.TargetValue},
		policy:  trigger.NewPolicy(cfg.Continuous),
		key:     key,
		mods:    mods,
		sink:    sink,
		status:  opts.Status,
		observe: opts.Observe,
		log:     logging.Get(logging.OSC_IN),
		src:     src,
		done:    make(chan struct{}),
	}
	s.running.Store(true)
	return s
}

// Listen runs the receive loop until Stop is called, a one-shot trigger has
// fired, or the socket fails. It waits at most PollInterval between checks
// of the running flag. Listen must be called once per session.
func (s *Session) Listen() {
	defer close(s.done)
	defer s.closeSource()
	defer s.running.Store(false)

	// One spare byte tells an oversized packet from one that fits exactly.
	buf := make([]byte, osc.MaxPacketSize+1)
	var tempDelay time.Duration
	for s.running.Load() {
		n, from, err := s.src.ReadPacket(buf, s.cfg.PollInterval)
		if err != nil {
			switch {
			case errors.Is(err, os.ErrDeadlineExceeded):
				continue
			case errors.Is(err, net.ErrClosed):
				if s.running.Load() {
					s.status.Log("Socket closed unexpectedly")
				} else {
					s.status.Log("Listener stopped")
				}
				return
			case isTransient(err):
				s.log.Warn("Transient receive error", "err", err)
				if tempDelay == 0 {
					tempDelay = 5 * time.Millisecond
				} else {
					tempDelay *= 2
				}
				if max := s.cfg.PollInterval; tempDelay > max {
					tempDelay = max
				}
				time.Sleep(tempDelay)
				continue
			default:
				s.status.Log(fmt.Sprintf("Listener failed: %v", err))
				return
			}
		}
		tempDelay = 0
		if n > osc.MaxPacketSize {
			s.log.Debug("Dropped oversized packet", "from", from, "limit", osc.MaxPacketSize)
			continue
		}
		s.process(buf[:n], from)
	}
	s.status.Log("Listener stopped")
}

// Stop clears the running flag and closes the socket, which wakes a pending
// read. It is safe to call more than once and from any goroutine.
func (s *Session) Stop() {
	s.stateMu.Lock()
	s.running.Store(false)
	s.stateMu.Unlock()
	s.closeSource()
}

func (s *Session) closeSource() {
	s.closeOnce.Do(func() {
		if err := s.src.Close(); err != nil {
			s.log.Debug("Close socket", "err", err)
		}
	})
}

// Running reports whether the session still accepts packets.
func (s *Session) Running() bool {
	return s.running.Load()
}

// Done is closed when Listen has returned.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Fires returns how many times the sink has been invoked.
func (s *Session) Fires() int64 {
	return s.fires.Load()
}

// LocalAddr is the bound address, useful when port selection matters.
func (s *Session) LocalAddr() net.Addr {
	return s.src.LocalAddr()
}

// Config returns the configuration the session was started with.
func (s *Session) Config() config.Config {
	return s.cfg
}

// process handles one packet. Bundle elements are handled in wire order.
func (s *Session) process(packet []byte, from net.Addr) {
	msgs := osc.Decode(packet)
	if len(msgs) == 0 {
		s.log.Debug("Ignored packet", "from", from, "bytes", len(packet))
		return
	}
	for _, msg := range msgs {
		s.log.Debug("Received", "from", from, "msg", msg)
		if s.observe != nil {
			s.observe(msg)
		}
		if !s.target.Matches(msg) {
			continue
		}
		if !s.running.Load() {
			return
		}
		d := s.policy.OnMatch()
		if !d.Fire {
			continue
		}
		if !s.beginFire(d.Stop) {
			return
		}
		s.fire(msg)
	}
}

// beginFire claims one fire while the session is running. With stopAfter
// the session ends in the same step.
func (s *Session) beginFire(stopAfter bool) bool {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if !s.running.Load() {
		return false
	}
	s.fires.Add(1)
	if stopAfter {
		s.running.Store(false)
	}
	return true
}

func (s *Session) fire(msg osc.Message) {
	s.status.Log(fmt.Sprintf("TRIGGER: %s = %s (Key: %s)",
		msg.Address, msg.ValueString(), keymap.Chord(s.key, s.mods)))

	defer func() {
		if r := recover(); r != nil {
			s.status.Log(fmt.Sprintf("Action panicked: %v", r))
		}
	}()
	if err := s.sink.Fire(s.cfg.TargetWindow, s.key, s.mods); err != nil {
		s.status.Log(fmt.Sprintf("Action failed: %v", err))
	}
}
