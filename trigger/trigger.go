// Package trigger decides whether a decoded OSC message is the one being
// watched for, and whether a match may still fire.
package trigger

import (
	"math"
	"sync/atomic"

	"github.com/showcontroller/osctrigger/osc"
)

// FloatTolerance is the absolute distance under which a float argument
// counts as equal to the target.
const FloatTolerance = 0.01

// Target is the address and value a trigger waits for.
type Target struct {
	Address string
	Value   float64
}

// Matches reports whether msg is addressed exactly to t.Address and carries
// t.Value. Int arguments must equal the target rounded to the nearest
// integer; float arguments must be strictly closer than FloatTolerance.
func (t Target) Matches(msg osc.Message) bool {
	if msg.Address != t.Address {
		return false
	}
	switch msg.Tag {
	case osc.TagInt32:
		return int64(msg.Int()) == int64(math.Round(t.Value))
	case osc.TagFloat32:
		return math.Abs(float64(msg.Float())-t.Value) < FloatTolerance
	default:
		return false
	}
}

// Decision is what the policy wants done with one match.
type Decision struct {
	Fire bool
	Stop bool
}

// Policy gates firing. In one-shot mode the first match fires and asks for
// the listener to stop; later matches do nothing. In continuous mode every
// match fires.
//
// OnMatch is safe for concurrent use.
type Policy struct {
	continuous bool
	fired      atomic.Bool
}

// NewPolicy returns an armed policy.
func NewPolicy(continuous bool) *Policy {
	return &Policy{continuous: continuous}
}

// OnMatch records a match and returns the resulting decision.
func (p *Policy) OnMatch() Decision {
	if p.continuous {
		return Decision{Fire: true}
	}
	if p.fired.CompareAndSwap(false, true) {
		return Decision{Fire: true, Stop: true}
	}
	return Decision{}
}

// Fired reports whether a one-shot policy has already fired.
func (p *Policy) Fired() bool {
	return p.fired.Load()
}

// Continuous reports the policy's mode.
func (p *Policy) Continuous() bool {
	return p.continuous
}
