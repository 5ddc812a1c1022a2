package listener

import "fmt"

// BindErrorKind classifies why a bind failed.
type BindErrorKind int

const (
	BindOther BindErrorKind = iota
	BindAddrInUse
	BindAddrUnavailable
)

func (k BindErrorKind) String() string {
	switch k {
	case BindAddrInUse:
		return "address in use"
	case BindAddrUnavailable:
		return "address unavailable"
	default:
		return "bind error"
	}
}

// BindError is returned by Start when the socket cannot be bound.
type BindError struct {
	Kind BindErrorKind
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("bind %s: %s: %v", e.Addr, e.Kind, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

func classifyBindError(addr string, err error) *BindError {
	kind := BindOther
	switch {
	case isAddrInUse(err):
		kind = BindAddrInUse
	case isAddrUnavailable(err):
		kind = BindAddrUnavailable
	}
	return &BindError{Kind: kind, Addr: addr, Err: err}
}
