//go:build windows

package listener

import (
	"errors"
	"syscall"

	"golang.org/x/sys/windows"
)

// Winsock codes not exported by x/sys/windows.
const (
	wsaeIntr         = syscall.Errno(10004)
	wsaeWouldBlock   = syscall.Errno(10035)
	wsaeMsgSize      = syscall.Errno(10040)
	wsaeAddrInUse    = syscall.Errno(10048)
	wsaeAddrNotAvail = syscall.Errno(10049)
	wsaeConnReset    = syscall.Errno(10054)
)

func reuseAddr(network, address string, c syscall.RawConn) error {
	var opErr error
	err := c.Control(func(fd uintptr) {
		opErr = windows.SetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, windows.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return opErr
}

func isAddrInUse(err error) bool {
	return errors.Is(err, wsaeAddrInUse)
}

func isAddrUnavailable(err error) bool {
	return errors.Is(err, wsaeAddrNotAvail)
}

// An ICMP port unreachable for an earlier send shows up as WSAECONNRESET on
// the next UDP read; oversized datagrams give WSAEMSGSIZE.
func isTransientErrno(err error) bool {
	return errors.Is(err, wsaeIntr) ||
		errors.Is(err, wsaeWouldBlock) ||
		errors.Is(err, wsaeMsgSize) ||
		errors.Is(err, wsaeConnReset)
}
