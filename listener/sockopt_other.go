//go:build !unix && !windows

package listener

import "syscall"

func reuseAddr(network, address string, c syscall.RawConn) error {
	return nil
}

func isAddrInUse(err error) bool       { return false }
func isAddrUnavailable(err error) bool { return false }
func isTransientErrno(err error) bool  { return false }
