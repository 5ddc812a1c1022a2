package listener

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/Lobaro/slip"

	"github.com/showcontroller/osctrigger/config"
	"github.com/showcontroller/osctrigger/logging"
)

// errStreamEnded is returned when a TCP peer goes away. The listener keeps
// running and accepts the next connection.
var errStreamEnded = errors.New("stream connection ended")

// source yields one OSC packet per call. ReadPacket returns an error
// wrapping os.ErrDeadlineExceeded when nothing arrived within wait, and
// net.ErrClosed once Close has been called. A packet longer than buf fills
// buf and the rest is discarded.
type source interface {
	ReadPacket(buf []byte, wait time.Duration) (int, net.Addr, error)
	LocalAddr() net.Addr
	Close() error
}

func openSource(cfg *config.Config) (source, error) {
	lc := net.ListenConfig{Control: reuseAddr}
	addr := cfg.ListenAddr()

	switch cfg.Transport {
	case config.TransportTCP:
		ln, err := lc.Listen(context.Background(), "tcp4", addr)
		if err != nil {
			return nil, classifyBindError(addr, err)
		}
		return &streamSource{ln: ln.(*net.TCPListener)}, nil
	default:
		pc, err := lc.ListenPacket(context.Background(), "udp4", addr)
		if err != nil {
			return nil, classifyBindError(addr, err)
		}
		return &packetSource{conn: pc}, nil
	}
}

////
// UDP
////

type packetSource struct {
	conn net.PacketConn
}

func (p *packetSource) ReadPacket(buf []byte, wait time.Duration) (int, net.Addr, error) {
	if err := p.conn.SetReadDeadline(time.Now().Add(wait)); err != nil {
		return 0, nil, err
	}
	return p.conn.ReadFrom(buf)
}

func (p *packetSource) LocalAddr() net.Addr {
	return p.conn.LocalAddr()
}

func (p *packetSource) Close() error {
	return p.conn.Close()
}

////
// TCP with SLIP framing
////

// streamSource serves one TCP client at a time. Each SLIP frame is one OSC
// packet.
type streamSource struct {
	ln *net.TCPListener

	mu     sync.Mutex
	conn   net.Conn
	closed bool

	// r is only touched by the listening goroutine.
	r *slip.Reader
}

func (s *streamSource) ReadPacket(buf []byte, wait time.Duration) (int, net.Addr, error) {
	if s.r == nil {
		if err := s.accept(wait); err != nil {
			return 0, nil, err
		}
	}

	packet, _, err := s.r.ReadPacket()
	if err != nil {
		return 0, nil, s.dropConn(err)
	}
	return copy(buf, packet), s.conn.RemoteAddr(), nil
}

func (s *streamSource) accept(wait time.Duration) error {
	if err := s.ln.SetDeadline(time.Now().Add(wait)); err != nil {
		return err
	}
	conn, err := s.ln.Accept()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		conn.Close()
		return net.ErrClosed
	}
	s.conn = conn
	s.r = slip.NewReader(conn)
	logging.Get(logging.LISTENER).Info("Stream client connected", "from", conn.RemoteAddr())
	return nil
}

func (s *streamSource) dropConn(cause error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var peer net.Addr
	if s.conn != nil {
		peer = s.conn.RemoteAddr()
		s.conn.Close()
	}
	s.r = nil
	if s.closed {
		return net.ErrClosed
	}
	s.conn = nil
	logging.Get(logging.LISTENER).Info("Stream client disconnected", "from", peer, "err", cause)
	return errStreamEnded
}

func (s *streamSource) LocalAddr() net.Addr {
	return s.ln.Addr()
}

func (s *streamSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.conn != nil {
		s.conn.Close()
	}
	return s.ln.Close()
}

// isTransient reports receive errors the loop should absorb.
func isTransient(err error) bool {
	return errors.Is(err, errStreamEnded) || isTransientErrno(err)
}
