package listener

import (
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/showcontroller/osctrigger/config"
	"github.com/showcontroller/osctrigger/osc"
)

// statusRecorder collects status lines.
type statusRecorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *statusRecorder) Log(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, message)
}

func (r *statusRecorder) count(substr string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, l := range r.lines {
		if strings.Contains(l, substr) {
			n++
		}
	}
	return n
}

func (r *statusRecorder) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return strings.Join(r.lines, "\n")
}

func freePort(t *testing.T, network string) int {
	t.Helper()
	switch network {
	case "tcp":
		ln, err := net.Listen("tcp4", "127.0.0.1:0")
		require.NoError(t, err)
		defer ln.Close()
		return ln.Addr().(*net.TCPAddr).Port
	default:
		pc, err := net.ListenPacket("udp4", "127.0.0.1:0")
		require.NoError(t, err)
		defer pc.Close()
		return pc.LocalAddr().(*net.UDPAddr).Port
	}
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := *config.Default()
	cfg.Port = freePort(t, "udp")
	cfg.TargetWindow = "Test Window"
	cfg.PollInterval = 20 * time.Millisecond
	return cfg
}

func mustMarshal(t *testing.T, p osc.Packet) []byte {
	t.Helper()
	data, err := p.MarshalBinary()
	require.NoError(t, err)
	return data
}

func sendUDP(t *testing.T, addr net.Addr, packets ...[]byte) {
	t.Helper()
	conn, err := net.Dial("udp4", addr.String())
	require.NoError(t, err)
	defer conn.Close()
	for _, p := range packets {
		_, err := conn.Write(p)
		require.NoError(t, err)
	}
}

func waitDone(t *testing.T, s *Session, within time.Duration) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(within):
		t.Fatalf("listener still running after %s", within)
	}
}

// scriptedSource replays canned reads and then idles until closed.
type scriptedSource struct {
	mu     sync.Mutex
	steps  []scriptedRead
	closed chan struct{}
	once   sync.Once
}

type scriptedRead struct {
	packet []byte
	err    error
}

func newScriptedSource(steps ...scriptedRead) *scriptedSource {
	return &scriptedSource{steps: steps, closed: make(chan struct{})}
}

func (s *scriptedSource) ReadPacket(buf []byte, wait time.Duration) (int, net.Addr, error) {
	select {
	case <-s.closed:
		return 0, nil, net.ErrClosed
	default:
	}

	s.mu.Lock()
	if len(s.steps) > 0 {
		step := s.steps[0]
		s.steps = s.steps[1:]
		s.mu.Unlock()
		if step.err != nil {
			return 0, nil, step.err
		}
		return copy(buf, step.packet), s.LocalAddr(), nil
	}
	s.mu.Unlock()

	select {
	case <-s.closed:
		return 0, nil, net.ErrClosed
	case <-time.After(wait):
		return 0, nil, fmt.Errorf("read: %w", os.ErrDeadlineExceeded)
	}
}

func (s *scriptedSource) LocalAddr() net.Addr {
	return &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9}
}

func (s *scriptedSource) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}
