package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/showcontroller/osctrigger/keymap"
)

const (
	TransportUDP = "udp"
	TransportTCP = "tcp"
)

var (
	ErrInvalidPort        = errors.New("port must be between 1 and 65535")
	ErrInvalidBindAddress = errors.New("bind address must be an IPv4 address or a wildcard")
	ErrInvalidOSCAddress  = errors.New("OSC address must start with '/'")
	ErrInvalidTransport   = errors.New("transport must be udp or tcp")
	ErrInvalidPoll        = errors.New("poll interval must be between 1ms and 1s")
)

type Config struct {
	BindAddress   string        `yaml:"bind_address"`
	Port          int           `yaml:"port"`
	TargetAddress string        `yaml:"address"`
	TargetValue   float64       `yaml:"value"`
	Continuous    bool          `yaml:"continuous"`
	Key           string        `yaml:"key"`
	TargetWindow  string        `yaml:"window"`
	Transport     string        `yaml:"transport"`
	PollInterval  time.Duration `yaml:"poll_interval"`
	Logging       LoggingConfig `yaml:"logging"`
}

type LoggingConfig struct {
	Levels      map[string]string `yaml:"levels"`
	RemoteLevel bool              `yaml:"remote_level"`
}

func Default() *Config {
	return &Config{
		BindAddress:   "127.0.0.1",
		Port:          55525,
		TargetAddress: "/flair/runstate",
		TargetValue:   9,
		Key:           "SPACE",
		TargetWindow:  "YourTargetWindow",
		Transport:     TransportUDP,
		PollInterval:  50 * time.Millisecond,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// IsWildcard reports whether addr means "all interfaces".
func IsWildcard(addr string) bool {
	switch strings.ToLower(strings.TrimSpace(addr)) {
	case "", "0.0.0.0", "any", "*":
		return true
	}
	return false
}

// ListenAddr is the host:port string to bind, with wildcards normalised to
// 0.0.0.0.
func (c *Config) ListenAddr() string {
	host := strings.TrimSpace(c.BindAddress)
	if IsWildcard(host) {
		host = "0.0.0.0"
	}
	return net.JoinHostPort(host, fmt.Sprint(c.Port))
}

// Chord parses the configured key.
func (c *Config) Chord() (keymap.Key, keymap.Modifiers, error) {
	return keymap.ParseChord(c.Key)
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, c.Port)
	}
	if !IsWildcard(c.BindAddress) {
		ip := net.ParseIP(strings.TrimSpace(c.BindAddress))
		if ip == nil || ip.To4() == nil {
			return fmt.Errorf("%w: %q", ErrInvalidBindAddress, c.BindAddress)
		}
	}
	if !strings.HasPrefix(c.TargetAddress, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidOSCAddress, c.TargetAddress)
	}
	switch c.Transport {
	case TransportUDP, TransportTCP:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTransport, c.Transport)
	}
	if c.PollInterval < time.Millisecond || c.PollInterval > time.Second {
		return fmt.Errorf("%w: %s", ErrInvalidPoll, c.PollInterval)
	}
	if _, _, err := c.Chord(); err != nil {
		return err
	}
	return nil
}
