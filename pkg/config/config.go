package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Freaky/IMSErious/pkg/command"
	"github.com/Freaky/IMSErious/pkg/handler"
	"github.com/Freaky/IMSErious/pkg/message"
)

const (
	// DefaultListen is the bind address when listen is unset
	DefaultListen = "127.0.0.1:12525"

	// DefaultEndpoint is the notification path when endpoint is unset
	DefaultEndpoint = "/notify"

	// DefaultMaxConnections bounds concurrent in-flight requests
	DefaultMaxConnections = 64

	// maxConfigSize caps how much of a config file is read
	maxConfigSize = 1 << 20
)

// Duration is a positive wall-clock duration parsed from a string such
// as "30s" or "5m". Zero means the option is unset.
type Duration time.Duration

// UnmarshalYAML parses and validates a duration scalar
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("failed to parse duration %q: %w", s, err)
	}
	if parsed <= 0 {
		return fmt.Errorf("duration %q is not positive", s)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the duration as a time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Prefix is a CIDR network in the allow-list. A bare address is
// accepted as a single-host prefix.
type Prefix struct {
	netip.Prefix
}

// UnmarshalYAML parses a CIDR or bare-address scalar
func (p *Prefix) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if strings.Contains(s, "/") {
		parsed, err := netip.ParsePrefix(s)
		if err != nil {
			return fmt.Errorf("failed to parse network %q: %w", s, err)
		}
		p.Prefix = parsed.Masked()
		return nil
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return fmt.Errorf("failed to parse address %q: %w", s, err)
	}
	p.Prefix = netip.PrefixFrom(addr, addr.BitLen())
	return nil
}

// Auth holds HTTP basic-auth credentials for the front end
type Auth struct {
	User string `yaml:"user"`
	Pass string `yaml:"pass"`
}

// TLS holds certificate paths for the front end listener
type TLS struct {
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`
}

// Handler is the configuration of one scheduler
type Handler struct {
	Event       *message.Event  `yaml:"event"`
	User        string          `yaml:"user"`
	Delay       Duration        `yaml:"delay"`
	LimitPeriod Duration        `yaml:"limit_period"`
	LimitBurst  int             `yaml:"limit_burst"`
	Periodic    Duration        `yaml:"periodic"`
	Command     command.Command `yaml:"command"`
}

// Config is the daemon configuration
type Config struct {
	Listen         string    `yaml:"listen"`
	Endpoint       string    `yaml:"endpoint"`
	Allow          []Prefix  `yaml:"allow"`
	MaxConnections int       `yaml:"max_connections"`
	Timeout        Duration  `yaml:"timeout"`
	Auth           *Auth     `yaml:"auth"`
	TLS            *TLS      `yaml:"tls"`
	MetricsListen  string    `yaml:"metrics_listen"`
	Handlers       []Handler `yaml:"handlers"`
}

// Load reads, parses and validates a config file
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxConfigSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates raw config bytes
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.MaxConnections <= 0 {
		c.MaxConnections = DefaultMaxConnections
	}
}

func (c *Config) validate() error {
	if !strings.HasPrefix(c.Endpoint, "/") {
		return fmt.Errorf("endpoint %q does not start with /", c.Endpoint)
	}
	if c.Auth != nil && (c.Auth.User == "" || c.Auth.Pass == "") {
		return fmt.Errorf("auth requires both user and pass")
	}
	if c.TLS != nil && (c.TLS.Cert == "" || c.TLS.Key == "") {
		return fmt.Errorf("tls requires both cert and key")
	}
	if len(c.Handlers) == 0 {
		return fmt.Errorf("no handlers configured")
	}
	for i, h := range c.Handlers {
		if h.Event == nil {
			return fmt.Errorf("handler %d: event is missing", i)
		}
		if h.User == "" {
			return fmt.Errorf("handler %d: user is empty", i)
		}
		if h.LimitBurst < 0 {
			return fmt.Errorf("handler %d: limit_burst is negative", i)
		}
		if len(h.Command.Argv()) == 0 {
			return fmt.Errorf("handler %d: %w", i, command.ErrEmptyCommand)
		}
	}
	return nil
}

// Allowed reports whether addr passes the allow-list. An empty list
// allows everything.
func (c *Config) Allowed(addr netip.Addr) bool {
	if len(c.Allow) == 0 {
		return true
	}
	for _, p := range c.Allow {
		if p.Contains(addr.Unmap()) {
			return true
		}
	}
	return false
}

// Specs converts the handler configurations into scheduler specs
func (c *Config) Specs() []handler.Spec {
	specs := make([]handler.Spec, 0, len(c.Handlers))
	for i := range c.Handlers {
		h := &c.Handlers[i]
		specs = append(specs, handler.Spec{
			Event:       *h.Event,
			User:        h.User,
			Delay:       h.Delay.Std(),
			LimitPeriod: h.LimitPeriod.Std(),
			LimitBurst:  h.LimitBurst,
			Periodic:    h.Periodic.Std(),
			Command:     &h.Command,
		})
	}
	return specs
}
