package client

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/rdashevsky/kafwire/routing"
)

const (
	_defaultPort            = 9092
	_defaultDialTimeout     = 10 * time.Second
	_defaultMaxFrameLen     = 64 << 20
	_defaultConnectAttempts = 3
	_defaultConnectWait     = 500 * time.Millisecond
	_defaultRefreshDelay    = time.Second
)

// Config holds the configuration for a cluster connection.
// It specifies the bootstrap brokers, identity, and timing.
type Config struct {
	// Brokers is the ordered bootstrap list, as "host" or "host:port"
	// entries. Entries without a port use DefaultPort.
	Brokers []string `json:"brokers"`
	// ClientID identifies this client in every request header. A fresh
	// random identifier is generated when empty.
	ClientID string `json:"client_id"`
	// DefaultPort applies to broker entries without an embedded port.
	DefaultPort int32 `json:"default_port"`
	// DialTimeout bounds each TCP connect.
	DialTimeout time.Duration `json:"dial_timeout"`
	// MaxFrameLen bounds accepted response frames.
	MaxFrameLen uint32 `json:"max_frame_len"`
	// ConnectAttempts is how many times each bootstrap endpoint is tried
	// before moving to the next one.
	ConnectAttempts int `json:"connect_attempts"`
	// ConnectWait is the initial backoff between bootstrap attempts.
	ConnectWait time.Duration `json:"connect_wait"`
	// RefreshDelay is the initial delay before a classifier-scheduled
	// metadata refresh.
	RefreshDelay time.Duration `json:"refresh_delay"`
}

// ParseConfig decodes a JSON configuration document.
//
// Example:
//
//	cfg, err := client.ParseConfig([]byte(`{"brokers": ["localhost:9092"]}`))
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("client - ParseConfig - json.Unmarshal: %w", err)
	}
	return cfg, nil
}

func (c Config) withDefaults() Config {
	if c.ClientID == "" {
		c.ClientID = "kafwire-" + uuid.New().String()
	}
	if c.DefaultPort == 0 {
		c.DefaultPort = _defaultPort
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = _defaultDialTimeout
	}
	if c.MaxFrameLen == 0 {
		c.MaxFrameLen = _defaultMaxFrameLen
	}
	if c.ConnectAttempts == 0 {
		c.ConnectAttempts = _defaultConnectAttempts
	}
	if c.ConnectWait == 0 {
		c.ConnectWait = _defaultConnectWait
	}
	if c.RefreshDelay == 0 {
		c.RefreshDelay = _defaultRefreshDelay
	}
	return c
}

// endpoints resolves the bootstrap list into endpoints, applying
// DefaultPort where none is embedded.
func (c Config) endpoints() ([]routing.Endpoint, error) {
	if len(c.Brokers) == 0 {
		return nil, fmt.Errorf("client - Config - endpoints: empty bootstrap list")
	}

	out := make([]routing.Endpoint, 0, len(c.Brokers))
	for _, broker := range c.Brokers {
		host, portStr, err := net.SplitHostPort(broker)
		if err != nil {
			out = append(out, routing.Endpoint{Host: broker, Port: c.DefaultPort})
			continue
		}
		port, err := strconv.ParseInt(portStr, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("client - Config - endpoints: bad port in %q: %w", broker, err)
		}
		out = append(out, routing.Endpoint{Host: host, Port: int32(port)})
	}
	return out, nil
}
