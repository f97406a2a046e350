package config

import (
	"net"
	"strconv"
	"time"
)

// DefaultPath is the config file looked up when --config is not given.
const DefaultPath = ".linebot.yml"

// DefaultConfig returns a Config populated with sensible defaults. The LINE
// credentials default to empty; outbound calls and signature checks fail
// authentication until they are set.
func DefaultConfig() *Config {
	return &Config{
		Host:            "0.0.0.0",
		Port:            8000,
		Debug:           true,
		LogLevel:        "INFO",
		Handler:         HandlerEcho,
		OpenAIModel:     "gpt-4o-mini",
		ShutdownTimeout: 10 * time.Second,
	}
}

// Addr returns the host:port the server listens on.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
