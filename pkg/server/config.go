package server

import (
	"net/http"
	"time"

	"github.com/vango-dev/filters/pkg/widget"
)

// Config holds configuration for the HTTP/WebSocket host.
type Config struct {
	// ReadTimeout is the maximum time to wait for a message from the client.
	// Default: 60 seconds.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait when sending a message.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// IdleTimeout is how long an instance may go without events before the
	// sweeper closes it.
	// Default: 30 minutes.
	IdleTimeout time.Duration

	// SweepInterval is how often idle instances are collected.
	// Default: 1 minute.
	SweepInterval time.Duration

	// MaxMessageSize is the maximum size of an incoming WebSocket message.
	// Default: 16KB.
	MaxMessageSize int64

	// ReadBufferSize is the WebSocket read buffer size.
	// Default: 4096.
	ReadBufferSize int

	// WriteBufferSize is the WebSocket write buffer size.
	// Default: 4096.
	WriteBufferSize int

	// CheckOrigin validates the WebSocket origin.
	// Default: same-origin only (gorilla's default check).
	CheckOrigin func(r *http.Request) bool

	// MaxInstances caps the number of live instances. 0 means no limit.
	MaxInstances int

	// StyleSheets are linked from every page.
	StyleSheets []string

	// Assets override the loader and star images.
	Assets widget.Assets

	// DevMode disables client script caching and pretty-prints HTML.
	DevMode bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ReadTimeout:     60 * time.Second,
		WriteTimeout:    10 * time.Second,
		IdleTimeout:     30 * time.Minute,
		SweepInterval:   time.Minute,
		MaxMessageSize:  16 * 1024,
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = d.IdleTimeout
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = d.SweepInterval
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = d.MaxMessageSize
	}
	if c.ReadBufferSize <= 0 {
		c.ReadBufferSize = d.ReadBufferSize
	}
	if c.WriteBufferSize <= 0 {
		c.WriteBufferSize = d.WriteBufferSize
	}
	return c
}
