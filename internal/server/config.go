package server

import (
	"log"
	"time"

	"minihttp/internal/headers"
	"minihttp/internal/metrics"
	"minihttp/internal/request"
	"minihttp/internal/response"
	"minihttp/internal/router"
)

const (
	DefaultAddr = ":8080"

	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Router picks the response for a parsed request line.
type Router interface {
	Route(line request.RequestLine) response.Response
}

// Config is everything a connection handler needs. Zero fields fall back to
// the defaults from DefaultConfig.
type Config struct {
	Addr string
	// MaxRequestSize caps the buffered header block.
	MaxRequestSize int
	// ReadTimeout bounds the whole header read. Zero waits forever.
	ReadTimeout time.Duration
	// Workers > 1 serves that many connections at once. Otherwise each
	// connection is finished before the next one is accepted.
	Workers    int
	ServerName string
	LogFormat  string
	// Debug logs the start of every framed request and its parsed line.
	Debug   bool
	Logger  *log.Logger
	Router  Router
	Metrics *metrics.Metrics
}

func DefaultConfig() Config {
	return Config{
		Addr:           DefaultAddr,
		MaxRequestSize: request.DefaultMaxRequestSize,
		Workers:        1,
		ServerName:     response.DefaultServer,
		LogFormat:      LogFormatText,
		Logger:         log.Default(),
		Router:         router.New(),
	}
}

// fill replaces zero values with defaults. Metrics stays nil when unset. A
// ServerName that can't be sent as a header value is replaced as well.
func (c Config) fill() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.MaxRequestSize <= 0 {
		c.MaxRequestSize = request.DefaultMaxRequestSize
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.ServerName == "" || !headers.ValidValue(c.ServerName) {
		c.ServerName = response.DefaultServer
	}
	if c.LogFormat != LogFormatJSON {
		c.LogFormat = LogFormatText
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}
	if c.Router == nil {
		c.Router = router.New()
	}

	return c
}
