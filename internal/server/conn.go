package server

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/indigo-web/utils/uf"

	"minihttp/internal/metrics"
	"minihttp/internal/request"
	"minihttp/internal/response"
)

// State is where a connection is in its single request/response exchange.
type State int

const (
	AwaitingHeaders State = iota + 1 // 1
	HeadersComplete                  // 2 (header block framed, request line not parsed yet)
	Dispatched                       // 3 (routed and answered)
	ClientError                      // 4 (answered with 400)
	Aborted                          // 5 (read failed or handler panicked)
	Closed                           // 6
)

var StateName = map[State]string{
	AwaitingHeaders: "awaiting_headers",
	HeadersComplete: "headers_complete",
	Dispatched:      "dispatched",
	ClientError:     "client_error",
	Aborted:         "aborted",
	Closed:          "closed",
}

func (s State) String() string {
	if name, ok := StateName[s]; ok {
		return name
	}

	return fmt.Sprintf("state(%d)", int(s))
}

// How much of a framed request goes into the debug log.
const debugPreview = 1024

type readDeadliner interface {
	SetReadDeadline(t time.Time) error
}

type conn struct {
	rwc     io.ReadWriteCloser
	cfg     Config
	access  accessLogger
	entry   accessEntry
	state   State
	written bool
}

// ServeConn runs one request/response exchange on rwc and closes it. rwc is
// closed on every path, including a panicking Router. The returned state is
// the last one reached before Closed.
func ServeConn(rwc io.ReadWriteCloser, cfg Config) (final State) {
	cfg = cfg.fill()
	c := &conn{
		rwc:    rwc,
		cfg:    cfg,
		access: accessLogger{logger: cfg.Logger, format: cfg.LogFormat},
		entry:  newAccessEntry(rwc),
		state:  AwaitingHeaders,
	}
	start := time.Now()

	defer func() {
		final = c.state
		c.close(time.Since(start))
	}()

	defer func() {
		if p := recover(); p != nil {
			c.entry.Err = fmt.Sprintf("panic: %v", p)
			c.state = Aborted
			if !c.written {
				c.respondRecovered(response.InternalServerError())
			}
		}
	}()

	c.serve()
	return c.state
}

func (c *conn) serve() {
	if c.cfg.ReadTimeout > 0 {
		if d, ok := c.rwc.(readDeadliner); ok {
			_ = d.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
		}
	}

	frame, err := request.ReadFrame(c.rwc, c.cfg.MaxRequestSize)
	if err != nil {
		// Nothing can be read anymore, so don't even try to answer.
		c.entry.Err = err.Error()
		c.state = Aborted
		return
	}

	c.cfg.Metrics.ObserveFrame(len(frame.Header))
	if c.cfg.Debug {
		preview := frame.Header[:min(len(frame.Header), debugPreview)]
		c.cfg.Logger.Printf("=== incoming request (%d bytes) ===\n%s", len(frame.Header), uf.B2S(preview))
	}

	if !frame.Complete {
		c.clientError(request.ErrIncompleteHeader)
		return
	}

	c.state = HeadersComplete

	rl, err := request.ParseRequestLine(frame.Header)
	if err != nil {
		c.clientError(err)
		return
	}

	if c.cfg.Debug {
		c.cfg.Logger.Printf("parsed: method=%s, path=%s, version=%s", rl.Method, rl.RequestTarget, rl.HTTPVersion)
	}

	c.entry.Method = rl.Method
	c.entry.Target = rl.RequestTarget
	c.state = Dispatched
	c.respond(c.cfg.Router.Route(*rl))
}

func (c *conn) clientError(err error) {
	c.entry.Err = err.Error()
	c.state = ClientError
	c.respond(response.BadRequest())
}

func (c *conn) respond(resp response.Response) {
	c.written = true
	c.entry.Status = int(resp.StatusCode)

	w := response.NewWriter(c.rwc)
	w.Server = c.cfg.ServerName
	_, err := w.WriteResponse(resp)
	if errors.Is(err, response.ErrInvalidHeader) {
		// Sent with the default value in its place.
		if c.entry.Err == "" {
			c.entry.Err = err.Error()
		}
		err = nil
	}
	if err != nil {
		c.cfg.Metrics.ObserveWriteError()
		if c.entry.Err == "" {
			c.entry.Err = fmt.Sprintf("write: %v", err)
		}
		return
	}

	c.cfg.Metrics.ObserveResponse(int(resp.StatusCode))
}

// respondRecovered is respond for the panic path. A second panic from the
// writer is swallowed so that the connection can still be closed and logged.
func (c *conn) respondRecovered(resp response.Response) {
	defer func() {
		if p := recover(); p != nil {
			c.cfg.Metrics.ObserveWriteError()
			c.entry.Err += fmt.Sprintf("; write panic: %v", p)
		}
	}()

	c.respond(resp)
}

func (c *conn) close(elapsed time.Duration) {
	if err := c.rwc.Close(); err != nil && c.entry.Err == "" {
		c.entry.Err = fmt.Sprintf("close: %v", err)
	}

	c.cfg.Metrics.ObserveConnection(outcome(c.state), elapsed)

	c.entry.DurationMS = millis(elapsed)
	c.entry.State = c.state.String()
	c.access.log(c.entry)
}

func outcome(s State) string {
	switch s {
	case Dispatched:
		return metrics.OutcomeDispatched
	case ClientError:
		return metrics.OutcomeClientError
	default:
		return metrics.OutcomeAborted
	}
}
