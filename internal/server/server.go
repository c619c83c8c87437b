package server

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

var ErrServerClosed = errors.New("server closed")

const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second
)

type Server struct {
	cfg      Config
	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	closed   atomic.Bool
}

func New(cfg Config) *Server {
	return &Server{cfg: cfg.fill(), conns: make(map[net.Conn]struct{})}
}

// ListenAndServe listens on cfg.Addr and serves until ctx is done.
func ListenAndServe(ctx context.Context, cfg Config) error {
	s := New(cfg)

	l, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}

	s.cfg.Logger.Printf("HTTP server listening on http://%s", l.Addr())
	return s.Serve(ctx, l)
}

// Serve accepts connections on l until the server is closed or ctx is done,
// then waits for in-flight connections and returns nil. Accept errors are
// retried with backoff.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	s.mu.Lock()
	if s.closed.Load() {
		s.mu.Unlock()
		_ = l.Close()
		return ErrServerClosed
	}
	s.listener = l
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { _ = s.Close() })
	defer stop()

	var g errgroup.Group
	g.SetLimit(s.cfg.Workers)

	var delay time.Duration
	for {
		c, err := l.Accept()
		if err != nil {
			if s.closed.Load() || errors.Is(err, net.ErrClosed) {
				return g.Wait()
			}

			// transient accept error; keep going
			delay = nextDelay(delay)
			s.cfg.Logger.Printf("accept: %v; retrying in %v", err, delay)
			time.Sleep(delay)
			continue
		}
		delay = 0

		if s.cfg.Workers == 1 {
			s.serveConn(c)
			continue
		}

		g.Go(func() error {
			s.serveConn(c)
			return nil
		})
	}
}

func (s *Server) serveConn(c net.Conn) {
	s.track(c)
	defer s.untrack(c)
	ServeConn(c, s.cfg)
}

// track registers c so that Close can interrupt it. A conn accepted after
// Close is interrupted right away.
func (s *Server) track(c net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		interrupt(c)
		return
	}
	s.conns[c] = struct{}{}
}

func (s *Server) untrack(c net.Conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
}

// interrupt fails any pending read on c without closing it, so ServeConn
// still owns the close and logs the connection as aborted.
func interrupt(c net.Conn) {
	if err := c.SetReadDeadline(time.Now()); err != nil {
		_ = c.Close()
	}
}

// Close stops the accept loop and interrupts connections still waiting for
// their header block, so Serve returns without waiting on idle peers. It is
// safe to call more than once.
func (s *Server) Close() error {
	if s.closed.Swap(true) {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.conns {
		interrupt(c)
	}
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

// Addr returns the listener address, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func nextDelay(d time.Duration) time.Duration {
	if d == 0 {
		return minAcceptDelay
	}

	return min(2*d, maxAcceptDelay)
}
