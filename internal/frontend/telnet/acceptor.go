package telnet

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/artifactsbot/internal/config"
)

// SessionHandler runs the conversation with one connected client.
type SessionHandler interface {
	HandleSession(ctx context.Context, conn *Conn) error
}

type sessionKey struct{}

// SessionID returns the identifier the acceptor assigned to the session
// running under ctx, or "" outside a session.
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

// WithSessionID returns a context carrying id as the session identifier.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey{}, id)
}

// Acceptor accepts chat connections and runs each on its own goroutine.
// It satisfies server.Service.
type Acceptor struct {
	cfg     config.TelnetConfig
	handler SessionHandler
	logger  *zap.Logger

	mu       sync.Mutex
	listener net.Listener
	cancel   context.CancelFunc
	sessions map[string]*Conn
	wg       sync.WaitGroup
	stopped  bool
}

// NewAcceptor creates an acceptor bound to cfg.Addr() once started.
//
// Precondition: handler and logger must be non-nil.
func NewAcceptor(cfg config.TelnetConfig, handler SessionHandler, logger *zap.Logger) *Acceptor {
	return &Acceptor{
		cfg:      cfg,
		handler:  handler,
		logger:   logger,
		sessions: make(map[string]*Conn),
	}
}

// Start listens and serves until ctx is cancelled or Stop is called.
//
// Precondition: Start must be called at most once.
// Postcondition: Returns nil on a requested shutdown; all sessions have ended.
func (a *Acceptor) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", a.cfg.Addr(), err)
	}

	ctx, cancel := context.WithCancel(ctx)
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		cancel()
		_ = ln.Close()
		return nil
	}
	a.listener = ln
	a.cancel = cancel
	a.mu.Unlock()

	a.logger.Info("chat listener started", zap.String("addr", ln.Addr().String()))

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	defer a.drain()
	for {
		raw, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			a.logger.Warn("accept failed", zap.Error(err))
			continue
		}
		a.wg.Add(1)
		go a.serve(ctx, raw)
	}
}

// serve runs a single session to completion.
func (a *Acceptor) serve(ctx context.Context, raw net.Conn) {
	defer a.wg.Done()

	id := uuid.NewString()
	logger := a.logger.With(zap.String("session", id), zap.String("remote_addr", raw.RemoteAddr().String()))
	conn := NewConn(raw, a.cfg.ReadTimeout, a.cfg.WriteTimeout)

	a.track(id, conn)
	defer a.untrack(id)
	defer conn.Close()

	start := time.Now()
	logger.Info("session opened")
	if err := conn.Negotiate(); err != nil {
		logger.Warn("telnet negotiation failed", zap.Error(err))
		return
	}

	err := a.handler.HandleSession(WithSessionID(ctx, id), conn)
	fields := []zap.Field{zap.Duration("duration", time.Since(start))}
	if err != nil && ctx.Err() == nil {
		logger.Debug("session ended", append(fields, zap.Error(err))...)
		return
	}
	logger.Info("session closed", fields...)
}

func (a *Acceptor) track(id string, conn *Conn) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sessions[id] = conn
}

func (a *Acceptor) untrack(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.sessions, id)
}

// drain closes every open session and waits for the handlers to return.
func (a *Acceptor) drain() {
	a.mu.Lock()
	for _, c := range a.sessions {
		_ = c.Close()
	}
	a.mu.Unlock()
	a.wg.Wait()
	a.logger.Info("chat listener stopped")
}

// Stop makes Start return. Safe to call more than once, and before Start.
func (a *Acceptor) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopped = true
	if a.cancel != nil {
		a.cancel()
	}
}

// Addr returns the bound listen address, or "" before Start has bound.
func (a *Acceptor) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

// Sessions returns the number of open sessions.
func (a *Acceptor) Sessions() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.sessions)
}
