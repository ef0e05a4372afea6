// Package server runs the bot's long-lived services and shuts them down in
// reverse order on signal, context cancellation, or the first service failure.
package server

import (
	"context"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Service is a long-running component.
type Service interface {
	// Start runs the service until ctx is cancelled, Stop is called, or it fails.
	Start(ctx context.Context) error
	// Stop asks the service to return from Start.
	Stop()
}

// FuncService wraps plain functions as a Service. StopFn may be nil when
// StartFn already returns on context cancellation.
type FuncService struct {
	StartFn func(ctx context.Context) error
	StopFn  func()
}

func (f *FuncService) Start(ctx context.Context) error { return f.StartFn(ctx) }

func (f *FuncService) Stop() {
	if f.StopFn != nil {
		f.StopFn()
	}
}

const defaultStopWarning = 5 * time.Second

// Lifecycle owns an ordered set of services.
type Lifecycle struct {
	logger      *zap.Logger
	startedAt   time.Time
	stopWarning time.Duration

	mu    sync.Mutex
	units []unit
}

type unit struct {
	name string
	svc  Service
}

// NewLifecycle creates an empty Lifecycle. Uptime is measured from here.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{
		logger:      logger,
		startedAt:   time.Now(),
		stopWarning: defaultStopWarning,
	}
}

// Add appends svc under name. Order of Add is start order; stop runs backwards.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	l.units = append(l.units, unit{name: name, svc: svc})
	l.mu.Unlock()
}

func (l *Lifecycle) StartedAt() time.Time { return l.startedAt }

func (l *Lifecycle) Uptime() time.Duration { return time.Since(l.startedAt) }

// Run starts every service and blocks until SIGINT or SIGTERM, cancellation
// of ctx, or the first service error.
//
// Postcondition: every service has been stopped and has returned from Start.
// The result is the first service error, or nil.
func (l *Lifecycle) Run(ctx context.Context) error {
	ctx, release := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer release()

	l.mu.Lock()
	units := append([]unit(nil), l.units...)
	l.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, u := range units {
		g.Go(func() error {
			if err := u.svc.Start(gctx); err != nil {
				return fmt.Errorf("service %s: %w", u.name, err)
			}
			l.logger.Debug("service returned", zap.String("service", u.name))
			return nil
		})
	}
	l.logger.Info("services started", zap.Int("count", len(units)))

	<-gctx.Done()
	l.logger.Info("shutting down", zap.NamedError("cause", context.Cause(gctx)))

	for i := len(units) - 1; i >= 0; i-- {
		l.stop(units[i])
	}
	err := g.Wait()
	l.logger.Info("shutdown complete", zap.Duration("uptime", l.Uptime()))
	return err
}

// stop calls Stop on u, warning when it takes longer than stopWarning.
func (l *Lifecycle) stop(u unit) {
	done := make(chan struct{})
	begin := time.Now()
	go func() {
		defer close(done)
		u.svc.Stop()
	}()

	timer := time.NewTimer(l.stopWarning)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		l.logger.Warn("service slow to stop", zap.String("service", u.name))
		<-done
	}
	l.logger.Info("service stopped",
		zap.String("service", u.name),
		zap.Duration("elapsed", time.Since(begin)),
	)
}
