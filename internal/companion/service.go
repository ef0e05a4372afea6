// Package companion is the bot's application layer: it owns the current game
// catalog, keeps it in sync with the game server, and answers lookups and
// fight simulations on behalf of the chat front end.
package companion

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/artifactsbot/internal/artifacts"
	"github.com/cory-johannsen/artifactsbot/internal/config"
	"github.com/cory-johannsen/artifactsbot/internal/game/catalog"
	"github.com/cory-johannsen/artifactsbot/internal/game/combat"
)

// GameAPI is the subset of the game API client the service needs.
type GameAPI interface {
	Status(ctx context.Context) (artifacts.Status, error)
	FetchCatalog(ctx context.Context) (*catalog.Registry, error)
	Character(ctx context.Context, name string) (catalog.Character, error)
}

// SnapshotStore persists the last fetched catalog.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, reg *catalog.Registry) error
	LoadSnapshot(ctx context.Context) (*catalog.Registry, error)
}

// Option configures a Service.
type Option func(*Service)

// WithSnapshotStore enables saving and falling back to catalog snapshots.
func WithSnapshotStore(store SnapshotStore) Option {
	return func(s *Service) { s.store = store }
}

// WithRegistry installs an initial catalog, e.g. one loaded from YAML.
func WithRegistry(reg *catalog.Registry) Option {
	return func(s *Service) {
		s.registry = reg
		s.loadedAt = time.Now()
	}
}

// WithUpdateInterval sets how often RunUpdateLoop polls the server version.
func WithUpdateInterval(d time.Duration) Option {
	return func(s *Service) { s.updateInterval = d }
}

// WithCatalogHook registers fn to be called after every catalog swap.
func WithCatalogHook(fn func(*catalog.Registry)) Option {
	return func(s *Service) { s.hooks = append(s.hooks, fn) }
}

// Service answers chat commands. It is safe for concurrent use.
type Service struct {
	api            GameAPI
	store          SnapshotStore
	sim            *combat.Simulator
	cfg            config.SimulatorConfig
	updateInterval time.Duration
	hooks          []func(*catalog.Registry)
	logger         *zap.Logger

	mu       sync.RWMutex
	registry *catalog.Registry
	loadedAt time.Time
}

// NewService creates a Service.
//
// Precondition: api, sim and logger must be non-nil; cfg must be validated.
func NewService(api GameAPI, sim *combat.Simulator, cfg config.SimulatorConfig, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		api:            api,
		sim:            sim,
		cfg:            cfg,
		updateInterval: time.Minute,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Registry returns the current catalog, or nil before the first load.
func (s *Service) Registry() *catalog.Registry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry
}

// LoadedAt returns when the current catalog was installed.
func (s *Service) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

func (s *Service) install(reg *catalog.Registry) {
	s.mu.Lock()
	s.registry = reg
	s.loadedAt = time.Now()
	s.mu.Unlock()
	for _, fn := range s.hooks {
		fn(reg)
	}
}

// Load fetches the catalog from the game API. If that fails and a snapshot
// store is configured, the last saved snapshot is used instead.
//
// Postcondition: on nil error Registry() is non-nil.
func (s *Service) Load(ctx context.Context) error {
	reg, err := s.api.FetchCatalog(ctx)
	if err == nil {
		s.install(reg)
		s.saveSnapshot(ctx, reg)
		return nil
	}
	if s.store == nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	s.logger.Warn("catalog fetch failed, falling back to snapshot", zap.Error(err))
	snap, serr := s.store.LoadSnapshot(ctx)
	if serr != nil {
		return fmt.Errorf("loading catalog: %w", errors.Join(err, serr))
	}
	s.install(snap)
	s.logger.Info("catalog loaded from snapshot",
		zap.String("version", snap.Version()),
		zap.Int("items", snap.ItemCount()),
		zap.Int("monsters", snap.MonsterCount()),
	)
	return nil
}

// Reload replaces the catalog with a fresh copy from the game API.
func (s *Service) Reload(ctx context.Context) error {
	reg, err := s.api.FetchCatalog(ctx)
	if err != nil {
		return fmt.Errorf("reloading catalog: %w", err)
	}
	s.install(reg)
	s.saveSnapshot(ctx, reg)
	s.logger.Info("catalog reloaded", zap.String("version", reg.Version()))
	return nil
}

func (s *Service) saveSnapshot(ctx context.Context, reg *catalog.Registry) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveSnapshot(ctx, reg); err != nil {
		s.logger.Warn("saving catalog snapshot failed", zap.Error(err))
	}
}

// CheckForUpdate reloads the catalog when the server reports a version other
// than the one currently loaded. It reports whether a reload happened.
func (s *Service) CheckForUpdate(ctx context.Context) (bool, error) {
	st, err := s.api.Status(ctx)
	if err != nil {
		return false, fmt.Errorf("checking server version: %w", err)
	}
	current := ""
	if reg := s.Registry(); reg != nil {
		current = reg.Version()
	}
	if st.Version == current {
		return false, nil
	}
	s.logger.Info("detected server version update",
		zap.String("from", current),
		zap.String("to", st.Version),
	)
	if err := s.Reload(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// RunUpdateLoop polls CheckForUpdate until ctx is cancelled. Failures are
// logged and retried on the next tick.
func (s *Service) RunUpdateLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.updateInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.CheckForUpdate(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn("update check failed", zap.Error(err))
			}
		}
	}
}

func (s *Service) ready() (*catalog.Registry, error) {
	reg := s.Registry()
	if reg == nil {
		return nil, respond("Game data is still loading. Try again shortly.")
	}
	return reg, nil
}

// Item looks up an item by code or display name.
//
// Postcondition: returns a *ControlError with ReasonInvalidResource when no item matches.
func (s *Service) Item(name string) (catalog.Item, error) {
	reg, err := s.ready()
	if err != nil {
		return catalog.Item{}, err
	}
	it, ok := reg.Item(catalog.ToCodeFormat(name))
	if !ok {
		return catalog.Item{}, notFound("Item `%s` does not exist.", name)
	}
	return it, nil
}

// Monster looks up a monster by code or display name.
//
// Postcondition: returns a *ControlError with ReasonInvalidResource when no monster matches.
func (s *Service) Monster(name string) (catalog.Monster, error) {
	reg, err := s.ready()
	if err != nil {
		return catalog.Monster{}, err
	}
	m, ok := reg.Monster(catalog.ToCodeFormat(name))
	if !ok {
		return catalog.Monster{}, notFound("Monster `%s` does not exist.", name)
	}
	return m, nil
}

// Character fetches a character from the game API by its case-sensitive name.
func (s *Service) Character(ctx context.Context, name string) (catalog.Character, error) {
	if name == "" {
		return catalog.Character{}, respond("Invalid `name`.")
	}
	ch, err := s.api.Character(ctx, name)
	switch {
	case err == nil:
		return ch, nil
	case errors.Is(err, artifacts.ErrCharacterNotFound):
		return catalog.Character{}, respond("No character with that name exists. (This lookup is case-sensitive.)")
	case errors.Is(err, artifacts.ErrOutOfRetries):
		return catalog.Character{}, &ControlError{Reason: ReasonOutOfRetries, Message: "Max retries exceeded.", Err: err}
	default:
		return catalog.Character{}, err
	}
}

// CharacterEquipment returns the codes of the items a character has equipped.
func (s *Service) CharacterEquipment(ctx context.Context, name string) ([]string, error) {
	ch, err := s.Character(ctx, name)
	if err != nil {
		return nil, err
	}
	return ch.EquippedItemCodes(), nil
}
