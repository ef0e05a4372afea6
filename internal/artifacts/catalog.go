package artifacts

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/artifactsbot/internal/game/catalog"
)

// FetchCatalog downloads the server status, all items, and all monsters
// concurrently and assembles them into a Registry tagged with the server version.
//
// Postcondition: on success the registry version equals Status().Version.
func (c *Client) FetchCatalog(ctx context.Context) (*catalog.Registry, error) {
	start := time.Now()
	var (
		status   Status
		items    []catalog.Item
		monsters []catalog.Monster
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		status, err = c.Status(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = c.Items(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		monsters, err = c.Monsters(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	reg, err := catalog.NewRegistry(status.Version, items, monsters)
	if err != nil {
		return nil, fmt.Errorf("building catalog: %w", err)
	}
	c.logger.Info("catalog fetched",
		zap.String("version", status.Version),
		zap.Int("items", reg.ItemCount()),
		zap.Int("monsters", reg.MonsterCount()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return reg, nil
}
