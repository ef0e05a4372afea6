// Package main runs the companion bot: it loads game data, serves the chat
// front end over Telnet, keeps the catalog current and exposes gRPC health.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/artifactsbot/internal/artifacts"
	"github.com/cory-johannsen/artifactsbot/internal/command"
	"github.com/cory-johannsen/artifactsbot/internal/companion"
	"github.com/cory-johannsen/artifactsbot/internal/config"
	"github.com/cory-johannsen/artifactsbot/internal/frontend/handlers"
	"github.com/cory-johannsen/artifactsbot/internal/frontend/telnet"
	"github.com/cory-johannsen/artifactsbot/internal/game/catalog"
	"github.com/cory-johannsen/artifactsbot/internal/game/combat"
	"github.com/cory-johannsen/artifactsbot/internal/game/dice"
	"github.com/cory-johannsen/artifactsbot/internal/observability"
	"github.com/cory-johannsen/artifactsbot/internal/server"
	"github.com/cory-johannsen/artifactsbot/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging, "botserver")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	lifecycle := server.NewLifecycle(logger)
	health := server.NewHealthService(cfg.Admin.Addr(), logger.Named("health"))

	api := artifacts.NewClient(cfg.Artifacts, logger.Named("artifacts"))
	sim := combat.NewSimulator(dice.NewCryptoSource(),
		combat.WithWorkers(cfg.Simulator.Workers),
		combat.WithLogger(logger.Named("simulator")),
	)

	opts := []companion.Option{
		companion.WithUpdateInterval(cfg.Artifacts.UpdateCheckInterval),
		companion.WithCatalogHook(func(reg *catalog.Registry) {
			health.SetServing(true)
		}),
	}

	if cfg.Database.Enabled {
		dbStart := time.Now()
		if err := postgres.MigrateUp(cfg.Database); err != nil {
			logger.Fatal("migrating database", zap.Error(err))
		}
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		opts = append(opts, companion.WithSnapshotStore(postgres.NewCatalogRepository(pool.DB())))

		lifecycle.Add("postgres", &server.FuncService{
			StartFn: func(ctx context.Context) error {
				ticker := time.NewTicker(30 * time.Second)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return nil
					case <-ticker.C:
						if err := pool.Health(ctx, 5*time.Second); err != nil {
							logger.Warn("database health check failed", zap.Error(err))
						}
					}
				}
			},
			StopFn: pool.Close,
		})
	}

	svc := companion.NewService(api, sim, cfg.Simulator, logger.Named("companion"), opts...)

	loadStart := time.Now()
	if err := svc.Load(ctx); err != nil {
		logger.Fatal("loading game data", zap.Error(err))
	}
	reg := svc.Registry()
	logger.Info("game data loaded",
		zap.String("version", reg.Version()),
		zap.Int("items", reg.ItemCount()),
		zap.Int("monsters", reg.MonsterCount()),
		zap.Duration("elapsed", time.Since(loadStart)),
	)

	chat := handlers.NewChatHandler(svc, command.DefaultRegistry(), logger.Named("chat"),
		handlers.WithAdminCommands(cfg.Admin.ChatCommands),
		handlers.WithUptime(lifecycle.Uptime),
	)
	acceptor := telnet.NewAcceptor(cfg.Telnet, chat, logger.Named("telnet"))

	lifecycle.Add("health", health)
	lifecycle.Add("telnet", acceptor)
	lifecycle.Add("catalog-updates", &server.FuncService{StartFn: svc.RunUpdateLoop})

	logger.Info("bot initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("telnet_addr", cfg.Telnet.Addr()),
		zap.String("health_addr", cfg.Admin.Addr()),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
