// Package main provides the polycalc API server: an HTTP/JSON service that
// computes battle outcomes and searches for optimal attack orders.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/Artemis21/polycalc-api/internal/config"
	"github.com/Artemis21/polycalc-api/internal/game/unit"
	"github.com/Artemis21/polycalc-api/internal/httpapi"
	"github.com/Artemis21/polycalc-api/internal/observability"
	"github.com/Artemis21/polycalc-api/internal/server"
	"github.com/Artemis21/polycalc-api/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	unitsDir := flag.String("units", "", "override the unit YAML directory (file source only)")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *unitsDir != "" {
		cfg.Catalog.Dir = *unitsDir
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting polycalc API server",
		zap.String("http_addr", cfg.HTTP.Addr()),
		zap.String("catalog_source", cfg.Catalog.Source),
	)

	lifecycle := server.NewLifecycle(logger, cfg.HTTP.ShutdownTimeout)

	// Load the unit catalog. Failures here are fatal: the service never
	// runs with a partial catalog.
	catalogStart := time.Now()
	var templates []*unit.Template
	switch cfg.Catalog.Source {
	case config.CatalogSourceFile:
		templates, err = unit.LoadTemplates(cfg.Catalog.Dir)
		if err != nil {
			logger.Fatal("loading unit templates",
				zap.String("dir", cfg.Catalog.Dir),
				zap.Error(err),
			)
		}

	case config.CatalogSourcePostgres:
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Int("port", cfg.Database.Port),
			zap.String("database", cfg.Database.Name),
			zap.Duration("elapsed", time.Since(dbStart)),
		)

		repo := postgres.NewUnitTypeRepository(pool.DB())
		templates, err = repo.ListAll(ctx)
		if err != nil {
			logger.Fatal("loading unit types from database", zap.Error(err))
		}

		lifecycle.Add("postgres", postgres.NewHealthService(pool, logger, 30*time.Second, 5*time.Second))
	}

	catalog, err := unit.NewCatalog(templates)
	if err != nil {
		logger.Fatal("building unit catalog", zap.Error(err))
	}
	logger.Info("unit catalog loaded",
		zap.Int("units", catalog.Len()),
		zap.Duration("elapsed", time.Since(catalogStart)),
	)

	apiServer := httpapi.NewServer(cfg.HTTP, cfg.Battle, catalog, logger)
	lifecycle.Add("http", apiServer)

	logger.Info("API server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("http_addr", cfg.HTTP.Addr()),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
