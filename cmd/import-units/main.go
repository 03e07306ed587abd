// Package main provides the unit importer: it loads unit YAML files and
// upserts them into the unit_types table, for deployments that serve the
// catalog from PostgreSQL.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/Artemis21/polycalc-api/internal/config"
	"github.com/Artemis21/polycalc-api/internal/game/unit"
	"github.com/Artemis21/polycalc-api/internal/observability"
	"github.com/Artemis21/polycalc-api/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	unitsDir := flag.String("units", "content/units", "path to unit YAML files directory")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	templates, err := unit.LoadTemplates(*unitsDir)
	if err != nil {
		logger.Fatal("loading unit templates",
			zap.String("dir", *unitsDir),
			zap.Error(err),
		)
	}

	// Building a catalog validates ids and aliases across the whole set
	// before anything is written.
	if _, err := unit.NewCatalog(templates); err != nil {
		logger.Fatal("validating unit templates", zap.Error(err))
	}
	logger.Info("unit templates loaded",
		zap.Int("count", len(templates)),
		zap.String("dir", *unitsDir),
	)

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	defer pool.Close()

	repo := postgres.NewUnitTypeRepository(pool.DB())
	for _, tmpl := range templates {
		if err := repo.Upsert(ctx, tmpl); err != nil {
			logger.Fatal("importing unit type",
				zap.String("id", tmpl.ID),
				zap.Error(err),
			)
		}
	}

	logger.Info("import complete",
		zap.Int("units", len(templates)),
		zap.Duration("elapsed", time.Since(start)),
	)
}
