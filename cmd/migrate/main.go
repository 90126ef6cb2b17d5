package main

import (
	"errors"
	"flag"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/Rahmadjon0038/avto-test-backend/internal/config"
	"github.com/Rahmadjon0038/avto-test-backend/internal/logger"
)

func main() {
	var (
		dir  = flag.String("dir", "migrations", "migrations directory")
		down = flag.Bool("down", false, "roll back one migration instead of applying all")
	)
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	m, err := migrate.New("file://"+*dir, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("migrate init failed")
	}
	defer m.Close()

	if *down {
		err = m.Steps(-1)
	} else {
		err = m.Up()
	}

	switch {
	case errors.Is(err, migrate.ErrNoChange):
		log.Info().Msg("nothing to migrate")
	case err != nil:
		log.Error().Err(err).Msg("migration failed")
		os.Exit(1)
	default:
		version, dirty, _ := m.Version()
		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("migrations applied")
	}
}
