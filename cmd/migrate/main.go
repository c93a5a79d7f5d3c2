// Command migrate applies or rolls back the embedded schema migrations.
//
//	migrate -direction up            apply every pending migration
//	migrate -direction down -steps 1 roll back the latest migration
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/fyyur/internal/config"
	"github.com/iliyamo/fyyur/internal/database"
	"github.com/iliyamo/fyyur/internal/logging"
)

func main() {
	direction := flag.String("direction", "up", "migration direction: up or down")
	steps := flag.Int("steps", 0, "number of migrations to apply; 0 means all")
	flag.Parse()

	cfg := config.LoadDB()
	logger, closer, err := logging.New(logging.Options{Env: os.Getenv("APP_ENV"), Level: os.Getenv("LOG_LEVEL")})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	if *steps < 0 {
		logger.Fatal("-steps must not be negative")
	}
	dsn := database.DSN(cfg.User, cfg.Pass, cfg.Host, cfg.Port, cfg.Name)
	if err := database.Migrate(dsn, database.Direction(*direction), *steps); err != nil {
		logger.WithError(err).WithFields(logrus.Fields{"direction": *direction, "steps": *steps}).Fatal("migrate")
	}
	logger.WithField("direction", *direction).Info("migrations done")
}
