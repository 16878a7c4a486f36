package main

import (
	"flag"
	"log/slog"
	"os"

	"movieapi/pkg/config"
	"movieapi/postgres"

	_ "github.com/lib/pq"
	migrate "github.com/rubenv/sql-migrate"
)

func main() {
	dir := flag.String("dir", "migrations", "Directory holding the movies and ratings migration folders")
	down := flag.Bool("down", false, "Roll back the last migration of each database")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("cannot load config", "error", err)
		os.Exit(1)
	}

	direction, steps := migrate.Up, 0
	if *down {
		direction, steps = migrate.Down, 1
	}

	targets := []struct {
		name string
		db   config.Database
	}{
		{name: "movies", db: cfg.MoviesDatabase()},
		{name: "ratings", db: cfg.RatingsDatabase()},
	}
	for _, target := range targets {
		total, err := run(target.db, *dir+"/"+target.name, direction, steps)
		if err != nil {
			logger.Error("cannot execute migration", "database", target.name, "error", err)
			os.Exit(1)
		}
		logger.Info("applied migrations", "database", target.name, "total", total)
	}
}

func run(db config.Database, dir string, direction migrate.MigrationDirection, steps int) (int, error) {
	conn, err := postgres.NewConnection(postgres.OptionsFrom(db))
	if err != nil {
		return 0, err
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return 0, err
	}
	defer sqlDB.Close()

	migrations := &migrate.FileMigrationSource{
		Dir: dir,
	}
	return migrate.ExecMax(sqlDB, "postgres", migrations, direction, steps)
}
