package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"tourbook/internal/database"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		seedPath = flag.String("experiences", "configs/experiences.yaml", "path to experiences.yaml")
		dbPath   = flag.String("db", "./data/tourbook.db", "path to sqlite db")
	)
	flag.Parse()

	db, err := database.NewDB(*dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := db.SeedFromFile(ctx, *seedPath)
	if err != nil {
		return err
	}

	logger.Info().Int("experiences", n).Str("db", *dbPath).Msg("seed complete")
	return nil
}
