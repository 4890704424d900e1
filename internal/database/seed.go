package database

import (
	"context"
	"fmt"
	"os"

	"tourbook/internal/models"

	"gopkg.in/yaml.v2"
)

type seedFile struct {
	Experiences []models.Experience `yaml:"experiences"`
}

// LoadExperiencesFile reads the experience catalog seed from a YAML file.
func LoadExperiencesFile(path string) ([]models.Experience, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read experiences: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse experiences: %w", err)
	}
	if len(seed.Experiences) == 0 {
		return nil, fmt.Errorf("no experiences in %s", path)
	}
	return seed.Experiences, nil
}

// SeedFromFile upserts every experience listed in path.
func (db *DB) SeedFromFile(ctx context.Context, path string) (int, error) {
	exps, err := LoadExperiencesFile(path)
	if err != nil {
		return 0, err
	}
	if err := db.SyncExperiences(ctx, exps); err != nil {
		return 0, err
	}
	return len(exps), nil
}
