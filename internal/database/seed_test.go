package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"tourbook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "experiences.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSeedFromFile(t *testing.T) {
	db := setupTestDB(t)
	path := writeSeed(t, `experiences:
  - id: "42"
    name: Sunset Kayak
    location: Goa
    price: 1200
    long_description: "Paddle **at dusk**."
    group_size: "Up to 8"
  - id: "7"
    title: Desert Safari
    price: 3500
`)

	n, err := db.SeedFromFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	exp, err := db.GetExperience(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "Paddle **at dusk**.", exp.LongDescription)
	assert.Equal(t, "Up to 8", exp.GroupSize)

	// seeding twice updates in place
	n, err = db.SeedFromFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	list, err := db.ListExperiences(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestLoadExperiencesFile_Errors(t *testing.T) {
	_, err := LoadExperiencesFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadExperiencesFile(writeSeed(t, "experiences: []\n"))
	assert.Error(t, err)

	_, err = LoadExperiencesFile(writeSeed(t, "experiences: [unterminated"))
	assert.Error(t, err)
}

func TestSeedFromFile_RejectsNegativePrice(t *testing.T) {
	db := setupTestDB(t)
	path := writeSeed(t, "experiences:\n  - id: \"1\"\n    name: Broken\n    price: -10\n")

	_, err := db.SeedFromFile(context.Background(), path)
	assert.ErrorIs(t, err, models.ErrNegativePrice)
}
