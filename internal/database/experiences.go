package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tourbook/internal/models"
)

const experienceColumns = `id, name, title, location, category, description, long_description,
    image, price, duration, group_size, rating, reviews`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExperience(row rowScanner) (models.Experience, error) {
	var e models.Experience
	var id string
	err := row.Scan(&id, &e.Name, &e.Title, &e.Location, &e.Category, &e.Description,
		&e.LongDescription, &e.Image, &e.Price, &e.Duration, &e.GroupSize, &e.Rating, &e.Reviews)
	e.ID = models.ID(id)
	return e, err
}

func (db *DB) ListExperiences(ctx context.Context) ([]models.Experience, error) {
	query := `SELECT ` + experienceColumns + ` FROM experiences ORDER BY rowid`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list experiences: %w", err)
	}
	defer rows.Close()

	out := []models.Experience{}
	for rows.Next() {
		e, err := scanExperience(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan experience: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (db *DB) GetExperience(ctx context.Context, id models.ID) (*models.Experience, error) {
	query := `SELECT ` + experienceColumns + ` FROM experiences WHERE id = ?`
	e, err := scanExperience(db.QueryRowContext(ctx, query, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get experience %s: %w", id, err)
	}
	return &e, nil
}

const upsertExperienceQuery = `INSERT INTO experiences (` + experienceColumns + `, updated_at)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    ON CONFLICT(id) DO UPDATE SET
      name = excluded.name, title = excluded.title, location = excluded.location,
      category = excluded.category, description = excluded.description,
      long_description = excluded.long_description, image = excluded.image,
      price = excluded.price, duration = excluded.duration, group_size = excluded.group_size,
      rating = excluded.rating, reviews = excluded.reviews, updated_at = excluded.updated_at`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (db *DB) upsertExperience(ctx context.Context, ex execer, exp *models.Experience) error {
	if exp.ID.IsZero() {
		return errors.New("experience id is required")
	}
	if err := exp.Validate(); err != nil {
		return fmt.Errorf("experience %s: %w", exp.ID, err)
	}
	_, err := ex.ExecContext(ctx, upsertExperienceQuery,
		exp.ID.String(), exp.Name, exp.Title, exp.Location, exp.Category, exp.Description,
		exp.LongDescription, exp.Image, exp.Price, exp.Duration, exp.GroupSize, exp.Rating, exp.Reviews,
		db.now(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert experience %s: %w", exp.ID, err)
	}
	return nil
}

// UpsertExperience inserts exp or replaces the stored row with the same id.
func (db *DB) UpsertExperience(ctx context.Context, exp *models.Experience) error {
	return db.upsertExperience(ctx, db, exp)
}

// SyncExperiences upserts every experience in one transaction.
func (db *DB) SyncExperiences(ctx context.Context, exps []models.Experience) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i := range exps {
		if err := db.upsertExperience(ctx, tx, &exps[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit experiences: %w", err)
	}
	db.logger.Info().Int("count", len(exps)).Msg("Experiences synced")
	return nil
}
