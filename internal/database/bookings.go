package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"tourbook/internal/models"
	"tourbook/internal/pricing"

	"github.com/google/uuid"
)

// newRefID derives the human-facing reference from the booking date and id.
func newRefID(date string, id string) string {
	compact := strings.ReplaceAll(date, "-", "")
	short := strings.ToUpper(strings.ReplaceAll(id, "-", ""))
	if len(short) > 6 {
		short = short[:6]
	}
	return fmt.Sprintf("TB-%s-%s", compact, short)
}

// CreateBooking stores sub with total = price × quantity and status confirmed.
func (db *DB) CreateBooking(ctx context.Context, sub *models.BookingSubmission) (*models.BookingRecord, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var name, title, location string
	var price int64
	err = tx.QueryRowContext(ctx, `SELECT name, title, location, price FROM experiences WHERE id = ?`,
		sub.ExperienceID.String()).Scan(&name, &title, &location, &price)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUnknownExperience
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load experience in tx: %w", err)
	}

	quote := pricing.Compute(price, sub.Quantity)
	if quote.Overflow {
		return nil, ErrTotalOverflow
	}

	id := uuid.NewString()
	rec := &models.BookingRecord{
		ID:              models.ID(id),
		RefID:           newRefID(sub.BookingDate, id),
		Name:            sub.Name,
		Email:           sub.Email,
		Phone:           sub.Phone,
		SpecialRequests: sub.SpecialRequests,
		BookingDate:     sub.BookingDate,
		Quantity:        sub.Quantity,
		Total:           quote.Total,
		Status:          models.StatusConfirmed,
		Experience: &models.ExperienceSummary{
			Name:     models.Experience{Name: name, Title: title}.DisplayName(),
			Location: location,
			Price:    &price,
		},
	}

	query := `INSERT INTO bookings (
                id, ref_id, experience_id, name, email, phone, special_requests,
                booking_date, quantity, promo_code, total, status, created_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, query,
		id,
		rec.RefID,
		sub.ExperienceID.String(),
		rec.Name,
		rec.Email,
		rec.Phone,
		rec.SpecialRequests,
		rec.BookingDate,
		rec.Quantity,
		sub.PromoCode,
		rec.Total,
		rec.Status,
		db.now(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert booking in tx: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit booking: %w", err)
	}
	return rec, nil
}

func (db *DB) GetBooking(ctx context.Context, id models.ID) (*models.BookingRecord, error) {
	query := `SELECT b.id, b.ref_id, b.name, b.email, b.phone, b.special_requests, b.booking_date,
                b.quantity, b.total, b.status, e.name, e.title, e.location, e.price
              FROM bookings b
              JOIN experiences e ON e.id = b.experience_id
              WHERE b.id = ?`

	var rec models.BookingRecord
	var bookingID, expName, expTitle, location string
	var price int64
	err := db.QueryRowContext(ctx, query, id.String()).Scan(
		&bookingID, &rec.RefID, &rec.Name, &rec.Email, &rec.Phone, &rec.SpecialRequests, &rec.BookingDate,
		&rec.Quantity, &rec.Total, &rec.Status, &expName, &expTitle, &location, &price,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking %s: %w", id, err)
	}

	rec.ID = models.ID(bookingID)
	rec.Experience = &models.ExperienceSummary{
		Name:     models.Experience{Name: expName, Title: expTitle}.DisplayName(),
		Location: location,
		Price:    &price,
	}
	return &rec, nil
}
