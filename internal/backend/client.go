// Package backend is the HTTP client for the booking API the storefront depends on.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tourbook/internal/metrics"
	"tourbook/internal/models"

	"github.com/rs/zerolog"
)

var (
	// ErrNotFound is returned for a 404 on a single-entity endpoint, or a 2xx
	// whose body is null or carries no id.
	ErrNotFound = errors.New("backend: not found")
	// ErrMissingBookingID means booking creation succeeded but no identifier could be read.
	ErrMissingBookingID = errors.New("backend: create booking response carries no id")
)

// StatusError is a non-2xx response other than 404.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend: %s: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("backend: %s: status %d: %s", e.Op, e.StatusCode, e.Body)
}

// Client calls the four booking endpoints. It keeps no cache.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zerolog.Logger
}

// NewClient constructs a client for baseURL, which is resolved once by the caller.
func NewClient(baseURL string, timeout time.Duration, logger *zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) ListExperiences(ctx context.Context) ([]models.Experience, error) {
	var out []models.Experience
	if err := c.doGet(ctx, "list_experiences", "/api/experiences", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetExperience(ctx context.Context, id models.ID) (*models.Experience, error) {
	if id.IsZero() {
		return nil, ErrNotFound
	}
	var out *models.Experience
	if err := c.doGet(ctx, "get_experience", "/api/experiences/"+url.PathEscape(id.String()), &out); err != nil {
		return nil, err
	}
	if out == nil || out.ID.IsZero() {
		return nil, ErrNotFound
	}
	return out, nil
}

func (c *Client) GetBooking(ctx context.Context, id models.ID) (*models.BookingRecord, error) {
	if id.IsZero() {
		return nil, ErrNotFound
	}
	var out *models.BookingRecord
	if err := c.doGet(ctx, "get_booking", "/api/bookings/"+url.PathEscape(id.String()), &out); err != nil {
		return nil, err
	}
	if out == nil || out.ID.IsZero() {
		return nil, ErrNotFound
	}
	return out, nil
}

// createEnvelope covers every shape the booking API has been seen to answer with.
type createEnvelope struct {
	ID        models.ID `json:"id"`
	BookingID models.ID `json:"bookingId"`
	Data      *struct {
		ID        models.ID `json:"id"`
		BookingID models.ID `json:"bookingId"`
	} `json:"data"`
}

// bookingID prefers data.id, then id, then the bookingId alternates.
func (e createEnvelope) bookingID() models.ID {
	if e.Data != nil && !e.Data.ID.IsZero() {
		return e.Data.ID
	}
	if !e.ID.IsZero() {
		return e.ID
	}
	if e.Data != nil && !e.Data.BookingID.IsZero() {
		return e.Data.BookingID
	}
	return e.BookingID
}

// CreateBooking posts the submission exactly once and returns the created id.
func (c *Client) CreateBooking(ctx context.Context, sub *models.BookingSubmission) (models.ID, error) {
	var env createEnvelope
	if err := c.doPost(ctx, "create_booking", "/api/bookings", sub, &env); err != nil {
		return "", err
	}
	id := env.bookingID()
	if id.IsZero() {
		return "", ErrMissingBookingID
	}
	return id, nil
}

func (c *Client) doGet(ctx context.Context, op, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(op, req, out)
}

func (c *Client) doPost(ctx context.Context, op, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(op, req, out)
}

func (c *Client) do(op string, req *http.Request, out any) (err error) {
	started := time.Now()
	defer func() {
		metrics.ObserveBackend(op, started, err)
		if err != nil {
			c.logger.Debug().Err(err).Str("op", op).Str("url", req.URL.String()).Msg("backend call failed")
		}
	}()

	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend: %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: drainError(resp.Body)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("backend: %s: decode: %w", op, err)
	}
	return nil
}

func drainError(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 256))
	return strings.TrimSpace(string(b))
}
