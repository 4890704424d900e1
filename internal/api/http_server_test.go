package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tourbook/internal/backend"
	"tourbook/internal/config"
	"tourbook/internal/database"
	"tourbook/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	logger := zerolog.New(io.Discard)
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.SyncExperiences(context.Background(), []models.Experience{
		{ID: "42", Name: "Sunset Kayak", Location: "Goa", Price: 1200},
		{ID: "7", Title: "Desert Safari", Location: "Jaisalmer", Price: 3500},
	}))
	return db
}

func newTestServer(t *testing.T, cfg config.DevAPIConfig) *httptest.Server {
	t.Helper()
	logger := zerolog.New(io.Discard)
	srv := NewHTTPServer(cfg, newTestDB(t), &logger)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

const bookingBody = `{
	"name": "Asha Rao", "email": "asha@example.com", "phone": "9876543210",
	"specialRequests": "", "experienceId": "42", "quantity": 2,
	"bookingDate": "2025-12-20", "promo": "HOLIDAY2025",
	"cardNumber": "4111111111111111", "expiryDate": "12/27", "cvv": "123"
}`

func postBooking(t *testing.T, ts *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/api/bookings", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestListExperiences(t *testing.T) {
	ts := newTestServer(t, config.DevAPIConfig{})

	resp, err := http.Get(ts.URL + "/api/experiences")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []models.Experience
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 2)
	assert.Equal(t, "Sunset Kayak", list[0].DisplayName())
	assert.Equal(t, "Desert Safari", list[1].DisplayName())
}

func TestGetExperience(t *testing.T) {
	ts := newTestServer(t, config.DevAPIConfig{})

	t.Run("Found", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/experiences/42")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var exp models.Experience
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&exp))
		assert.Equal(t, int64(1200), exp.Price)
	})

	t.Run("NotFound", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/experiences/999")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "experience not found", body["error"])
	})
}

func TestCreateBooking(t *testing.T) {
	ts := newTestServer(t, config.DevAPIConfig{})

	resp := postBooking(t, ts, bookingBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		Success bool `json:"success"`
		Data    struct {
			ID    string `json:"id"`
			RefID string `json:"refId"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.True(t, created.Success)
	require.NotEmpty(t, created.Data.ID)
	assert.NotEmpty(t, created.Data.RefID)
	assert.NotEqual(t, created.Data.ID, created.Data.RefID)

	got, err := http.Get(ts.URL + "/api/bookings/" + created.Data.ID)
	require.NoError(t, err)
	defer got.Body.Close()
	require.Equal(t, http.StatusOK, got.StatusCode)

	var rec models.BookingRecord
	require.NoError(t, json.NewDecoder(got.Body).Decode(&rec))
	assert.Equal(t, created.Data.RefID, rec.RefID)
	assert.Equal(t, int64(2400), rec.Total)
	assert.Equal(t, models.StatusConfirmed, rec.Status)
	require.NotNil(t, rec.Experience)
	assert.Equal(t, "Goa", rec.Experience.Location)
}

func TestCreateBooking_Validation(t *testing.T) {
	ts := newTestServer(t, config.DevAPIConfig{})

	tests := []struct {
		name    string
		mutate  func(string) string
		wantMsg string
	}{
		{
			name:    "MissingFields",
			mutate:  func(b string) string { return strings.Replace(b, `"cvv": "123"`, `"cvv": " "`, 1) },
			wantMsg: "missing required fields: cvv",
		},
		{
			name:    "ZeroQuantity",
			mutate:  func(b string) string { return strings.Replace(b, `"quantity": 2`, `"quantity": 0`, 1) },
			wantMsg: "quantity must be at least 1",
		},
		{
			name:    "QuantityOverflow",
			mutate:  func(b string) string { return strings.Replace(b, `"quantity": 2`, `"quantity": 9223372036854775807`, 1) },
			wantMsg: "quantity too large",
		},
		{
			name:    "BadDate",
			mutate:  func(b string) string { return strings.Replace(b, `"2025-12-20"`, `"20/12/2025"`, 1) },
			wantMsg: "invalid bookingDate; expected YYYY-MM-DD",
		},
		{
			name:    "UnknownExperience",
			mutate:  func(b string) string { return strings.Replace(b, `"experienceId": "42"`, `"experienceId": 999`, 1) },
			wantMsg: "unknown experience",
		},
		{
			name:    "InvalidJSON",
			mutate:  func(string) string { return `{"name":` },
			wantMsg: "invalid JSON body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postBooking(t, ts, tt.mutate(bookingBody))
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.wantMsg, body["error"])
		})
	}
}

func TestGetBooking_NotFound(t *testing.T) {
	ts := newTestServer(t, config.DevAPIConfig{})

	resp, err := http.Get(ts.URL + "/api/bookings/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, config.DevAPIConfig{RateLimit: config.RateLimitConfig{RPS: 0.001, Burst: 2}})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := http.Get(ts.URL + "/api/experiences")
		require.NoError(t, err)
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

// TestBackendClientRoundTrip drives the storefront's HTTP client against this server.
func TestBackendClientRoundTrip(t *testing.T) {
	ts := newTestServer(t, config.DevAPIConfig{})
	client := backend.NewClient(ts.URL, 5*time.Second, nil)
	ctx := context.Background()

	list, err := client.ListExperiences(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = client.GetExperience(ctx, "999")
	assert.ErrorIs(t, err, backend.ErrNotFound)

	id, err := client.CreateBooking(ctx, &models.BookingSubmission{
		Name: "Asha Rao", Email: "asha@example.com", Phone: "9876543210",
		ExperienceID: "7", Quantity: 3, BookingDate: "2025-12-20", PromoCode: "HOLIDAY2025",
		CardNumber: "4111111111111111", ExpiryDate: "12/27", CVV: "123",
	})
	require.NoError(t, err)

	rec, err := client.GetBooking(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(10500), rec.Total)
	assert.Equal(t, "Desert Safari", rec.Experience.Name)
}
