package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"tourbook/internal/backend"
	"tourbook/internal/config"
	"tourbook/internal/models"
	"tourbook/internal/nav"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

var errUnavailable = errors.New("backend unavailable")

type stubBackend struct {
	mu          sync.Mutex
	experiences []models.Experience
	bookings    map[models.ID]*models.BookingRecord
	getErr      error
	createErr   error
	createID    models.ID
	submissions []models.BookingSubmission
}

func newStubBackend() *stubBackend {
	return &stubBackend{
		experiences: []models.Experience{
			{ID: "42", Name: "Sunset Kayak", Location: "Goa", Category: "Water", Price: 1200, LongDescription: "Paddle **at dusk**."},
			{ID: "7", Title: "Desert Safari", Location: "Jaisalmer", Category: "Adventure", Price: 3500},
		},
		bookings: map[models.ID]*models.BookingRecord{},
		createID: "bk-9",
	}
}

func (b *stubBackend) ListExperiences(ctx context.Context) ([]models.Experience, error) {
	return append([]models.Experience(nil), b.experiences...), nil
}

func (b *stubBackend) GetExperience(ctx context.Context, id models.ID) (*models.Experience, error) {
	if b.getErr != nil {
		return nil, b.getErr
	}
	for _, e := range b.experiences {
		if e.ID == id {
			cp := e
			return &cp, nil
		}
	}
	return nil, backend.ErrNotFound
}

func (b *stubBackend) CreateBooking(ctx context.Context, sub *models.BookingSubmission) (models.ID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.submissions = append(b.submissions, *sub)
	if b.createErr != nil {
		return "", b.createErr
	}
	return b.createID, nil
}

func (b *stubBackend) GetBooking(ctx context.Context, id models.ID) (*models.BookingRecord, error) {
	if b.getErr != nil {
		return nil, b.getErr
	}
	rec, ok := b.bookings[id]
	if !ok {
		return nil, backend.ErrNotFound
	}
	return rec, nil
}

func (b *stubBackend) createCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.submissions)
}

type stubGuard struct {
	allow bool
}

func (g *stubGuard) Begin(ctx context.Context, flowID string, experienceID models.ID) error {
	return nil
}
func (g *stubGuard) Finish(ctx context.Context, flowID string, c nav.ConfirmationIntent) {}
func (g *stubGuard) Release(ctx context.Context, flowID string)                         {}
func (g *stubGuard) Allow(ctx context.Context, clientKey string) bool                    { return g.allow }

func fixedNow() time.Time {
	return time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)
}

func newTestServer(t *testing.T, deps Deps) http.Handler {
	t.Helper()
	if deps.Now == nil {
		deps.Now = fixedNow
	}
	srv, err := NewServer(configForTest(), deps)
	require.NoError(t, err)
	return srv.Handler()
}

func configForTest() config.WebConfig {
	return config.WebConfig{Port: 3000, RequestTimeout: 5 * time.Second}
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func postForm(t *testing.T, h http.Handler, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func parseHTML(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	return doc
}

func text(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().Text())
}

func completeForm() url.Values {
	return url.Values{
		"flow_id":    {"flow-1"},
		"name":       {"Asha Rao"},
		"email":      {"asha@example.com"},
		"phone":      {"9876543210"},
		"cardNumber": {"4111111111111111"},
		"expiryDate": {"12/27"},
		"cvv":        {"123"},
	}
}
