package flow

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"tourbook/internal/backend"
	"tourbook/internal/models"

	"github.com/rs/zerolog"
)

// fakeBackend serves fixed data and can hold CreateBooking until released.
type fakeBackend struct {
	mu          sync.Mutex
	experiences map[models.ID]*models.Experience
	bookings    map[models.ID]*models.BookingRecord
	listErr     error
	getErr      error
	createErr   error
	createID    models.ID
	hold        chan struct{}
	entered     chan struct{}
	createCalls atomic.Int32
	submissions []models.BookingSubmission
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		experiences: map[models.ID]*models.Experience{},
		bookings:    map[models.ID]*models.BookingRecord{},
		createID:    "bk-9",
	}
}

func (f *fakeBackend) ListExperiences(ctx context.Context) ([]models.Experience, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Experience, 0, len(f.experiences))
	for _, e := range f.experiences {
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeBackend) GetExperience(ctx context.Context, id models.ID) (*models.Experience, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	e, ok := f.experiences[id]
	if !ok {
		return nil, backend.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeBackend) CreateBooking(ctx context.Context, sub *models.BookingSubmission) (models.ID, error) {
	f.createCalls.Add(1)
	f.mu.Lock()
	f.submissions = append(f.submissions, *sub)
	f.mu.Unlock()
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.hold != nil {
		<-f.hold
	}
	if f.createErr != nil {
		return "", f.createErr
	}
	return f.createID, nil
}

func (f *fakeBackend) GetBooking(ctx context.Context, id models.ID) (*models.BookingRecord, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	b, ok := f.bookings[id]
	if !ok {
		return nil, backend.ErrNotFound
	}
	return b, nil
}

func (f *fakeBackend) lastSubmission() models.BookingSubmission {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submissions[len(f.submissions)-1]
}

func testLogger(buf *bytes.Buffer) *zerolog.Logger {
	var l zerolog.Logger
	if buf == nil {
		l = zerolog.Nop()
	} else {
		l = zerolog.New(buf)
	}
	return &l
}

func fixedClock(date string) func() time.Time {
	t, err := time.Parse(models.DateLayout, date)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t.Add(10 * time.Hour) }
}
