package flow

import (
	"context"
	"strings"
	"sync"

	"tourbook/internal/models"

	"github.com/rs/zerolog"
)

type ExperienceLister interface {
	ListExperiences(ctx context.Context) ([]models.Experience, error)
}

type CatalogPhase string

const (
	CatalogLoading CatalogPhase = "loading"
	CatalogReady   CatalogPhase = "ready"
)

// CatalogView is what the catalog page renders.
type CatalogView struct {
	Phase     CatalogPhase
	Query     string
	Total     int
	Results   []models.Experience
	NoResults bool
}

// Catalog fetches the experience list once and filters it client-side.
// A failed fetch is logged and leaves the list empty.
type Catalog struct {
	lister  ExperienceLister
	logger  *zerolog.Logger
	tracker Tracker[uint64]

	mu    sync.Mutex
	seq   uint64
	phase CatalogPhase
	items []models.Experience
	query string
}

func NewCatalog(lister ExperienceLister, logger *zerolog.Logger) *Catalog {
	return &Catalog{
		lister: lister,
		logger: logger,
		phase:  CatalogLoading,
	}
}

func (c *Catalog) Load(ctx context.Context) {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.phase = CatalogLoading
	c.mu.Unlock()
	c.tracker.Retarget(seq)

	items, err := c.lister.ListExperiences(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("catalog fetch failed")
		items = nil
	}

	c.tracker.ApplyIf(seq, func() {
		c.mu.Lock()
		c.items = items
		c.phase = CatalogReady
		c.mu.Unlock()
	})
}

func (c *Catalog) SetQuery(q string) {
	c.mu.Lock()
	c.query = q
	c.mu.Unlock()
}

func (c *Catalog) View() CatalogView {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := CatalogView{Phase: c.phase, Query: c.query, Total: len(c.items)}
	if c.phase != CatalogReady {
		return v
	}
	v.Results = Filter(c.items, c.query)
	v.NoResults = len(v.Results) == 0
	return v
}

// Filter keeps experiences whose name, location or category contains the
// lowercased query. An empty query keeps everything.
func Filter(items []models.Experience, query string) []models.Experience {
	q := strings.ToLower(query)
	out := make([]models.Experience, 0, len(items))
	for _, e := range items {
		if q == "" ||
			strings.Contains(strings.ToLower(e.DisplayName()), q) ||
			strings.Contains(strings.ToLower(e.Location), q) ||
			strings.Contains(strings.ToLower(e.Category), q) {
			out = append(out, e)
		}
	}
	return out
}
