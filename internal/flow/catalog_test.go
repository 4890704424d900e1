package flow

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"tourbook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var catalogFixture = []models.Experience{
	{ID: "1", Name: "Desert Safari", Location: "Jaisalmer", Category: "Adventure"},
	{ID: "2", Name: "Backwater Cruise", Location: "Kerala", Category: "Relaxation"},
}

func TestFilter(t *testing.T) {
	t.Run("MatchesLocation", func(t *testing.T) {
		got := Filter(catalogFixture, "kerala")
		require.Len(t, got, 1)
		assert.Equal(t, models.ID("2"), got[0].ID)
	})

	t.Run("EmptyQueryMatchesAll", func(t *testing.T) {
		assert.Equal(t, catalogFixture, Filter(catalogFixture, ""))
	})

	t.Run("NoMatch", func(t *testing.T) {
		assert.Empty(t, Filter(catalogFixture, "zzz"))
	})

	t.Run("CaseInsensitive", func(t *testing.T) {
		got := Filter(catalogFixture, "ADVENT")
		require.Len(t, got, 1)
		assert.Equal(t, "Desert Safari", got[0].Name)
	})

	t.Run("MissingFieldsNeverMatch", func(t *testing.T) {
		items := []models.Experience{{ID: "3"}, {ID: "4", Title: "Tea Trail"}}
		got := Filter(items, "tea")
		require.Len(t, got, 1)
		assert.Equal(t, models.ID("4"), got[0].ID)
	})
}

func TestCatalog(t *testing.T) {
	ctx := context.Background()

	t.Run("LoadingBeforeFetch", func(t *testing.T) {
		c := NewCatalog(newFakeBackend(), testLogger(nil))
		v := c.View()
		assert.Equal(t, CatalogLoading, v.Phase)
		assert.False(t, v.NoResults)
	})

	t.Run("QueryRecomputesView", func(t *testing.T) {
		be := newFakeBackend()
		for i := range catalogFixture {
			be.experiences[catalogFixture[i].ID] = &catalogFixture[i]
		}
		c := NewCatalog(be, testLogger(nil))
		c.Load(ctx)

		assert.Len(t, c.View().Results, 2)

		c.SetQuery("Jaisalmer")
		v := c.View()
		require.Len(t, v.Results, 1)
		assert.Equal(t, "Desert Safari", v.Results[0].Name)
		assert.Equal(t, 2, v.Total)

		c.SetQuery("zzz")
		assert.True(t, c.View().NoResults)
	})

	t.Run("FetchFailureIsSoft", func(t *testing.T) {
		var logs bytes.Buffer
		be := newFakeBackend()
		be.listErr = errors.New("connection refused")

		c := NewCatalog(be, testLogger(&logs))
		c.Load(ctx)

		v := c.View()
		assert.Equal(t, CatalogReady, v.Phase)
		assert.Empty(t, v.Results)
		assert.True(t, v.NoResults)
		assert.Contains(t, logs.String(), `"level":"warn"`)
		assert.Contains(t, logs.String(), "connection refused")
	})
}
