// Package catalogtest holds the behaviour tests every catalog backend must
// pass.
package catalogtest

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/AnarchicSoul/trivy-dashgen/pkg/catalog"
	"github.com/AnarchicSoul/trivy-dashgen/pkg/savedobject"
)

// Record parses line or fails the test.
func Record(t *testing.T, line string) savedobject.Record {
	t.Helper()
	rec, err := savedobject.Parse([]byte(line))
	require.NoError(t, err)
	return rec
}

func fixtures(t *testing.T) []savedobject.Record {
	return []savedobject.Record{
		Record(t, `{"id":"trivy-reports","type":"index-pattern","attributes":{"title":"trivy-reports-*"},"references":[]}`),
		Record(t, `{"id":"trivy-security-overview","type":"dashboard","attributes":{"title":"Trivy Security Overview","panelsJSON":"[]"},"references":[{"id":"trivy-reports","name":"p1:indexpattern-datasource-layer-layer1","type":"index-pattern"}]}`),
		Record(t, `{"id":"trivy-compliance","type":"dashboard","attributes":{"title":"Trivy Compliance","panelsJSON":"[]"},"references":[]}`),
	}
}

// Run exercises a fresh catalog from open for each subtest. Backends close
// the catalog themselves via t.Cleanup if needed.
func Run(t *testing.T, open func(t *testing.T) catalog.Catalog) {
	ctx := context.Background()

	t.Run("put and get", func(t *testing.T) {
		c := open(t)
		recs := fixtures(t)

		res, err := c.Put(ctx, recs)
		require.NoError(t, err)
		require.Equal(t, catalog.PutResult{Written: 3}, res)

		got, err := c.Get(ctx, "trivy-security-overview", "trivy-reports")
		require.NoError(t, err)
		require.Len(t, got, 2)
		require.Equal(t, string(recs[1].Bytes()), string(got[0].Bytes()))
		require.Equal(t, string(recs[0].Bytes()), string(got[1].Bytes()))
		require.Equal(t, recs[1].References, got[0].References)
	})

	t.Run("unchanged records are skipped", func(t *testing.T) {
		c := open(t)
		recs := fixtures(t)
		_, err := c.Put(ctx, recs)
		require.NoError(t, err)

		changed := Record(t, `{"id":"trivy-compliance","type":"dashboard","attributes":{"title":"Compliance v2","panelsJSON":"[]"},"references":[]}`)
		res, err := c.Put(ctx, []savedobject.Record{recs[0], recs[1], changed})
		require.NoError(t, err)
		require.Equal(t, catalog.PutResult{Written: 1, Unchanged: 2}, res)

		got, err := c.Get(ctx, "trivy-compliance")
		require.NoError(t, err)
		require.Equal(t, "Compliance v2", got[0].Title())
	})

	t.Run("missing id", func(t *testing.T) {
		c := open(t)
		_, err := c.Put(ctx, fixtures(t))
		require.NoError(t, err)

		_, err = c.Get(ctx, "trivy-reports", "nope")
		require.Error(t, err)
		require.True(t, errors.Is(err, catalog.ErrNotFound))
		require.True(t, savedobject.IsInvalidConfig(err))
	})

	t.Run("list", func(t *testing.T) {
		c := open(t)
		_, err := c.Put(ctx, fixtures(t))
		require.NoError(t, err)

		all, err := c.List(ctx, catalog.ListFilter{})
		require.NoError(t, err)
		require.Equal(t, []string{"trivy-compliance", "trivy-reports", "trivy-security-overview"}, ids(all))
		require.Equal(t, "Trivy Compliance", all[0].Title)
		require.NotZero(t, all[0].Fingerprint)
		require.False(t, all[0].StoredAt.IsZero())

		dashboards, err := c.List(ctx, catalog.ListFilter{Types: []savedobject.Type{savedobject.DashboardType}})
		require.NoError(t, err)
		require.Equal(t, []string{"trivy-compliance", "trivy-security-overview"}, ids(dashboards))
	})

	t.Run("delete", func(t *testing.T) {
		c := open(t)
		_, err := c.Put(ctx, fixtures(t))
		require.NoError(t, err)

		n, err := c.Delete(ctx, "trivy-compliance", "nope")
		require.NoError(t, err)
		require.Equal(t, 1, n)

		_, err = c.Get(ctx, "trivy-compliance")
		require.True(t, errors.Is(err, catalog.ErrNotFound))
	})

	t.Run("stats", func(t *testing.T) {
		c := open(t)
		_, err := c.Put(ctx, fixtures(t))
		require.NoError(t, err)

		stats, err := c.Stats(ctx)
		require.NoError(t, err)
		require.Equal(t, uint64(3), stats.TotalRecords)
		require.Equal(t, uint64(2), stats.ByType[savedobject.DashboardType])
		require.Equal(t, uint64(1), stats.ByType[savedobject.IndexPatternType])
		require.False(t, stats.LastWrite.IsZero())
	})

	t.Run("cancelled context", func(t *testing.T) {
		c := open(t)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := c.Put(cctx, fixtures(t))
		require.ErrorIs(t, err, context.Canceled)
	})
}

func ids(entries []catalog.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}
