package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AnarchicSoul/trivy-dashgen/pkg/catalog"
	"github.com/AnarchicSoul/trivy-dashgen/pkg/catalog/catalogtest"
	"github.com/AnarchicSoul/trivy-dashgen/pkg/savedobject"
)

func TestBadgerCatalog(t *testing.T) {
	catalogtest.Run(t, func(t *testing.T) catalog.Catalog {
		c, err := New(Config{InMemory: true})
		require.NoError(t, err)
		t.Cleanup(func() { _ = c.Close() })
		return c
	})
}

func TestBadgerCatalog_Persistence(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	rec := catalogtest.Record(t, `{"id":"trivy-reports","type":"index-pattern","attributes":{"title":"trivy-reports-*"},"references":[]}`)

	c, err := New(Config{Path: dir})
	require.NoError(t, err)
	res, err := c.Put(ctx, []savedobject.Record{rec})
	require.NoError(t, err)
	require.Equal(t, 1, res.Written)
	require.NoError(t, c.Close())

	c, err = New(Config{Path: dir})
	require.NoError(t, err)
	defer c.Close()

	got, err := c.Get(ctx, "trivy-reports")
	require.NoError(t, err)
	require.Equal(t, string(rec.Bytes()), string(got[0].Bytes()))

	res, err = c.Put(ctx, []savedobject.Record{rec})
	require.NoError(t, err)
	require.Equal(t, catalog.PutResult{Unchanged: 1}, res)
}

func TestDecodeValue_Corrupt(t *testing.T) {
	_, _, err := decodeValue([]byte("short"))
	require.Error(t, err)
}
