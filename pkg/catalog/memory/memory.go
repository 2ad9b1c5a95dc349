package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/AnarchicSoul/trivy-dashgen/pkg/catalog"
	"github.com/AnarchicSoul/trivy-dashgen/pkg/savedobject"
)

type item struct {
	rec      savedobject.Record
	storedAt time.Time
}

// Catalog stores records in memory. Data is lost on exit.
// Useful for testing.
type Catalog struct {
	items     map[string]item
	lastWrite time.Time
	mu        sync.RWMutex
}

// New creates an in-memory catalog
func New() *Catalog {
	return &Catalog{items: make(map[string]item)}
}

// Put stores records, skipping unchanged ones
func (c *Catalog) Put(ctx context.Context, records []savedobject.Record) (catalog.PutResult, error) {
	if err := ctx.Err(); err != nil {
		return catalog.PutResult{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var result catalog.PutResult
	now := time.Now()
	for _, rec := range records {
		if old, ok := c.items[rec.ID]; ok && old.rec.Fingerprint() == rec.Fingerprint() {
			result.Unchanged++
			continue
		}
		c.items[rec.ID] = item{rec: rec, storedAt: now}
		c.lastWrite = now
		result.Written++
	}
	return result, nil
}

// Get returns records by id
func (c *Catalog) Get(ctx context.Context, ids ...string) ([]savedobject.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	records := make([]savedobject.Record, 0, len(ids))
	for _, id := range ids {
		it, ok := c.items[id]
		if !ok {
			return nil, catalog.NotFound(id)
		}
		records = append(records, it.rec)
	}
	return records, nil
}

// List returns matching entries sorted by id
func (c *Catalog) List(ctx context.Context, filter catalog.ListFilter) ([]catalog.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var entries []catalog.Entry
	for _, it := range c.items {
		if filter.Match(it.rec.Type) {
			entries = append(entries, catalog.NewEntry(it.rec, it.storedAt))
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

// Delete removes records by id
func (c *Catalog) Delete(ctx context.Context, ids ...string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	deleted := 0
	for _, id := range ids {
		if _, ok := c.items[id]; ok {
			delete(c.items, id)
			deleted++
		}
	}
	return deleted, nil
}

// Close is a no-op for the memory catalog
func (c *Catalog) Close() error {
	return nil
}

// Stats returns catalog statistics
func (c *Catalog) Stats(ctx context.Context) (*catalog.Stats, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := &catalog.Stats{
		TotalRecords: uint64(len(c.items)),
		ByType:       make(map[savedobject.Type]uint64),
		LastWrite:    c.lastWrite,
	}
	for _, it := range c.items {
		stats.ByType[it.rec.Type]++
		stats.SizeBytes += uint64(len(it.rec.Bytes()))
	}
	return stats, nil
}
