package catalog

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/AnarchicSoul/trivy-dashgen/pkg/savedobject"
)

// ErrNotFound marks lookups of ids the catalog does not hold.
var ErrNotFound = errors.New("saved object not found")

// Catalog stores generated saved objects by id so later runs can bundle
// them without regenerating.
// Implementations: memory (testing), badger (on-disk)
type Catalog interface {
	// Put stores records, replacing any record with the same id. Records
	// whose fingerprint matches the stored one are left untouched.
	Put(ctx context.Context, records []savedobject.Record) (PutResult, error)

	// Get returns the records with the given ids, in the order asked.
	// A missing id is an ErrNotFound error.
	Get(ctx context.Context, ids ...string) ([]savedobject.Record, error)

	// List returns entries sorted by id.
	List(ctx context.Context, filter ListFilter) ([]Entry, error)

	// Delete removes the given ids and returns how many existed.
	Delete(ctx context.Context, ids ...string) (int, error)

	// Stats returns catalog statistics
	Stats(ctx context.Context) (*Stats, error)

	// Close cleanly shuts down the catalog
	Close() error
}

// PutResult counts what Put did.
type PutResult struct {
	Written   int
	Unchanged int
}

// ListFilter restricts List. The zero value lists everything.
type ListFilter struct {
	Types []savedobject.Type
}

// Match reports whether an object of type t passes the filter.
func (f ListFilter) Match(t savedobject.Type) bool {
	if len(f.Types) == 0 {
		return true
	}
	for _, want := range f.Types {
		if want == t {
			return true
		}
	}
	return false
}

// Entry describes one stored record.
type Entry struct {
	ID          string
	Type        savedobject.Type
	Title       string
	Fingerprint uint64
	StoredAt    time.Time
}

// NewEntry describes rec as stored at storedAt.
func NewEntry(rec savedobject.Record, storedAt time.Time) Entry {
	return Entry{
		ID:          rec.ID,
		Type:        rec.Type,
		Title:       rec.Title(),
		Fingerprint: rec.Fingerprint(),
		StoredAt:    storedAt,
	}
}

// Stats provides catalog usage info
type Stats struct {
	TotalRecords uint64
	ByType       map[savedobject.Type]uint64

	// Storage size in bytes
	SizeBytes uint64

	// Most recent write
	LastWrite time.Time
}

// NotFound returns an error for a missing id. It is also a configuration
// error: asking for an id the catalog lacks is a usage mistake.
func NotFound(id string) error {
	return errors.Mark(savedobject.Invalidf("saved object %q not in catalog", id), ErrNotFound)
}
