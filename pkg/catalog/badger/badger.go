package badger

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/rs/zerolog/log"

	"github.com/AnarchicSoul/trivy-dashgen/pkg/catalog"
	"github.com/AnarchicSoul/trivy-dashgen/pkg/savedobject"
)

var keyPrefix = []byte("obj/")

// value layout: fingerprint (8) | stored-at unix nanos (8) | export line
const headerSize = 16

// Catalog implements catalog.Catalog using BadgerDB
type Catalog struct {
	db *badger.DB
}

// Config holds BadgerDB configuration
type Config struct {
	// Path to store database files
	Path string

	// InMemory mode (for testing)
	InMemory bool

	// MaxMemoryMB limits BadgerDB memory usage in MB (0 = small defaults)
	MaxMemoryMB int64
}

// New opens a BadgerDB catalog
func New(cfg Config) (*Catalog, error) {
	opts := badger.DefaultOptions(cfg.Path).WithLogger(nil)
	if cfg.InMemory {
		opts = opts.WithDir("").WithValueDir("").WithInMemory(true)
	}

	// A catalog holds tens of records, not millions. Keep the footprint
	// small: 8 MB memtable unless told otherwise.
	memTableSize := int64(8 << 20)
	if cfg.MaxMemoryMB > 0 {
		memTableSize = cfg.MaxMemoryMB << 20 / 3
	}

	opts = opts.
		WithCompression(options.Snappy).
		WithNumVersionsToKeep(1).
		WithMemTableSize(memTableSize).
		WithNumMemtables(2).
		WithBlockCacheSize(memTableSize / 2).
		WithIndexCacheSize(memTableSize / 4).
		WithMaxLevels(4).
		WithValueThreshold(1024).
		WithNumCompactors(2).
		WithValueLogFileSize(16 << 20)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open catalog at %q", cfg.Path)
	}
	return &Catalog{db: db}, nil
}

// Put stores records in one transaction, skipping unchanged ones
func (c *Catalog) Put(ctx context.Context, records []savedobject.Record) (catalog.PutResult, error) {
	if err := ctx.Err(); err != nil {
		return catalog.PutResult{}, err
	}

	var result catalog.PutResult
	now := time.Now()
	err := c.db.Update(func(txn *badger.Txn) error {
		result = catalog.PutResult{}
		for _, rec := range records {
			key := makeKey(rec.ID)
			fp := rec.Fingerprint()

			item, err := txn.Get(key)
			switch {
			case err == nil:
				same := false
				if verr := item.Value(func(val []byte) error {
					same = len(val) >= headerSize && binary.BigEndian.Uint64(val[:8]) == fp
					return nil
				}); verr != nil {
					return verr
				}
				if same {
					result.Unchanged++
					continue
				}
			case !errors.Is(err, badger.ErrKeyNotFound):
				return err
			}

			if err := txn.Set(key, encodeValue(rec, fp, now)); err != nil {
				return errors.Wrapf(err, "failed to store %q", rec.ID)
			}
			result.Written++
		}
		return nil
	})
	if err != nil {
		return catalog.PutResult{}, errors.Wrap(err, "failed to write catalog")
	}

	log.Debug().Int("written", result.Written).Int("unchanged", result.Unchanged).Msg("catalog updated")
	return result, nil
}

// Get returns records by id
func (c *Catalog) Get(ctx context.Context, ids ...string) ([]savedobject.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records := make([]savedobject.Record, 0, len(ids))
	err := c.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			item, err := txn.Get(makeKey(id))
			if errors.Is(err, badger.ErrKeyNotFound) {
				return catalog.NotFound(id)
			}
			if err != nil {
				return errors.Wrapf(err, "failed to read %q", id)
			}
			var rec savedobject.Record
			if err := item.Value(func(val []byte) error {
				var derr error
				rec, _, derr = decodeValue(val)
				return derr
			}); err != nil {
				return err
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// List returns matching entries in key (id) order
func (c *Catalog) List(ctx context.Context, filter catalog.ListFilter) ([]catalog.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entries []catalog.Entry
	err := c.scan(func(rec savedobject.Record, storedAt time.Time) {
		if filter.Match(rec.Type) {
			entries = append(entries, catalog.NewEntry(rec, storedAt))
		}
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Delete removes records by id
func (c *Catalog) Delete(ctx context.Context, ids ...string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	deleted := 0
	err := c.db.Update(func(txn *badger.Txn) error {
		deleted = 0
		for _, id := range ids {
			key := makeKey(id)
			if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
				continue
			} else if err != nil {
				return err
			}
			if err := txn.Delete(key); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete from catalog")
	}
	return deleted, nil
}

// Close closes the database
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Stats returns catalog statistics
func (c *Catalog) Stats(ctx context.Context) (*catalog.Stats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stats := &catalog.Stats{ByType: make(map[savedobject.Type]uint64)}
	err := c.scan(func(rec savedobject.Record, storedAt time.Time) {
		stats.TotalRecords++
		stats.ByType[rec.Type]++
		if storedAt.After(stats.LastWrite) {
			stats.LastWrite = storedAt
		}
	})
	if err != nil {
		return nil, err
	}

	lsmSize, vlogSize := c.db.Size()
	stats.SizeBytes = uint64(lsmSize + vlogSize)
	return stats, nil
}

func (c *Catalog) scan(fn func(savedobject.Record, time.Time)) error {
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = keyPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				rec, storedAt, err := decodeValue(val)
				if err != nil {
					return err
				}
				fn(rec, storedAt)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to scan catalog")
	}
	return nil
}

func makeKey(id string) []byte {
	key := make([]byte, 0, len(keyPrefix)+len(id))
	key = append(key, keyPrefix...)
	return append(key, id...)
}

func encodeValue(rec savedobject.Record, fp uint64, storedAt time.Time) []byte {
	line := rec.Bytes()
	val := make([]byte, headerSize+len(line))
	binary.BigEndian.PutUint64(val[:8], fp)
	binary.BigEndian.PutUint64(val[8:16], uint64(storedAt.UnixNano()))
	copy(val[headerSize:], line)
	return val
}

// decodeValue copies out of val; badger reuses the buffer after the
// callback returns.
func decodeValue(val []byte) (savedobject.Record, time.Time, error) {
	if len(val) < headerSize {
		return savedobject.Record{}, time.Time{}, errors.Newf("corrupt catalog value (%d bytes)", len(val))
	}
	storedAt := time.Unix(0, int64(binary.BigEndian.Uint64(val[8:16])))
	line := append([]byte(nil), val[headerSize:]...)
	rec, err := savedobject.Parse(line)
	if err != nil {
		return savedobject.Record{}, time.Time{}, err
	}
	return rec, storedAt, nil
}
