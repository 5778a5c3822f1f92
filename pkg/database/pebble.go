package database

import (
	"fmt"

	"github.com/cockroachdb/pebble"
)

// pebbleDB exposes a pebble store as a single default partition.
type pebbleDB struct {
	db *pebble.DB
}

func openPebble(path string, readOnly bool) (*pebbleDB, error) {
	db, err := pebble.Open(path, &pebble.Options{
		ReadOnly:         readOnly,
		ErrorIfNotExists: true,
	})
	if err != nil {
		return nil, err
	}
	return &pebbleDB{db: db}, nil
}

func (p *pebbleDB) partition(name string, create bool) (enginePartition, error) {
	if name != DefaultPartition {
		return nil, fmt.Errorf("%w: %s (pebble has a single keyspace)", ErrPartitionNotFound, name)
	}
	return p, nil
}

func (p *pebbleDB) newCursor() (Cursor, error) {
	iter, err := p.db.NewIter(nil)
	if err != nil {
		return nil, err
	}
	return &pebbleCursor{iter: iter}, nil
}

func (p *pebbleDB) property(name string) (string, bool) {
	switch name {
	case "rocksdb.stats", "pebble.metrics":
		return p.db.Metrics().String(), true
	default:
		return "", false
	}
}

func (p *pebbleDB) close() error {
	return p.db.Close()
}

type pebbleCursor struct {
	iter *pebble.Iterator
}

func (c *pebbleCursor) SeekToFirst()    { c.iter.First() }
func (c *pebbleCursor) Seek(key []byte) { c.iter.SeekGE(key) }
func (c *pebbleCursor) Valid() bool     { return c.iter.Valid() }
func (c *pebbleCursor) Next()           { c.iter.Next() }
func (c *pebbleCursor) Key() []byte     { return c.iter.Key() }
func (c *pebbleCursor) Value() []byte   { return c.iter.Value() }
func (c *pebbleCursor) Err() error      { return c.iter.Error() }
func (c *pebbleCursor) Close() error    { return c.iter.Close() }
