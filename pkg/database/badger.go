package database

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// badgerDB exposes a badger store as a single default partition.
type badgerDB struct {
	db *badger.DB
}

func openBadger(path string, readOnly bool) (*badgerDB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(readOnly).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &badgerDB{db: db}, nil
}

func (b *badgerDB) partition(name string, create bool) (enginePartition, error) {
	if name != DefaultPartition {
		return nil, fmt.Errorf("%w: %s (badger has a single keyspace)", ErrPartitionNotFound, name)
	}
	return b, nil
}

func (b *badgerDB) newCursor() (Cursor, error) {
	txn := b.db.NewTransaction(false)
	return &badgerCursor{txn: txn, it: txn.NewIterator(badger.DefaultIteratorOptions)}, nil
}

func (b *badgerDB) property(name string) (string, bool) {
	switch name {
	case "rocksdb.stats", "badger.levels":
		return b.db.LevelsToString(), true
	case "badger.size":
		lsm, vlog := b.db.Size()
		return fmt.Sprintf("lsm=%d vlog=%d", lsm, vlog), true
	default:
		return "", false
	}
}

func (b *badgerDB) close() error {
	return b.db.Close()
}

// badgerCursor iterates inside a read-only transaction that is discarded on
// Close. Values are copied out of the value log as the cursor moves.
type badgerCursor struct {
	txn   *badger.Txn
	it    *badger.Iterator
	key   []byte
	value []byte
	err   error
}

func (c *badgerCursor) load() {
	c.key, c.value = nil, nil
	if c.err != nil || !c.it.Valid() {
		return
	}
	item := c.it.Item()
	c.key = item.KeyCopy(nil)
	c.value, c.err = item.ValueCopy(nil)
}

func (c *badgerCursor) SeekToFirst() {
	c.it.Rewind()
	c.load()
}

func (c *badgerCursor) Seek(key []byte) {
	c.it.Seek(key)
	c.load()
}

func (c *badgerCursor) Valid() bool { return c.err == nil && c.it.Valid() }

func (c *badgerCursor) Next() {
	c.it.Next()
	c.load()
}

func (c *badgerCursor) Key() []byte   { return c.key }
func (c *badgerCursor) Value() []byte { return c.value }
func (c *badgerCursor) Err() error    { return c.err }

func (c *badgerCursor) Close() error {
	c.it.Close()
	c.txn.Discard()
	return nil
}
