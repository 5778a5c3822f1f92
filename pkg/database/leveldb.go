package database

import (
	"fmt"
	"strings"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// levelDB exposes a LevelDB store as a single default partition.
type levelDB struct {
	db *leveldb.DB
}

func openLevel(path string, readOnly bool) (*levelDB, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{
		ReadOnly:       readOnly,
		ErrorIfMissing: true,
	})
	if err != nil {
		return nil, err
	}
	return &levelDB{db: db}, nil
}

func (l *levelDB) partition(name string, create bool) (enginePartition, error) {
	if name != DefaultPartition {
		return nil, fmt.Errorf("%w: %s (leveldb has a single keyspace)", ErrPartitionNotFound, name)
	}
	return l, nil
}

func (l *levelDB) newCursor() (Cursor, error) {
	return &levelCursor{it: l.db.NewIterator(nil, nil)}, nil
}

func (l *levelDB) property(name string) (string, bool) {
	if name == "rocksdb.stats" {
		name = "leveldb.stats"
	}
	if !strings.HasPrefix(name, "leveldb.") {
		return "", false
	}
	v, err := l.db.GetProperty(name)
	if err != nil {
		return "", false
	}
	return v, true
}

func (l *levelDB) close() error {
	return l.db.Close()
}

type levelCursor struct {
	it iterator.Iterator
}

func (c *levelCursor) SeekToFirst()    { c.it.First() }
func (c *levelCursor) Seek(key []byte) { c.it.Seek(key) }
func (c *levelCursor) Valid() bool     { return c.it.Valid() }
func (c *levelCursor) Next()           { c.it.Next() }
func (c *levelCursor) Key() []byte     { return c.it.Key() }
func (c *levelCursor) Value() []byte   { return c.it.Value() }
func (c *levelCursor) Err() error      { return c.it.Error() }

func (c *levelCursor) Close() error {
	c.it.Release()
	return nil
}
