// Package dbtest writes small fixture stores for tests.
package dbtest

import (
	"errors"
	"fmt"
	"sort"

	rocksdb "github.com/aalhour/rockyardkv/db"
	"github.com/cockroachdb/pebble"
	"github.com/dgraph-io/badger/v4"
	"github.com/syndtr/goleveldb/leveldb"
)

// KV is one fixture entry.
type KV struct {
	Key, Value string
}

// Partitions maps partition names to their entries.
type Partitions map[string][]KV

// WriteRocks creates a RocksDB-format store at dir with one column family
// per key of data. The default column family always exists. Entries stay in
// the WAL and are recovered per column family on the next open.
func WriteRocks(dir string, data Partitions) (err error) {
	opts := rocksdb.DefaultOptions()
	opts.CreateIfMissing = true
	db, err := rocksdb.Open(dir, opts)
	if err != nil {
		return fmt.Errorf("failed to create fixture: %w", err)
	}
	defer func() { err = errors.Join(err, db.Close()) }()

	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cf := db.DefaultColumnFamily()
		if name != "default" {
			if cf, err = db.CreateColumnFamily(rocksdb.DefaultColumnFamilyOptions(), name); err != nil {
				return fmt.Errorf("failed to create column family %q: %w", name, err)
			}
		}
		for _, e := range data[name] {
			if err := db.PutCF(rocksdb.DefaultWriteOptions(), cf, []byte(e.Key), []byte(e.Value)); err != nil {
				return err
			}
		}
	}
	return nil
}

// WritePebble creates a pebble store at dir.
func WritePebble(dir string, entries []KV) (err error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, db.Close()) }()

	for _, e := range entries {
		if err := db.Set([]byte(e.Key), []byte(e.Value), pebble.Sync); err != nil {
			return err
		}
	}
	return nil
}

// WriteLevel creates a LevelDB store at dir.
func WriteLevel(dir string, entries []KV) (err error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, db.Close()) }()

	for _, e := range entries {
		if err := db.Put([]byte(e.Key), []byte(e.Value), nil); err != nil {
			return err
		}
	}
	return nil
}

// WriteBadger creates a badger store at dir.
func WriteBadger(dir string, entries []KV) (err error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, db.Close()) }()

	return db.Update(func(txn *badger.Txn) error {
		for _, e := range entries {
			if err := txn.Set([]byte(e.Key), []byte(e.Value)); err != nil {
				return err
			}
		}
		return nil
	})
}
