package database

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	rocksdb "github.com/aalhour/rockyardkv/db"
)

// rocksDB binds a RocksDB-format store through rockyardkv. Column families
// map one to one onto partitions.
type rocksDB struct {
	db       rocksdb.DB
	readOnly bool
	// snapshot is the private copy a read-only store is served from.
	snapshot string
}

func rocksOptions() *rocksdb.Options {
	opts := rocksdb.DefaultOptions()
	opts.CreateIfMissing = false
	return opts
}

// openRocks opens the store at path. rockyardkv's read-only open recovers
// the default column family only, so a read-only store is opened read-write
// on a snapshot of its files and the source directory is never written.
func openRocks(path string, readOnly bool) (*rocksDB, error) {
	if !readOnly {
		db, err := rocksdb.Open(path, rocksOptions())
		if err != nil {
			return nil, err
		}
		return &rocksDB{db: db}, nil
	}

	snapshot, err := snapshotRocks(path)
	if err != nil {
		return nil, err
	}
	db, err := rocksdb.Open(snapshot, rocksOptions())
	if err != nil {
		return nil, errors.Join(err, os.RemoveAll(snapshot))
	}
	return &rocksDB{db: db, readOnly: true, snapshot: snapshot}, nil
}

// listRocksPartitions reads the column family names from the MANIFEST
// without opening the store.
func listRocksPartitions(path string) ([]string, error) {
	names, err := rocksdb.ListColumnFamilies(path, rocksOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to list column families: %w", err)
	}
	return NormalizeDescriptors(names), nil
}

// snapshotRocks copies the store at path into a temporary directory. Table
// files are immutable and are hard linked where the filesystem allows it.
func snapshotRocks(path string) (string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return "", fmt.Errorf("failed to read store directory: %w", err)
	}
	dir, err := os.MkdirTemp("", "cfdump-snapshot-")
	if err != nil {
		return "", fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || name == "LOCK" || strings.HasPrefix(name, "LOG") {
			continue
		}
		src, dst := filepath.Join(path, name), filepath.Join(dir, name)
		if strings.HasSuffix(name, ".sst") || strings.HasSuffix(name, ".blob") {
			err = linkOrCopy(src, dst)
		} else {
			err = copyFile(src, dst)
		}
		if err != nil {
			return "", errors.Join(fmt.Errorf("failed to snapshot %s: %w", name, err), os.RemoveAll(dir))
		}
	}
	return dir, nil
}

func linkOrCopy(src, dst string) error {
	if err := os.Link(src, dst); err == nil {
		return nil
	}
	return copyFile(src, dst)
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, out.Close()) }()

	_, err = io.Copy(out, in)
	return err
}

func (r *rocksDB) partition(name string, create bool) (enginePartition, error) {
	if name == DefaultPartition {
		return &rocksPartition{db: r.db, cf: r.db.DefaultColumnFamily()}, nil
	}

	cf := r.db.GetColumnFamily(name)
	if cf != nil {
		return &rocksPartition{db: r.db, cf: cf}, nil
	}
	if !create {
		return nil, fmt.Errorf("%w: %s", ErrPartitionNotFound, name)
	}
	if r.readOnly {
		return nil, ErrReadOnly
	}

	cf, err := r.db.CreateColumnFamily(rocksdb.DefaultColumnFamilyOptions(), name)
	if err != nil {
		return nil, fmt.Errorf("failed to create column family: %w", err)
	}
	return &rocksPartition{db: r.db, cf: cf}, nil
}

func (r *rocksDB) property(name string) (string, bool) {
	return r.db.GetProperty(name)
}

func (r *rocksDB) close() error {
	err := r.db.Close()
	if r.snapshot != "" {
		err = errors.Join(err, os.RemoveAll(r.snapshot))
	}
	return err
}

type rocksPartition struct {
	db rocksdb.DB
	cf rocksdb.ColumnFamilyHandle
}

func (p *rocksPartition) newCursor() (Cursor, error) {
	return &rocksCursor{it: p.db.NewIteratorCF(rocksdb.DefaultReadOptions(), p.cf)}, nil
}

type rocksCursor struct {
	it rocksdb.Iterator
}

func (c *rocksCursor) SeekToFirst()    { c.it.SeekToFirst() }
func (c *rocksCursor) Seek(key []byte) { c.it.Seek(key) }
func (c *rocksCursor) Valid() bool     { return c.it.Valid() }
func (c *rocksCursor) Next()           { c.it.Next() }
func (c *rocksCursor) Key() []byte     { return c.it.Key() }
func (c *rocksCursor) Value() []byte   { return c.it.Value() }
func (c *rocksCursor) Err() error      { return c.it.Error() }
func (c *rocksCursor) Close() error    { return c.it.Close() }
