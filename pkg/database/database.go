package database

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/luxfi/cfdump/pkg/metrics"
)

// DefaultPartition is the partition every store has.
const DefaultPartition = "default"

var (
	// ErrStoreNotFound is returned when the store directory does not exist.
	ErrStoreNotFound = errors.New("database: store not found")

	// ErrUnknownEngine is returned for an engine name that has no driver.
	ErrUnknownEngine = errors.New("database: unknown engine")

	// ErrPartitionNotFound is returned when a requested partition is not on disk.
	ErrPartitionNotFound = errors.New("database: partition not found")

	// ErrHandleReleased is returned when a handle is used or released after release.
	ErrHandleReleased = errors.New("database: handle already released")

	// ErrReadOnly is returned when a write is needed on a read-only store.
	ErrReadOnly = errors.New("database: store is opened read-only")
)

// Engine names a storage engine driver.
type Engine string

const (
	EngineAuto    Engine = "auto"
	EngineRocksDB Engine = "rocksdb"
	EnginePebble  Engine = "pebble"
	EngineLevelDB Engine = "leveldb"
	EngineBadger  Engine = "badger"
)

// Engines lists every concrete engine with a driver.
var Engines = []Engine{EngineRocksDB, EnginePebble, EngineLevelDB, EngineBadger}

// ParseEngine validates an engine name. The empty string means auto.
func ParseEngine(s string) (Engine, error) {
	switch e := Engine(strings.ToLower(strings.TrimSpace(s))); e {
	case "":
		return EngineAuto, nil
	case EngineAuto, EngineRocksDB, EnginePebble, EngineLevelDB, EngineBadger:
		return e, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEngine, s)
	}
}

// Options control how a store is opened. The store is never created.
type Options struct {
	Engine                  Engine
	ReadOnly                bool
	CreateMissingPartitions bool
	Metrics                 *metrics.Metrics
}

// Cursor is a movable position over a partition's sorted keys.
// Key and Value are only valid while Valid reports true and until the next move.
type Cursor interface {
	SeekToFirst()
	Seek(key []byte)
	Valid() bool
	Next()
	Key() []byte
	Value() []byte
	Err() error
	Close() error
}

// engineDB is implemented by every driver.
type engineDB interface {
	partition(name string, create bool) (enginePartition, error)
	property(name string) (string, bool)
	close() error
}

type enginePartition interface {
	newCursor() (Cursor, error)
}

// Open opens the existing store at path and resolves every descriptor to a
// partition handle. The default partition is always the first handle. When
// any descriptor cannot be resolved, every handle acquired so far is released
// and the store is closed before the error is returned.
func Open(path string, descriptors []string, opts Options) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrStoreNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat store: %w", err)
	}

	engine, err := resolveEngine(path, opts.Engine)
	if err != nil {
		return nil, err
	}

	db, err := openEngine(engine, path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", engine, err)
	}

	s := newStore(path, engine, db, opts.Metrics)

	var missing []string
	for _, name := range NormalizeDescriptors(descriptors) {
		ep, err := db.partition(name, opts.CreateMissingPartitions && !opts.ReadOnly)
		if err != nil {
			if errors.Is(err, ErrPartitionNotFound) {
				missing = append(missing, name)
				continue
			}
			return nil, errors.Join(fmt.Errorf("failed to open partition %q: %w", name, err), s.Close())
		}
		s.add(name, ep)
	}

	if len(missing) > 0 {
		err := fmt.Errorf("%w: %s", ErrPartitionNotFound, strings.Join(missing, ", "))
		return nil, errors.Join(err, s.Close())
	}
	return s, nil
}

// ListPartitions returns the partition names recorded on disk, default first.
func ListPartitions(path string, opts Options) ([]string, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrStoreNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat store: %w", err)
	}

	engine, err := resolveEngine(path, opts.Engine)
	if err != nil {
		return nil, err
	}
	if engine == EngineRocksDB {
		return listRocksPartitions(path)
	}
	return []string{DefaultPartition}, nil
}

func resolveEngine(path string, e Engine) (Engine, error) {
	if e == "" || e == EngineAuto {
		return DetectEngine(path)
	}
	if _, err := ParseEngine(string(e)); err != nil {
		return "", err
	}
	return e, nil
}

func openEngine(engine Engine, path string, opts Options) (engineDB, error) {
	switch engine {
	case EngineRocksDB:
		return openRocks(path, opts.ReadOnly)
	case EnginePebble:
		return openPebble(path, opts.ReadOnly)
	case EngineLevelDB:
		return openLevel(path, opts.ReadOnly)
	case EngineBadger:
		return openBadger(path, opts.ReadOnly)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
	}
}

// NormalizeDescriptors puts the default partition first and drops empty and
// duplicate names. Open resolves partitions in this order.
func NormalizeDescriptors(descriptors []string) []string {
	out := []string{DefaultPartition}
	seen := map[string]bool{DefaultPartition: true}
	for _, d := range descriptors {
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return out
}
