package inspect

import (
	"bytes"
	"context"
	"fmt"

	"github.com/luxfi/cfdump/pkg/database"
)

// Inspector provides scans over the partitions of an open store.
type Inspector struct {
	store *database.Store
}

// NewInspector creates an inspector over store. The caller keeps ownership
// of the store.
func NewInspector(store *database.Store) *Inspector {
	return &Inspector{store: store}
}

// ScanResult holds a copied key/value pair.
type ScanResult struct {
	Key   []byte
	Value []byte
}

// ScanOptions bound a scan. From positions the cursor; Prefix ends the scan
// at the first key that does not carry it.
type ScanOptions struct {
	Prefix []byte
	From   []byte
	Limit  int
}

// Walk calls fn for each entry of partition matching opts. The slices passed
// to fn are only valid for the duration of the call.
func (i *Inspector) Walk(ctx context.Context, partition string, opts ScanOptions, fn func(key, value []byte) error) error {
	p, err := i.store.Partition(partition)
	if err != nil {
		return err
	}

	cursor, err := p.NewCursor()
	if err != nil {
		return err
	}
	defer cursor.Close()

	start := opts.From
	if bytes.Compare(opts.Prefix, start) > 0 {
		start = opts.Prefix
	}
	if len(start) > 0 {
		cursor.Seek(start)
	} else {
		cursor.SeekToFirst()
	}

	n := 0
	for ; cursor.Valid(); cursor.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		key := cursor.Key()
		if len(opts.Prefix) > 0 && !bytes.HasPrefix(key, opts.Prefix) {
			break
		}
		if err := fn(key, cursor.Value()); err != nil {
			return err
		}
		n++
		if opts.Limit > 0 && n >= opts.Limit {
			break
		}
	}

	if err := cursor.Err(); err != nil {
		return fmt.Errorf("iterator error: %w", err)
	}
	return nil
}

// Scan returns copies of the entries of partition matching opts.
func (i *Inspector) Scan(ctx context.Context, partition string, opts ScanOptions) ([]ScanResult, error) {
	var results []ScanResult
	err := i.Walk(ctx, partition, opts, func(key, value []byte) error {
		results = append(results, ScanResult{
			Key:   bytes.Clone(key),
			Value: bytes.Clone(value),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}
