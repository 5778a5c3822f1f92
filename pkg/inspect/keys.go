package inspect

import (
	"context"
	"sort"
)

const maxSampleKeys = 10

// PrefixCount is the number of keys sharing a first byte.
type PrefixCount struct {
	Prefix byte
	Count  int
}

// KeyStats summarizes the keys of one partition.
type KeyStats struct {
	Partition  string
	Keys       int
	KeyBytes   int64
	ValueBytes int64
	Prefixes   []PrefixCount
	Samples    [][]byte
}

// KeyStats counts keys by their first byte and keeps a few sample keys.
// A limit of zero examines every key.
func (i *Inspector) KeyStats(ctx context.Context, partition string, limit int) (*KeyStats, error) {
	stats := &KeyStats{Partition: partition}
	counts := make(map[byte]int)

	err := i.Walk(ctx, partition, ScanOptions{Limit: limit}, func(key, value []byte) error {
		stats.Keys++
		stats.KeyBytes += int64(len(key))
		stats.ValueBytes += int64(len(value))
		if len(key) > 0 {
			counts[key[0]]++
		}
		if len(stats.Samples) < maxSampleKeys {
			stats.Samples = append(stats.Samples, append([]byte(nil), key...))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for prefix, n := range counts {
		stats.Prefixes = append(stats.Prefixes, PrefixCount{Prefix: prefix, Count: n})
	}
	sort.Slice(stats.Prefixes, func(a, b int) bool {
		if stats.Prefixes[a].Count != stats.Prefixes[b].Count {
			return stats.Prefixes[a].Count > stats.Prefixes[b].Count
		}
		return stats.Prefixes[a].Prefix < stats.Prefixes[b].Prefix
	})
	return stats, nil
}
