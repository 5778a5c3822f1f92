package configs

import "strconv"

const (
	// DefaultPrefix names the numbered partitions: col0, col1, ...
	DefaultPrefix = "col"
	// DefaultCount is the number of numbered partitions opened by default.
	DefaultCount = 12
)

// DumpProperties are printed after a store is loaded.
var DumpProperties = []string{"rocksdb.stats"}

// StatsProperties are the diagnostic properties shown by the stats command.
var StatsProperties = []string{
	"rocksdb.num-files-at-level0",
	"rocksdb.num-files-at-level1",
	"rocksdb.num-files-at-level2",
	"rocksdb.num-files-at-level3",
	"rocksdb.num-files-at-level4",
	"rocksdb.num-files-at-level5",
	"rocksdb.num-files-at-level6",
	"rocksdb.estimate-num-keys",
	"rocksdb.estimate-table-readers-mem",
	"rocksdb.cur-size-all-mem-tables",
	"rocksdb.live-sst-files-size",
	"rocksdb.is-write-stopped",
	"rocksdb.background-errors",
	"rocksdb.levelstats",
	"rocksdb.stats",
	"pebble.metrics",
	"leveldb.stats",
	"leveldb.sstables",
	"badger.levels",
	"badger.size",
}

// Descriptors returns the default partition followed by count numbered
// partitions named prefix0 through prefix{count-1}.
func Descriptors(prefix string, count int) []string {
	out := make([]string, 0, count+1)
	out = append(out, "default")
	for i := 0; i < count; i++ {
		out = append(out, prefix+strconv.Itoa(i))
	}
	return out
}

// DefaultDescriptors is the partition set opened when nothing is configured.
func DefaultDescriptors() []string {
	return Descriptors(DefaultPrefix, DefaultCount)
}
