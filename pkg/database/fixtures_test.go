package database

import (
	"os"
	"sort"

	"github.com/luxfi/cfdump/pkg/database/dbtest"

	. "github.com/onsi/gomega"
)

type kv = dbtest.KV

func writeRocks(dir string, data map[string][]kv) {
	Expect(dbtest.WriteRocks(dir, data)).To(Succeed())
}

func writePebble(dir string, entries []kv) {
	Expect(dbtest.WritePebble(dir, entries)).To(Succeed())
}

func writeLevel(dir string, entries []kv) {
	Expect(dbtest.WriteLevel(dir, entries)).To(Succeed())
}

func writeBadger(dir string, entries []kv) {
	Expect(dbtest.WriteBadger(dir, entries)).To(Succeed())
}

// collect drains a fresh cursor over p.
func collect(p *Partition) []kv {
	c, err := p.NewCursor()
	Expect(err).NotTo(HaveOccurred())
	defer c.Close()

	var out []kv
	for c.SeekToFirst(); c.Valid(); c.Next() {
		out = append(out, kv{Key: string(c.Key()), Value: string(c.Value())})
	}
	Expect(c.Err()).NotTo(HaveOccurred())
	return out
}

// listFiles returns the sorted file names in dir.
func listFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	Expect(err).NotTo(HaveOccurred())

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}
