package database

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("DetectEngine", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	touch := func(name, content string) {
		Expect(os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644)).To(Succeed())
	}

	It("recognizes a rocksdb OPTIONS file", func() {
		touch("CURRENT", "MANIFEST-000005\n")
		touch("MANIFEST-000005", "")
		touch("OPTIONS-000007", "[Version]\n  rocksdb_version=10.7.5\n")
		Expect(DetectEngine(dir)).To(Equal(EngineRocksDB))
	})

	It("recognizes pebble by its format marker", func() {
		touch("MARKER.format-version.000001.013", "")
		touch("OPTIONS-000003", "[Version]\n  pebble_version=0.1\n")
		Expect(DetectEngine(dir)).To(Equal(EnginePebble))
	})

	It("recognizes pebble by its OPTIONS file", func() {
		touch("MANIFEST-000001", "")
		touch("OPTIONS-000003", "[Version]\n  pebble_version=0.1\n")
		Expect(DetectEngine(dir)).To(Equal(EnginePebble))
	})

	It("recognizes badger", func() {
		touch("KEYREGISTRY", "")
		touch("000001.vlog", "")
		Expect(DetectEngine(dir)).To(Equal(EngineBadger))
	})

	It("recognizes leveldb tables", func() {
		touch("CURRENT", "MANIFEST-000002\n")
		touch("MANIFEST-000002", "")
		touch("000005.ldb", "")
		Expect(DetectEngine(dir)).To(Equal(EngineLevelDB))
	})

	It("treats a bare manifest as rocksdb", func() {
		touch("CURRENT", "MANIFEST-000002\n")
		touch("MANIFEST-000002", "")
		Expect(DetectEngine(dir)).To(Equal(EngineRocksDB))
	})

	It("recognizes a rocksdb info log", func() {
		touch("CURRENT", "MANIFEST-000002\n")
		touch("MANIFEST-000002", "")
		touch("LOG", "2026/10/14-10:00:00.000000 7f00 RocksDB version: 10.7.5\n")
		Expect(DetectEngine(dir)).To(Equal(EngineRocksDB))
	})

	It("refuses a manifest next to an unknown info log", func() {
		touch("CURRENT", "MANIFEST-000002\n")
		touch("MANIFEST-000002", "")
		touch("LOG", "something else\n")
		_, err := DetectEngine(dir)
		Expect(err).To(MatchError(ErrUnknownEngine))
	})

	Context("on stores written by their engines", func() {
		It("recognizes a fresh leveldb before it has tables", func() {
			store := filepath.Join(dir, "level")
			writeLevel(store, []kv{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}})
			before := listFiles(store)
			Expect(before).NotTo(ContainElement(HaveSuffix(".ldb")))

			Expect(DetectEngine(store)).To(Equal(EngineLevelDB))

			s, err := Open(store, nil, Options{ReadOnly: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Engine()).To(Equal(EngineLevelDB))
			Expect(s.Close()).To(Succeed())
			Expect(listFiles(store)).To(Equal(before))
		})

		It("recognizes a rockyardkv store", func() {
			store := filepath.Join(dir, "rocks")
			writeRocks(store, map[string][]kv{"col0": {{Key: "a", Value: "1"}}})
			Expect(DetectEngine(store)).To(Equal(EngineRocksDB))
		})

		It("recognizes pebble and badger", func() {
			writePebble(filepath.Join(dir, "pebble"), []kv{{Key: "a", Value: "1"}})
			writeBadger(filepath.Join(dir, "badger"), []kv{{Key: "a", Value: "1"}})
			Expect(DetectEngine(filepath.Join(dir, "pebble"))).To(Equal(EnginePebble))
			Expect(DetectEngine(filepath.Join(dir, "badger"))).To(Equal(EngineBadger))
		})
	})

	It("fails on an empty directory", func() {
		_, err := DetectEngine(dir)
		Expect(err).To(MatchError(ErrUnknownEngine))
	})

	It("fails on a missing directory", func() {
		_, err := DetectEngine(filepath.Join(dir, "missing"))
		Expect(err).To(MatchError(ErrStoreNotFound))
	})
})
