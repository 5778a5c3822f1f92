package export

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/luxfi/log"
	"gopkg.in/yaml.v3"

	"github.com/luxfi/cfdump/pkg/database"
	"github.com/luxfi/cfdump/pkg/database/dbtest"
	"github.com/luxfi/cfdump/pkg/render"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Exporter", func() {
	var (
		tmp   string
		store *database.Store
		ctx   context.Context
		run   Run
	)

	BeforeEach(func() {
		tmp = GinkgoT().TempDir()
		dir := filepath.Join(tmp, "store")
		Expect(dbtest.WriteRocks(dir, dbtest.Partitions{
			database.DefaultPartition: {{Key: "a", Value: "1"}},
			"col0":                    {{Key: "\x00bin", Value: "\xfe\xff"}, {Key: "z", Value: "26"}},
			"col1":                    {},
		})).To(Succeed())

		var err error
		store, err = database.Open(dir, []string{"col0", "col1"}, database.Options{Engine: database.EngineRocksDB})
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(store.Close)

		ctx = context.Background()
		run = Run{
			ID:        uuid.Must(uuid.NewV7()).String(),
			Source:    dir,
			Engine:    database.EngineRocksDB,
			CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		}
	})

	DescribeTable("ParseFormat",
		func(in string, want Format, ok bool) {
			got, err := ParseFormat(in)
			if !ok {
				Expect(err).To(HaveOccurred())
				return
			}
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		},
		Entry("jsonl", "jsonl", JSONL, true),
		Entry("json alias", "JSON", JSONL, true),
		Entry("yml alias", "yml", YAML, true),
		Entry("sqlite", "sqlite", SQLite, true),
		Entry("csv", "csv", Format(""), false),
	)

	It("writes one JSON line per entry", func() {
		var buf bytes.Buffer
		counts, err := New(log.NewLogger("test"), JSONL, render.Raw).Export(ctx, store, &buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(counts).To(Equal(map[string]int{"default": 1, "col0": 2, "col1": 0}))

		var records []Record
		scanner := bufio.NewScanner(&buf)
		for scanner.Scan() {
			var r Record
			Expect(json.Unmarshal(scanner.Bytes(), &r)).To(Succeed())
			records = append(records, r)
		}
		Expect(records).To(Equal([]Record{
			{Partition: "default", Key: []byte("a"), Value: []byte("1")},
			{Partition: "col0", Key: []byte("\x00bin"), Value: []byte("\xfe\xff")},
			{Partition: "col0", Key: []byte("z"), Value: []byte("26")},
		}))
	})

	It("writes one YAML document per entry", func() {
		var buf bytes.Buffer
		_, err := New(log.NewLogger("test"), YAML, render.Auto).Export(ctx, store, &buf)
		Expect(err).NotTo(HaveOccurred())

		dec := yaml.NewDecoder(&buf)
		var docs []Document
		for {
			var d Document
			err := dec.Decode(&d)
			if errors.Is(err, io.EOF) {
				break
			}
			Expect(err).NotTo(HaveOccurred())
			docs = append(docs, d)
		}
		Expect(docs).To(HaveLen(3))
		Expect(docs[1]).To(Equal(Document{Partition: "col0", Key: "0062696e", Value: "feff"}))
	})

	It("refuses to stream sqlite", func() {
		_, err := New(log.NewLogger("test"), SQLite, render.Raw).Export(ctx, store, io.Discard)
		Expect(err).To(HaveOccurred())
	})

	It("writes a run into a sqlite file", func() {
		path := filepath.Join(tmp, "export.db")
		counts, err := New(log.NewLogger("test"), SQLite, render.Raw).ExportFile(ctx, store, run, path)
		Expect(err).NotTo(HaveOccurred())
		Expect(counts["col0"]).To(Equal(2))

		db, err := sql.Open("sqlite3", path)
		Expect(err).NotTo(HaveOccurred())
		defer db.Close()

		var source, engine string
		Expect(db.QueryRow(`SELECT source, engine FROM export_runs WHERE run_id = ?`, run.ID).
			Scan(&source, &engine)).To(Succeed())
		Expect(source).To(Equal(run.Source))
		Expect(engine).To(Equal("rocksdb"))

		var value []byte
		Expect(db.QueryRow(`SELECT value FROM entries WHERE run_id = ? AND partition = ? AND key = ?`,
			run.ID, "col0", []byte("\x00bin")).Scan(&value)).To(Succeed())
		Expect(value).To(Equal([]byte("\xfe\xff")))

		var n int
		Expect(db.QueryRow(`SELECT COUNT(*) FROM entries WHERE run_id = ?`, run.ID).Scan(&n)).To(Succeed())
		Expect(n).To(Equal(3))
	})

	It("keeps earlier runs in the same sqlite file", func() {
		path := filepath.Join(tmp, "export.db")
		exporter := New(log.NewLogger("test"), SQLite, render.Raw)
		_, err := exporter.ExportFile(ctx, store, run, path)
		Expect(err).NotTo(HaveOccurred())

		second := run
		second.ID = uuid.Must(uuid.NewV7()).String()
		_, err = exporter.ExportFile(ctx, store, second, path)
		Expect(err).NotTo(HaveOccurred())

		db, err := sql.Open("sqlite3", path)
		Expect(err).NotTo(HaveOccurred())
		defer db.Close()

		var runs int
		Expect(db.QueryRow(`SELECT COUNT(*) FROM export_runs`).Scan(&runs)).To(Succeed())
		Expect(runs).To(Equal(2))
	})

	It("rolls back a cancelled sqlite export", func() {
		path := filepath.Join(tmp, "export.db")
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := New(log.NewLogger("test"), SQLite, render.Raw).ExportFile(cancelled, store, run, path)
		Expect(err).To(MatchError(context.Canceled))
	})
})
