package dump_test

import (
	"bytes"
	"context"
	"path/filepath"

	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/luxfi/cfdump/pkg/database"
	"github.com/luxfi/cfdump/pkg/database/dbtest"
	"github.com/luxfi/cfdump/pkg/dump"
	"github.com/luxfi/cfdump/pkg/metrics"
	"github.com/luxfi/cfdump/pkg/render"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var fixture = dbtest.Partitions{
	database.DefaultPartition: {{Key: "app:version", Value: "1.0.0"}},
	"col0":                    {{Key: "b", Value: "2"}, {Key: "a", Value: "1"}, {Key: "c", Value: "3"}},
	"col1":                    {{Key: "\x01bin", Value: "\xff"}},
}

var _ = Describe("Dumper", func() {
	var (
		dir    string
		out    *bytes.Buffer
		m      *metrics.Metrics
		dumper *dump.Dumper
		opts   database.Options
	)

	BeforeEach(func() {
		dir = filepath.Join(GinkgoT().TempDir(), "store")
		Expect(dbtest.WriteRocks(dir, fixture)).To(Succeed())

		out = &bytes.Buffer{}
		m = metrics.New(prometheus.NewRegistry())
		dumper = dump.New(out, log.NewLogger("test"), m, dump.Options{Format: render.Raw})
		opts = database.Options{Engine: database.EngineRocksDB}
	})

	It("prints every partition in order and releases every handle", func() {
		report := dumper.Run(context.Background(), dir, []string{"default", "col0", "col1"}, opts)

		Expect(report.Err()).NotTo(HaveOccurred())
		Expect(report.Engine).To(Equal(database.EngineRocksDB))
		Expect(report.Entries()).To(Equal(5))
		Expect(report.Partitions).To(HaveLen(3))
		Expect(report.Partitions[1]).To(Equal(dump.PartitionReport{Name: "col0", Entries: 3}))

		text := out.String()
		Expect(text).To(ContainSubstring("Column family name: col1\nLoaded store\n"))
		Expect(text).To(ContainSubstring("Reading column family: col0\nkey: a, value: 1\nkey: b, value: 2\nkey: c, value: 3\n"))

		Expect(testutil.ToFloat64(m.OpenHandles)).To(BeZero())
		Expect(testutil.ToFloat64(m.Entries.WithLabelValues("col0"))).To(Equal(3.0))
		Expect(testutil.ToFloat64(m.Bytes.WithLabelValues("default", "key"))).To(Equal(11.0))
	})

	It("renders hex when asked to", func() {
		dumper.Options.Format = render.Auto
		report := dumper.Run(context.Background(), dir, []string{"col1"}, opts)
		Expect(report.Err()).NotTo(HaveOccurred())
		Expect(out.String()).To(ContainSubstring("key: 0162696e, value: ff\n"))
	})

	It("stops each partition at the limit", func() {
		dumper.Options.Limit = 1
		report := dumper.Run(context.Background(), dir, []string{"col0"}, opts)
		Expect(report.Err()).NotTo(HaveOccurred())
		Expect(report.Partitions[1].Entries).To(Equal(1))
		Expect(out.String()).NotTo(ContainSubstring("key: b"))
	})

	It("prints unavailable properties", func() {
		dumper.Options.Properties = []string{"rocksdb.not-a-property"}
		dumper.Run(context.Background(), dir, nil, opts)
		Expect(out.String()).To(ContainSubstring("rocksdb.not-a-property: (unavailable)\n"))
	})

	It("prints property values bare", func() {
		level := filepath.Join(GinkgoT().TempDir(), "level")
		Expect(dbtest.WriteLevel(level, []dbtest.KV{{Key: "k", Value: "v"}})).To(Succeed())
		dumper.Options.Properties = []string{"rocksdb.stats"}

		report := dumper.Run(context.Background(), level, nil, database.Options{Engine: database.EngineLevelDB, ReadOnly: true})
		Expect(report.Err()).NotTo(HaveOccurred())

		text := out.String()
		Expect(text).To(ContainSubstring("Loaded store\n"))
		Expect(text).NotTo(ContainSubstring("rocksdb.stats"))
		Expect(text).NotTo(ContainSubstring("(unavailable)"))
		Expect(text).NotTo(ContainSubstring("Loaded store\nAttempting to iterate"))
	})

	It("reports an open failure and still reaches cleanup", func() {
		report := dumper.Run(context.Background(), filepath.Join(dir, "missing"), []string{"default"}, opts)

		Expect(report.OpenErr).To(MatchError(database.ErrStoreNotFound))
		Expect(report.Err()).To(MatchError(database.ErrStoreNotFound))
		Expect(report.Partitions).To(BeEmpty())
		Expect(out.String()).To(ContainSubstring("Error loading store\n"))
		Expect(out.String()).To(HaveSuffix("Attempting to iterate\n"))
		Expect(testutil.ToFloat64(m.OpenHandles)).To(BeZero())
	})

	It("fails the open when a partition is missing", func() {
		report := dumper.Run(context.Background(), dir, []string{"col0", "col11"}, opts)
		Expect(report.OpenErr).To(MatchError(database.ErrPartitionNotFound))
		Expect(out.String()).NotTo(ContainSubstring("Reading column family"))
	})

	It("skips the remaining partitions once iteration fails", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		dumper.Options.KeepGoing = true

		report := dumper.Run(ctx, dir, []string{"col0", "col1"}, opts)

		Expect(report.Partitions[0].Err).To(MatchError(context.Canceled))
		Expect(report.Partitions[1].Skipped).To(BeTrue())
		Expect(report.Partitions[2].Skipped).To(BeTrue())
		Expect(out.String()).To(ContainSubstring("Error reading column family default"))
		Expect(testutil.ToFloat64(m.PartitionErrors.WithLabelValues("default"))).To(Equal(1.0))
		Expect(testutil.ToFloat64(m.OpenHandles)).To(BeZero())
	})
})
