package server_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"

	"github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/cfdump/pkg/database"
	"github.com/luxfi/cfdump/pkg/database/dbtest"
	"github.com/luxfi/cfdump/pkg/metrics"
	"github.com/luxfi/cfdump/pkg/server"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Server", func() {
	var (
		ts  *httptest.Server
		reg *prometheus.Registry
	)

	get := func(path string, into any) int {
		resp, err := http.Get(ts.URL + path)
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		if into != nil {
			Expect(json.NewDecoder(resp.Body).Decode(into)).To(Succeed())
		}
		return resp.StatusCode
	}

	BeforeEach(func() {
		dir := filepath.Join(GinkgoT().TempDir(), "store")
		Expect(dbtest.WriteRocks(dir, dbtest.Partitions{
			database.DefaultPartition: {{Key: "a", Value: "1"}, {Key: "b", Value: "2"}, {Key: "c", Value: "3"}},
			"col0":                    {{Key: "\x01k", Value: "v"}, {Key: "user:1", Value: "alice"}},
		})).To(Succeed())

		reg = prometheus.NewRegistry()
		store, err := database.Open(dir, []string{"col0"}, database.Options{
			Engine:   database.EngineRocksDB,
			ReadOnly: true,
			Metrics:  metrics.New(reg),
		})
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(store.Close)

		ts = httptest.NewServer(server.New(store, reg, log.NewLogger("test"), "").Router())
		DeferCleanup(ts.Close)
	})

	It("reports health", func() {
		var body server.Response
		Expect(get("/health", &body)).To(Equal(http.StatusOK))
		Expect(body.Status).To(Equal(server.StatusOK))
	})

	It("lists the opened partitions", func() {
		var body server.PartitionsResponse
		Expect(get("/partitions", &body)).To(Equal(http.StatusOK))
		Expect(body).To(Equal(server.PartitionsResponse{Engine: "rocksdb", Partitions: []string{"default", "col0"}}))
	})

	It("pages through entries", func() {
		var page server.EntriesResponse
		Expect(get("/partitions/default/entries?limit=2", &page)).To(Equal(http.StatusOK))
		Expect(page.Entries).To(Equal([]server.Entry{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}}))
		Expect(page.Next).To(Equal("0x63"))

		var rest server.EntriesResponse
		Expect(get("/partitions/default/entries?from="+page.Next, &rest)).To(Equal(http.StatusOK))
		Expect(rest.Entries).To(Equal([]server.Entry{{Key: "c", Value: "3"}}))
		Expect(rest.Next).To(BeEmpty())
	})

	It("filters by prefix and renders binary keys", func() {
		var page server.EntriesResponse
		Expect(get("/partitions/col0/entries?prefix=0x01", &page)).To(Equal(http.StatusOK))
		Expect(page.Entries).To(Equal([]server.Entry{{Key: "016b", Value: "v"}}))

		Expect(get("/partitions/col0/entries?prefix=user:&format=hex", &page)).To(Equal(http.StatusOK))
		Expect(page.Format).To(Equal("hex"))
		Expect(page.Entries).To(Equal([]server.Entry{{Key: "757365723a31", Value: "616c696365"}}))
	})

	DescribeTable("rejects bad queries",
		func(path string, status int) {
			var body server.Response
			Expect(get(path, &body)).To(Equal(status))
			Expect(body.Status).To(Equal(server.StatusError))
		},
		Entry("zero limit", "/partitions/default/entries?limit=0", http.StatusBadRequest),
		Entry("text limit", "/partitions/default/entries?limit=many", http.StatusBadRequest),
		Entry("bad format", "/partitions/default/entries?format=base64", http.StatusBadRequest),
		Entry("unknown partition", "/partitions/col9/entries", http.StatusNotFound),
		Entry("unknown property", "/properties/rocksdb.nope", http.StatusNotFound),
	)

	It("serves store properties", func() {
		var body server.PropertyResponse
		Expect(get("/properties/rocksdb.stats", &body)).To(Equal(http.StatusOK))
		Expect(body.Name).To(Equal("rocksdb.stats"))
	})

	It("exposes metrics", func() {
		resp, err := http.Get(ts.URL + "/metrics")
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		text, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(text)).To(ContainSubstring("cfdump_open_handles 3"))
	})

	It("starts and stops on a real listener", func() {
		srv := server.New(nil, nil, log.NewLogger("test"), "127.0.0.1:0")
		Expect(srv.Start()).To(Succeed())

		resp, err := http.Get("http://" + srv.Addr() + "/health")
		Expect(err).NotTo(HaveOccurred())
		resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		Expect(srv.Stop()).To(Succeed())
	})
})
