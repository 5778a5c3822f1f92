package dump

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/luxfi/log"

	"github.com/luxfi/cfdump/pkg/database"
	"github.com/luxfi/cfdump/pkg/metrics"
	"github.com/luxfi/cfdump/pkg/render"
)

// Options control what a dump prints.
type Options struct {
	Format     render.Format
	Limit      int
	Properties []string
	// KeepGoing continues with the next partition after an iteration failure
	// instead of skipping the rest.
	KeepGoing bool
}

// Dumper opens a store, prints its properties and every entry of every
// requested partition, then releases all handles.
type Dumper struct {
	Out     io.Writer
	Log     log.Logger
	Metrics *metrics.Metrics
	Options Options
}

// New creates a Dumper writing to out.
func New(out io.Writer, logger log.Logger, m *metrics.Metrics, opts Options) *Dumper {
	return &Dumper{Out: out, Log: logger, Metrics: m, Options: opts}
}

// PartitionReport is the outcome of dumping one partition.
type PartitionReport struct {
	Name    string
	Entries int
	Err     error
	Skipped bool
}

// Report is the outcome of a Run.
type Report struct {
	Path       string
	Engine     database.Engine
	Partitions []PartitionReport
	OpenErr    error
	CloseErr   error
}

// Entries returns the number of entries printed across all partitions.
func (r *Report) Entries() int {
	n := 0
	for _, p := range r.Partitions {
		n += p.Entries
	}
	return n
}

// Err joins every failure recorded in the report.
func (r *Report) Err() error {
	var errs []error
	if r.OpenErr != nil {
		errs = append(errs, fmt.Errorf("open: %w", r.OpenErr))
	}
	for _, p := range r.Partitions {
		if p.Err != nil {
			errs = append(errs, fmt.Errorf("partition %s: %w", p.Name, p.Err))
		}
	}
	if r.CloseErr != nil {
		errs = append(errs, fmt.Errorf("close: %w", r.CloseErr))
	}
	return errors.Join(errs...)
}

// Run performs open, property listing, iteration and cleanup in that order.
// Failures are printed and recorded; cleanup always runs.
func (d *Dumper) Run(ctx context.Context, path string, descriptors []string, opts database.Options) *Report {
	report := &Report{Path: path, Engine: opts.Engine}

	descriptors = database.NormalizeDescriptors(descriptors)
	for _, name := range descriptors {
		d.printf("Column family name: %s\n", name)
	}

	if opts.Metrics == nil {
		opts.Metrics = d.Metrics
	}
	store, err := database.Open(path, descriptors, opts)
	if err != nil {
		report.OpenErr = err
		d.printf("Error loading store\n%v\n", err)
		d.Log.Error("Failed to open store", "path", path, "error", err)
	} else {
		report.Engine = store.Engine()
		d.printf("Loaded store\n")
		d.Log.Info("Opened store", "path", path, "engine", store.Engine(), "partitions", len(store.Partitions()))
		d.printProperties(store)
	}

	d.printf("Attempting to iterate\n")
	var parts []*database.Partition
	if store != nil {
		parts = store.Partitions()
	}
	targets := make([]partition, len(parts))
	for i, p := range parts {
		targets[i] = p
	}
	report.Partitions = d.iterate(ctx, targets)

	// Partition handles go before the store handle.
	var closeErrs []error
	for _, p := range parts {
		if err := p.Release(); err != nil {
			closeErrs = append(closeErrs, fmt.Errorf("release %s: %w", p.Name(), err))
		}
	}
	if store != nil {
		if err := store.Close(); err != nil {
			closeErrs = append(closeErrs, err)
		}
	}
	report.CloseErr = errors.Join(closeErrs...)

	d.Log.Info("Dump finished",
		"path", path,
		"partitions", len(report.Partitions),
		"entries", report.Entries(),
		"failed", report.Err() != nil)
	return report
}

// partition is the part of a store partition a dump reads from.
type partition interface {
	Name() string
	NewCursor() (database.Cursor, error)
}

// iterate dumps parts in order. A failed partition stops the iteration
// unless KeepGoing is set; a cancelled context always stops it.
func (d *Dumper) iterate(ctx context.Context, parts []partition) []PartitionReport {
	reports := make([]PartitionReport, 0, len(parts))
	stop := false
	for _, p := range parts {
		if stop {
			reports = append(reports, PartitionReport{Name: p.Name(), Skipped: true})
			continue
		}

		pr := d.dumpPartition(ctx, p)
		reports = append(reports, pr)
		if pr.Err != nil {
			d.printf("Error reading column family %s: %v\n", p.Name(), pr.Err)
			d.Log.Error("Failed to read partition", "partition", p.Name(), "error", pr.Err)
			d.Metrics.ObserveError(p.Name())
			if !d.Options.KeepGoing || ctx.Err() != nil {
				stop = true
			}
		}
	}
	return reports
}

func (d *Dumper) printProperties(store *database.Store) {
	for _, name := range d.Options.Properties {
		value, ok := store.Property(name)
		if !ok {
			d.printf("%s: (unavailable)\n", name)
			continue
		}
		d.printf("%s\n", strings.TrimRight(value, "\n"))
	}
}

func (d *Dumper) dumpPartition(ctx context.Context, p partition) (pr PartitionReport) {
	pr.Name = p.Name()
	d.printf("Reading column family: %s\n", p.Name())

	start := time.Now()
	defer func() { d.Metrics.ObserveScan(p.Name(), time.Since(start)) }()

	if err := ctx.Err(); err != nil {
		pr.Err = err
		return pr
	}

	cursor, err := p.NewCursor()
	if err != nil {
		pr.Err = err
		return pr
	}
	defer func() {
		if err := cursor.Close(); err != nil && pr.Err == nil {
			pr.Err = fmt.Errorf("failed to close cursor: %w", err)
		}
	}()

	f := d.Options.Format
	for cursor.SeekToFirst(); cursor.Valid(); cursor.Next() {
		if err := ctx.Err(); err != nil {
			pr.Err = err
			return pr
		}
		key, value := cursor.Key(), cursor.Value()
		d.printf("key: %s, value: %s\n", f.Bytes(key), f.Bytes(value))
		d.Metrics.ObserveEntry(p.Name(), key, value)
		pr.Entries++

		if d.Options.Limit > 0 && pr.Entries >= d.Options.Limit {
			break
		}
	}
	if err := cursor.Err(); err != nil {
		pr.Err = fmt.Errorf("iterator error: %w", err)
	}
	return pr
}

func (d *Dumper) printf(format string, args ...any) {
	fmt.Fprintf(d.Out, format, args...)
}
