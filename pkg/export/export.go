package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/luxfi/log"

	"github.com/luxfi/cfdump/pkg/database"
	"github.com/luxfi/cfdump/pkg/inspect"
	"github.com/luxfi/cfdump/pkg/render"
)

// Format is an export file format.
type Format string

const (
	JSONL  Format = "jsonl"
	YAML   Format = "yaml"
	SQLite Format = "sqlite"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case JSONL, YAML, SQLite:
		return f, nil
	case "json":
		return JSONL, nil
	case "yml":
		return YAML, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want jsonl, yaml or sqlite)", s)
	}
}

// sink receives the entries of one partition at a time.
type sink interface {
	begin(partition string) error
	entry(key, value []byte) error
	// finish flushes the sink. A non-nil cause discards what was written
	// where the format allows it.
	finish(cause error) error
}

// Run identifies one export in the written output.
type Run struct {
	ID        string
	Source    string
	Engine    database.Engine
	CreatedAt time.Time
}

// Exporter copies every partition of an open store into a file.
type Exporter struct {
	Log    log.Logger
	Format Format
	// Render is used for text formats that carry keys as strings.
	Render render.Format
}

// New creates an Exporter.
func New(logger log.Logger, format Format, r render.Format) *Exporter {
	return &Exporter{Log: logger, Format: format, Render: r}
}

// ExportFile writes store to path and returns the entry count per partition.
func (e *Exporter) ExportFile(ctx context.Context, store *database.Store, run Run, path string) (map[string]int, error) {
	if e.Format == SQLite {
		s, err := newSQLiteSink(ctx, path, run)
		if err != nil {
			return nil, err
		}
		return e.export(ctx, store, s)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create export file: %w", err)
	}
	counts, err := e.Export(ctx, store, f)
	return counts, errors.Join(err, f.Close())
}

// Export streams store to w in a text format.
func (e *Exporter) Export(ctx context.Context, store *database.Store, w io.Writer) (map[string]int, error) {
	switch e.Format {
	case JSONL:
		return e.export(ctx, store, newJSONLSink(w))
	case YAML:
		return e.export(ctx, store, newYAMLSink(w, e.Render))
	default:
		return nil, fmt.Errorf("format %q cannot be streamed", e.Format)
	}
}

func (e *Exporter) export(ctx context.Context, store *database.Store, s sink) (map[string]int, error) {
	inspector := inspect.NewInspector(store)
	counts := make(map[string]int)

	for _, p := range store.Partitions() {
		counts[p.Name()] = 0
		if err := s.begin(p.Name()); err != nil {
			return counts, errors.Join(err, s.finish(err))
		}

		err := inspector.Walk(ctx, p.Name(), inspect.ScanOptions{}, func(key, value []byte) error {
			counts[p.Name()]++
			return s.entry(key, value)
		})
		if err != nil {
			err = fmt.Errorf("failed to export %s: %w", p.Name(), err)
			return counts, errors.Join(err, s.finish(err))
		}
		e.Log.Debug("Exported partition", "partition", p.Name(), "entries", counts[p.Name()])
	}

	return counts, s.finish(nil)
}
