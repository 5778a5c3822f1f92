package database

import (
	"errors"
	"fmt"
	"sync"

	"github.com/luxfi/cfdump/pkg/metrics"
)

// Store is an open engine instance together with the partition handles
// resolved at open time.
type Store struct {
	path    string
	engine  Engine
	db      engineDB
	metrics *metrics.Metrics

	mu     sync.Mutex
	parts  []*Partition
	byName map[string]*Partition
	closed bool
}

func newStore(path string, engine Engine, db engineDB, m *metrics.Metrics) *Store {
	m.HandleAcquired()
	return &Store{
		path:    path,
		engine:  engine,
		db:      db,
		metrics: m,
		byName:  make(map[string]*Partition),
	}
}

func (s *Store) add(name string, ep enginePartition) {
	p := &Partition{name: name, ep: ep, store: s, cursors: make(map[*trackedCursor]struct{})}
	s.metrics.HandleAcquired()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.parts = append(s.parts, p)
	s.byName[name] = p
}

// Path returns the store directory.
func (s *Store) Path() string { return s.path }

// Engine returns the engine the store was opened with.
func (s *Store) Engine() Engine { return s.engine }

// Partitions returns the handles in descriptor order, default first.
func (s *Store) Partitions() []*Partition {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Partition, len(s.parts))
	copy(out, s.parts)
	return out
}

// Partition returns the handle opened for name.
func (s *Store) Partition(name string) (*Partition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrHandleReleased
	}
	p, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPartitionNotFound, name)
	}
	return p, nil
}

// Property returns an engine diagnostic property.
func (s *Store) Property(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", false
	}
	return s.db.property(name)
}

// Close releases every partition handle still held and then closes the
// engine. Closing twice returns ErrHandleReleased.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrHandleReleased
	}
	s.closed = true
	parts := s.parts
	s.mu.Unlock()

	var errs []error
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i].Released() {
			continue
		}
		if err := parts[i].Release(); err != nil && !errors.Is(err, ErrHandleReleased) {
			errs = append(errs, err)
		}
	}

	if err := s.db.close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close store: %w", err))
	}
	s.metrics.HandleReleased()
	return errors.Join(errs...)
}

// Partition is a handle to one named keyspace of an open store.
type Partition struct {
	name  string
	ep    enginePartition
	store *Store

	mu       sync.Mutex
	released bool
	cursors  map[*trackedCursor]struct{}
}

// Name returns the partition name.
func (p *Partition) Name() string { return p.name }

// Released reports whether Release has been called.
func (p *Partition) Released() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.released
}

// NewCursor opens a cursor over the partition. The cursor is unpositioned.
func (p *Partition) NewCursor() (Cursor, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return nil, ErrHandleReleased
	}

	c, err := p.ep.newCursor()
	if err != nil {
		return nil, fmt.Errorf("failed to create cursor on %q: %w", p.name, err)
	}
	tc := &trackedCursor{Cursor: c, owner: p}
	p.cursors[tc] = struct{}{}
	return tc, nil
}

// Release closes any cursor still open on the partition and invalidates the
// handle. It must be called exactly once.
func (p *Partition) Release() error {
	p.mu.Lock()
	if p.released {
		p.mu.Unlock()
		return ErrHandleReleased
	}
	p.released = true
	open := make([]*trackedCursor, 0, len(p.cursors))
	for c := range p.cursors {
		open = append(open, c)
	}
	p.mu.Unlock()

	var errs []error
	for _, c := range open {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	p.store.metrics.HandleReleased()
	return errors.Join(errs...)
}

func (p *Partition) forget(c *trackedCursor) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.cursors, c)
}

// trackedCursor closes its engine cursor once and detaches from its partition.
type trackedCursor struct {
	Cursor
	owner *Partition
	once  sync.Once
	err   error
}

func (c *trackedCursor) Close() error {
	c.once.Do(func() {
		c.err = c.Cursor.Close()
		c.owner.forget(c)
	})
	return c.err
}
