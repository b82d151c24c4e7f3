package library

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/coffersTech/logfilter/internal/log"
	"github.com/coffersTech/logfilter/internal/metrics"
	"github.com/coffersTech/logfilter/internal/pkg/filterql"
)

var (
	ErrNotFound    = errors.New("filter not found")
	ErrInvalidName = errors.New("invalid filter name")
)

// Filter is a named, saved query.
type Filter struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Query string `json:"query"`
	Mode  string `json:"mode"`
	// Warnings are the diagnostics of the last parse. A filter with
	// warnings is still saved.
	Warnings  []string `json:"warnings,omitempty"`
	CreatedAt int64    `json:"created_at"`
	UpdatedAt int64    `json:"updated_at"`
}

// Store holds saved filters keyed by name.
type Store struct {
	mu      sync.RWMutex
	filters map[string]*Filter
	version uint64 // bumped on every mutation
	saved   uint64 // version of the last successful Save or Load

	parser  filterql.Options
	codec   *snapshotCodec
	logger  log.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithParser sets the options used to parse saved queries.
func WithParser(opts filterql.Options) Option {
	return func(s *Store) { s.parser = opts }
}

func WithLogger(logger log.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// NewStore creates an empty store.
func NewStore(opts ...Option) (*Store, error) {
	codec, err := newSnapshotCodec()
	if err != nil {
		return nil, err
	}
	s := &Store{
		filters: make(map[string]*Filter),
		codec:   codec,
		logger:  log.NewNopLogger(),
		metrics: metrics.NopMetrics(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Put saves query under name, replacing any previous filter with that name.
// The ID and CreatedAt of an existing filter are preserved.
func (s *Store) Put(name, query string) (Filter, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, "/?#") {
		return Filter{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	f := Filter{Name: name, Query: query}
	s.analyze(&f)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().Unix()
	if existing, ok := s.filters[name]; ok {
		f.ID = existing.ID
		f.CreatedAt = existing.CreatedAt
	} else {
		f.ID = uuid.NewString()
		f.CreatedAt = now
	}
	f.UpdatedAt = now

	s.filters[name] = &f
	s.version++
	s.metrics.Filters.Set(float64(len(s.filters)))
	return f.clone(), nil
}

// analyze parses f.Query and records its mode and diagnostics.
func (s *Store) analyze(f *Filter) {
	q := s.parser.Parse(f.Query)
	f.Mode = string(q.Mode)
	f.Warnings = nil
	for _, err := range q.Errors() {
		f.Warnings = append(f.Warnings, err.Error())
	}
}

// Get returns a copy of the named filter.
func (s *Store) Get(name string) (Filter, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.filters[name]
	if !ok {
		return Filter{}, false
	}
	return f.clone(), true
}

// List returns all filters sorted by name.
func (s *Store) List() []Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]Filter, 0, len(s.filters))
	for _, f := range s.filters {
		list = append(list, f.clone())
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// Delete removes the named filter.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.filters[name]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	delete(s.filters, name)
	s.version++
	s.metrics.Filters.Set(float64(len(s.filters)))
	return nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.filters)
}

// Dirty reports whether the store changed since the last Save or Load.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version != s.saved
}

// StartAutosave saves the store to path every interval while it is dirty,
// and once more when ctx is cancelled. The returned channel is closed after
// the final save.
func (s *Store) StartAutosave(ctx context.Context, path string, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	ticker := time.NewTicker(interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.saveIfDirty(path)
			case <-ctx.Done():
				s.saveIfDirty(path)
				return
			}
		}
	}()
	return done
}

func (s *Store) saveIfDirty(path string) {
	if !s.Dirty() {
		return
	}
	if err := s.Save(path); err != nil {
		s.logger.Error("autosave failed", "path", path, "err", err)
		return
	}
	s.logger.Debug("autosaved filter library", "path", path, "filters", s.Len())
}

func (f *Filter) clone() Filter {
	c := *f
	if f.Warnings != nil {
		c.Warnings = append([]string(nil), f.Warnings...)
	}
	return c
}
