package library

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coffersTech/logfilter/internal/pkg/filterql"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := NewStore(opts...)
	require.NoError(t, err)
	return s
}

func TestStorePutAndGet(t *testing.T) {
	s := newTestStore(t)

	f, err := s.Put("errors", "level:error")
	require.NoError(t, err)
	assert.Equal(t, "errors", f.Name)
	assert.Equal(t, "phrase", f.Mode)
	assert.Empty(t, f.Warnings)
	_, err = uuid.Parse(f.ID)
	require.NoError(t, err)

	got, ok := s.Get("errors")
	require.True(t, ok)
	assert.Equal(t, f, got)

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestStorePutKeepsIdentity(t *testing.T) {
	s := newTestStore(t)
	clock := time.Unix(1000, 0)
	s.now = func() time.Time { return clock }

	first, err := s.Put("db", "service:db*")
	require.NoError(t, err)

	clock = clock.Add(time.Hour)
	second, err := s.Put("db", "service:db* and level:warn")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(1000), second.CreatedAt)
	assert.Equal(t, int64(4600), second.UpdatedAt)
	assert.Equal(t, "service:db* and level:warn", second.Query)
	assert.Equal(t, 1, s.Len())
}

func TestStorePutRecordsWarnings(t *testing.T) {
	s := newTestStore(t)

	f, err := s.Put("broken", "(a or b")
	require.NoError(t, err, "diagnostics never reject a filter")
	assert.Equal(t, "operation", f.Mode)
	assert.Equal(t, []string{"parse error at position 7: expected ')' to close group opened at 0"}, f.Warnings)
}

func TestStorePutParserOptions(t *testing.T) {
	s := newTestStore(t, WithParser(filterql.Options{MaxDepth: 1}))
	f, err := s.Put("deep", "((a))")
	require.NoError(t, err)
	require.Len(t, f.Warnings, 1)
	assert.Contains(t, f.Warnings[0], "maximum nesting depth 1 exceeded")
}

func TestStorePutInvalidName(t *testing.T) {
	s := newTestStore(t)
	for _, name := range []string{"", "   ", "a/b", "what?"} {
		_, err := s.Put(name, "x")
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
	assert.Zero(t, s.Len())
}

func TestStoreListSorted(t *testing.T) {
	s := newTestStore(t)
	for _, name := range []string{"zeta", "alpha", "mid"} {
		_, err := s.Put(name, "x")
		require.NoError(t, err)
	}

	var names []string
	for _, f := range s.List() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
}

func TestStoreDelete(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Put("a", "x")
	require.NoError(t, err)

	require.NoError(t, s.Delete("a"))
	assert.ErrorIs(t, s.Delete("a"), ErrNotFound)
	assert.Zero(t, s.Len())
}

func TestStoreGetReturnsCopy(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Put("a", "(x")
	require.NoError(t, err)

	f, _ := s.Get("a")
	f.Warnings[0] = "changed"
	f.Query = "changed"

	again, _ := s.Get("a")
	assert.NotEqual(t, "changed", again.Warnings[0])
	assert.Equal(t, "(x", again.Query)
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := newTestStore(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := string(rune('a' + i))
			for j := 0; j < 50; j++ {
				_, _ = s.Put(name, "service:tuna or level:error")
				s.List()
				s.Get(name)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 8, s.Len())
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib", "filters.lflt")

	s := newTestStore(t)
	_, err := s.Put("errors", "level:error")
	require.NoError(t, err)
	_, err = s.Put("broken", "(a")
	require.NoError(t, err)
	assert.True(t, s.Dirty())

	require.NoError(t, s.Save(path))
	assert.False(t, s.Dirty())

	loaded := newTestStore(t)
	require.NoError(t, loaded.Load(path))
	assert.Equal(t, s.List(), loaded.List())
	assert.False(t, loaded.Dirty())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, MagicHeader, data[:len(MagicHeader)])
}

func TestLoadMissingFile(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Load(filepath.Join(t.TempDir(), "nope.lflt")))
	assert.Zero(t, s.Len())
}

func TestLoadInvalidHeader(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"garbage": "NOTAFILTERFILE",
		"short":   "LOG",
		"empty":   "",
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		err := newTestStore(t).Load(path)
		assert.ErrorIs(t, err, ErrInvalidHeader, name)
	}
}

func TestLoadTruncatedBody(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filters.lflt")
	s := newTestStore(t)
	_, err := s.Put("a", "b")
	require.NoError(t, err)
	require.NoError(t, s.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data[:len(data)-3], 0o644))

	err = newTestStore(t).Load(path)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidHeader)
}

func TestAutosave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filters.lflt")
	s := newTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := s.StartAutosave(ctx, path, 10*time.Millisecond)

	_, err := s.Put("a", "b")
	require.NoError(t, err)

	require.Eventually(t, func() bool { return !s.Dirty() }, time.Second, 5*time.Millisecond)
	_, err = os.Stat(path)
	require.NoError(t, err)

	// a change made right before shutdown is flushed by the final save
	_, err = s.Put("c", "d")
	require.NoError(t, err)
	cancel()
	<-done

	loaded := newTestStore(t)
	require.NoError(t, loaded.Load(path))
	assert.Equal(t, 2, loaded.Len())
}
