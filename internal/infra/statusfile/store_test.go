package statusfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notioner/internal/domain/entity"
)

func TestStore_LoadMissing(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "status.json"))

	_, err := s.Load(context.Background())

	assert.True(t, errors.Is(err, entity.ErrNotFound))
}

func TestStore_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "status.json")
	s := New(path)
	ist := time.FixedZone("IST", 19800)
	status := entity.FetchStatus{
		LastFetched: time.Date(2024, 5, 1, 16, 30, 0, 0, ist),
		NextFetch:   time.Date(2024, 5, 1, 16, 35, 0, 0, ist),
	}

	require.NoError(t, s.Save(context.Background(), status))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"lastFetched":"2024-05-01T11:00:00Z","nextFetch":"2024-05-01T11:05:00Z"}`, string(raw))

	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, status.LastFetched.Equal(got.LastFetched))
	assert.True(t, status.NextFetch.Equal(got.NextFetch))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestStore_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := New(path).Load(context.Background())

	require.Error(t, err)
	assert.False(t, errors.Is(err, entity.ErrNotFound))
	assert.Contains(t, err.Error(), "decode")
}

func TestStore_ConcurrentSaves(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "status.json"))
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			at := base.Add(time.Duration(i) * time.Minute)
			assert.NoError(t, s.Save(context.Background(), entity.FetchStatus{LastFetched: at, NextFetch: at.Add(5 * time.Minute)}))
		}()
	}
	wg.Wait()

	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, got.NextFetch.Sub(got.LastFetched))
}

func TestNew_DefaultPath(t *testing.T) {
	assert.Equal(t, DefaultPath, New("").Path())
}
