package status

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notioner/internal/domain/entity"
	"notioner/internal/infra/statusfile"
)

type memStore struct {
	mu      sync.Mutex
	status  *entity.FetchStatus
	saveErr error
	loadErr error
	loads   int
}

func (m *memStore) Load(context.Context) (entity.FetchStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	if m.loadErr != nil {
		return entity.FetchStatus{}, m.loadErr
	}
	if m.status == nil {
		return entity.FetchStatus{}, entity.ErrNotFound
	}
	return *m.status, nil
}

func (m *memStore) Save(_ context.Context, st entity.FetchStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.status = &st
	return nil
}

type recordingBroadcaster struct {
	got []entity.FetchStatus
}

func (r *recordingBroadcaster) BroadcastStatus(st entity.FetchStatus) {
	r.got = append(r.got, st)
}

func TestTracker_Record(t *testing.T) {
	store := &memStore{}
	b := &recordingBroadcaster{}
	tr := NewTracker(store, 0, WithBroadcaster(b))
	at := time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC)

	st, err := tr.Record(context.Background(), at)

	require.NoError(t, err)
	assert.Equal(t, at, st.LastFetched)
	assert.Equal(t, at.Add(DefaultInterval), st.NextFetch)
	require.NotNil(t, store.status)
	assert.Equal(t, st, *store.status)
	assert.Equal(t, []entity.FetchStatus{st}, b.got)

	cur, err := tr.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, st, cur)
}

func TestTracker_RecordSaveErrorStillBroadcasts(t *testing.T) {
	store := &memStore{saveErr: errors.New("disk full")}
	b := &recordingBroadcaster{}
	tr := NewTracker(store, time.Minute, WithBroadcaster(b))

	_, err := tr.Record(context.Background(), time.Now())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Len(t, b.got, 1)
}

func TestTracker_Current(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	t.Run("nothing stored", func(t *testing.T) {
		tr := NewTracker(&memStore{}, 10*time.Minute, WithClock(clock))

		st, err := tr.Current(context.Background())

		require.NoError(t, err)
		assert.Equal(t, now, st.LastFetched)
		assert.Equal(t, now.Add(10*time.Minute), st.NextFetch)
	})

	t.Run("store read on every call", func(t *testing.T) {
		stored := entity.FetchStatus{LastFetched: now.Add(-time.Hour), NextFetch: now.Add(-55 * time.Minute)}
		store := &memStore{status: &stored}
		tr := NewTracker(store, 0, WithClock(clock))

		for range 3 {
			st, err := tr.Current(context.Background())
			require.NoError(t, err)
			assert.Equal(t, stored, st)
		}
		assert.Equal(t, 3, store.loads)
	})

	t.Run("save failed falls back to recorded", func(t *testing.T) {
		tr := NewTracker(&memStore{saveErr: errors.New("disk full")}, time.Minute, WithClock(clock))
		recorded, _ := tr.Record(context.Background(), now.Add(-time.Minute))

		st, err := tr.Current(context.Background())

		require.NoError(t, err)
		assert.Equal(t, recorded, st)
	})

	t.Run("store error", func(t *testing.T) {
		tr := NewTracker(&memStore{loadErr: errors.New("permission denied")}, 0)

		_, err := tr.Current(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "load fetch status")
	})

	t.Run("no store", func(t *testing.T) {
		tr := NewTracker(nil, 0, WithClock(clock))

		st, err := tr.Current(context.Background())

		require.NoError(t, err)
		assert.Equal(t, now, st.LastFetched)
	})
}

func TestTracker_SharedStoreSeesOtherWriter(t *testing.T) {
	store := &memStore{}
	worker := NewTracker(store, 5*time.Minute)
	api := NewTracker(store, 5*time.Minute)
	first := time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC)

	_, err := worker.Record(context.Background(), first)
	require.NoError(t, err)
	st, err := api.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, st.LastFetched)

	_, err = worker.Record(context.Background(), first.Add(5*time.Minute))
	require.NoError(t, err)
	st, err = api.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.Add(5*time.Minute), st.LastFetched)
	assert.Equal(t, first.Add(10*time.Minute), st.NextFetch)
}

func TestTracker_SharedStatusFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	worker := NewTracker(statusfile.New(path), 5*time.Minute)
	api := NewTracker(statusfile.New(path), 5*time.Minute)
	first := time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC)

	_, err := worker.Record(context.Background(), first)
	require.NoError(t, err)
	st, err := api.Current(context.Background())
	require.NoError(t, err)
	assert.True(t, first.Equal(st.LastFetched))

	_, err = worker.Record(context.Background(), first.Add(5*time.Minute))
	require.NoError(t, err)
	st, err = api.Current(context.Background())
	require.NoError(t, err)
	assert.True(t, first.Add(5*time.Minute).Equal(st.LastFetched), "got %v", st.LastFetched)
}
