package collector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"steamcollect/pkg/logger"
	"steamcollect/pkg/models"
)

type fakeCatalog struct {
	entries []models.CatalogEntry
}

func (f *fakeCatalog) FetchCatalog(ctx context.Context) []models.CatalogEntry {
	return f.entries
}

// fakeDetails accepts the app ids listed in accept and rejects the rest
type fakeDetails struct {
	accept map[int]bool
	calls  int
}

func (f *fakeDetails) Fetch(ctx context.Context, appID int) (*models.GameRecord, error) {
	f.calls++
	if !f.accept[appID] {
		return nil, nil
	}
	return &models.GameRecord{
		AppID:       appID,
		Name:        "game",
		ReviewCount: 2000,
		Genres:      []string{"Action"},
	}, nil
}

type fakeTags struct {
	tags  []string
	calls []int
}

func (f *fakeTags) Tags(ctx context.Context, appID int) []string {
	f.calls = append(f.calls, appID)
	return f.tags
}

type fakeStore struct {
	upserts []*models.GameRecord
	commits int
}

func (f *fakeStore) Upsert(ctx context.Context, rec *models.GameRecord) error {
	f.upserts = append(f.upserts, rec)
	return nil
}

func (f *fakeStore) Commit(ctx context.Context) error {
	f.commits++
	return nil
}

func entries(ids ...int) []models.CatalogEntry {
	out := make([]models.CatalogEntry, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.CatalogEntry{AppID: id, Name: "app"})
	}
	return out
}

func newTestCollector(catalog *fakeCatalog, details *fakeDetails, tags *fakeTags, store *fakeStore, opts Options) *Collector {
	c := New(catalog, details, tags, store, opts, logger.NewNopLogger())
	// Pin traversal order for deterministic assertions
	c.shuffle = func([]models.CatalogEntry) {}
	return c
}

func TestRunStopsAtQuota(t *testing.T) {
	catalog := &fakeCatalog{entries: entries(1, 2, 3, 4, 5, 6)}
	details := &fakeDetails{accept: map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true, 6: true}}
	tags := &fakeTags{}
	store := &fakeStore{}

	c := newTestCollector(catalog, details, tags, store, Options{MaxGames: 3, CommitEvery: 10, ProgressEvery: 5000})

	accepted, err := c.Run(context.Background())
	require.NoError(t, err)

	// Stops after exactly 3 acceptances regardless of remaining candidates
	assert.Equal(t, 3, accepted)
	assert.Len(t, store.upserts, 3)
	assert.Equal(t, 3, details.calls)
}

func TestRunAbortsOnEmptyCatalog(t *testing.T) {
	catalog := &fakeCatalog{}
	details := &fakeDetails{}
	store := &fakeStore{}

	c := newTestCollector(catalog, details, &fakeTags{}, store, Options{MaxGames: 100, CommitEvery: 10, ProgressEvery: 5000})

	accepted, err := c.Run(context.Background())
	require.ErrorIs(t, err, ErrEmptyCatalog)

	// Clean abort: zero persistence calls
	assert.Equal(t, 0, accepted)
	assert.Empty(t, store.upserts)
	assert.Equal(t, 0, store.commits)
}

func TestRunSkipsRejectedCandidates(t *testing.T) {
	catalog := &fakeCatalog{entries: entries(1, 2, 3, 4)}
	details := &fakeDetails{accept: map[int]bool{2: true, 4: true}}
	tags := &fakeTags{}
	store := &fakeStore{}

	c := newTestCollector(catalog, details, tags, store, Options{MaxGames: 100, CommitEvery: 10, ProgressEvery: 5000})

	accepted, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, accepted)
	assert.Equal(t, 4, details.calls)
	// Tag enrichment runs only for accepted candidates
	assert.Equal(t, []int{2, 4}, tags.calls)
}

func TestRunAttachesTags(t *testing.T) {
	catalog := &fakeCatalog{entries: entries(7)}
	details := &fakeDetails{accept: map[int]bool{7: true}}
	tags := &fakeTags{tags: []string{"Roguelike", "Pixel Graphics"}}
	store := &fakeStore{}

	c := newTestCollector(catalog, details, tags, store, Options{MaxGames: 1, CommitEvery: 10, ProgressEvery: 5000})

	_, err := c.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, store.upserts, 1)
	assert.Equal(t, []string{"Roguelike", "Pixel Graphics"}, store.upserts[0].Tags)
}

func TestRunCommitBoundaries(t *testing.T) {
	ids := make([]int, 25)
	accept := make(map[int]bool, 25)
	for i := range ids {
		ids[i] = i + 1
		accept[i+1] = true
	}

	catalog := &fakeCatalog{entries: entries(ids...)}
	details := &fakeDetails{accept: accept}
	store := &fakeStore{}

	c := newTestCollector(catalog, details, &fakeTags{}, store, Options{MaxGames: 25, CommitEvery: 10, ProgressEvery: 5000})

	accepted, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 25, accepted)

	// Two batch commits (after 10 and 20) plus the unconditional final one
	assert.Equal(t, 3, store.commits)
}

func TestRunFinalCommitAlwaysHappens(t *testing.T) {
	catalog := &fakeCatalog{entries: entries(1)}
	details := &fakeDetails{accept: map[int]bool{1: true}}
	store := &fakeStore{}

	c := newTestCollector(catalog, details, &fakeTags{}, store, Options{MaxGames: 5, CommitEvery: 10, ProgressEvery: 5000})

	_, err := c.Run(context.Background())
	require.NoError(t, err)

	// One acceptance never reaches the batch boundary; the final commit
	// still runs
	assert.Equal(t, 1, store.commits)
}
