package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"steamcollect/pkg/models"
)

// fakeDB implements querier with the same conflict semantics the schema
// provides, so upsertRecord's write discipline can be checked without a
// running Postgres.
type fakeDB struct {
	games     map[int]*models.GameRecord
	names     map[string]map[string]int64 // table -> name -> surrogate id
	relations map[string]map[[2]int64]int // relation table -> (game, id) -> insert count
	nextID    int64
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		games: make(map[int]*models.GameRecord),
		names: map[string]map[string]int64{
			"genres": {},
			"tags":   {},
		},
		relations: map[string]map[[2]int64]int{
			"game_genres": {},
			"game_tags":   {},
		},
		nextID: 1,
	}
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	switch {
	case strings.Contains(sql, "INSERT INTO games"):
		rec := &models.GameRecord{
			AppID:       args[0].(int),
			Name:        args[1].(string),
			Developer:   args[2].(string),
			Publisher:   args[3].(string),
			Price:       args[7].(string),
			ReviewCount: args[10].(int),
		}
		if d, ok := args[4].(*time.Time); ok {
			rec.ReleaseDate = d
		}
		f.games[rec.AppID] = rec
	case strings.Contains(sql, "INSERT INTO genres"), strings.Contains(sql, "INSERT INTO tags"):
		table := "genres"
		if strings.Contains(sql, "INSERT INTO tags") {
			table = "tags"
		}
		name := args[0].(string)
		if _, ok := f.names[table][name]; !ok {
			f.names[table][name] = f.nextID
			f.nextID++
		}
	case strings.Contains(sql, "INSERT INTO game_genres"), strings.Contains(sql, "INSERT INTO game_tags"):
		table := "game_genres"
		if strings.Contains(sql, "INSERT INTO game_tags") {
			table = "game_tags"
		}
		key := [2]int64{int64(args[0].(int)), args[1].(int64)}
		// ON CONFLICT DO NOTHING: first insert wins
		if _, ok := f.relations[table][key]; !ok {
			f.relations[table][key] = 1
		}
	}
	return pgconn.CommandTag{}, nil
}

type fakeRow struct {
	id  int64
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*int64)) = r.id
	return nil
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	table := "genres"
	if strings.Contains(sql, "FROM tags") {
		table = "tags"
	}
	name := args[0].(string)
	id, ok := f.names[table][name]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{id: id}
}

func record(appID int, genres, tags []string) *models.GameRecord {
	d := time.Date(2021, 8, 17, 0, 0, 0, 0, time.UTC)
	return &models.GameRecord{
		AppID:       appID,
		Name:        "Sample Game",
		Developer:   "Studio A, Studio B",
		Publisher:   "Publisher",
		ReleaseDate: &d,
		Price:       "$19.99",
		ReviewCount: 1500,
		Genres:      genres,
		Tags:        tags,
	}
}

func TestUpsertRecordWritesGameAndRelations(t *testing.T) {
	db := newFakeDB()

	err := upsertRecord(context.Background(), db, record(440, []string{"Action", "Indie"}, []string{"Co-op"}))
	require.NoError(t, err)

	require.Contains(t, db.games, 440)
	assert.Equal(t, "Sample Game", db.games[440].Name)
	assert.Len(t, db.names["genres"], 2)
	assert.Len(t, db.names["tags"], 1)
	assert.Len(t, db.relations["game_genres"], 2)
	assert.Len(t, db.relations["game_tags"], 1)
}

func TestUpsertRecordIsIdempotentPerID(t *testing.T) {
	db := newFakeDB()

	first := record(570, []string{"Action"}, nil)
	require.NoError(t, upsertRecord(context.Background(), db, first))

	second := record(570, []string{"Action"}, nil)
	second.Name = "Renamed"
	second.ReviewCount = 9000
	require.NoError(t, upsertRecord(context.Background(), db, second))

	// Exactly one row for the id, reflecting the latest values
	require.Len(t, db.games, 1)
	assert.Equal(t, "Renamed", db.games[570].Name)
	assert.Equal(t, 9000, db.games[570].ReviewCount)

	// Genre and relation rows stay unique
	assert.Len(t, db.names["genres"], 1)
	assert.Len(t, db.relations["game_genres"], 1)
}

func TestUpsertRecordDeduplicatesNames(t *testing.T) {
	db := newFakeDB()

	rec := record(10, []string{"Action", "Action", "RPG"}, []string{"Moddable", "Moddable"})
	require.NoError(t, upsertRecord(context.Background(), db, rec))

	assert.Len(t, db.names["genres"], 2)
	assert.Len(t, db.names["tags"], 1)
	assert.Len(t, db.relations["game_genres"], 2)
	assert.Len(t, db.relations["game_tags"], 1)
}

func TestSharedGenreAcrossGames(t *testing.T) {
	db := newFakeDB()

	require.NoError(t, upsertRecord(context.Background(), db, record(1, []string{"Action"}, nil)))
	require.NoError(t, upsertRecord(context.Background(), db, record(2, []string{"Action"}, nil)))

	// One genre row, two relation rows
	assert.Len(t, db.names["genres"], 1)
	assert.Len(t, db.relations["game_genres"], 2)
}

func TestDedupePreservesOrder(t *testing.T) {
	got := dedupe([]string{"b", "a", "b", "c", "a"})
	assert.Equal(t, []string{"b", "a", "c"}, got)
}
