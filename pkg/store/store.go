package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"steamcollect/pkg/logger"
	"steamcollect/pkg/models"
)

// querier is the subset of pgx.Tx the write path needs. Tests substitute a
// fake; production code always passes the store's open transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists accepted games into Postgres with normalized genre and
// tag relations. Writes accumulate in an open transaction; the caller
// decides the commit boundaries (every N acceptances plus once at run
// end). Uncommitted work is visible only within this connection.
type Store struct {
	conn   *pgx.Conn
	tx     pgx.Tx
	logger logger.Logger
}

// Open connects to Postgres, bootstraps the schema and begins the first
// batch transaction
func Open(ctx context.Context, dsn string, log logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	s := &Store{conn: conn, logger: log}

	if err := s.ensureSchema(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, err
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	s.tx = tx

	return s, nil
}

// ensureSchema creates the tables the collector writes to if they do not
// exist yet. Genre and tag rows are append-only across runs.
func (s *Store) ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS games (
			game_id BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			developer TEXT,
			publisher TEXT,
			release_date DATE,
			short_description TEXT,
			detailed_description TEXT,
			price TEXT,
			metacritic_score INT,
			minimum_requirements TEXT,
			review_count INT NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS genres (
			genre_id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS game_genres (
			game_id BIGINT NOT NULL REFERENCES games (game_id),
			genre_id BIGINT NOT NULL REFERENCES genres (genre_id),
			UNIQUE (game_id, genre_id)
		)`,
		`CREATE TABLE IF NOT EXISTS tags (
			tag_id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS game_tags (
			game_id BIGINT NOT NULL REFERENCES games (game_id),
			tag_id BIGINT NOT NULL REFERENCES tags (tag_id),
			UNIQUE (game_id, tag_id)
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap schema: %w", err)
		}
	}
	return nil
}

// Upsert writes or overwrites the game row and its genre and tag
// relations inside the current batch transaction. The record's statements
// run under a savepoint so a failed record does not poison the batch; the
// error is logged and returned, and the run continues.
func (s *Store) Upsert(ctx context.Context, rec *models.GameRecord) error {
	nested, err := s.tx.Begin(ctx)
	if err != nil {
		s.logger.WithError(err).WithField("app_id", rec.AppID).Error("Failed to open savepoint for game")
		return err
	}

	if err := upsertRecord(ctx, nested, rec); err != nil {
		_ = nested.Rollback(ctx)
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"app_id": rec.AppID,
			"name":   rec.Name,
		}).Error("Failed to persist game")
		return err
	}

	if err := nested.Commit(ctx); err != nil {
		s.logger.WithError(err).WithField("app_id", rec.AppID).Error("Failed to release savepoint for game")
		return err
	}

	return nil
}

// upsertRecord performs the actual writes against a transaction or test
// double
func upsertRecord(ctx context.Context, q querier, rec *models.GameRecord) error {
	_, err := q.Exec(ctx, `
		INSERT INTO games (
			game_id, name, developer, publisher, release_date,
			short_description, detailed_description, price,
			metacritic_score, minimum_requirements, review_count
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (game_id) DO UPDATE SET
			name = EXCLUDED.name,
			developer = EXCLUDED.developer,
			publisher = EXCLUDED.publisher,
			release_date = EXCLUDED.release_date,
			short_description = EXCLUDED.short_description,
			detailed_description = EXCLUDED.detailed_description,
			price = EXCLUDED.price,
			metacritic_score = EXCLUDED.metacritic_score,
			minimum_requirements = EXCLUDED.minimum_requirements,
			review_count = EXCLUDED.review_count`,
		rec.AppID, rec.Name, rec.Developer, rec.Publisher, rec.ReleaseDate,
		rec.ShortDescription, rec.DetailedDescription, rec.Price,
		rec.MetacriticScore, rec.MinimumRequirements, rec.ReviewCount,
	)
	if err != nil {
		return fmt.Errorf("upsert game %d: %w", rec.AppID, err)
	}

	for _, name := range dedupe(rec.Genres) {
		if err := linkName(ctx, q, rec.AppID, name, "genres", "genre_id", "game_genres"); err != nil {
			return err
		}
	}

	for _, name := range dedupe(rec.Tags) {
		if err := linkName(ctx, q, rec.AppID, name, "tags", "tag_id", "game_tags"); err != nil {
			return err
		}
	}

	return nil
}

// linkName lazily creates the named row and the game relation, both
// idempotently
func linkName(ctx context.Context, q querier, gameID int, name, table, idColumn, relTable string) error {
	_, err := q.Exec(ctx,
		fmt.Sprintf(`INSERT INTO %s (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, table),
		name,
	)
	if err != nil {
		return fmt.Errorf("insert %s %q: %w", table, name, err)
	}

	var id int64
	err = q.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE name = $1`, idColumn, table),
		name,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("resolve %s %q: %w", table, name, err)
	}

	_, err = q.Exec(ctx,
		fmt.Sprintf(`INSERT INTO %s (game_id, %s) VALUES ($1, $2) ON CONFLICT DO NOTHING`, relTable, idColumn),
		gameID, id,
	)
	if err != nil {
		return fmt.Errorf("link game %d to %s %q: %w", gameID, table, name, err)
	}

	return nil
}

// dedupe returns the values with duplicates removed, order preserved
func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Commit commits the open batch transaction and begins the next one
func (s *Store) Commit(ctx context.Context) error {
	if err := s.tx.Commit(ctx); err != nil {
		s.logger.WithError(err).Error("Failed to commit batch")
		return err
	}

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin next batch transaction: %w", err)
	}
	s.tx = tx

	return nil
}

// Close commits any open work and releases the connection. It must run on
// every termination path, including early aborts.
func (s *Store) Close(ctx context.Context) error {
	var commitErr error
	if s.tx != nil {
		commitErr = s.tx.Commit(ctx)
		if commitErr != nil {
			s.logger.WithError(commitErr).Error("Failed to commit final batch")
		}
		s.tx = nil
	}

	if err := s.conn.Close(ctx); err != nil {
		return err
	}
	return commitErr
}
