package collector

import (
	"context"
	"errors"
	"math/rand"

	"steamcollect/pkg/logger"
	"steamcollect/pkg/models"
)

// ErrEmptyCatalog aborts a run before any candidate is processed
var ErrEmptyCatalog = errors.New("catalog fetch returned no entries")

// CatalogSource supplies the full candidate index for a run
type CatalogSource interface {
	FetchCatalog(ctx context.Context) []models.CatalogEntry
}

// DetailSource retrieves and filters a single candidate. A nil record
// means the candidate is absent or rejected; both are normal outcomes.
type DetailSource interface {
	Fetch(ctx context.Context, appID int) (*models.GameRecord, error)
}

// TagSource is the optional enrichment step. Implementations must never
// fail acceptance: on any failure they return an empty slice.
type TagSource interface {
	Tags(ctx context.Context, appID int) []string
}

// GameStore persists accepted records with batched commits
type GameStore interface {
	Upsert(ctx context.Context, rec *models.GameRecord) error
	Commit(ctx context.Context) error
}

// Options holds the run's stopping and reporting thresholds
type Options struct {
	// MaxGames is the acceptance quota: the run stops once this many
	// records have been accepted
	MaxGames int
	// CommitEvery triggers a batch commit every N acceptances
	CommitEvery int
	// ProgressEvery logs a progress counter every N processed candidates
	ProgressEvery int
}

// Collector drives a single collection run: enumerate, shuffle, evaluate
// each candidate, enrich and persist acceptances, stop at quota or
// exhaustion.
type Collector struct {
	catalog CatalogSource
	details DetailSource
	tags    TagSource
	store   GameStore
	opts    Options
	logger  logger.Logger

	// shuffle is swappable so tests can pin the traversal order
	shuffle func(entries []models.CatalogEntry)
}

// New creates a collector over the given pipeline stages
func New(catalog CatalogSource, details DetailSource, tags TagSource, store GameStore, opts Options, log logger.Logger) *Collector {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Collector{
		catalog: catalog,
		details: details,
		tags:    tags,
		store:   store,
		opts:    opts,
		logger:  log,
		shuffle: func(entries []models.CatalogEntry) {
			rand.Shuffle(len(entries), func(i, j int) {
				entries[i], entries[j] = entries[j], entries[i]
			})
		},
	}
}

// Run executes one collection run and returns the number of accepted
// games. The candidate order is randomized, so a run can reach quota
// without surveying the full catalog.
func (c *Collector) Run(ctx context.Context) (int, error) {
	entries := c.catalog.FetchCatalog(ctx)
	if len(entries) == 0 {
		c.logger.Error("Catalog is empty, aborting run")
		return 0, ErrEmptyCatalog
	}

	c.logger.WithField("candidates", len(entries)).Info("Starting collection run")

	c.shuffle(entries)

	accepted := 0
	processed := 0

	// Final commit happens on every exit path; the store's Close still
	// releases the connection independently.
	defer func() {
		if err := c.store.Commit(ctx); err != nil {
			c.logger.WithError(err).Error("Final commit failed")
		}
	}()

	for _, entry := range entries {
		if accepted >= c.opts.MaxGames {
			break
		}

		processed++
		if c.opts.ProgressEvery > 0 && processed%c.opts.ProgressEvery == 0 {
			logger.LogCollectProgress(processed, accepted, c.opts.MaxGames)
		}

		c.logger.WithFields(map[string]interface{}{
			"app_id": entry.AppID,
			"name":   entry.Name,
		}).Debug("Evaluating candidate")

		rec, err := c.details.Fetch(ctx, entry.AppID)
		if err != nil {
			c.logger.WithError(err).WithField("app_id", entry.AppID).Error("Unexpected failure fetching details, skipping candidate")
			continue
		}
		if rec == nil {
			continue
		}

		rec.Tags = c.tags.Tags(ctx, rec.AppID)

		// A persistence failure is logged by the store and the record
		// stays uncommitted; the acceptance counter is not rolled back,
		// so the run proceeds as if the write had succeeded.
		_ = c.store.Upsert(ctx, rec)
		accepted++

		logger.LogAcceptance(rec.AppID, rec.Name, true, "")
		c.logger.WithFields(map[string]interface{}{
			"app_id":       rec.AppID,
			"name":         rec.Name,
			"review_count": rec.ReviewCount,
			"accepted":     accepted,
		}).Info("Game stored")

		if c.opts.CommitEvery > 0 && accepted%c.opts.CommitEvery == 0 {
			if err := c.store.Commit(ctx); err != nil {
				c.logger.WithError(err).Error("Batch commit failed")
			} else {
				c.logger.WithField("accepted", accepted).Info("Batch committed")
			}
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"processed": processed,
		"accepted":  accepted,
	}).Info("Collection run finished")

	return accepted, nil
}
