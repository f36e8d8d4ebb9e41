package steam

import (
	"context"

	"steamcollect/pkg/logger"
	"steamcollect/pkg/models"
)

// Catalog retrieves the full app index in one call. The upstream service
// returns the entire catalog in a single response; there is no pagination.
type Catalog struct {
	client  *Client
	baseURL string
	logger  logger.Logger
}

// NewCatalog creates a catalog enumerator against the Steam web API
func NewCatalog(client *Client, log logger.Logger) *Catalog {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Catalog{
		client:  client,
		baseURL: WebAPIBaseURL,
		logger:  log,
	}
}

// SetBaseURL overrides the web API base URL (used by tests)
func (c *Catalog) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// FetchCatalog fetches the complete id and name catalog. On any transport
// or decoding failure it logs the condition and returns an empty slice;
// the caller treats an empty catalog as "abort run".
func (c *Catalog) FetchCatalog(ctx context.Context) []models.CatalogEntry {
	var payload appListResponse
	if err := c.client.GetJSON(ctx, AppListURL(c.baseURL), &payload); err != nil {
		c.logger.WithError(err).Error("Failed to fetch app catalog")
		return nil
	}

	apps := payload.AppList.Apps
	c.logger.WithField("count", len(apps)).Info("Fetched app catalog")
	return apps
}
