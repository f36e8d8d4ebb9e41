package steam

import (
	"bytes"
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"steamcollect/pkg/logger"
)

// tagSelector is the structural region of the store page that carries the
// human-curated tag labels. This is an implicit contract with the remote
// rendering and may break without notice; extraction failure is expected,
// not exceptional.
const tagSelector = ".glance_tags.popular_tags a"

// Tags scrapes tag labels from an app's public store page. Enrichment is
// best effort: any failure yields an empty slice and never blocks
// acceptance of the app.
type Tags struct {
	client  *Client
	baseURL string
	logger  logger.Logger
}

// NewTags creates a tag scraper against the public storefront
func NewTags(client *Client, log logger.Logger) *Tags {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Tags{
		client:  client,
		baseURL: StoreBaseURL,
		logger:  log,
	}
}

// SetBaseURL overrides the storefront base URL (used by tests)
func (t *Tags) SetBaseURL(baseURL string) {
	t.baseURL = baseURL
}

// Tags returns the app's popular tag labels, or an empty slice on any
// failure
func (t *Tags) Tags(ctx context.Context, appID int) []string {
	body, err := t.client.GetHTML(ctx, StorePageURL(t.baseURL, appID))
	if err != nil {
		t.logger.WithError(err).WithField("app_id", appID).Warn("Failed to fetch store page for tags")
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		t.logger.WithError(err).WithField("app_id", appID).Warn("Failed to parse store page")
		return nil
	}

	var tags []string
	doc.Find(tagSelector).Each(func(_ int, s *goquery.Selection) {
		if tag := strings.TrimSpace(s.Text()); tag != "" {
			tags = append(tags, tag)
		}
	})

	return tags
}
