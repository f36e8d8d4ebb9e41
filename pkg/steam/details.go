package steam

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	errs "steamcollect/pkg/errors"
	"steamcollect/pkg/logger"
	"steamcollect/pkg/models"
)

const (
	// appTypeGame is the declared type of a full game in the detail payload
	appTypeGame = "game"

	// categoryDLC marks downloadable content. Some DLC is typed "game", so
	// the category check is needed in addition to the type check.
	categoryDLC = 21

	// releaseDateLayout matches the storefront's "2 Jan, 2006" date strings
	releaseDateLayout = "2 Jan, 2006"
)

// Details retrieves and filters single-app detail records. Candidates that
// fail a filter (wrong type, DLC, too few reviews) or whose payload is
// missing come back as absent, never as errors.
type Details struct {
	client     *Client
	reviews    *Reviews
	baseURL    string
	region     string
	language   string
	minReviews int
	logger     logger.Logger
}

// NewDetails creates a detail fetcher against the storefront API
func NewDetails(client *Client, reviews *Reviews, region, language string, minReviews int, log logger.Logger) *Details {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Details{
		client:     client,
		reviews:    reviews,
		baseURL:    StoreBaseURL,
		region:     region,
		language:   language,
		minReviews: minReviews,
		logger:     log,
	}
}

// SetBaseURL overrides the storefront base URL (used by tests)
func (d *Details) SetBaseURL(baseURL string) {
	d.baseURL = baseURL
}

// Fetch returns a fully populated record for the app, without tags, or nil
// when the candidate is absent or rejected. Transport and decode failures
// are contained here: they are logged and reported as absent.
func (d *Details) Fetch(ctx context.Context, appID int) (*models.GameRecord, error) {
	payload := map[string]appDetailsEntry{}
	url := AppDetailsURL(d.baseURL, appID, d.region, d.language)
	if err := d.client.GetJSON(ctx, url, &payload); err != nil {
		var apiErr *errs.Error
		if errors.As(err, &apiErr) {
			d.logger.WithError(err).WithField("app_id", appID).Warn("Failed to fetch app details, skipping")
			return nil, nil
		}
		return nil, fmt.Errorf("fetch details for app %d: %w", appID, err)
	}

	entry, ok := payload[fmt.Sprintf("%d", appID)]
	if !ok || !entry.Success || entry.Data == nil {
		d.logger.WithField("app_id", appID).Debug("No detail payload for app")
		return nil, nil
	}
	data := entry.Data

	if strings.ToLower(data.Type) != appTypeGame {
		logger.LogAcceptance(appID, data.Name, false, fmt.Sprintf("type is %q, not a game", data.Type))
		return nil, nil
	}

	for _, cat := range data.Categories {
		if cat.ID == categoryDLC {
			logger.LogAcceptance(appID, data.Name, false, "marked as DLC")
			return nil, nil
		}
	}

	reviewCount := d.reviews.Count(ctx, appID)
	if reviewCount < d.minReviews {
		logger.LogAcceptance(appID, data.Name, false,
			fmt.Sprintf("insufficient reviews (%d/%d)", reviewCount, d.minReviews))
		return nil, nil
	}

	return &models.GameRecord{
		AppID:               appID,
		Name:                defaultIfEmpty(data.Name),
		Developer:           joinOrNA(data.Developers),
		Publisher:           joinOrNA(data.Publishers),
		ReleaseDate:         parseReleaseDate(data.ReleaseDate.Date),
		ShortDescription:    defaultIfEmpty(data.ShortDescription),
		DetailedDescription: defaultIfEmpty(data.DetailedDescription),
		Price:               formatPrice(data.PriceOverview),
		MetacriticScore:     metacriticScore(data.Metacritic),
		MinimumRequirements: defaultIfEmpty(data.PCRequirements.Minimum),
		ReviewCount:         reviewCount,
		Genres:              genreNames(data.Genres),
	}, nil
}

// parseReleaseDate parses the storefront's date string. An unparseable or
// empty date yields nil rather than failing the record.
func parseReleaseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	t, err := time.Parse(releaseDateLayout, raw)
	if err != nil {
		return nil
	}
	return &t
}

// joinOrNA joins a multi-value field into a single display string
func joinOrNA(values []string) string {
	if len(values) == 0 {
		return "N/A"
	}
	return strings.Join(values, ", ")
}

func defaultIfEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// formatPrice returns the pre-formatted display price, or "Free" when the
// payload carries no price block
func formatPrice(price *priceOverview) string {
	if price == nil || price.FinalFormatted == "" {
		return "Free"
	}
	return price.FinalFormatted
}

func metacriticScore(m *metacritic) *int {
	if m == nil {
		return nil
	}
	score := m.Score
	return &score
}

func genreNames(genres []genre) []string {
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		if g.Description != "" {
			names = append(names, g.Description)
		}
	}
	return names
}
