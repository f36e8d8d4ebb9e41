package steam

import (
	"context"

	"steamcollect/pkg/logger"
)

// Reviews retrieves aggregate review volume for single apps.
//
// A fetch or decode failure is reported as 0 reviews, which the detail
// fetcher treats as "insufficient reviews". This is a deliberate
// fail-closed policy: collection quality is favored over completeness.
type Reviews struct {
	client  *Client
	baseURL string
	logger  logger.Logger
}

// NewReviews creates a review counter against the storefront
func NewReviews(client *Client, log logger.Logger) *Reviews {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Reviews{
		client:  client,
		baseURL: StoreBaseURL,
		logger:  log,
	}
}

// SetBaseURL overrides the storefront base URL (used by tests)
func (r *Reviews) SetBaseURL(baseURL string) {
	r.baseURL = baseURL
}

// Count returns the app's total review count, or 0 on any failure
func (r *Reviews) Count(ctx context.Context, appID int) int {
	var payload reviewSummaryResponse
	if err := r.client.GetJSON(ctx, AppReviewsURL(r.baseURL, appID), &payload); err != nil {
		r.logger.WithError(err).WithField("app_id", appID).Warn("Failed to fetch review summary, treating as zero reviews")
		return 0
	}

	return payload.QuerySummary.TotalReviews
}
