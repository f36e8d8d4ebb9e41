package steam

import (
	"encoding/json"

	"steamcollect/pkg/models"
)

// appListResponse is the top-level GetAppList payload
type appListResponse struct {
	AppList struct {
		Apps []models.CatalogEntry `json:"apps"`
	} `json:"applist"`
}

// appDetailsEntry wraps a single app's detail payload, keyed by app id in
// the response object
type appDetailsEntry struct {
	Success bool            `json:"success"`
	Data    *appDetailsData `json:"data"`
}

// appDetailsData is the detail payload for one app
type appDetailsData struct {
	Type                string            `json:"type"`
	Name                string            `json:"name"`
	Developers          []string          `json:"developers"`
	Publishers          []string          `json:"publishers"`
	ShortDescription    string            `json:"short_description"`
	DetailedDescription string            `json:"detailed_description"`
	ReleaseDate         releaseDate       `json:"release_date"`
	Categories          []category        `json:"categories"`
	Genres              []genre           `json:"genres"`
	PriceOverview       *priceOverview    `json:"price_overview"`
	Metacritic          *metacritic       `json:"metacritic"`
	PCRequirements      requirementsBlock `json:"pc_requirements"`
}

type releaseDate struct {
	ComingSoon bool   `json:"coming_soon"`
	Date       string `json:"date"`
}

type category struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

type genre struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

type priceOverview struct {
	Currency       string `json:"currency"`
	FinalFormatted string `json:"final_formatted"`
}

type metacritic struct {
	Score int    `json:"score"`
	URL   string `json:"url"`
}

// requirementsBlock tolerates the storefront's two encodings: an object
// with minimum/recommended strings, or an empty array when no requirements
// are published.
type requirementsBlock struct {
	Minimum     string `json:"minimum"`
	Recommended string `json:"recommended"`
}

func (r *requirementsBlock) UnmarshalJSON(data []byte) error {
	type plain requirementsBlock
	var p plain
	if err := json.Unmarshal(data, &p); err == nil {
		*r = requirementsBlock(p)
		return nil
	}

	// Empty array form; leave the block zero-valued
	var arr []interface{}
	if err := json.Unmarshal(data, &arr); err == nil {
		*r = requirementsBlock{}
		return nil
	}

	*r = requirementsBlock{}
	return nil
}

// reviewSummaryResponse is the appreviews payload with aggregate totals
type reviewSummaryResponse struct {
	Success      int `json:"success"`
	QuerySummary struct {
		TotalReviews  int `json:"total_reviews"`
		TotalPositive int `json:"total_positive"`
		TotalNegative int `json:"total_negative"`
	} `json:"query_summary"`
}
