package steam

import (
	"fmt"
	"net/url"
)

const (
	// WebAPIBaseURL is the base URL for the Steam web API
	WebAPIBaseURL = "https://api.steampowered.com"

	// StoreBaseURL is the base URL for the Steam storefront
	StoreBaseURL = "https://store.steampowered.com"

	// AppListEndpoint returns the complete id -> name catalog in one response
	AppListEndpoint = "/ISteamApps/GetAppList/v2/"

	// AppDetailsEndpoint is the per-app detail endpoint
	AppDetailsEndpoint = "/api/appdetails"

	// AppReviewsEndpoint is the per-app review summary endpoint
	AppReviewsEndpoint = "/appreviews"
)

// AppListURL constructs the URL for fetching the full app catalog
func AppListURL(baseURL string) string {
	return baseURL + AppListEndpoint
}

// AppDetailsURL constructs the URL for fetching a single app's detail payload
func AppDetailsURL(baseURL string, appID int, region, language string) string {
	params := url.Values{}
	params.Set("appids", fmt.Sprintf("%d", appID))
	params.Set("cc", region)
	params.Set("l", language)

	return fmt.Sprintf("%s%s?%s", baseURL, AppDetailsEndpoint, params.Encode())
}

// AppReviewsURL constructs the URL for fetching an app's review summary.
// num_per_page=0 requests the aggregate totals without any review bodies.
func AppReviewsURL(baseURL string, appID int) string {
	params := url.Values{}
	params.Set("json", "1")
	params.Set("language", "all")
	params.Set("purchase_type", "all")
	params.Set("num_per_page", "0")

	return fmt.Sprintf("%s%s/%d?%s", baseURL, AppReviewsEndpoint, appID, params.Encode())
}

// StorePageURL constructs the public store page URL for an app
func StorePageURL(baseURL string, appID int) string {
	return fmt.Sprintf("%s/app/%d/", baseURL, appID)
}
