// Package steam wraps the Steam web API and storefront endpoints used by
// the collector: the full app catalog, per-app detail payloads, aggregate
// review summaries, and store-page tag scraping.
//
// Failure policy follows the collection pipeline's partial-failure
// tolerance: per-app fetchers contain transport and decode failures and
// report them as absent, zero, or empty results. Only the catalog fetch is
// fatal to a run, and that decision belongs to the caller.
package steam
