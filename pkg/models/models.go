package models

import "time"

// CatalogEntry is a single row of the Steam app index: the id and display
// name pair returned by GetAppList. Entries are candidates only and are
// never persisted directly.
type CatalogEntry struct {
	AppID int    `json:"appid"`
	Name  string `json:"name"`
}

// GameRecord is the accepted, normalized unit of work. It is built per run
// from live storefront state and upserted by primary key, so repeated runs
// converge instead of duplicating rows.
type GameRecord struct {
	AppID               int
	Name                string
	Developer           string
	Publisher           string
	ReleaseDate         *time.Time
	ShortDescription    string
	DetailedDescription string
	Price               string
	MetacriticScore     *int
	MinimumRequirements string
	ReviewCount         int
	Genres              []string
	Tags                []string
}
