package models

import "time"

// ArchivedProduct is a fetched data-sheet as stored in PostgreSQL.
type ArchivedProduct struct {
	ID        int       `json:"id"`
	URL       string    `json:"url"`
	Lang      string    `json:"lang"`
	IcecatID  string    `json:"icecat_id"`
	ProdID    string    `json:"prod_id"`
	Brand     string    `json:"brand"`
	Title     string    `json:"title"`
	RawXML    string    `json:"-"`
	FetchedAt time.Time `json:"fetched_at"`
}

// ProductSummary is the JSON view of a parsed product returned by the API.
type ProductSummary struct {
	IcecatID         string         `json:"icecat_id"`
	ProdID           string         `json:"prod_id"`
	Name             string         `json:"name"`
	Title            string         `json:"title"`
	Brand            string         `json:"brand"`
	Category         string         `json:"category"`
	ReleaseDate      string         `json:"release_date,omitempty"`
	EANs             []string       `json:"eans,omitempty"`
	ShortDescription string         `json:"short_description,omitempty"`
	LongDescription  string         `json:"long_description,omitempty"`
	ShortSummary     string         `json:"short_summary,omitempty"`
	Images           []string       `json:"images,omitempty"`
	Specs            []SpecSummary  `json:"specs,omitempty"`
	Data             map[string]any `json:"data,omitempty"`
}

type SpecSummary struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}
