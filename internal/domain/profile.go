package domain

import "time"

// Profile is the persisted record for one imported person. The importer only
// ever inserts profiles; updates and deletes happen elsewhere.
type Profile struct {
	ID              int        `json:"id"`
	Name            string     `json:"name"`
	Intro           *string    `json:"intro,omitempty"`
	Accomplishments *string    `json:"accomplishments,omitempty"`
	ImageURL        *string    `json:"image_url,omitempty"`
	Tags            []string   `json:"tags"`
	BirthYear       *int       `json:"birth_year,omitempty"`
	CreatedBy       string     `json:"created_by"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ImportRequest identifies one person to import. WikiTitle overrides the
// default title derivation (name with spaces replaced by underscores) when the
// canonical name does not match the Wikipedia page title.
type ImportRequest struct {
	Name      string `json:"name"`
	WikiTitle string `json:"wikiTitle,omitempty"`
}

// RawArticle is the raw summary payload for one Wikipedia page. It is consumed
// immediately by the field extractor and never persisted.
type RawArticle struct {
	Title        string
	ExtractText  string
	ThumbnailURL string
	Categories   []string
	WikidataID   string
}

// ExtractedProfile holds the structured fields derived from an article's
// extract text. BirthYear, when set, always lies inside the validity window
// [1, current_year]; out-of-window candidates are discarded, never clamped.
type ExtractedProfile struct {
	Intro           *string
	Accomplishments *string
	BirthYear       *int
	Nationality     string
	Tags            []string
}
