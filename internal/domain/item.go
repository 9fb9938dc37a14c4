package domain

// Category identifies the collectible ecosystem detected during extraction.
type Category string

const (
	CategoryPokemon        Category = "pokemon"
	CategoryMTG            Category = "mtg"
	CategoryYuGiOh         Category = "yugioh"
	CategoryRetroVideoGame Category = "retro_video_game"
	CategoryPostageStamp   Category = "postage_stamp"
	CategoryToyOrFigurine  Category = "toy_or_figurine"
	CategoryComicBook      Category = "comic_book"
	CategoryPogs           Category = "pogs"
	CategoryOther          Category = "other"
)

// KnownCategories lists every category the extraction schema may emit.
var KnownCategories = []Category{
	CategoryPokemon,
	CategoryMTG,
	CategoryYuGiOh,
	CategoryRetroVideoGame,
	CategoryPostageStamp,
	CategoryToyOrFigurine,
	CategoryComicBook,
	CategoryPogs,
	CategoryOther,
}

// NormalizeCategory maps unknown or empty values onto CategoryOther.
func NormalizeCategory(raw string) Category {
	for _, c := range KnownCategories {
		if string(c) == raw {
			return c
		}
	}
	return CategoryOther
}

// IsTradingCard reports whether the category has a specialized catalog API.
func (c Category) IsTradingCard() bool {
	return c == CategoryPokemon || c == CategoryMTG || c == CategoryYuGiOh
}

// ItemQuery is the normalized extraction result describing one collectible.
// It is built once per request and never mutated afterwards; optional fields
// default to empty strings and ConditionNotes is never nil.
type ItemQuery struct {
	Category       Category `json:"category"`
	ItemType       string   `json:"item_type"`
	Name           string   `json:"name"`
	Set            string   `json:"set"`
	Platform       string   `json:"platform"`
	Brand          string   `json:"brand"`
	Franchise      string   `json:"franchise"`
	IssueNumber    string   `json:"issue_number"`
	Variant        string   `json:"variant"`
	Year           string   `json:"year"`
	Region         string   `json:"region"`
	Language       string   `json:"language"`
	ConditionNotes []string `json:"condition_notes"`
}
