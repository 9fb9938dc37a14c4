package usecase

import (
	"encoding/json"
	"fmt"

	"appraisal-orchestrator/internal/domain"
)

const extractionSystemPrompt = `Extract JSON describing a collectible item: ` +
	`{ "category": "pokemon|mtg|yugioh|retro_video_game|postage_stamp|toy_or_figurine|comic_book|pogs|other", ` +
	`"item_type": string, "name": string, "set": string, "platform": string, "brand": string, ` +
	`"franchise": string, "issue_number": string, "variant": string, "year": string, ` +
	`"region": string, "language": string, "condition_notes": [string] }. Only JSON.`

// rawItemQuery mirrors the extraction schema before defaulting. Every field
// is optional on the wire; ParseItemQuery fills the gaps.
type rawItemQuery struct {
	Category       string   `json:"category"`
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

// ParseItemQuery normalizes the oracle's extraction output. Missing keys
// default to empty values; an unknown category becomes "other". Malformed
// JSON is a hard failure for the extraction stage.
func ParseItemQuery(raw json.RawMessage) (*domain.ItemQuery, error) {
	var parsed rawItemQuery
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse extraction output: %w", err)
	}

	notes := parsed.ConditionNotes
	if notes == nil {
		notes = []string{}
	}

	return &domain.ItemQuery{
		Category:       domain.NormalizeCategory(parsed.Category),
		ItemType:       parsed.ItemType,
		Name:           parsed.Name,
		Set:            parsed.Set,
		Platform:       parsed.Platform,
		Brand:          parsed.Brand,
		Franchise:      parsed.Franchise,
		IssueNumber:    parsed.IssueNumber,
		Variant:        parsed.Variant,
		Year:           parsed.Year,
		Region:         parsed.Region,
		Language:       parsed.Language,
		ConditionNotes: notes,
	}, nil
}
