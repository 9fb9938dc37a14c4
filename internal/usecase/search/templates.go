// Package search builds category-tailored pricing queries and fans them out
// across the configured web-search providers.
package search

import (
	"strings"

	"appraisal-orchestrator/internal/domain"
)

// queryTemplates maps each category to its ordered query suffixes. Adding a
// category is a data change here, not a new branch.
var queryTemplates = map[domain.Category][]string{
	domain.CategoryPokemon:        cardTemplates,
	domain.CategoryMTG:            cardTemplates,
	domain.CategoryYuGiOh:         cardTemplates,
	domain.CategoryRetroVideoGame: {"pricecharting", "ebay sold", "cib price", "sealed price"},
	domain.CategoryPostageStamp:   {"Scott value", "StampWorld", "ebay sold"},
	domain.CategoryToyOrFigurine:  {"action figure price", "ebay sold", "sealed", "loose"},
	domain.CategoryComicBook:      {"cgc 9.8 price", "heritage auctions", "ebay sold", "gocollect"},
	domain.CategoryPogs:           {"pogs price", "slammer price", "ebay sold"},
}

var cardTemplates = []string{"price", "tcgplayer price", "ebay sold", "graded psa price"}

var defaultTemplates = []string{"price", "ebay sold"}

// BuildQueries produces the ordered search queries for an item. The base
// string joins every populated descriptive field in a fixed order.
func BuildQueries(q domain.ItemQuery) []string {
	fields := []string{q.Name, q.Set, q.Platform, q.Brand, q.Franchise, q.IssueNumber, q.Variant, q.Year}
	var populated []string
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			populated = append(populated, f)
		}
	}
	base := strings.Join(populated, " ")

	suffixes, ok := queryTemplates[q.Category]
	if !ok {
		suffixes = defaultTemplates
	}

	queries := make([]string, 0, len(suffixes))
	for _, suffix := range suffixes {
		queries = append(queries, strings.TrimSpace(base+" "+suffix))
	}
	return queries
}
