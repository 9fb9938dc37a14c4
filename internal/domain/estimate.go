package domain

// SourceRef cites one source the fusion step leaned on.
type SourceRef struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// FusedEstimate is the low/high price range produced by fusing catalog
// signals with web snippets. Regenerated fully on every request.
type FusedEstimate struct {
	EstimateLow  float64     `json:"estimate_low"`
	EstimateHigh float64     `json:"estimate_high"`
	Currency     string      `json:"currency"`
	Reasoning    string      `json:"reasoning"`
	Sources      []SourceRef `json:"sources"`
}

// AppraisalReport is the fixed 8-section appraisal document. Intro is
// required to begin with the template "If this [item type] is authentic,
// its value would be ..."; the wording is pinned by instruction to the
// extraction oracle.
type AppraisalReport struct {
	Intro               string   `json:"intro"`
	Details             string   `json:"details"`
	MarketTrends        string   `json:"market_trends"`
	RegionalVariations  string   `json:"regional_variations"`
	CounterfeitRisks    []string `json:"counterfeit_risks"`
	VerificationMethods []string `json:"verification_methods"`
	NextSteps           []string `json:"next_steps"`
	EbayListing         string   `json:"ebay_listing"`
}
