package dto

// ScoredStock is the final per-holding scoring record that gets persisted
// and reported.
type ScoredStock struct {
	Symbol   string  `json:"symbol"`
	SymbolYF string  `json:"symbol_yf"`
	Broker   string  `json:"broker,omitempty"`
	Name     string  `json:"name,omitempty"`
	Quantity float64 `json:"quantity,omitempty"`
	AvgPrice float64 `json:"avg_price,omitempty"`

	CurrentPrice *float64 `json:"current_price"`
	PnLPct       *float64 `json:"pnl_pct"`

	TechnicalScore      *float64 `json:"technical_score"`
	FundamentalScore    *float64 `json:"fundamental_score"`
	NewsSentimentScore  *float64 `json:"news_sentiment_score"`
	LegalCorporateScore *float64 `json:"legal_corporate_score"`

	OverallScore   float64  `json:"overall_score"`
	Recommendation string   `json:"recommendation"`
	Confidence     string   `json:"confidence"`
	CoverageCount  int      `json:"coverage_count"`
	Coverage       string   `json:"coverage"`
	GateFlags      []string `json:"gate_flags"`
	RedFlags       []string `json:"red_flags,omitempty"`

	Profile    string `json:"profile"`
	Summary    string `json:"summary"`
	AnalyzedAt string `json:"analyzed_at"`
}

// StreamDataScoreRequest is the payload carried on the score request redis
// stream.
type StreamDataScoreRequest struct {
	Symbol  string `json:"symbol"`
	Broker  string `json:"broker,omitempty"`
	Profile string `json:"profile,omitempty"`
}

// PortfolioReport aggregates every scored holding into one view.
type PortfolioReport struct {
	GeneratedAt   string        `json:"generated_at"`
	Profile       string        `json:"profile"`
	HoldingCount  int           `json:"holding_count"`
	AverageScore  float64       `json:"average_score"`
	HealthLabel   string        `json:"health_label"`
	TotalInvested *float64      `json:"total_invested"`
	TotalValue    *float64      `json:"total_value"`
	Holdings      []ScoredStock `json:"holdings"`
	Failed        []string      `json:"failed,omitempty"`
}
