package dto

// IndicatorValues holds the raw indicator readings computed from price
// history. Pointers distinguish "not computable" from zero.
type IndicatorValues struct {
	LatestClose   float64  `json:"latest_close"`
	RSI           *float64 `json:"rsi"`
	MACD          *float64 `json:"macd"`
	MACDSignal    *float64 `json:"macd_signal"`
	MACDHistogram *float64 `json:"macd_histogram"`
	MACDPrevHist  *float64 `json:"macd_prev_histogram"`
	SMA50         *float64 `json:"sma_50"`
	SMA200        *float64 `json:"sma_200"`
	BBUpper       *float64 `json:"bb_upper"`
	BBMiddle      *float64 `json:"bb_middle"`
	BBLower       *float64 `json:"bb_lower"`
	BBPercentB    *float64 `json:"bb_percent_b"`
	ADX           *float64 `json:"adx"`
	PlusDI        *float64 `json:"plus_di"`
	MinusDI       *float64 `json:"minus_di"`
	VolumeRatio   *float64 `json:"volume_ratio"`
}

// IndicatorScoreSet carries the six per-indicator sub-scores on the 1-10
// scale.
type IndicatorScoreSet struct {
	RSI       int `json:"rsi"`
	MACD      int `json:"macd"`
	Trend     int `json:"trend"`
	Bollinger int `json:"bollinger"`
	ADX       int `json:"adx"`
	Volume    int `json:"volume"`
}

// TechnicalArtifact is the persisted output of a technical analysis run.
type TechnicalArtifact struct {
	Symbol         string             `json:"symbol"`
	AnalysisDate   string             `json:"analysis_date"`
	DataPoints     int                `json:"data_points"`
	Indicators     IndicatorValues    `json:"indicators"`
	Scores         IndicatorScoreSet  `json:"scores"`
	Weights        map[string]float64 `json:"weights"`
	TechnicalScore float64            `json:"technical_score"`
}

// FundamentalArtifact is produced outside this service and read by the
// scorer. Only the score is required for scoring, the rest feeds summaries.
type FundamentalArtifact struct {
	Symbol           string   `json:"symbol"`
	FundamentalScore *float64 `json:"fundamental_score"`
	PERatio          *float64 `json:"pe_ratio"`
	PEVsSector       string   `json:"pe_vs_sector,omitempty"`
	ProfitGrowthYoY  *float64 `json:"profit_growth_yoy"`
	RevenueGrowthYoY *float64 `json:"revenue_growth_yoy"`
	ROE              *float64 `json:"roe"`
	DebtToEquity     *float64 `json:"debt_to_equity"`
}

// NewsArtifact is produced outside this service and read by the scorer.
type NewsArtifact struct {
	Symbol             string   `json:"symbol"`
	NewsSentimentScore *float64 `json:"news_sentiment_score"`
	NewsSentiment      string   `json:"news_sentiment,omitempty"`
	AnalystConsensus   string   `json:"analyst_consensus,omitempty"`
	TargetVsCurrent    *float64 `json:"target_vs_current"`
}

// LegalArtifact is produced outside this service and read by the scorer.
type LegalArtifact struct {
	Symbol              string   `json:"symbol"`
	LegalCorporateScore *float64 `json:"legal_corporate_score"`
	HasSevereRedFlag    bool     `json:"has_severe_red_flag"`
	RedFlags            []string `json:"red_flags"`
}
