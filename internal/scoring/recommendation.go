package scoring

// Recommendation is the discrete action label for a scored stock. The
// ordering of the constants matters: gates demote by moving toward
// StrongSell and must never move the other way.
type Recommendation int

const (
	StrongSell Recommendation = iota
	Sell
	Hold
	Buy
	StrongBuy
	// InsufficientData is the terminal state when fewer than four components
	// are present. It is outside the bullish/bearish ordering.
	InsufficientData
)

// String returns the label used in output artifacts and reports.
func (r Recommendation) String() string {
	switch r {
	case StrongSell:
		return "STRONG SELL"
	case Sell:
		return "SELL"
	case Hold:
		return "HOLD"
	case Buy:
		return "BUY"
	case StrongBuy:
		return "STRONG BUY"
	case InsufficientData:
		return "INSUFFICIENT DATA"
	}
	return "UNKNOWN"
}

// Confidence describes the internal agreement among the technical
// sub-signals, independent of the recommendation itself.
type Confidence int

const (
	ConfidenceNA Confidence = iota
	ConfidenceLow
	ConfidenceMedium
	ConfidenceHigh
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceLow:
		return "LOW"
	case ConfidenceMedium:
		return "MEDIUM"
	case ConfidenceHigh:
		return "HIGH"
	}
	return "N/A"
}

// GateFlag records that a hard rule fired and demoted the recommendation.
// Flags are append-only and ordered by gate evaluation order.
type GateFlag string

const (
	GateMissingData             GateFlag = "missing_data"
	GateWeakTrend               GateFlag = "weak_trend_gate"
	GateTrendlessNoVolume       GateFlag = "trendless_no_volume_gate"
	GateSentimentNoConfirmation GateFlag = "sentiment_without_confirmation"
	GateStrongBuyAlignment      GateFlag = "strong_buy_alignment_failed"
)

// mapScore converts a rounded overall score to the initial recommendation.
func mapScore(score float64, t Thresholds) Recommendation {
	switch {
	case score >= t.StrongBuy:
		return StrongBuy
	case score >= t.Buy:
		return Buy
	case score >= t.Hold:
		return Hold
	case score >= t.Sell:
		return Sell
	default:
		return StrongSell
	}
}
