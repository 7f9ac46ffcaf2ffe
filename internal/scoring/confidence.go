package scoring

// Sub-score buckets used by the confidence rules.
const (
	bullishMin = 6 // sub-score >= 6 reads bullish
	bearishMax = 4 // sub-score <= 4 reads bearish
)

// ComputeConfidence derives a confidence label from the agreement among the
// trend, MACD and ADX sub-scores. The rule order is load-bearing: conflict
// detection must run before the alignment check, because a signal set can
// match both and conflict wins.
func ComputeConfidence(trend, macd, adx float64) Confidence {
	signals := []float64{trend, macd, adx}

	var bullish, bearish int
	for _, s := range signals {
		if s >= bullishMin {
			bullish++
		}
		if s <= bearishMax {
			bearish++
		}
	}

	// Rule 1: outright conflict among the signals.
	if bullish > 0 && bearish > 0 {
		return ConfidenceLow
	}
	// Rule 2: momentum without direction.
	if macd >= 7 && trend < 5 {
		return ConfidenceLow
	}
	// Rule 3: no tradeable trend.
	if adx < 4 {
		return ConfidenceLow
	}
	// Rule 4: all three in the same bucket.
	if bullish >= 3 || bearish >= 3 {
		return ConfidenceHigh
	}
	return ConfidenceMedium
}
