package scoring

// Input carries everything one scoring run needs. Indicator sub-scores are
// optional: a missing one is treated as neutral for gate comparisons only,
// never for coverage accounting.
type Input struct {
	Components Components

	// Technical sub-scores, used by the gate engine and confidence estimator.
	Trend  Score
	MACD   Score
	ADX    Score
	Volume Score

	HasSevereRedFlag bool
	RedFlags         []string

	// Profile selects the component weight table. Empty means default.
	Profile string
}

// Result is the outcome of one scoring run.
type Result struct {
	OverallScore   float64
	Recommendation Recommendation
	Confidence     Confidence
	Coverage       Coverage
	GateFlags      []GateFlag

	// Fundamental and News are the post-cap component values that entered
	// the weighted aggregation, kept for explainability.
	Fundamental Score
	News        Score
}

// Evaluate runs the full scoring pipeline: influence cap, profile-weighted
// aggregation, red-flag ceiling, threshold mapping and the gate engine.
// It is pure and deterministic; identical inputs produce identical results.
func Evaluate(cfg Config, in Input) (Result, error) {
	weights, err := cfg.weightsFor(in.Profile)
	if err != nil {
		return Result{}, err
	}

	cov := in.Components.Coverage()
	fundamental, news := cfg.Caps.apply(in.Components)

	overall := weightedAggregate(weights, Components{
		Technical:   in.Components.Technical,
		Fundamental: fundamental,
		News:        news,
		Legal:       in.Components.Legal,
	})
	if in.HasSevereRedFlag && overall > cfg.RedFlagCeiling {
		overall = cfg.RedFlagCeiling
	}
	overall = round1(overall)

	res := Result{
		OverallScore: overall,
		Coverage:     cov,
		Confidence:   ConfidenceNA,
		Fundamental:  fundamental,
		News:         news,
	}

	// Confidence describes agreement among the technical sub-signals and is
	// meaningless without a technical component.
	if in.Components.Technical.Valid {
		res.Confidence = ComputeConfidence(
			in.Trend.Or(neutralScore),
			in.MACD.Or(neutralScore),
			in.ADX.Or(neutralScore),
		)
	}

	// The coverage rule is hard: partial data never yields an actionable
	// recommendation, whatever the numeric score says.
	if cov.Count < 4 {
		res.Recommendation = InsufficientData
		res.GateFlags = []GateFlag{GateMissingData}
		return res, nil
	}

	res.Recommendation = mapScore(overall, cfg.Thresholds)
	res.Recommendation, res.GateFlags = cfg.Gates.apply(res.Recommendation, in)
	return res, nil
}

// apply dampens fundamentals and news when the technical picture is weak.
// Missing components stay missing.
func (c InfluenceCaps) apply(comps Components) (fundamental, news Score) {
	fundamental, news = comps.Fundamental, comps.News
	if !comps.Technical.Valid || comps.Technical.Value >= c.TechnicalMin {
		return fundamental, news
	}
	if fundamental.Valid && fundamental.Value > c.FundamentalCap {
		fundamental.Value = c.FundamentalCap
	}
	if news.Valid && news.Value > c.NewsCap {
		news.Value = c.NewsCap
	}
	return fundamental, news
}

// weightedAggregate combines the present components, renormalizing the
// profile weights over them so they always sum to 1. With nothing present it
// returns the neutral midpoint.
func weightedAggregate(w ComponentWeights, comps Components) float64 {
	type part struct {
		score  Score
		weight float64
	}
	parts := []part{
		{comps.Technical, w.Technical},
		{comps.Fundamental, w.Fundamental},
		{comps.News, w.News},
		{comps.Legal, w.Legal},
	}

	var mass float64
	for _, p := range parts {
		if p.score.Valid {
			mass += p.weight
		}
	}
	if mass <= 0 {
		return neutralScore
	}

	var total float64
	for _, p := range parts {
		if p.score.Valid {
			total += p.score.Value * (p.weight / mass)
		}
	}
	return total
}

// apply runs the ordered hard gates. Each gate sees the recommendation as
// already demoted by the gates before it, so a STRONG BUY can fall through
// several gates in one pass. Gates only ever demote.
func (g GateRules) apply(rec Recommendation, in Input) (Recommendation, []GateFlag) {
	var flags []GateFlag

	trend := in.Trend.Or(neutralScore)
	adx := in.ADX.Or(neutralScore)
	volume := in.Volume.Or(neutralScore)
	macd := in.MACD.Or(neutralScore)
	news := in.Components.News.Or(neutralScore)
	technical := in.Components.Technical.Or(neutralScore)

	// Gate 1: no buying against the primary trend.
	if trend < g.TrendMinForBuy && (rec == Buy || rec == StrongBuy) {
		rec = Hold
		flags = append(flags, GateWeakTrend)
	}

	// Gate 2: no trend and no volume confirmation.
	if adx <= g.ADXWeakMax && volume < g.VolumeMinForWeakTrend && (rec == Buy || rec == StrongBuy) {
		rec = Hold
		flags = append(flags, GateTrendlessNoVolume)
	}

	// Gate 3: hype news without a technical picture to back it.
	if news >= g.NewsHypeMin && technical < g.TechMinForNewsBuy && rec == Buy {
		rec = Hold
		flags = append(flags, GateSentimentNoConfirmation)
	}

	// Gate 4: STRONG BUY needs full alignment of trend, momentum and strength.
	if rec == StrongBuy && !(trend >= g.StrongBuyTrendMin && macd >= g.StrongBuyMACDMin && adx >= g.StrongBuyADXMin) {
		rec = Buy
		flags = append(flags, GateStrongBuyAlignment)
	}

	return rec, flags
}

// PortfolioHealth labels an average overall score for portfolio-level
// reporting.
func PortfolioHealth(avgScore float64) string {
	switch {
	case avgScore >= 7.5:
		return "Excellent"
	case avgScore >= 6.5:
		return "Good"
	case avgScore >= 5.5:
		return "Fair"
	case avgScore >= 4.5:
		return "Needs Attention"
	default:
		return "At Risk"
	}
}

// Round1 rounds to one decimal, the precision every published score uses.
func Round1(v float64) float64 {
	return round1(v)
}
