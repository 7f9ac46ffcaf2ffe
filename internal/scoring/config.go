package scoring

import (
	"errors"
	"fmt"
)

// ErrUnknownProfile is returned when a scoring profile name is not in the
// configuration. A bad profile is fatal for the invocation: silently falling
// back to default weights would change the economic meaning of the score.
var ErrUnknownProfile = errors.New("unknown scoring profile")

// Profile names shipped with DefaultConfig.
const (
	ProfileDefault           = "default"
	ProfileWatchlistSwing    = "watchlist_swing"
	ProfilePortfolioLongTerm = "portfolio_long_term"
)

// ComponentWeights is a weight table over the four components.
type ComponentWeights struct {
	Technical   float64
	Fundamental float64
	News        float64
	Legal       float64
}

// Thresholds maps the overall score to a recommendation label.
type Thresholds struct {
	StrongBuy float64
	Buy       float64
	Hold      float64
	Sell      float64
}

// GateRules holds the thresholds for the hard safety gates.
type GateRules struct {
	TrendMinForBuy        float64 // trend score must be >= this for BUY
	ADXWeakMax            float64 // ADX score <= this is a weak trend
	VolumeMinForWeakTrend float64 // volume must be >= this when ADX is weak
	NewsHypeMin           float64 // news score >= this is potential hype
	TechMinForNewsBuy     float64 // technical must be >= this to trust high news
	StrongBuyTrendMin     float64
	StrongBuyMACDMin      float64
	StrongBuyADXMin       float64
}

// InfluenceCaps dampens the non-technical components when the chart is weak,
// so a broken technical picture cannot be overridden by fundamentals hype or
// news sentiment alone.
type InfluenceCaps struct {
	TechnicalMin   float64 // caps apply when technical is below this
	FundamentalCap float64
	NewsCap        float64
}

// Config is the full immutable configuration for one scoring run. It is
// passed into every call rather than read from package state, so tests can
// inject their own tables.
type Config struct {
	Profiles       map[string]ComponentWeights
	Thresholds     Thresholds
	Gates          GateRules
	Caps           InfluenceCaps
	RedFlagCeiling float64 // hard ceiling on overall score with a severe legal red flag
}

// DefaultConfig returns the production scoring tables.
func DefaultConfig() Config {
	return Config{
		Profiles: map[string]ComponentWeights{
			ProfileDefault: {
				Technical:   0.35,
				Fundamental: 0.30,
				News:        0.20,
				Legal:       0.15,
			},
			ProfileWatchlistSwing: {
				Technical:   0.50,
				Fundamental: 0.15,
				News:        0.25,
				Legal:       0.10,
			},
			ProfilePortfolioLongTerm: {
				Technical:   0.20,
				Fundamental: 0.45,
				News:        0.10,
				Legal:       0.25,
			},
		},
		Thresholds: Thresholds{
			StrongBuy: 8.0,
			Buy:       6.5,
			Hold:      4.5,
			Sell:      3.0,
		},
		Gates: GateRules{
			TrendMinForBuy:        5,
			ADXWeakMax:            4,
			VolumeMinForWeakTrend: 6,
			NewsHypeMin:           8,
			TechMinForNewsBuy:     5,
			StrongBuyTrendMin:     7,
			StrongBuyMACDMin:      6,
			StrongBuyADXMin:       6,
		},
		Caps: InfluenceCaps{
			TechnicalMin:   5,
			FundamentalCap: 7.0,
			NewsCap:        6.0,
		},
		RedFlagCeiling: 5.0,
	}
}

// weightsFor resolves a profile name to its weight table.
func (c Config) weightsFor(profile string) (ComponentWeights, error) {
	if profile == "" {
		profile = ProfileDefault
	}
	w, ok := c.Profiles[profile]
	if !ok {
		return ComponentWeights{}, fmt.Errorf("%w: %q", ErrUnknownProfile, profile)
	}
	return w, nil
}
