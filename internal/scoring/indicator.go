package scoring

import (
	"math"
)

// Indicator sub-scorers. Each maps a raw indicator reading to an integer
// score in [1,10] via a fixed threshold table with a trend-following bias.
// All of them are total: a NaN input scores the neutral midpoint 5.
//
// Callers signal "indicator unavailable" with math.NaN().

const neutralScore = 5

// ScoreRSI scores RSI(14) for trend-following pullback entries. Extreme
// oversold is treated as a possible falling knife, not an automatic buy;
// the 25-35 pullback zone is the best entry in a confirmed uptrend.
func ScoreRSI(rsi float64) int {
	if math.IsNaN(rsi) {
		return neutralScore
	}
	switch {
	case rsi < 25:
		return 4 // extreme oversold, possible falling knife
	case rsi < 35:
		return 7 // pullback zone
	case rsi < 55:
		return 6 // healthy momentum
	case rsi < 70:
		return 5
	case rsi < 80:
		return 4 // overbought, not an entry
	default:
		return 3 // extreme overbought
	}
}

// ScoreMACD scores the MACD line against its signal line, its direction
// versus the prior bar, and the zero line.
func ScoreMACD(macd, signal, prevMACD float64) int {
	if math.IsNaN(macd) || math.IsNaN(signal) {
		return neutralScore
	}
	aboveSignal := macd > signal
	rising := true
	if !math.IsNaN(prevMACD) {
		rising = macd > prevMACD
	}
	aboveZero := macd > 0

	switch {
	case aboveSignal && rising && aboveZero:
		return 9 // full bullish
	case aboveSignal && rising:
		return 7 // recovering below zero
	case aboveSignal:
		return 5 // momentum fading
	case aboveZero:
		return 4 // pullback in uptrend
	default:
		return 2 // full bearish
	}
}

// ScoreTrend scores price against the SMA50/SMA200 stack. This is the
// primary trend reading the gate engine leans on. With no SMA200 it degrades
// to a price-vs-SMA50 binary; with no SMA50 it returns neutral.
func ScoreTrend(close, sma50, sma200 float64) int {
	if math.IsNaN(sma50) {
		return neutralScore
	}
	if math.IsNaN(sma200) {
		if close > sma50 {
			return 7
		}
		return 3
	}
	switch {
	case close > sma50 && sma50 > sma200:
		return 9 // strict bullish stack
	case close > sma200 && sma200 > sma50:
		return 7 // recovery, golden cross forming
	case close > sma50 && sma50 < sma200:
		return 5 // bear market rally
	case sma50 > sma200 && close < sma50:
		return 5 // pullback in uptrend
	case close < sma50 && sma50 < sma200:
		return 2 // strict bearish stack
	default:
		return 4 // sideways
	}
}

// ScoreBollinger scores Bollinger %B. The table is deliberately near-neutral:
// both band extremes get caution because direction needs trend confirmation,
// not a mean-reversion bet.
func ScoreBollinger(pctB float64) int {
	if math.IsNaN(pctB) {
		return neutralScore
	}
	switch {
	case pctB < 0:
		return 3 // breaking down below the bands
	case pctB < 0.2:
		return 5
	case pctB < 0.5:
		return 6 // pullback zone
	case pctB < 0.8:
		return 6
	case pctB <= 1.0:
		return 5
	default:
		return 4 // extended breakout
	}
}

// ScoreADX scores trend strength (ADX) qualified by direction (+DI vs -DI).
// Low ADX means no tradeable trend regardless of direction, so it scores
// below neutral and dampens confidence.
func ScoreADX(adx, plusDI, minusDI float64) int {
	if math.IsNaN(adx) {
		return neutralScore
	}
	uptrend := true
	if !math.IsNaN(plusDI) && !math.IsNaN(minusDI) {
		uptrend = plusDI > minusDI
	}
	switch {
	case adx > 30 && uptrend:
		return 9
	case adx > 25 && uptrend:
		return 7
	case adx > 25:
		return 2 // strong downtrend
	case adx >= 20:
		return 5 // developing trend
	default:
		return 4 // weak or ranging
	}
}

// ScoreVolume scores today's volume against the 20-day average, signed by
// whether the bar closed up or down. Volume confirms moves, it does not
// originate them.
func ScoreVolume(volumeRatio float64, upDay bool) int {
	if math.IsNaN(volumeRatio) {
		return neutralScore
	}
	switch {
	case volumeRatio > 2.0 && upDay:
		return 9 // breakout volume
	case volumeRatio > 2.0:
		return 2 // panic selling
	case volumeRatio > 1.5 && upDay:
		return 7 // accumulation
	case volumeRatio > 1.5:
		return 4 // distribution
	default:
		return 5
	}
}

// IndicatorScores holds the six sub-scores that feed the technical score.
type IndicatorScores struct {
	RSI       int
	MACD      int
	Trend     int
	Bollinger int
	ADX       int
	Volume    int
}

// TechnicalWeights weights the six indicator sub-scores. Weights must sum to
// 1.0; AggregateTechnical renormalizes when they do not.
type TechnicalWeights struct {
	RSI       float64
	MACD      float64
	Trend     float64
	Bollinger float64
	ADX       float64
	Volume    float64
}

// DefaultTechnicalWeights weights every indicator equally.
func DefaultTechnicalWeights() TechnicalWeights {
	const w = 1.0 / 6.0
	return TechnicalWeights{RSI: w, MACD: w, Trend: w, Bollinger: w, ADX: w, Volume: w}
}

// sum returns the total weight mass.
func (w TechnicalWeights) sum() float64 {
	return w.RSI + w.MACD + w.Trend + w.Bollinger + w.ADX + w.Volume
}

// Normalized returns the weights scaled so they sum to 1.0. The second return
// reports whether a correction was needed, so callers can warn about the
// configuration drift.
func (w TechnicalWeights) Normalized() (TechnicalWeights, bool) {
	total := w.sum()
	if total <= 0 {
		return DefaultTechnicalWeights(), true
	}
	if math.Abs(total-1.0) <= 0.01 {
		return w, false
	}
	return TechnicalWeights{
		RSI:       w.RSI / total,
		MACD:      w.MACD / total,
		Trend:     w.Trend / total,
		Bollinger: w.Bollinger / total,
		ADX:       w.ADX / total,
		Volume:    w.Volume / total,
	}, true
}

// AggregateTechnical combines the sub-scores into one technical score on the
// 1-10 scale, rounded to one decimal. This value becomes the technical
// component fed into the overall aggregation.
func AggregateTechnical(s IndicatorScores, w TechnicalWeights) float64 {
	norm, _ := w.Normalized()
	total := float64(s.RSI)*norm.RSI +
		float64(s.MACD)*norm.MACD +
		float64(s.Trend)*norm.Trend +
		float64(s.Bollinger)*norm.Bollinger +
		float64(s.ADX)*norm.ADX +
		float64(s.Volume)*norm.Volume
	return round1(total)
}

// round1 rounds half up at one decimal. The epsilon absorbs binary
// representation noise so values like 8.55 round the same way every run.
func round1(v float64) float64 {
	return math.Round(v*10+1e-9) / 10
}
