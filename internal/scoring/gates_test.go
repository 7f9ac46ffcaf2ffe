package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func gateInput(trend, macd, adx, volume, technical, news float64) Input {
	return Input{
		Components: Components{
			Technical:   ValidScore(technical),
			Fundamental: ValidScore(7),
			News:        ValidScore(news),
			Legal:       ValidScore(7),
		},
		Trend:  ValidScore(trend),
		MACD:   ValidScore(macd),
		ADX:    ValidScore(adx),
		Volume: ValidScore(volume),
	}
}

func TestGatesWeakTrendDemotesBuy(t *testing.T) {
	g := DefaultConfig().Gates

	rec, flags := g.apply(StrongBuy, gateInput(3, 7, 7, 7, 8, 6))
	assert.Equal(t, Hold, rec)
	assert.Equal(t, []GateFlag{GateWeakTrend}, flags)

	rec, flags = g.apply(Buy, gateInput(4, 7, 7, 7, 8, 6))
	assert.Equal(t, Hold, rec)
	assert.Equal(t, []GateFlag{GateWeakTrend}, flags)

	// HOLD and below are untouched.
	rec, flags = g.apply(Hold, gateInput(3, 7, 7, 7, 8, 6))
	assert.Equal(t, Hold, rec)
	assert.Empty(t, flags)
}

func TestGatesTrendlessNoVolume(t *testing.T) {
	g := DefaultConfig().Gates

	rec, flags := g.apply(Buy, gateInput(6, 7, 4, 5, 8, 6))
	assert.Equal(t, Hold, rec)
	assert.Equal(t, []GateFlag{GateTrendlessNoVolume}, flags)

	// Strong volume keeps the BUY even with a weak ADX.
	rec, flags = g.apply(Buy, gateInput(6, 7, 4, 7, 8, 6))
	assert.Equal(t, Buy, rec)
	assert.Empty(t, flags)
}

func TestGatesSentimentWithoutConfirmation(t *testing.T) {
	g := DefaultConfig().Gates

	rec, flags := g.apply(Buy, gateInput(6, 7, 7, 7, 4, 9))
	assert.Equal(t, Hold, rec)
	assert.Equal(t, []GateFlag{GateSentimentNoConfirmation}, flags)

	// The gate targets BUY only; a STRONG BUY is handled by the alignment gate.
	rec, _ = g.apply(Hold, gateInput(6, 7, 7, 7, 4, 9))
	assert.Equal(t, Hold, rec)
}

func TestGatesStrongBuyAlignment(t *testing.T) {
	g := DefaultConfig().Gates

	// MACD below the bar: STRONG BUY falls back to BUY.
	rec, flags := g.apply(StrongBuy, gateInput(8, 5, 7, 7, 8, 6))
	assert.Equal(t, Buy, rec)
	assert.Equal(t, []GateFlag{GateStrongBuyAlignment}, flags)

	// Full alignment passes untouched.
	rec, flags = g.apply(StrongBuy, gateInput(8, 7, 7, 7, 8, 6))
	assert.Equal(t, StrongBuy, rec)
	assert.Empty(t, flags)
}

// A STRONG BUY can fall through several gates in one pass: gate 1 demotes it
// to HOLD, and the later gates then see HOLD, not the initial label.
func TestGatesCascadeOnDemotedRecommendation(t *testing.T) {
	g := DefaultConfig().Gates

	rec, flags := g.apply(StrongBuy, gateInput(3, 7, 4, 5, 8, 6))
	assert.Equal(t, Hold, rec)
	assert.Equal(t, []GateFlag{GateWeakTrend}, flags)
}

// Missing sub-scores read as neutral 5 in gate comparisons. Neutral trend
// passes gate 1, neutral ADX passes gate 2.
func TestGatesMissingScoresAreNeutral(t *testing.T) {
	g := DefaultConfig().Gates

	in := Input{
		Components: Components{
			Technical:   ValidScore(8),
			Fundamental: ValidScore(7),
			News:        ValidScore(6),
			Legal:       ValidScore(7),
		},
	}
	rec, flags := g.apply(Buy, in)
	assert.Equal(t, Buy, rec)
	assert.Empty(t, flags)

	// Neutral 5 fails the STRONG BUY alignment bar.
	rec, flags = g.apply(StrongBuy, in)
	assert.Equal(t, Buy, rec)
	assert.Equal(t, []GateFlag{GateStrongBuyAlignment}, flags)
}

// Gates may only demote. Whatever fires, the result is never more bullish
// than the initial recommendation.
func TestGatesNeverUpgrade(t *testing.T) {
	g := DefaultConfig().Gates
	initials := []Recommendation{StrongSell, Sell, Hold, Buy, StrongBuy}

	for trend := 1.0; trend <= 10; trend++ {
		for adx := 1.0; adx <= 10; adx += 3 {
			for news := 1.0; news <= 10; news += 3 {
				in := gateInput(trend, 5, adx, 5, 4, news)
				for _, initial := range initials {
					rec, _ := g.apply(initial, in)
					assert.LessOrEqual(t, int(rec), int(initial))
				}
			}
		}
	}
}

func TestInfluenceCap(t *testing.T) {
	caps := DefaultConfig().Caps

	t.Run("weak technical caps fundamentals and news", func(t *testing.T) {
		fund, news := caps.apply(Components{
			Technical:   ValidScore(3),
			Fundamental: ValidScore(9),
			News:        ValidScore(9),
		})
		assert.Equal(t, ValidScore(7.0), fund)
		assert.Equal(t, ValidScore(6.0), news)
	})

	t.Run("healthy technical passes through", func(t *testing.T) {
		fund, news := caps.apply(Components{
			Technical:   ValidScore(6),
			Fundamental: ValidScore(9),
			News:        ValidScore(9),
		})
		assert.Equal(t, ValidScore(9.0), fund)
		assert.Equal(t, ValidScore(9.0), news)
	})

	t.Run("missing components stay missing", func(t *testing.T) {
		fund, news := caps.apply(Components{Technical: ValidScore(3)})
		assert.False(t, fund.Valid)
		assert.False(t, news.Valid)
	})

	t.Run("missing technical never caps", func(t *testing.T) {
		fund, news := caps.apply(Components{
			Fundamental: ValidScore(9),
			News:        ValidScore(9),
		})
		assert.Equal(t, ValidScore(9.0), fund)
		assert.Equal(t, ValidScore(9.0), news)
	})
}
