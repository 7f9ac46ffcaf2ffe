package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullInput(technical, fundamental, news, legal float64) Input {
	return Input{
		Components: Components{
			Technical:   ValidScore(technical),
			Fundamental: ValidScore(fundamental),
			News:        ValidScore(news),
			Legal:       ValidScore(legal),
		},
		Trend:  ValidScore(8),
		MACD:   ValidScore(7),
		ADX:    ValidScore(7),
		Volume: ValidScore(7),
	}
}

func TestEvaluateAlignedStrongBuy(t *testing.T) {
	res, err := Evaluate(DefaultConfig(), fullInput(9, 8, 9, 8))
	require.NoError(t, err)

	// 9*.35 + 8*.30 + 9*.20 + 8*.15 = 8.55 -> 8.6
	assert.Equal(t, 8.6, res.OverallScore)
	assert.Equal(t, StrongBuy, res.Recommendation)
	assert.Equal(t, ConfidenceHigh, res.Confidence)
	assert.Equal(t, 4, res.Coverage.Count)
	assert.Equal(t, "TFNL", res.Coverage.Code)
	assert.Empty(t, res.GateFlags)
}

func TestEvaluateWeakTrendGateFires(t *testing.T) {
	in := fullInput(9, 8, 9, 8)
	in.Trend = ValidScore(3)

	res, err := Evaluate(DefaultConfig(), in)
	require.NoError(t, err)

	assert.Equal(t, Hold, res.Recommendation)
	assert.Contains(t, res.GateFlags, GateWeakTrend)
	// Conflicting trend vs momentum also drops confidence.
	assert.Equal(t, ConfidenceLow, res.Confidence)
}

func TestEvaluateHypeNewsOnBrokenChart(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("influence cap dampens the components", func(t *testing.T) {
		res, err := Evaluate(cfg, fullInput(3, 9, 9, 6))
		require.NoError(t, err)

		assert.Equal(t, ValidScore(7.0), res.Fundamental)
		assert.Equal(t, ValidScore(6.0), res.News)
		// 3*.35 + 7*.30 + 6*.20 + 6*.15 = 5.25 -> 5.3 -> HOLD
		assert.Equal(t, 5.3, res.OverallScore)
		assert.Equal(t, Hold, res.Recommendation)
	})

	t.Run("a BUY that survives the cap is demoted by the news gate", func(t *testing.T) {
		in := fullInput(4.9, 9, 9, 10)
		in.Trend = ValidScore(5)
		in.ADX = ValidScore(5)

		res, err := Evaluate(cfg, in)
		require.NoError(t, err)

		// 4.9*.35 + 7*.30 + 6*.20 + 10*.15 = 6.515 -> 6.5, BUY before gating.
		assert.Equal(t, 6.5, res.OverallScore)
		assert.Equal(t, Hold, res.Recommendation)
		assert.Equal(t, []GateFlag{GateSentimentNoConfirmation}, res.GateFlags)
	})
}

func TestEvaluateInsufficientCoverage(t *testing.T) {
	in := Input{
		Components: Components{
			Technical:   ValidScore(9),
			Fundamental: ValidScore(9),
		},
		Trend: ValidScore(9),
		MACD:  ValidScore(9),
		ADX:   ValidScore(9),
	}

	res, err := Evaluate(DefaultConfig(), in)
	require.NoError(t, err)

	assert.Equal(t, InsufficientData, res.Recommendation)
	assert.Equal(t, []GateFlag{GateMissingData}, res.GateFlags)
	assert.Equal(t, 2, res.Coverage.Count)
	assert.Equal(t, "TF", res.Coverage.Code)
	// The numeric score is still reported for transparency but never drives
	// an actionable label at partial coverage.
	assert.Equal(t, 9.0, res.OverallScore)
}

// coverage_count < 4 forces INSUFFICIENT DATA no matter how strong the
// present components look.
func TestEvaluateCoverageInvariant(t *testing.T) {
	cfg := DefaultConfig()
	scores := []Score{{}, ValidScore(10)}

	for _, tech := range scores {
		for _, fund := range scores {
			for _, news := range scores {
				for _, legal := range scores {
					in := Input{Components: Components{
						Technical:   tech,
						Fundamental: fund,
						News:        news,
						Legal:       legal,
					}}
					res, err := Evaluate(cfg, in)
					require.NoError(t, err)

					if res.Coverage.Count < 4 {
						assert.Equal(t, InsufficientData, res.Recommendation)
					} else {
						assert.NotEqual(t, InsufficientData, res.Recommendation)
					}
				}
			}
		}
	}
}

func TestEvaluateSevereRedFlagCapsScore(t *testing.T) {
	in := fullInput(9, 9, 9, 9)
	in.HasSevereRedFlag = true
	in.RedFlags = []string{"SEBI investigation ongoing"}

	res, err := Evaluate(DefaultConfig(), in)
	require.NoError(t, err)

	assert.Equal(t, 5.0, res.OverallScore)
	assert.Equal(t, Hold, res.Recommendation)
}

func TestEvaluateZeroComponentsIsNeutral(t *testing.T) {
	res, err := Evaluate(DefaultConfig(), Input{})
	require.NoError(t, err)

	assert.Equal(t, 5.0, res.OverallScore)
	assert.Equal(t, InsufficientData, res.Recommendation)
	assert.Equal(t, ConfidenceNA, res.Confidence)
}

func TestEvaluateUnknownProfile(t *testing.T) {
	_, err := Evaluate(DefaultConfig(), Input{Profile: "day_trading"})
	assert.ErrorIs(t, err, ErrUnknownProfile)
}

func TestEvaluateProfilesShiftTheScore(t *testing.T) {
	cfg := DefaultConfig()
	in := fullInput(9, 3, 5, 5)

	def, err := Evaluate(cfg, in)
	require.NoError(t, err)

	in.Profile = ProfileWatchlistSwing
	swing, err := Evaluate(cfg, in)
	require.NoError(t, err)

	in.Profile = ProfilePortfolioLongTerm
	long, err := Evaluate(cfg, in)
	require.NoError(t, err)

	// Swing weights technicals heavier, long-term weights fundamentals
	// heavier; with a strong chart and weak fundamentals they must order
	// strictly around the default.
	assert.Greater(t, swing.OverallScore, def.OverallScore)
	assert.Less(t, long.OverallScore, def.OverallScore)
}

// Renormalized weights over any subset of present components sum to 1, so a
// single present component reproduces its own value exactly.
func TestEvaluateWeightRenormalization(t *testing.T) {
	cfg := DefaultConfig()

	for _, profile := range []string{ProfileDefault, ProfileWatchlistSwing, ProfilePortfolioLongTerm} {
		w := cfg.Profiles[profile]

		single := weightedAggregate(w, Components{Fundamental: ValidScore(8.4)})
		assert.InDelta(t, 8.4, single, 1e-9, "profile %s", profile)

		pair := weightedAggregate(w, Components{
			News:  ValidScore(6.0),
			Legal: ValidScore(6.0),
		})
		assert.InDelta(t, 6.0, pair, 1e-9, "profile %s", profile)
	}
}

// Identical inputs always produce identical results.
func TestEvaluateDeterminism(t *testing.T) {
	cfg := DefaultConfig()
	in := fullInput(7.2, 6.1, 8.3, 5.5)
	in.HasSevereRedFlag = false

	first, err := Evaluate(cfg, in)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Evaluate(cfg, in)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestPortfolioHealth(t *testing.T) {
	assert.Equal(t, "Excellent", PortfolioHealth(7.8))
	assert.Equal(t, "Good", PortfolioHealth(6.9))
	assert.Equal(t, "Fair", PortfolioHealth(5.5))
	assert.Equal(t, "Needs Attention", PortfolioHealth(4.6))
	assert.Equal(t, "At Risk", PortfolioHealth(3.2))
}
