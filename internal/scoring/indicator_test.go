package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreRSI(t *testing.T) {
	tests := []struct {
		name string
		rsi  float64
		want int
	}{
		{"missing", math.NaN(), 5},
		{"extreme oversold is a falling knife not a buy", 20, 4},
		{"pullback zone", 30, 7},
		{"healthy momentum", 45, 6},
		{"neutral", 60, 5},
		{"overbought", 75, 4},
		{"extreme overbought", 85, 3},
		{"boundary 25", 25, 7},
		{"boundary 70", 70, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreRSI(tt.rsi))
		})
	}
}

func TestScoreMACD(t *testing.T) {
	tests := []struct {
		name               string
		macd, signal, prev float64
		want               int
	}{
		{"missing macd", math.NaN(), 1, 1, 5},
		{"missing signal", 1, math.NaN(), 1, 5},
		{"full bullish", 2.0, 1.5, 1.8, 9},
		{"recovering below zero", -0.5, -0.8, -0.7, 7},
		{"momentum fading", 2.0, 1.5, 2.5, 5},
		{"pullback above zero", 1.0, 1.5, 1.2, 4},
		{"full bearish", -1.0, -0.5, -0.8, 2},
		{"missing prev assumes rising", 2.0, 1.5, math.NaN(), 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreMACD(tt.macd, tt.signal, tt.prev))
		})
	}
}

func TestScoreTrend(t *testing.T) {
	tests := []struct {
		name                 string
		close, sma50, sma200 float64
		want                 int
	}{
		{"no sma50 is neutral", 100, math.NaN(), math.NaN(), 5},
		{"no sma200 above sma50", 100, 95, math.NaN(), 7},
		{"no sma200 below sma50", 90, 95, math.NaN(), 3},
		{"strict bullish stack", 100, 95, 90, 9},
		{"recovery stack", 100, 90, 95, 7},
		{"bear market rally", 96, 95, 100, 5},
		{"pullback in uptrend", 92, 95, 90, 5},
		{"strict bearish stack", 85, 90, 95, 2},
		{"sideways", 92, 95, 95, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreTrend(tt.close, tt.sma50, tt.sma200))
		})
	}
}

func TestScoreBollinger(t *testing.T) {
	// Trend-neutral table: neither band extreme is an automatic signal.
	tests := []struct {
		name string
		pctB float64
		want int
	}{
		{"missing", math.NaN(), 5},
		{"breakdown below bands", -0.1, 3},
		{"near lower band", 0.1, 5},
		{"pullback zone", 0.35, 6},
		{"middle upper", 0.65, 6},
		{"approaching upper", 0.9, 5},
		{"extended breakout", 1.2, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreBollinger(tt.pctB))
		})
	}
}

func TestScoreADX(t *testing.T) {
	tests := []struct {
		name                 string
		adx, plusDI, minusDI float64
		want                 int
	}{
		{"missing", math.NaN(), 20, 10, 5},
		{"strong uptrend", 35, 25, 15, 9},
		{"moderate uptrend", 28, 25, 15, 7},
		{"strong downtrend", 28, 15, 25, 2},
		{"developing trend", 22, 15, 25, 5},
		{"weak trend dampens regardless of direction", 15, 30, 10, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreADX(tt.adx, tt.plusDI, tt.minusDI))
		})
	}
}

func TestScoreVolume(t *testing.T) {
	tests := []struct {
		name  string
		ratio float64
		upDay bool
		want  int
	}{
		{"missing", math.NaN(), true, 5},
		{"breakout volume", 2.5, true, 9},
		{"panic selling", 2.5, false, 2},
		{"accumulation", 1.7, true, 7},
		{"distribution", 1.7, false, 4},
		{"normal volume", 1.1, true, 5},
		{"low volume", 0.4, false, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScoreVolume(tt.ratio, tt.upDay))
		})
	}
}

func TestIndicatorScoresAlwaysInRange(t *testing.T) {
	for v := -50.0; v <= 150.0; v += 0.5 {
		for _, got := range []int{
			ScoreRSI(v),
			ScoreMACD(v, v/2, v/3),
			ScoreTrend(v, v*0.9, v*1.1),
			ScoreBollinger(v / 100),
			ScoreADX(v, v*0.6, v*0.4),
			ScoreVolume(v/25, v > 50),
		} {
			assert.GreaterOrEqual(t, got, 1)
			assert.LessOrEqual(t, got, 10)
		}
	}
}

func TestAggregateTechnical(t *testing.T) {
	scores := IndicatorScores{RSI: 6, MACD: 9, Trend: 9, Bollinger: 6, ADX: 7, Volume: 7}

	t.Run("equal weights", func(t *testing.T) {
		got := AggregateTechnical(scores, DefaultTechnicalWeights())
		assert.InDelta(t, 7.3, got, 1e-9) // 44/6 = 7.33 -> 7.3
	})

	t.Run("weights not summing to one are renormalized", func(t *testing.T) {
		w := TechnicalWeights{RSI: 2, MACD: 2, Trend: 2, Bollinger: 2, ADX: 2, Volume: 2}
		assert.Equal(t, AggregateTechnical(scores, DefaultTechnicalWeights()), AggregateTechnical(scores, w))
	})

	t.Run("trend heavy profile shifts the score", func(t *testing.T) {
		w := TechnicalWeights{Trend: 1}
		assert.Equal(t, 9.0, AggregateTechnical(scores, w))
	})
}

func TestTechnicalWeightsNormalized(t *testing.T) {
	t.Run("already normalized passes through", func(t *testing.T) {
		w := DefaultTechnicalWeights()
		norm, corrected := w.Normalized()
		assert.False(t, corrected)
		assert.Equal(t, w, norm)
	})

	t.Run("drifted weights are corrected", func(t *testing.T) {
		w := TechnicalWeights{RSI: 1, MACD: 1, Trend: 1, Bollinger: 1, ADX: 1, Volume: 1}
		norm, corrected := w.Normalized()
		assert.True(t, corrected)
		assert.InDelta(t, 1.0, norm.sum(), 1e-9)
	})

	t.Run("zero mass falls back to defaults", func(t *testing.T) {
		norm, corrected := TechnicalWeights{}.Normalized()
		assert.True(t, corrected)
		assert.Equal(t, DefaultTechnicalWeights(), norm)
	})
}
