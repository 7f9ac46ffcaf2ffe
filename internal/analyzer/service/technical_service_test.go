package service

import (
	"context"
	"fmt"
	"math"
	"testing"

	"golang-portfolio-analyzer/internal/analyzer/config"
	"golang-portfolio-analyzer/internal/analyzer/dto"
	"golang-portfolio-analyzer/internal/scoring"
	"golang-portfolio-analyzer/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// acceleratingUptrend builds n daily candles on a compounding climb with
// flat volume. The compounding keeps the MACD line itself rising, not just
// above its signal.
func acceleratingUptrend(n int) []dto.Candle {
	candles := make([]dto.Candle, n)
	for i := 0; i < n; i++ {
		close := 100.0 * math.Pow(1.004, float64(i))
		candles[i] = dto.Candle{
			Date:   fmt.Sprintf("2025-%02d-%02d", 1+i/28, 1+i%28),
			Open:   close - 0.25,
			High:   close + 1,
			Low:    close - 1,
			Close:  close,
			Volume: 1000,
		}
	}
	return candles
}

func TestBuildTechnicalArtifact_FullHistory(t *testing.T) {
	artifact := BuildTechnicalArtifact("RELIANCE.NS", acceleratingUptrend(260), scoring.DefaultTechnicalWeights())

	require.NotNil(t, artifact)
	assert.Equal(t, "RELIANCE.NS", artifact.Symbol)
	assert.Equal(t, 260, artifact.DataPoints)

	iv := artifact.Indicators
	require.NotNil(t, iv.RSI)
	require.NotNil(t, iv.MACD)
	require.NotNil(t, iv.MACDSignal)
	require.NotNil(t, iv.SMA50)
	require.NotNil(t, iv.SMA200)
	require.NotNil(t, iv.BBPercentB)
	require.NotNil(t, iv.ADX)
	require.NotNil(t, iv.VolumeRatio)

	// A compounding climb pins the directional indicators.
	assert.Greater(t, *iv.RSI, 70.0)
	assert.Greater(t, *iv.MACD, *iv.MACDSignal)
	assert.Greater(t, iv.LatestClose, *iv.SMA50)
	assert.Greater(t, *iv.SMA50, *iv.SMA200)
	assert.InDelta(t, 1.0, *iv.VolumeRatio, 0.001)

	assert.Equal(t, 9, artifact.Scores.Trend)
	assert.Equal(t, 9, artifact.Scores.MACD)
	assert.Equal(t, 9, artifact.Scores.ADX)
	assert.Equal(t, 5, artifact.Scores.Volume)

	assert.GreaterOrEqual(t, artifact.TechnicalScore, 1.0)
	assert.LessOrEqual(t, artifact.TechnicalScore, 10.0)

	var weightSum float64
	for _, w := range artifact.Weights {
		weightSum += w
	}
	assert.InDelta(t, 1.0, weightSum, 0.001)
}

func TestBuildTechnicalArtifact_ShortHistoryDegrades(t *testing.T) {
	artifact := BuildTechnicalArtifact("TATAMOTORS.NS", acceleratingUptrend(60), scoring.DefaultTechnicalWeights())

	require.NotNil(t, artifact)
	assert.Equal(t, 60, artifact.DataPoints)

	// Not enough bars for the long average; trend falls back to the
	// price-vs-SMA50 binary.
	assert.Nil(t, artifact.Indicators.SMA200)
	require.NotNil(t, artifact.Indicators.SMA50)
	assert.Equal(t, 7, artifact.Scores.Trend)
}

func TestBuildTechnicalArtifact_TinyHistoryStaysNeutral(t *testing.T) {
	artifact := BuildTechnicalArtifact("IDEA.NS", acceleratingUptrend(10), scoring.DefaultTechnicalWeights())

	require.NotNil(t, artifact)
	assert.Nil(t, artifact.Indicators.RSI)
	assert.Nil(t, artifact.Indicators.MACD)
	assert.Nil(t, artifact.Indicators.SMA50)

	// Everything missing scores the neutral midpoint.
	assert.Equal(t, 5, artifact.Scores.RSI)
	assert.Equal(t, 5, artifact.Scores.MACD)
	assert.Equal(t, 5, artifact.Scores.Trend)
	assert.Equal(t, 5.0, artifact.TechnicalScore)
}

func TestBuildTechnicalArtifact_CustomWeights(t *testing.T) {
	weights := scoring.TechnicalWeights{Trend: 1.0}
	artifact := BuildTechnicalArtifact("RELIANCE.NS", acceleratingUptrend(260), weights)

	require.NotNil(t, artifact)
	assert.Equal(t, float64(artifact.Scores.Trend), artifact.TechnicalScore)
	assert.Equal(t, 1.0, artifact.Weights["trend"])
	assert.Equal(t, 0.0, artifact.Weights["rsi"])
}

func newWeightsFixture(t *testing.T, table map[string]float64) *technicalAnalysisService {
	t.Helper()
	log, err := logger.New("error", "console")
	require.NoError(t, err)
	cfg := &config.Config{}
	cfg.Analyzer.IndicatorWeights = table
	return &technicalAnalysisService{cfg: cfg, log: log}
}

func TestIndicatorWeightsEmptyTableUsesDefaults(t *testing.T) {
	svc := newWeightsFixture(t, nil)

	weights := svc.indicatorWeights(context.Background())
	assert.Equal(t, scoring.DefaultTechnicalWeights(), weights)
}

func TestIndicatorWeightsDriftedTableRenormalized(t *testing.T) {
	svc := newWeightsFixture(t, map[string]float64{
		"rsi": 1.0, "macd": 1.0, "trend": 2.0,
	})

	weights := svc.indicatorWeights(context.Background())
	assert.InDelta(t, 0.25, weights.RSI, 0.001)
	assert.InDelta(t, 0.25, weights.MACD, 0.001)
	assert.InDelta(t, 0.5, weights.Trend, 0.001)
	assert.Equal(t, 0.0, weights.Volume)
}
