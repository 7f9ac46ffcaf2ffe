package service

import (
	"context"
	"fmt"
	"golang-portfolio-analyzer/internal/analyzer/config"
	"golang-portfolio-analyzer/internal/analyzer/dto"
	"golang-portfolio-analyzer/internal/analyzer/repository"
	"golang-portfolio-analyzer/internal/scoring"
	"golang-portfolio-analyzer/pkg/logger"
	"golang-portfolio-analyzer/pkg/utils"
	"math"
	"time"

	"github.com/markcheno/go-talib"
)

// TechnicalAnalysisService computes indicator readings and sub-scores from
// daily price history and persists them as a technical artifact.
type TechnicalAnalysisService interface {
	GetPriceHistory(ctx context.Context, symbolYF string, forceRefresh bool) (*dto.OHLCVData, error)
	Analyze(ctx context.Context, symbolYF string) (*dto.TechnicalArtifact, error)
}

type technicalAnalysisService struct {
	cfg          *config.Config
	log          *logger.Logger
	yahooFinance repository.YahooFinanceRepository
	artifactRepo repository.ArtifactRepository
}

func NewTechnicalAnalysisService(cfg *config.Config, log *logger.Logger,
	yahooFinance repository.YahooFinanceRepository,
	artifactRepo repository.ArtifactRepository) TechnicalAnalysisService {
	return &technicalAnalysisService{
		cfg:          cfg,
		log:          log,
		yahooFinance: yahooFinance,
		artifactRepo: artifactRepo,
	}
}

// GetPriceHistory serves the on-disk cache while it is fresher than the
// configured window, otherwise fetches a new 1y daily history.
func (s *technicalAnalysisService) GetPriceHistory(ctx context.Context, symbolYF string, forceRefresh bool) (*dto.OHLCVData, error) {
	if !forceRefresh {
		if cached := s.artifactRepo.LoadOHLCV(ctx, symbolYF); cached != nil {
			age := time.Since(cached.FetchedAt)
			if age < s.cfg.Analyzer.CacheFreshness && len(cached.Candles) > 0 {
				s.log.DebugContext(ctx, "Using cached price history",
					logger.StringField("symbol", symbolYF),
					logger.StringField("age", age.Round(time.Minute).String()),
				)
				return cached, nil
			}
		}
	}

	data, err := s.yahooFinance.GetOHLCV(ctx, dto.GetOHLCVParam{Symbol: symbolYF, Interval: "1d", Range: "1y"})
	if err != nil {
		return nil, err
	}
	if err := s.artifactRepo.SaveOHLCV(ctx, data); err != nil {
		s.log.WarnContext(ctx, "Failed to cache price history",
			logger.StringField("symbol", symbolYF), logger.ErrorField(err))
	}
	return data, nil
}

func (s *technicalAnalysisService) Analyze(ctx context.Context, symbolYF string) (*dto.TechnicalArtifact, error) {
	data, err := s.GetPriceHistory(ctx, symbolYF, false)
	if err != nil {
		return nil, err
	}
	if len(data.Candles) < s.cfg.Analyzer.MinDataPoints {
		return nil, fmt.Errorf("insufficient price history for %s: %d candles, need %d",
			symbolYF, len(data.Candles), s.cfg.Analyzer.MinDataPoints)
	}

	artifact := BuildTechnicalArtifact(symbolYF, data.Candles, s.indicatorWeights(ctx))
	artifact.AnalysisDate = utils.TimeNowIST().Format("2006-01-02")

	if err := s.artifactRepo.SaveTechnical(ctx, artifact); err != nil {
		return nil, fmt.Errorf("failed to save technical artifact for %s: %w", symbolYF, err)
	}
	s.log.InfoContext(ctx, "Technical analysis completed",
		logger.StringField("symbol", symbolYF),
		logger.Float64Field("technical_score", artifact.TechnicalScore),
	)
	return artifact, nil
}

// indicatorWeights resolves the per-indicator weights from configuration.
// An empty table means equal weighting; a table whose mass drifts from 1.0
// is renormalized with a warning so the drift gets noticed.
func (s *technicalAnalysisService) indicatorWeights(ctx context.Context) scoring.TechnicalWeights {
	table := s.cfg.Analyzer.IndicatorWeights
	if len(table) == 0 {
		return scoring.DefaultTechnicalWeights()
	}
	raw := scoring.TechnicalWeights{
		RSI:       table["rsi"],
		MACD:      table["macd"],
		Trend:     table["trend"],
		Bollinger: table["bollinger"],
		ADX:       table["adx"],
		Volume:    table["volume"],
	}
	weights, corrected := raw.Normalized()
	if corrected {
		s.log.WarnContext(ctx, "Indicator weights did not sum to 1.0, renormalized",
			logger.Float64Field("configured_sum", raw.RSI+raw.MACD+raw.Trend+raw.Bollinger+raw.ADX+raw.Volume),
		)
	}
	return weights
}

// BuildTechnicalArtifact computes every indicator that the history can
// support, scores each one, and aggregates them into the technical score.
// Indicators whose lookback exceeds the history length stay nil and score
// neutral.
func BuildTechnicalArtifact(symbolYF string, candles []dto.Candle, weights scoring.TechnicalWeights) *dto.TechnicalArtifact {
	n := len(candles)
	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	volumes := make([]float64, n)
	for i, c := range candles {
		closes[i] = c.Close
		highs[i] = c.High
		lows[i] = c.Low
		volumes[i] = c.Volume
	}

	iv := dto.IndicatorValues{LatestClose: closes[n-1]}
	prevMACD := math.NaN()

	if n > 14 {
		rsi := talib.Rsi(closes, 14)
		iv.RSI = utils.ToPointer(rsi[n-1])
	}
	if n > 35 {
		macd, signal, hist := talib.Macd(closes, 12, 26, 9)
		iv.MACD = utils.ToPointer(macd[n-1])
		iv.MACDSignal = utils.ToPointer(signal[n-1])
		iv.MACDHistogram = utils.ToPointer(hist[n-1])
		iv.MACDPrevHist = utils.ToPointer(hist[n-2])
		prevMACD = macd[n-2]
	}
	if n >= 50 {
		sma50 := talib.Sma(closes, 50)
		iv.SMA50 = utils.ToPointer(sma50[n-1])
	}
	if n >= 200 {
		sma200 := talib.Sma(closes, 200)
		iv.SMA200 = utils.ToPointer(sma200[n-1])
	}
	if n >= 20 {
		upper, middle, lower := talib.BBands(closes, 20, 2.0, 2.0, talib.SMA)
		iv.BBUpper = utils.ToPointer(upper[n-1])
		iv.BBMiddle = utils.ToPointer(middle[n-1])
		iv.BBLower = utils.ToPointer(lower[n-1])
		if band := upper[n-1] - lower[n-1]; band > 0 {
			iv.BBPercentB = utils.ToPointer((closes[n-1] - lower[n-1]) / band)
		}
	}
	if n >= 28 {
		adx := talib.Adx(highs, lows, closes, 14)
		plusDI := talib.PlusDI(highs, lows, closes, 14)
		minusDI := talib.MinusDI(highs, lows, closes, 14)
		iv.ADX = utils.ToPointer(adx[n-1])
		iv.PlusDI = utils.ToPointer(plusDI[n-1])
		iv.MinusDI = utils.ToPointer(minusDI[n-1])
	}
	if n >= 21 {
		avgVolume := talib.Sma(volumes, 20)
		if avgVolume[n-2] > 0 {
			iv.VolumeRatio = utils.ToPointer(volumes[n-1] / avgVolume[n-2])
		}
	}

	upDay := n >= 2 && closes[n-1] > closes[n-2]

	scores := scoring.IndicatorScores{
		RSI:       scoring.ScoreRSI(deref(iv.RSI)),
		MACD:      scoring.ScoreMACD(deref(iv.MACD), deref(iv.MACDSignal), prevMACD),
		Trend:     scoring.ScoreTrend(iv.LatestClose, deref(iv.SMA50), deref(iv.SMA200)),
		Bollinger: scoring.ScoreBollinger(deref(iv.BBPercentB)),
		ADX:       scoring.ScoreADX(deref(iv.ADX), deref(iv.PlusDI), deref(iv.MinusDI)),
		Volume:    scoring.ScoreVolume(deref(iv.VolumeRatio), upDay),
	}

	return &dto.TechnicalArtifact{
		Symbol:     symbolYF,
		DataPoints: n,
		Indicators: iv,
		Scores: dto.IndicatorScoreSet{
			RSI:       scores.RSI,
			MACD:      scores.MACD,
			Trend:     scores.Trend,
			Bollinger: scores.Bollinger,
			ADX:       scores.ADX,
			Volume:    scores.Volume,
		},
		Weights: map[string]float64{
			"rsi":       weights.RSI,
			"macd":      weights.MACD,
			"trend":     weights.Trend,
			"bollinger": weights.Bollinger,
			"adx":       weights.ADX,
			"volume":    weights.Volume,
		},
		TechnicalScore: scoring.AggregateTechnical(scores, weights),
	}
}

// deref maps a missing indicator reading to NaN, which every sub-scorer
// treats as neutral.
func deref(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
