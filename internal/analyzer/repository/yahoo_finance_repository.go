package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"golang-portfolio-analyzer/internal/analyzer/config"
	"golang-portfolio-analyzer/internal/analyzer/dto"
	"golang-portfolio-analyzer/pkg/logger"
	"golang-portfolio-analyzer/pkg/utils"
	"io"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// YahooFinanceRepository fetches OHLCV price history.
type YahooFinanceRepository interface {
	GetOHLCV(ctx context.Context, param dto.GetOHLCVParam) (*dto.OHLCVData, error)
}

type yahooFinanceRepository struct {
	cfg            *config.Config
	log            *logger.Logger
	httpClient     *http.Client
	requestLimiter *rate.Limiter
	memCache       *gocache.Cache
}

func NewYahooFinanceRepository(cfg *config.Config, log *logger.Logger) YahooFinanceRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.YahooFinance.MaxRequestPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)
	return &yahooFinanceRepository{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		requestLimiter: requestLimiter,
		memCache:       gocache.New(30*time.Minute, 10*time.Minute),
	}
}

func (r *yahooFinanceRepository) GetOHLCV(ctx context.Context, param dto.GetOHLCVParam) (*dto.OHLCVData, error) {
	if param.Interval == "" {
		param.Interval = "1d"
	}
	if param.Range == "" {
		param.Range = "1y"
	}

	cacheKey := fmt.Sprintf("ohlcv:%s:%s:%s", param.Symbol, param.Interval, param.Range)
	if cached, found := r.memCache.Get(cacheKey); found {
		return cached.(*dto.OHLCVData), nil
	}

	url := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		r.cfg.YahooFinance.BaseURL, param.Symbol, param.Interval, param.Range)

	body, err := r.sendRequest(ctx, url)
	if err != nil {
		return nil, err
	}

	var response dto.YahooChartResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to decode chart response for %s: %w", param.Symbol, err)
	}
	if response.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error for %s: %s", param.Symbol, response.Chart.Error.Description)
	}
	if len(response.Chart.Result) == 0 {
		return nil, fmt.Errorf("chart API returned no result for %s", param.Symbol)
	}

	data := buildOHLCV(param, &response)
	r.log.DebugContext(ctx, "Fetched price history",
		logger.StringField("symbol", param.Symbol),
		logger.IntField("candles", len(data.Candles)),
	)

	r.memCache.Set(cacheKey, data, gocache.DefaultExpiration)
	return data, nil
}

// buildOHLCV flattens the chart payload, skipping bars with a null close.
func buildOHLCV(param dto.GetOHLCVParam, response *dto.YahooChartResponse) *dto.OHLCVData {
	result := response.Chart.Result[0]
	data := &dto.OHLCVData{
		Symbol:    param.Symbol,
		Interval:  param.Interval,
		Range:     param.Range,
		FetchedAt: utils.TimeNowIST(),
	}
	if len(result.Indicators.Quote) == 0 {
		return data
	}

	quote := result.Indicators.Quote[0]
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}
		candle := dto.Candle{
			Date:  time.Unix(ts, 0).Format("2006-01-02"),
			Close: *quote.Close[i],
		}
		if i < len(quote.Open) && quote.Open[i] != nil {
			candle.Open = *quote.Open[i]
		}
		if i < len(quote.High) && quote.High[i] != nil {
			candle.High = *quote.High[i]
		}
		if i < len(quote.Low) && quote.Low[i] != nil {
			candle.Low = *quote.Low[i]
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			candle.Volume = *quote.Volume[i]
		}
		data.Candles = append(data.Candles, candle)
	}
	return data
}

func (r *yahooFinanceRepository) sendRequest(ctx context.Context, url string) ([]byte, error) {
	fields := []zap.Field{
		zap.String("url", url),
		zap.Int("max_request_per_minute", r.cfg.YahooFinance.MaxRequestPerMinute),
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to wait for request limit", fields...)
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to create new http request", fields...)
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to send request to Yahoo Finance API", fields...)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fields = append(fields, zap.Int("status_code", resp.StatusCode))
		r.log.ErrorContext(ctx, "Received non-OK response from Yahoo Finance API", fields...)
		return nil, fmt.Errorf("yahoo finance API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fields = append(fields, zap.Error(err))
		r.log.ErrorContext(ctx, "Failed to read response body from Yahoo Finance API", fields...)
		return nil, err
	}

	return body, nil
}
