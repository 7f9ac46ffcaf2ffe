package dto

import "time"

// GetOHLCVParam selects the price history to fetch.
type GetOHLCVParam struct {
	Symbol   string `json:"symbol"`
	Interval string `json:"interval"`
	Range    string `json:"range"`
}

// Candle is one OHLCV bar.
type Candle struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// OHLCVData is the cached price history for one symbol.
type OHLCVData struct {
	Symbol    string    `json:"symbol"`
	Interval  string    `json:"interval"`
	Range     string    `json:"range"`
	FetchedAt time.Time `json:"fetched_at"`
	Candles   []Candle  `json:"candles"`
}

// YahooChartResponse mirrors the Yahoo Finance v8 chart API payload, limited
// to the fields the fetcher reads.
type YahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}
