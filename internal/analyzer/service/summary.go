package service

import (
	"fmt"
	"golang-portfolio-analyzer/internal/analyzer/dto"
	"strings"
)

// BuildSummary renders a one-line natural language digest of all four
// components. Missing components read as "N/A" so the summary always has the
// same shape.
func BuildSummary(technical *dto.TechnicalArtifact, fundamentals *dto.FundamentalArtifact,
	news *dto.NewsArtifact, legal *dto.LegalArtifact) string {
	parts := []string{
		"Technical: " + technicalDigest(technical) + ".",
		"Fundamentals: " + fundamentalHighlight(fundamentals) + ".",
		"News: " + newsSentimentLabel(news) + ".",
	}

	if legal != nil {
		if legal.HasSevereRedFlag {
			parts = append(parts, "ALERT: Severe red flags detected.")
		} else if len(legal.RedFlags) > 0 {
			parts = append(parts, fmt.Sprintf("Caution: %d regulatory/legal issue(s) noted.", len(legal.RedFlags)))
		}
	}

	return strings.Join(parts, " ")
}

func technicalDigest(technical *dto.TechnicalArtifact) string {
	if technical == nil {
		return "trend N/A, RSI N/A"
	}
	parts := []string{trendDescription(technical), rsiDescription(technical.Indicators.RSI)}
	if macd := macdDescription(technical.Indicators.MACDHistogram); macd != "" {
		parts = append(parts, macd)
	}
	return strings.Join(parts, ", ")
}

func rsiDescription(rsi *float64) string {
	if rsi == nil {
		return "RSI N/A"
	}
	v := *rsi
	switch {
	case v >= 70:
		return fmt.Sprintf("RSI %.1f (overbought)", v)
	case v >= 60:
		return fmt.Sprintf("RSI %.1f (bullish)", v)
	case v >= 40:
		return fmt.Sprintf("RSI %.1f (neutral)", v)
	case v >= 30:
		return fmt.Sprintf("RSI %.1f (bearish)", v)
	default:
		return fmt.Sprintf("RSI %.1f (oversold)", v)
	}
}

func trendDescription(technical *dto.TechnicalArtifact) string {
	var trend string
	switch score := technical.Scores.Trend; {
	case score >= 8:
		trend = "strong uptrend"
	case score >= 6:
		trend = "uptrend"
	case score >= 4:
		trend = "sideways"
	case score >= 2:
		trend = "downtrend"
	default:
		trend = "strong downtrend"
	}

	iv := technical.Indicators
	if iv.SMA50 != nil && iv.SMA200 != nil {
		if *iv.SMA50 > *iv.SMA200 && iv.LatestClose > *iv.SMA50 {
			trend += ", above SMAs"
		} else if *iv.SMA50 < *iv.SMA200 && iv.LatestClose < *iv.SMA50 {
			trend += ", below SMAs"
		}
	}
	return trend
}

func macdDescription(histogram *float64) string {
	if histogram == nil {
		return ""
	}
	if *histogram > 0 {
		return "MACD bullish"
	}
	return "MACD bearish"
}

func fundamentalHighlight(fundamentals *dto.FundamentalArtifact) string {
	if fundamentals == nil {
		return "fundamentals N/A"
	}

	var parts []string
	if pe := fundamentals.PERatio; pe != nil {
		if fundamentals.PEVsSector == "above" {
			parts = append(parts, fmt.Sprintf("P/E %.1f (premium)", *pe))
		} else {
			parts = append(parts, fmt.Sprintf("P/E %.1f", *pe))
		}
	}
	if pg := fundamentals.ProfitGrowthYoY; pg != nil {
		switch {
		case *pg >= 20:
			parts = append(parts, fmt.Sprintf("profit +%.0f%% YoY (strong)", *pg))
		case *pg >= 10:
			parts = append(parts, fmt.Sprintf("profit +%.0f%% YoY", *pg))
		case *pg >= 0:
			parts = append(parts, fmt.Sprintf("profit +%.0f%% YoY (modest)", *pg))
		default:
			parts = append(parts, fmt.Sprintf("profit %.0f%% YoY (declining)", *pg))
		}
	}
	if roe := fundamentals.ROE; roe != nil {
		if *roe >= 15 {
			parts = append(parts, fmt.Sprintf("ROE %.1f%% (strong)", *roe))
		} else {
			parts = append(parts, fmt.Sprintf("ROE %.1f%%", *roe))
		}
	}
	if de := fundamentals.DebtToEquity; de != nil {
		switch {
		case *de < 0.1:
			parts = append(parts, "debt-free")
		case *de < 0.5:
			parts = append(parts, "low debt")
		case *de > 1.0:
			parts = append(parts, "high debt")
		}
	}

	if len(parts) == 0 {
		return "fundamentals N/A"
	}
	if len(parts) > 3 {
		parts = parts[:3]
	}
	return strings.Join(parts, ", ")
}

func newsSentimentLabel(news *dto.NewsArtifact) string {
	if news == nil {
		return "news N/A"
	}

	var parts []string
	switch strings.ToLower(news.NewsSentiment) {
	case "positive":
		parts = append(parts, "positive sentiment")
	case "negative":
		parts = append(parts, "negative sentiment")
	case "neutral":
		parts = append(parts, "neutral sentiment")
	default:
		parts = append(parts, "mixed sentiment")
	}

	switch strings.ToLower(news.AnalystConsensus) {
	case "strong_buy", "buy":
		parts = append(parts, "analysts bullish")
	case "strong_sell", "sell":
		parts = append(parts, "analysts bearish")
	}

	if tvc := news.TargetVsCurrent; tvc != nil {
		switch {
		case *tvc >= 15:
			parts = append(parts, fmt.Sprintf("+%.0f%% target upside", *tvc))
		case *tvc >= 5:
			parts = append(parts, fmt.Sprintf("+%.0f%% upside", *tvc))
		case *tvc <= -10:
			parts = append(parts, fmt.Sprintf("%.0f%% downside", *tvc))
		}
	}

	if len(parts) > 2 {
		parts = parts[:2]
	}
	return strings.Join(parts, ", ")
}
