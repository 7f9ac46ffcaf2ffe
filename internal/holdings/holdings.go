package holdings

import (
	"regexp"
	"strconv"
	"strings"
)

// Holding is one brokerage position. Quantity and average price feed P&L
// display only, never the scoring itself.
type Holding struct {
	Symbol   string  `json:"symbol"`
	SymbolYF string  `json:"symbol_yf"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	AvgPrice float64 `json:"avg_price"`
	Broker   string  `json:"broker"`

	// Optional broker-reported figures, kept when the CSV carries them.
	LTP          *float64 `json:"ltp,omitempty"`
	Invested     *float64 `json:"invested,omitempty"`
	CurrentValue *float64 `json:"current_value,omitempty"`
	PnL          *float64 `json:"pnl,omitempty"`
	NetChangePct *float64 `json:"net_change_pct,omitempty"`
}

// Key identifies the output artifact for this holding.
func (h Holding) Key() string {
	if h.Broker == "" || h.Broker == "unknown" {
		return h.SymbolYF
	}
	return h.Symbol + "@" + h.Broker
}

var exchangeSuffixes = []string{".NS", ".BSE", ".BO", ".NSE"}

// NormalizeSymbol strips the exchange suffix and uppercases the symbol.
func NormalizeSymbol(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	for _, suffix := range exchangeSuffixes {
		if strings.HasSuffix(symbol, suffix) {
			return strings.TrimSuffix(symbol, suffix)
		}
	}
	return symbol
}

// YFSymbol returns the Yahoo Finance symbol for a normalized NSE symbol.
func YFSymbol(symbol string) string {
	normalized := NormalizeSymbol(symbol)
	if normalized == "" {
		return ""
	}
	return normalized + ".NS"
}

var numericJunk = regexp.MustCompile(`[,%\s]`)

// CleanNumeric parses broker CSV numbers like "2,450.50", "-5.2%" or "N/A".
// Unparseable values return nil rather than zero, because zero is a valid
// quantity.
func CleanNumeric(value string) *float64 {
	trimmed := strings.ToUpper(strings.TrimSpace(value))
	if trimmed == "" || trimmed == "N/A" || trimmed == "-" || trimmed == "NAN" || trimmed == "NONE" {
		return nil
	}
	cleaned := numericJunk.ReplaceAllString(value, "")
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &f
}
