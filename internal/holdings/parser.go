package holdings

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Broker labels recognized by the CSV parser.
const (
	BrokerZerodha = "zerodha"
	BrokerGroww   = "groww"
)

// ErrUnknownFormat is returned when the CSV headers match no known broker.
var ErrUnknownFormat = errors.New("unknown portfolio CSV format")

// DetectBroker identifies the broker from the CSV header row. Zerodha
// exports carry an "Instrument" column, Groww exports carry "Symbol" plus a
// company-name column.
func DetectBroker(headers []string) string {
	var hasInstrument, hasSymbol, hasCompany bool
	for _, h := range headers {
		lower := strings.ToLower(strings.TrimSpace(h))
		if strings.Contains(lower, "instrument") {
			hasInstrument = true
		}
		if lower == "symbol" {
			hasSymbol = true
		}
		if strings.Contains(lower, "company") {
			hasCompany = true
		}
	}
	switch {
	case hasInstrument:
		return BrokerZerodha
	case hasSymbol && hasCompany:
		return BrokerGroww
	default:
		return ""
	}
}

// ParseCSV parses a Zerodha or Groww portfolio export. Rows without a
// usable symbol, quantity and average price are skipped, not fatal.
func ParseCSV(r io.Reader) ([]Holding, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if len(headers) > 0 {
		// Strip a UTF-8 BOM some broker exports prepend.
		headers[0] = strings.TrimPrefix(headers[0], "\uFEFF")
	}

	broker := DetectBroker(headers)
	if broker == "" {
		return nil, fmt.Errorf("%w: headers %v", ErrUnknownFormat, headers)
	}

	var result []Holding
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}

		row := toRow(headers, record)
		var h *Holding
		if broker == BrokerZerodha {
			h = parseZerodhaRow(row)
		} else {
			h = parseGrowwRow(row)
		}
		if h != nil {
			result = append(result, *h)
		}
	}

	return result, nil
}

// row maps lowercased header names to cell values.
type row map[string]string

func toRow(headers, record []string) row {
	r := make(row, len(headers))
	for i, h := range headers {
		if i < len(record) {
			r[strings.ToLower(strings.TrimSpace(h))] = record[i]
		}
	}
	return r
}

// find returns the first cell whose header contains all the given patterns.
func (r row) find(patterns ...string) string {
	for key, value := range r {
		ok := true
		for _, p := range patterns {
			if !strings.Contains(key, p) {
				ok = false
				break
			}
		}
		if ok && value != "" {
			return value
		}
	}
	return ""
}

func parseZerodhaRow(r row) *Holding {
	symbol := r.find("instrument")
	if symbol == "" || strings.EqualFold(symbol, "instrument") {
		return nil
	}

	quantity := CleanNumeric(r.find("qty"))
	avgPrice := CleanNumeric(r.find("avg"))
	if quantity == nil || avgPrice == nil {
		return nil
	}

	normalized := NormalizeSymbol(symbol)
	h := &Holding{
		Symbol:   normalized,
		SymbolYF: YFSymbol(normalized),
		Name:     normalized, // Zerodha exports carry no company name
		Quantity: *quantity,
		AvgPrice: *avgPrice,
		Broker:   BrokerZerodha,
	}

	h.LTP = CleanNumeric(r.find("ltp"))
	h.Invested = CleanNumeric(r.find("invested"))
	h.CurrentValue = CleanNumeric(r.find("cur", "val"))
	h.PnL = CleanNumeric(r.find("p&l"))
	h.NetChangePct = CleanNumeric(r.find("net", "chg"))

	return h
}

func parseGrowwRow(r row) *Holding {
	symbol := r.find("symbol")
	if symbol == "" {
		return nil
	}

	quantity := CleanNumeric(r.find("quantity"))
	if quantity == nil {
		quantity = CleanNumeric(r.find("qty"))
	}
	avgPrice := CleanNumeric(r.find("avg", "price"))
	if quantity == nil || avgPrice == nil {
		return nil
	}

	normalized := NormalizeSymbol(symbol)
	name := strings.TrimSpace(r.find("company"))
	if name == "" {
		name = normalized
	}

	return &Holding{
		Symbol:   normalized,
		SymbolYF: YFSymbol(normalized),
		Name:     name,
		Quantity: *quantity,
		AvgPrice: *avgPrice,
		Broker:   BrokerGroww,
	}
}
