package telegram

import (
	"fmt"
	"strings"
	"time"
)

// BatchResultLine is one scored holding in a batch summary message.
type BatchResultLine struct {
	Symbol         string
	Broker         string
	OverallScore   float64
	Recommendation string
	Confidence     string
}

// FormatBatchSummary renders the end-of-batch Telegram message: counts,
// portfolio health and one line per scored holding.
func FormatBatchSummary(now time.Time, health string, lines []BatchResultLine, failed []string) string {
	var b strings.Builder

	b.WriteString("📊 *Portfolio Scoring Summary*\n")
	b.WriteString(fmt.Sprintf("_%s_\n\n", now.Format("02 Jan 2006 15:04")))
	b.WriteString(fmt.Sprintf("Scored: %d | Failed: %d | Health: *%s*\n\n", len(lines), len(failed), health))

	for _, l := range lines {
		name := l.Symbol
		if l.Broker != "" {
			name = fmt.Sprintf("%s@%s", l.Symbol, l.Broker)
		}
		b.WriteString(fmt.Sprintf("• `%s` %.1f %s (%s)\n", name, l.OverallScore, l.Recommendation, l.Confidence))
	}

	if len(failed) > 0 {
		b.WriteString("\n⚠️ Failed: ")
		b.WriteString(strings.Join(failed, ", "))
	}

	return b.String()
}

// FormatErrorAlertMessage renders an operator alert for a failure that
// exhausted its retries.
func FormatErrorAlertMessage(now time.Time, detail string) string {
	return fmt.Sprintf("🚨 *Portfolio Analyzer Alert*\n_%s_\n\n%s", now.Format("02 Jan 2006 15:04"), detail)
}
