// Package amount converts raw numeric tokens with locale-ambiguous
// thousands/decimal separators into exact decimal amounts.
package amount

import (
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
)

// maxFractionRun is the longest trailing run after a separator that is
// still read as a decimal fraction. Notification text carries no locale
// metadata, so the rightmost separator is taken as the decimal mark
// only when its tail is short; longer tails mean the separators were
// grouping marks.
const maxFractionRun = 3

var separatorStripper = strings.NewReplacer(".", "", ",", "")

// Normalize converts a raw numeric token into an amount with the given
// decimal-place count. Parse failures are logged and yield zero; the
// caller never sees an error for a malformed token.
func Normalize(raw string, decimals int, logger *slog.Logger) decimal.Decimal {
	if logger == nil {
		logger = slog.Default()
	}

	token := stripWhitespace(raw)
	if token == "" {
		logger.Warn("empty amount token", "raw", raw)
		return decimal.Zero
	}

	if decimals == 0 {
		return parseDigits(separatorStripper.Replace(token), raw, logger)
	}

	p := strings.LastIndexAny(token, ".,")
	if p < 0 || len(token)-p-1 > maxFractionRun {
		// No separator, or the trailing run is too long to be a decimal
		// fraction: every separator was a grouping mark.
		return parseDigits(separatorStripper.Replace(token), raw, logger)
	}

	whole := separatorStripper.Replace(token[:p])
	if whole == "" {
		whole = "0"
	}

	frac := separatorStripper.Replace(token[p+1:])
	if len(frac) > decimals {
		logger.Debug("truncating fraction to currency precision",
			"raw", raw, "fraction", frac, "decimals", decimals)
		frac = frac[:decimals]
	}
	for len(frac) < decimals {
		frac += "0"
	}

	value, err := decimal.NewFromString(whole + "." + frac)
	if err != nil {
		logger.Warn("unparsable amount token", "raw", raw, "error", err)
		return decimal.Zero
	}
	return value
}

func parseDigits(digits, raw string, logger *slog.Logger) decimal.Decimal {
	value, err := decimal.NewFromString(digits)
	if err != nil {
		logger.Warn("unparsable amount token", "raw", raw, "error", err)
		return decimal.Zero
	}
	return value
}

func stripWhitespace(s string) string {
	return strings.Join(strings.Fields(s), "")
}
