// Package pattern holds the compiled money-matching patterns and
// tolerant access to their named capture groups.
package pattern

import (
	"fmt"
	"regexp"
	"unicode"
	"unicode/utf8"
)

// Named capture groups recognized by the extraction engine.
// User-supplied patterns may define any subset of them.
const (
	GroupCurrency     = "currency"
	GroupPreCurrency  = "preCurrency"
	GroupAmount       = "amount"
	GroupPostCurrency = "postCurrency"
)

// genericMoney matches a numeric run with an optional short currency
// affix immediately before or after it. The amount run tolerates dots,
// commas and interior whitespace; separator semantics are decided later
// by the amount normalizer. The pattern carries no boundary assertions:
// FindGeneric checks those on the match indices, so one match never
// consumes the whitespace that anchors the next.
var genericMoney = regexp.MustCompile(
	`(?P<preCurrency>[^\s\d]{0,3})` +
		`(?P<amount>\d+(?:[.,\s]\d+)*)` +
		`(?P<postCurrency>[^\s\d]{0,3})`,
)

// FindGeneric returns all generic money matches in text, in textual
// order. A candidate counts only when the whole construct is bounded by
// string edges or whitespace.
func FindGeneric(text string) []Match {
	var matches []Match
	for _, loc := range genericMoney.FindAllStringSubmatchIndex(text, -1) {
		if !bounded(text, loc[0], loc[1]) {
			continue
		}
		subs := make([]string, 0, len(loc)/2)
		for i := 0; i < len(loc); i += 2 {
			if loc[i] < 0 {
				subs = append(subs, "")
				continue
			}
			subs = append(subs, text[loc[i]:loc[i+1]])
		}
		matches = append(matches, Match{re: genericMoney, subs: subs})
	}
	return matches
}

// bounded reports whether text[start:end] is preceded and followed by a
// string edge or whitespace.
func bounded(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if !unicode.IsSpace(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// CompileDirectional compiles a user-supplied expense or income pattern.
// Directional patterns are always matched case-insensitively.
func CompileDirectional(expr string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		return nil, fmt.Errorf("compiling directional pattern: %w", err)
	}
	return re, nil
}

// Match is one regex match over input text with named-group access that
// tolerates groups the pattern never defined.
type Match struct {
	re   *regexp.Regexp
	subs []string
}

// FindAll returns all matches of re over text, in textual order.
func FindAll(re *regexp.Regexp, text string) []Match {
	raw := re.FindAllStringSubmatch(text, -1)
	if raw == nil {
		return nil
	}

	matches := make([]Match, 0, len(raw))
	for _, subs := range raw {
		matches = append(matches, Match{re: re, subs: subs})
	}
	return matches
}

// Group returns the text captured by the named group, or "" when the
// pattern doesn't define the group or it didn't participate.
func (m Match) Group(name string) string {
	idx := m.re.SubexpIndex(name)
	if idx < 0 || idx >= len(m.subs) {
		return ""
	}
	return m.subs[idx]
}

// CurrencyToken returns the raw currency token of the match: the
// currency group when present, otherwise the pre-affix, otherwise the
// post-affix.
func (m Match) CurrencyToken() string {
	if tok := m.Group(GroupCurrency); tok != "" {
		return tok
	}
	if tok := m.Group(GroupPreCurrency); tok != "" {
		return tok
	}
	return m.Group(GroupPostCurrency)
}

// AmountToken returns the raw amount token of the match.
func (m Match) AmountToken() string {
	return m.Group(GroupAmount)
}

// HasAffix reports whether the match carries a currency affix. Numeric
// text with no adjacent currency-like token is rejected to avoid false
// positives on phone numbers, dates and plain counts.
func (m Match) HasAffix() bool {
	return m.Group(GroupPreCurrency) != "" || m.Group(GroupPostCurrency) != ""
}
