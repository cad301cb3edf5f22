// Package extract implements the money-extraction orchestrator: it
// selects a pattern, walks candidate matches, resolves currencies and
// normalizes amounts, and reports the outcome as an explicit variant.
package extract

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/mtkohut/spendwatch/pkg/amount"
	"github.com/mtkohut/spendwatch/pkg/api"
	"github.com/mtkohut/spendwatch/pkg/currency"
	"github.com/mtkohut/spendwatch/pkg/pattern"
)

// Direction is the transaction direction implied by the matched pattern.
type Direction int

const (
	// DirectionUnknown comes from the generic fallback pattern.
	DirectionUnknown Direction = 0
	// DirectionExpense comes from a configured expense pattern.
	DirectionExpense Direction = -1
	// DirectionIncome comes from a configured income pattern.
	DirectionIncome Direction = 1
)

// OutcomeKind enumerates how an extraction call ended. No-match and
// ungated text are normal outcomes, not errors: most notifications
// carry no money at all.
type OutcomeKind int

const (
	// KindNoMatch means no pattern matched the text.
	KindNoMatch OutcomeKind = iota
	// KindUngated means the generic pattern matched but every match
	// lacked a currency affix, so the text was rejected as ordinary
	// numeric content.
	KindUngated
	// KindMatched means a money match was accepted.
	KindMatched
)

// Result is one accepted extraction: currency (nil when unresolvable),
// a non-negative amount, and the pattern-implied direction.
type Result struct {
	Currency  *api.Currency
	Amount    decimal.Decimal
	Direction Direction
}

// IsExpense reports whether the match came from an expense pattern.
func (r Result) IsExpense() bool {
	return r.Direction == DirectionExpense
}

// Outcome is the full result of one extraction call.
type Outcome struct {
	Kind   OutcomeKind
	Result Result
}

// Request carries everything one extraction call needs. Each call is
// self-contained: the engine holds no state across invocations.
type Request struct {
	Text          string
	LocalCurrency api.Currency
	// ExpensePattern and IncomePattern are optional raw patterns.
	// The expense pattern is tried first, then the income pattern, then
	// the generic money pattern.
	ExpensePattern string
	IncomePattern  string
	// Catalog fetches the remote currency catalog; nil disables remote
	// resolution. It is invoked at most once per call.
	Catalog currency.CatalogFunc
}

// Engine runs extraction calls. It is safe for concurrent use.
type Engine struct {
	logger *slog.Logger
}

// New creates an extraction engine.
func New(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// Extract runs one extraction call over req.Text.
func (e *Engine) Extract(ctx context.Context, req Request) Outcome {
	resolver := currency.NewResolver(req.LocalCurrency, req.Catalog, e.logger)

	if re := e.compileDirectional(req.ExpensePattern); re != nil {
		if matches := pattern.FindAll(re, req.Text); len(matches) > 0 {
			return e.directional(ctx, resolver, req.LocalCurrency, matches, DirectionExpense)
		}
	}

	if re := e.compileDirectional(req.IncomePattern); re != nil {
		if matches := pattern.FindAll(re, req.Text); len(matches) > 0 {
			return e.directional(ctx, resolver, req.LocalCurrency, matches, DirectionIncome)
		}
	}

	return e.generic(ctx, resolver, req.LocalCurrency, req.Text)
}

// compileDirectional compiles a user pattern, returning nil for empty
// or invalid patterns. A broken user pattern must not stop extraction;
// the engine falls through to the next pattern.
func (e *Engine) compileDirectional(expr string) *regexp.Regexp {
	if expr == "" {
		return nil
	}
	re, err := pattern.CompileDirectional(expr)
	if err != nil {
		e.logger.Warn("ignoring invalid directional pattern", "pattern", expr, "error", err)
		return nil
	}
	return re
}

// directional processes matches of a user-configured pattern. The
// first match with a non-empty amount token wins; matches after it are
// never inspected.
func (e *Engine) directional(ctx context.Context, resolver *currency.Resolver, local api.Currency, matches []pattern.Match, dir Direction) Outcome {
	for _, m := range matches {
		amountToken := m.AmountToken()
		if amountToken == "" {
			continue
		}

		cur := resolver.Resolve(ctx, m.CurrencyToken(), true)
		return Outcome{
			Kind: KindMatched,
			Result: Result{
				Currency:  cur,
				Amount:    amount.Normalize(amountToken, decimals(cur, local), e.logger),
				Direction: dir,
			},
		}
	}

	// The pattern matched but exposed no amount group: direction is
	// still established, the amount stays zero and currency defaults
	// to local.
	cur := resolver.Resolve(ctx, "", true)
	return Outcome{
		Kind:   KindMatched,
		Result: Result{Currency: cur, Amount: decimal.Zero, Direction: dir},
	}
}

// generic processes matches of the generic money pattern. A match is
// valid only when it carries a currency affix.
func (e *Engine) generic(ctx context.Context, resolver *currency.Resolver, local api.Currency, text string) Outcome {
	matches := pattern.FindGeneric(text)
	if len(matches) == 0 {
		e.logger.Warn("no money pattern matched", "text_len", len(text))
		return Outcome{Kind: KindNoMatch}
	}

	for _, m := range matches {
		if !m.HasAffix() {
			continue
		}
		amountToken := m.AmountToken()
		if amountToken == "" {
			continue
		}

		cur := resolver.Resolve(ctx, m.CurrencyToken(), false)
		return Outcome{
			Kind: KindMatched,
			Result: Result{
				Currency:  cur,
				Amount:    amount.Normalize(amountToken, decimals(cur, local), e.logger),
				Direction: DirectionUnknown,
			},
		}
	}

	e.logger.Info("numeric text rejected, no currency affix", "matches", len(matches))
	return Outcome{Kind: KindUngated}
}

// decimals picks the decimal-place count for amount normalization: the
// resolved currency's, falling back to the local currency's, falling
// back to the default of 2 inside Decimals.
func decimals(resolved *api.Currency, local api.Currency) int {
	if resolved != nil {
		return resolved.Decimals()
	}
	return local.Decimals()
}
