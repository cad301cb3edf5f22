// Package api defines the core interfaces and data structures for spendwatch.
package api

import (
	"context"
	"strings"
	"time"
)

// DefaultDecimalPlaces is assumed when a currency doesn't declare its own.
const DefaultDecimalPlaces = 2

// EventState describes whether a notification was posted or dismissed.
type EventState string

const (
	// EventPosted marks a freshly delivered notification.
	EventPosted EventState = "posted"
	// EventRemoved marks a dismissed notification. Removed events are
	// ignored unconditionally.
	EventRemoved EventState = "removed"
)

// NotificationEvent is one notification delivered by a bridge source.
type NotificationEvent struct {
	Text        string     `json:"text"`
	Title       string     `json:"title"`
	PackageName string     `json:"package_name"`
	PostTime    time.Time  `json:"post_time"`
	State       EventState `json:"state"`
}

// Currency describes a currency known to the ledger server.
type Currency struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
	// DecimalPlaces is nil when the server doesn't declare it.
	DecimalPlaces *int `json:"decimal_places,omitempty"`
}

// Decimals returns the currency's decimal-place count, defaulting to 2.
func (c Currency) Decimals() int {
	if c.DecimalPlaces == nil {
		return DefaultDecimalPlaces
	}
	return *c.DecimalPlaces
}

// Matches reports whether token equals the currency's code or symbol,
// case-insensitively.
func (c Currency) Matches(token string) bool {
	if token == "" {
		return false
	}
	return strings.EqualFold(token, c.Code) || strings.EqualFold(token, c.Symbol)
}

// AppSettings is the per-source-app extraction configuration.
type AppSettings struct {
	// AutoAdd enables transaction creation without a manual prompt.
	AutoAdd bool `json:"auto_add" koanf:"auto_add"`
	// ExpensePattern and IncomePattern are raw regular expressions,
	// compiled case-insensitively. Either may be empty.
	ExpensePattern string `json:"expense_pattern,omitempty" koanf:"expense_pattern"`
	IncomePattern  string `json:"income_pattern,omitempty" koanf:"income_pattern"`
	// DefaultAccountID is the ledger account the transaction is booked
	// against. Empty means not configured.
	DefaultAccountID string `json:"default_account_id,omitempty" koanf:"default_account_id"`
}

// SettingsStore persists per-app extraction configuration.
//
// An app is "known" once a notification from it carried money-like
// text; it is "used" once the user has configured it.
type SettingsStore interface {
	IsKnown(ctx context.Context, appID string) (bool, error)
	Register(ctx context.Context, appID string) error
	IsUsed(ctx context.Context, appID string) (bool, error)
	AppSettings(ctx context.Context, appID string) (AppSettings, error)
}

// TransactionType is the ledger-side transaction kind.
type TransactionType string

const (
	TransactionWithdrawal TransactionType = "withdrawal"
	TransactionDeposit    TransactionType = "deposit"
)

// TransactionRequest is the payload for creating one ledger transaction.
type TransactionRequest struct {
	Type TransactionType `json:"type"`
	Date time.Time       `json:"date"`
	// Amount is a decimal string; the ledger parses it exactly.
	Amount          string `json:"amount"`
	Description     string `json:"description"`
	Notes           string `json:"notes,omitempty"`
	SourceAccountID string `json:"source_account_id"`
}

// TransactionRecord is the ledger's view of a stored transaction.
type TransactionRecord struct {
	ID          string          `json:"id"`
	Type        TransactionType `json:"type"`
	Date        time.Time       `json:"date"`
	Amount      string          `json:"amount"`
	Description string          `json:"description"`
}

// Ledger is the transaction-creation API consumed by the listener.
type Ledger interface {
	// ListCurrencies fetches the remote currency catalog.
	ListCurrencies(ctx context.Context) ([]Currency, error)
	CreateTransaction(ctx context.Context, req TransactionRequest) (TransactionRecord, error)
}

// Notifier emits the user-visible outcome of processing one event.
type Notifier interface {
	// Created announces a successfully auto-added transaction.
	Created(ctx context.Context, record TransactionRecord) error
	// ReviewPrompt asks the user to create the transaction manually.
	ReviewPrompt(ctx context.Context, payload ReviewPayload) error
}
