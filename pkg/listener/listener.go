// Package listener drives the per-notification state machine: filter,
// pattern scan, currency-affix gate, app registration, and the auto-add
// attempt with its manual-review fallback.
package listener

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/mtkohut/spendwatch/pkg/api"
	"github.com/mtkohut/spendwatch/pkg/extract"
)

// Disposition is the terminal state of one processed event.
type Disposition string

const (
	// DispositionSkipped covers removed events and the bridge's own
	// notifications.
	DispositionSkipped Disposition = "skipped"
	// DispositionNoMatch means no money pattern matched.
	DispositionNoMatch Disposition = "no_match"
	// DispositionUngated means numeric text lacked a currency affix.
	DispositionUngated Disposition = "ungated"
	// DispositionNotUsed means the app is known but not configured.
	DispositionNotUsed Disposition = "not_used"
	// DispositionCreated means a transaction was auto-added.
	DispositionCreated Disposition = "created"
	// DispositionReview means the user was prompted to add manually.
	DispositionReview Disposition = "review"
)

// Config holds the listener configuration.
type Config struct {
	// LocalCurrency is the currency of the user's default accounts.
	LocalCurrency api.Currency
	// SelfPackage is the bridge app's own package name; its
	// notifications are dropped to avoid feedback loops.
	SelfPackage string
}

// Listener processes notification events. Each event is handled with
// no shared mutable state, so concurrent Handle calls are safe.
type Listener struct {
	cfg      Config
	store    api.SettingsStore
	ledger   api.Ledger
	notifier api.Notifier
	engine   *extract.Engine
	logger   *slog.Logger
}

// New creates a listener with its collaborators injected.
func New(cfg Config, store api.SettingsStore, ledger api.Ledger, notifier api.Notifier, logger *slog.Logger) *Listener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener{
		cfg:      cfg,
		store:    store,
		ledger:   ledger,
		notifier: notifier,
		engine:   extract.New(logger),
		logger:   logger,
	}
}

// Handle processes one notification event to a terminal disposition.
// It never returns an error: every failure inside the auto-add attempt
// is logged and converted into a manual-review prompt.
func (l *Listener) Handle(ctx context.Context, event api.NotificationEvent) Disposition {
	logger := l.logger.With("event_id", uuid.NewString(), "app", event.PackageName)

	if event.State == api.EventRemoved {
		return DispositionSkipped
	}
	if event.PackageName == "" || event.PackageName == l.cfg.SelfPackage {
		return DispositionSkipped
	}

	body := eventBody(event)

	// Generic scan first: it decides whether the text carries money at
	// all, and gates on the currency affix before the app is even
	// registered as known. Only the outcome kind matters here, so no
	// catalog is wired in; currency resolution waits until autoAdd.
	scan := l.engine.Extract(ctx, extract.Request{
		Text:          body,
		LocalCurrency: l.cfg.LocalCurrency,
	})
	switch scan.Kind {
	case extract.KindNoMatch:
		return DispositionNoMatch
	case extract.KindUngated:
		logger.Debug("numeric text without currency affix ignored")
		return DispositionUngated
	}

	if err := l.store.Register(ctx, event.PackageName); err != nil {
		logger.Error("failed to register app", "error", err)
	}

	used, err := l.store.IsUsed(ctx, event.PackageName)
	if err != nil {
		logger.Error("failed to look up app usage", "error", err)
		return DispositionNotUsed
	}
	if !used {
		logger.Debug("app not configured, ignoring")
		return DispositionNotUsed
	}

	settings, err := l.store.AppSettings(ctx, event.PackageName)
	if err != nil {
		logger.Error("failed to load app settings", "error", err)
		return l.promptReview(ctx, event, logger)
	}

	if !settings.AutoAdd {
		return l.promptReview(ctx, event, logger)
	}

	if err := l.autoAdd(ctx, event, body, settings, logger); err != nil {
		logger.Warn("auto-add failed, falling back to manual review", "error", err)
		return l.promptReview(ctx, event, logger)
	}
	return DispositionCreated
}

// autoAdd runs the full extraction with the app's directional patterns
// and posts the transaction. Any returned error sends the event to
// manual review; nothing here is retried.
func (l *Listener) autoAdd(ctx context.Context, event api.NotificationEvent, body string, settings api.AppSettings, logger *slog.Logger) error {
	outcome := l.engine.Extract(ctx, extract.Request{
		Text:           body,
		LocalCurrency:  l.cfg.LocalCurrency,
		ExpensePattern: settings.ExpensePattern,
		IncomePattern:  settings.IncomePattern,
		Catalog:        l.ledger.ListCurrencies,
	})
	if outcome.Kind != extract.KindMatched {
		return errNoExtractableAmount
	}

	result := outcome.Result
	if result.Currency == nil {
		return errUnknownCurrency
	}
	if !strings.EqualFold(result.Currency.Code, l.cfg.LocalCurrency.Code) {
		return &foreignCurrencyError{Code: result.Currency.Code}
	}
	if !result.Amount.IsPositive() {
		return errNonPositiveAmount
	}
	if settings.DefaultAccountID == "" {
		return errNoDefaultAccount
	}

	req := api.TransactionRequest{
		Type:            transactionType(result.Direction),
		Date:            event.PostTime,
		Amount:          result.Amount.StringFixed(int32(result.Currency.Decimals())),
		Description:     description(event),
		Notes:           body,
		SourceAccountID: settings.DefaultAccountID,
	}

	record, err := l.ledger.CreateTransaction(ctx, req)
	if err != nil {
		return err
	}

	logger.Info("transaction auto-added",
		"id", record.ID,
		"amount", req.Amount,
		"type", req.Type,
	)
	if err := l.notifier.Created(ctx, record); err != nil {
		logger.Warn("failed to emit confirmation", "error", err)
	}
	return nil
}

func (l *Listener) promptReview(ctx context.Context, event api.NotificationEvent, logger *slog.Logger) Disposition {
	payload := api.ReviewPayload{
		AppName: event.PackageName,
		Title:   event.Title,
		Body:    event.Text,
		Date:    event.PostTime,
	}
	if err := l.notifier.ReviewPrompt(ctx, payload); err != nil {
		logger.Error("failed to emit review prompt", "error", err)
	}
	return DispositionReview
}

// transactionType maps the pattern-implied direction to a ledger
// transaction type. Unknown-direction matches are booked as
// withdrawals: money notifications overwhelmingly describe spending.
func transactionType(dir extract.Direction) api.TransactionType {
	if dir == extract.DirectionIncome {
		return api.TransactionDeposit
	}
	return api.TransactionWithdrawal
}

// eventBody joins title and text; apps split the interesting parts
// between the two inconsistently.
func eventBody(event api.NotificationEvent) string {
	return strings.TrimSpace(strings.TrimSpace(event.Title) + "\n" + strings.TrimSpace(event.Text))
}

// description picks a short human-readable transaction description.
func description(event api.NotificationEvent) string {
	if t := strings.TrimSpace(event.Title); t != "" {
		return t
	}
	return event.PackageName
}
