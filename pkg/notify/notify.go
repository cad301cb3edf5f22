// Package notify emits the user-visible outcome of event processing:
// a low-priority confirmation on auto-add, or an actionable prompt
// carrying a serialized review payload.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mtkohut/spendwatch/pkg/api"
)

// LogNotifier writes notifications to the structured log. It stands in
// for a platform notification surface when the daemon runs headless.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// Created announces a successfully auto-added transaction.
func (n *LogNotifier) Created(_ context.Context, record api.TransactionRecord) error {
	n.logger.Info("transaction created",
		"id", record.ID,
		"type", record.Type,
		"amount", record.Amount,
		"description", record.Description,
	)
	return nil
}

// ReviewPrompt asks the user to create the transaction manually. The
// payload is serialized so a review flow can later deserialize it and
// re-run extraction over the original text.
func (n *LogNotifier) ReviewPrompt(_ context.Context, payload api.ReviewPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding review payload: %w", err)
	}

	n.logger.Info("transaction needs manual review",
		"app", payload.AppName,
		"payload", string(data),
	)
	return nil
}

// Recorder captures notifications for tests.
type Recorder struct {
	mu       sync.Mutex
	created  []api.TransactionRecord
	prompted []api.ReviewPayload
}

// Created records a confirmation.
func (r *Recorder) Created(_ context.Context, record api.TransactionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, record)
	return nil
}

// ReviewPrompt records a manual-review prompt.
func (r *Recorder) ReviewPrompt(_ context.Context, payload api.ReviewPayload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompted = append(r.prompted, payload)
	return nil
}

// CreatedRecords returns the confirmations seen so far.
func (r *Recorder) CreatedRecords() []api.TransactionRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]api.TransactionRecord(nil), r.created...)
}

// Prompts returns the review prompts seen so far.
func (r *Recorder) Prompts() []api.ReviewPayload {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]api.ReviewPayload(nil), r.prompted...)
}
