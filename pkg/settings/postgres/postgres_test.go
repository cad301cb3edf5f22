package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/mtkohut/spendwatch/pkg/api"
)

// TestNew_ConnectionFailure tests that the store returns an error when connection fails.
func TestNew_ConnectionFailure(t *testing.T) {
	cfg := Config{
		Host:     "nonexistent-host",
		Port:     5432,
		Database: "spendwatch",
		User:     "spendwatch",
		Password: "password",
		SSLMode:  "disable",
	}

	_, err := New(cfg, slog.New(slog.NewTextHandler(os.Stdout, nil)))
	if err == nil {
		t.Error("expected error when connecting to nonexistent host, got nil")
	}
}

func testStore(t *testing.T) *Store {
	t.Helper()

	// Skip if no test database available
	if os.Getenv("TEST_POSTGRES_HOST") == "" {
		t.Skip("TEST_POSTGRES_HOST not set, skipping integration test")
	}

	cfg := Config{
		Host:     os.Getenv("TEST_POSTGRES_HOST"),
		Database: os.Getenv("TEST_POSTGRES_DB"),
		User:     os.Getenv("TEST_POSTGRES_USER"),
		Password: os.Getenv("TEST_POSTGRES_PASSWORD"),
	}

	store, err := New(cfg, slog.New(slog.NewTextHandler(os.Stdout, nil)))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(store.Close)
	return store
}

// TestRegisterAndLookup exercises the known/used lifecycle end to end.
func TestRegisterAndLookup(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	appID := fmt.Sprintf("com.test.app.%d", time.Now().UnixNano())

	known, err := store.IsKnown(ctx, appID)
	if err != nil {
		t.Fatalf("IsKnown: %v", err)
	}
	if known {
		t.Error("unseen app must not be known")
	}

	if err := store.Register(ctx, appID); err != nil {
		t.Fatalf("Register: %v", err)
	}

	known, err = store.IsKnown(ctx, appID)
	if err != nil {
		t.Fatalf("IsKnown after register: %v", err)
	}
	if !known {
		t.Error("registered app must be known")
	}

	used, err := store.IsUsed(ctx, appID)
	if err != nil {
		t.Fatalf("IsUsed: %v", err)
	}
	if used {
		t.Error("registered-but-unconfigured app must not be used")
	}

	want := api.AppSettings{
		AutoAdd:          true,
		ExpensePattern:   `debited by (?P<amount>[\d.,]+)`,
		IncomePattern:    `credited with (?P<amount>[\d.,]+)`,
		DefaultAccountID: "12",
	}
	if err := store.Configure(ctx, appID, want); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	used, err = store.IsUsed(ctx, appID)
	if err != nil {
		t.Fatalf("IsUsed after configure: %v", err)
	}
	if !used {
		t.Error("configured app must be used")
	}

	got, err := store.AppSettings(ctx, appID)
	if err != nil {
		t.Fatalf("AppSettings: %v", err)
	}
	if got != want {
		t.Errorf("settings: got %+v, want %+v", got, want)
	}
}
