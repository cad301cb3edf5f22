package settings

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mtkohut/spendwatch/pkg/api"
)

func TestFileStoreEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	store, err := NewFileStore(path, nil)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	ctx := context.Background()
	known, err := store.IsKnown(ctx, "com.bank.app")
	if err != nil {
		t.Fatalf("IsKnown: %v", err)
	}
	if known {
		t.Error("fresh store must not know any app")
	}

	used, err := store.IsUsed(ctx, "com.bank.app")
	if err != nil {
		t.Fatalf("IsUsed: %v", err)
	}
	if used {
		t.Error("fresh store must not mark any app used")
	}

	cfg, err := store.AppSettings(ctx, "com.bank.app")
	if err != nil {
		t.Fatalf("AppSettings: %v", err)
	}
	if cfg != (api.AppSettings{}) {
		t.Errorf("unconfigured app settings: got %+v, want zero", cfg)
	}
}

func TestFileStoreRegisterAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	ctx := context.Background()

	store, err := NewFileStore(path, nil)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if err := store.Register(ctx, "com.bank.app"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	// Registering twice is a no-op.
	if err := store.Register(ctx, "com.bank.app"); err != nil {
		t.Fatalf("Register again: %v", err)
	}

	want := api.AppSettings{
		AutoAdd:          true,
		ExpensePattern:   `you paid (?P<amount>[\d.,]+)`,
		DefaultAccountID: "7",
	}
	if err := store.Configure(ctx, "com.bank.app", want); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	// A new store instance must see the persisted state.
	reloaded, err := NewFileStore(path, nil)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}

	known, err := reloaded.IsKnown(ctx, "com.bank.app")
	if err != nil {
		t.Fatalf("IsKnown: %v", err)
	}
	if !known {
		t.Error("reloaded store must know the registered app")
	}

	used, err := reloaded.IsUsed(ctx, "com.bank.app")
	if err != nil {
		t.Fatalf("IsUsed: %v", err)
	}
	if !used {
		t.Error("reloaded store must mark the configured app used")
	}

	got, err := reloaded.AppSettings(ctx, "com.bank.app")
	if err != nil {
		t.Fatalf("AppSettings: %v", err)
	}
	if got != want {
		t.Errorf("settings: got %+v, want %+v", got, want)
	}

	// Registration alone doesn't make an app used.
	if err := reloaded.Register(ctx, "com.other.app"); err != nil {
		t.Fatalf("Register other: %v", err)
	}
	used, err = reloaded.IsUsed(ctx, "com.other.app")
	if err != nil {
		t.Fatalf("IsUsed other: %v", err)
	}
	if used {
		t.Error("registered-but-unconfigured app must not be used")
	}
}
