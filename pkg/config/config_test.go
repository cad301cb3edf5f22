package config

import "testing"

func validConfig() Config {
	return Config{
		ListenAddr:       ":8423",
		LedgerURL:        "https://ledger.example.com",
		LedgerToken:      "token",
		CurrencyCode:     "USD",
		CurrencySymbol:   "$",
		CurrencyDecimals: -1,
		SettingsBackend:  "file",
		SettingsFile:     "data/settings.json",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing ledger url", mutate: func(c *Config) { c.LedgerURL = "" }, wantErr: true},
		{name: "missing token", mutate: func(c *Config) { c.LedgerToken = "" }, wantErr: true},
		{name: "missing currency", mutate: func(c *Config) { c.CurrencyCode = "" }, wantErr: true},
		{name: "bad backend", mutate: func(c *Config) { c.SettingsBackend = "redis" }, wantErr: true},
		{name: "postgres backend", mutate: func(c *Config) { c.SettingsBackend = "postgres" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLocalCurrency(t *testing.T) {
	cfg := validConfig()
	cur := cfg.LocalCurrency()
	if cur.Code != "USD" || cur.Symbol != "$" {
		t.Errorf("currency: got %+v", cur)
	}
	if cur.Decimals() != 2 {
		t.Errorf("unset decimals: got %d, want default 2", cur.Decimals())
	}

	cfg.CurrencyDecimals = 0
	if got := cfg.LocalCurrency().Decimals(); got != 0 {
		t.Errorf("explicit zero decimals: got %d, want 0", got)
	}
}
