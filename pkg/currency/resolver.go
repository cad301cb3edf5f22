// Package currency resolves raw currency tokens against a local
// default currency and a lazily-fetched remote catalog.
package currency

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mtkohut/spendwatch/pkg/api"
)

// CatalogFunc fetches the remote currency catalog. A nil CatalogFunc
// means no remote catalog is available.
type CatalogFunc func(ctx context.Context) ([]api.Currency, error)

// Resolver resolves currency tokens within a single extraction call.
// The remote catalog is fetched at most once per Resolver, so callers
// must create a fresh Resolver per call and never share one across
// concurrent extractions.
type Resolver struct {
	local   api.Currency
	fetch   CatalogFunc
	logger  *slog.Logger
	fetched bool
	remote  []api.Currency
}

// NewResolver creates a resolver for one extraction call.
func NewResolver(local api.Currency, fetch CatalogFunc, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{local: local, fetch: fetch, logger: logger}
}

// Resolve maps a raw currency token to a known currency, or nil when
// the token matches nothing. directional marks tokens coming from a
// directional (expense/income) pattern: an empty token then resolves to
// the local currency, since direction patterns imply local-currency
// transactions absent contrary evidence.
//
// Catalog fetch failures are logged and degrade resolution to nil; they
// are never propagated.
func (r *Resolver) Resolve(ctx context.Context, token string, directional bool) *api.Currency {
	token = strings.TrimSpace(token)
	if token == "" {
		if directional {
			local := r.local
			return &local
		}
		return nil
	}

	if r.local.Matches(token) {
		local := r.local
		return &local
	}

	for _, c := range r.catalog(ctx) {
		if c.Matches(token) {
			found := c
			return &found
		}
	}
	return nil
}

func (r *Resolver) catalog(ctx context.Context) []api.Currency {
	if r.fetched {
		return r.remote
	}
	r.fetched = true

	if r.fetch == nil {
		r.logger.Debug("no remote currency catalog configured")
		return nil
	}

	list, err := r.fetch(ctx)
	if err != nil {
		r.logger.Warn("currency catalog fetch failed", "error", err)
		return nil
	}
	r.remote = list
	return r.remote
}
