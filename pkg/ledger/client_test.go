package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtkohut/spendwatch/pkg/api"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(Config{
		BaseURL:       srv.URL,
		Token:         "test-token",
		RetryAttempts: 3,
		RetryDelay:    time.Millisecond,
	}, nil)
	require.NoError(t, err)
	return client
}

func TestNewValidation(t *testing.T) {
	_, err := New(Config{Token: "t"}, nil)
	assert.Error(t, err)

	_, err = New(Config{BaseURL: "http://localhost"}, nil)
	assert.Error(t, err)
}

func TestListCurrencies(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/currencies", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[
			{"code":"USD","symbol":"$","decimal_places":2},
			{"code":"JPY","symbol":"¥","decimal_places":0}
		]}`))
	}))

	currencies, err := client.ListCurrencies(context.Background())
	require.NoError(t, err)
	require.Len(t, currencies, 2)
	assert.Equal(t, "USD", currencies[0].Code)
	assert.Equal(t, 0, currencies[1].Decimals())
}

func TestCreateTransaction(t *testing.T) {
	var posted createRequest

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/transactions", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&posted))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"id":"991","type":"withdrawal","amount":"12.34","description":"Coffee"}}`))
	}))

	record, err := client.CreateTransaction(context.Background(), api.TransactionRequest{
		Type:            api.TransactionWithdrawal,
		Date:            time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		Amount:          "12.34",
		Description:     "Coffee",
		Notes:           "auto-added from notification",
		SourceAccountID: "7",
	})
	require.NoError(t, err)
	assert.Equal(t, "991", record.ID)

	// Duplicate-hash and rule-application flags are always requested.
	assert.True(t, posted.ErrorIfDuplicateHash)
	assert.True(t, posted.ApplyRules)
	require.Len(t, posted.Transactions, 1)
	assert.Equal(t, "withdrawal", posted.Transactions[0].Type)
	assert.Equal(t, "12.34", posted.Transactions[0].Amount)
	assert.Equal(t, "7", posted.Transactions[0].SourceAccountID)
	assert.Equal(t, "2026-03-14T09:26:53Z", posted.Transactions[0].Date)
}

func TestRetryOnThrottle(t *testing.T) {
	attempts := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))

	_, err := client.ListCurrencies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestValidationErrorNotRetried(t *testing.T) {
	attempts := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"amount must be positive"}`))
	}))

	_, err := client.CreateTransaction(context.Background(), api.TransactionRequest{})
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, http.StatusUnprocessableEntity, verr.StatusCode)
	assert.Equal(t, "amount must be positive", verr.Message)
	assert.Equal(t, 1, attempts, "validation errors must not be retried")
}

func TestServerErrorExhaustsRetries(t *testing.T) {
	attempts := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.ListCurrencies(context.Background())
	require.Error(t, err)
	assert.Equal(t, 3, attempts)
}
