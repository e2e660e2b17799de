package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cardwatch/amlengine/internal/aml"
)

func TestIsolationClient_AcceptsOnSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/isolation/enforce", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewIsolationClient(srv.URL)
	assert.NoError(t, c.EnforceIsolation(context.Background(), "entity-1"))
}

func TestIsolationClient_RejectsOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewIsolationClient(srv.URL)
	assert.Error(t, c.EnforceIsolation(context.Background(), "entity-1"))
}

func TestStaticIsolation_AlwaysAllows(t *testing.T) {
	s := NewStaticIsolation(zap.NewNop().Sugar())
	assert.NoError(t, s.EnforceIsolation(context.Background(), "entity-1"))
}

func TestHistoryClient_DecodesRecords(t *testing.T) {
	records := []aml.HistoryRecord{
		{ID: "h1", EntityID: "entity-2", Amount: 1200, Currency: "USD", Timestamp: time.Now().UTC()},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "entity-2", r.URL.Query().Get("entity_id"))
		assert.NotEmpty(t, r.URL.Query().Get("since"))
		json.NewEncoder(w).Encode(records)
	}))
	defer srv.Close()

	c := NewHistoryClient(srv.URL)
	got, err := c.RecentTransactions(context.Background(), "entity-2", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1200), got[0].Amount)
}

func TestHistoryClient_ErrorOnServerFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHistoryClient(srv.URL)
	_, err := c.RecentTransactions(context.Background(), "entity-3", time.Now())
	assert.Error(t, err)
}

func TestFraudClient_RoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var view aml.FraudView
		require.NoError(t, json.NewDecoder(r.Body).Decode(&view))
		assert.Equal(t, "12.50", view.Amount)
		json.NewEncoder(w).Encode(aml.FraudResult{Score: 0.42})
	}))
	defer srv.Close()

	c := NewFraudClient(srv.URL)
	result, err := c.AnalyzeTransaction(context.Background(), aml.FraudView{
		TransactionID: "tx-1",
		EntityID:      "entity-4",
		Amount:        "12.50",
		Currency:      "USD",
		Timestamp:     time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, 0.42, result.Score)
}
