package rpc

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-ledger/nexusd/internal/core/compliance"
	"github.com/nexus-ledger/nexusd/internal/core/ledger"
	"github.com/nexus-ledger/nexusd/internal/core/submit"
)

func newTestServer(t *testing.T) (*Server, *ledger.Store) {
	t.Helper()
	store := ledger.NewStore()
	require.NoError(t, ledger.SeedDemo(store))

	hub := NewHub()
	pipeline := submit.NewPipeline(store,
		submit.WithHashSource(&submit.SequentialHashes{}),
		submit.WithLatency(0, 0),
		submit.WithNotifier(hub),
	)
	workflow := compliance.NewWorkflow(store, pipeline)
	poller, err := NewPoller(store, "wss://s.altnet.rippletest.net:51233",
		time.Second, 16, WithPollerSeed(1))
	require.NoError(t, err)

	return NewServer("127.0.0.1:0", store, pipeline, workflow, poller, hub), store
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestLedgerEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	routes := srv.Routes()

	rec := doJSON(t, routes, http.MethodGet, "/v1/ledger", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary LedgerSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.GreaterOrEqual(t, summary.LedgerIndex, uint64(ledgerIndexBase))
	assert.Equal(t, totalCoins, summary.TotalCoins)
	assert.Equal(t, "wss://s.altnet.rippletest.net:51233", summary.Endpoint)

	t.Run("cached by index", func(t *testing.T) {
		rec := doJSON(t, routes, http.MethodGet,
			"/v1/ledger/"+strconv.FormatUint(summary.LedgerIndex, 10), nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown index", func(t *testing.T) {
		rec := doJSON(t, routes, http.MethodGet, "/v1/ledger/1", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed index", func(t *testing.T) {
		rec := doJSON(t, routes, http.MethodGet, "/v1/ledger/12abc", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestReadEndpoints(t *testing.T) {
	srv, store := newTestServer(t)
	routes := srv.Routes()

	t.Run("assets", func(t *testing.T) {
		rec := doJSON(t, routes, http.MethodGet, "/v1/assets", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var assets []ledger.Asset
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &assets))
		assert.Len(t, assets, 3)
	})

	t.Run("holders", func(t *testing.T) {
		usd, err := store.AssetByCurrency("USD", ledger.ColdWalletAddress)
		require.NoError(t, err)
		rec := doJSON(t, routes, http.MethodGet, "/v1/assets/"+usd.ID+"/holders", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var holders []ledger.Holder
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &holders))
		assert.Len(t, holders, 2)
	})

	t.Run("holders of unknown asset", func(t *testing.T) {
		rec := doJSON(t, routes, http.MethodGet, "/v1/assets/nope/holders", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("pools", func(t *testing.T) {
		rec := doJSON(t, routes, http.MethodGet, "/v1/pools", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var pools []ledger.PoolInfo
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pools))
		require.Len(t, pools, 1)
		assert.Equal(t, "XRP/USD", pools[0].Pair)
	})

	t.Run("book", func(t *testing.T) {
		rec := doJSON(t, routes, http.MethodGet, "/v1/book", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var book ledger.BookSnapshot
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &book))
		assert.Len(t, book.Bids, 5)
		assert.Len(t, book.Asks, 5)
	})
}

func TestCompileEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	routes := srv.Routes()

	t.Run("issuer config compiles to two templates", func(t *testing.T) {
		rec := doJSON(t, routes, http.MethodPost, "/v1/compile", CompileRequest{
			Kind:          "issuer_config",
			RequireAuth:   true,
			DefaultRipple: true,
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Templates []json.RawMessage `json:"templates"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Templates, 2)
	})

	t.Run("offer preview carries canonical legs", func(t *testing.T) {
		rec := doJSON(t, routes, http.MethodPost, "/v1/compile", CompileRequest{
			Kind:     "offer_create",
			Account:  "rTrader",
			Side:     "buy",
			Currency: "USD",
			Issuer:   ledger.ColdWalletAddress,
			Amount:   "100",
			Price:    "0.55",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `"TakerPays":"100000000"`)
		assert.Contains(t, body, `"value":"55.0000"`)
	})

	t.Run("invalid request", func(t *testing.T) {
		rec := doJSON(t, routes, http.MethodPost, "/v1/compile", CompileRequest{Kind: "teleport"})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/compile", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		routes.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSubmitAndVerifyEndpoints(t *testing.T) {
	srv, store := newTestServer(t)
	routes := srv.Routes()

	rec := doJSON(t, routes, http.MethodPost, "/v1/submit", CompileRequest{
		Kind:        "payment",
		Account:     "rSender",
		Destination: "rReceiver",
		Amount:      "5",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Receipts []submit.Receipt `json:"receipts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Receipts, 1)
	receipt := resp.Receipts[0]
	assert.Equal(t, submit.TesSUCCESS, receipt.Result)
	assert.Equal(t, 1, store.AuditLen())

	t.Run("audit log lists the submission", func(t *testing.T) {
		rec := doJSON(t, routes, http.MethodGet, "/v1/audit", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var entries []ledger.AuditEntry
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
		require.Len(t, entries, 1)
		assert.Equal(t, receipt.Hash, entries[0].Hash)
	})

	t.Run("verify validated", func(t *testing.T) {
		rec := doJSON(t, routes, http.MethodGet, "/v1/audit/"+receipt.Hash, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var v verifyResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
		assert.True(t, v.Found)
		assert.Equal(t, "validated", v.State)
	})

	t.Run("verify not found", func(t *testing.T) {
		rec := doJSON(t, routes, http.MethodGet, "/v1/audit/DEADBEEF", nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
		var v verifyResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
		assert.False(t, v.Found)
		assert.Equal(t, "not_found", v.State)
	})

	t.Run("verify failed is distinct from not found", func(t *testing.T) {
		rec := doJSON(t, routes, http.MethodPost, "/v1/submit", CompileRequest{
			Kind:        "payment",
			Account:     "rSender",
			Destination: ledger.UserWalletAddress,
			Currency:    "GOLD",
			Issuer:      ledger.ColdWalletAddress,
			Amount:      "1",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Receipts []submit.Receipt `json:"receipts"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Receipts, 1)
		require.Equal(t, submit.TecFROZEN, resp.Receipts[0].Result)

		rec = doJSON(t, routes, http.MethodGet, "/v1/audit/"+resp.Receipts[0].Hash, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var v verifyResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
		assert.True(t, v.Found)
		assert.Equal(t, "failed", v.State)
	})
}

func TestComplianceEndpoints(t *testing.T) {
	srv, store := newTestServer(t)
	routes := srv.Routes()
	usd, err := store.AssetByCurrency("USD", ledger.ColdWalletAddress)
	require.NoError(t, err)

	rec := doJSON(t, routes, http.MethodPost, "/v1/compliance/select", complianceSelectRequest{
		AssetID: usd.ID,
		Holder:  ledger.UserWalletAddress,
		Action:  "freeze",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var staged map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &staged))
	assert.Equal(t, "selected", staged["state"])
	assert.Equal(t, usd.ID, staged["assetId"])
	assert.Equal(t, ledger.UserWalletAddress, staged["holder"])
	assert.Equal(t, "freeze", staged["action"])

	rec = doJSON(t, routes, http.MethodPost, "/v1/compliance/confirm", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	h, err := store.Holder(usd.ID, ledger.UserWalletAddress)
	require.NoError(t, err)
	assert.Equal(t, ledger.HolderFrozen, h.Status)

	t.Run("cancel without selection", func(t *testing.T) {
		rec := doJSON(t, routes, http.MethodPost, "/v1/compliance/cancel", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}
