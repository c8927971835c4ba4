package feeapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tos-network/feecycle/attestation"
	"github.com/tos-network/feecycle/common"
	"github.com/tos-network/feecycle/core"
	"github.com/tos-network/feecycle/ledger"
)

func newTestHandler(t *testing.T) (http.Handler, *ledger.Node) {
	t.Helper()
	cfg := ledger.Defaults
	cfg.ManualSlots = true
	cfg.Genesis = core.DeveloperGenesis(common.Address{0x01}, common.Address{0x02})
	n, err := ledger.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { n.Stop() })
	return NewHandler(n, Defaults), n
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestChainInfo(t *testing.T) {
	h, n := newTestHandler(t)
	n.AdvanceSlot(3)

	rec := serve(h, http.MethodGet, PathChain, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var info ChainInfo
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&info))
	assert.Equal(t, n.ChainID(), info.ChainID)
	assert.Equal(t, uint64(3), info.Slot)
}

func TestPendingIsEmptyList(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := serve(h, http.MethodGet, PathPending, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var reqs []*attestation.Request
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&reqs))
	assert.NotNil(t, reqs)
	assert.Empty(t, reqs)
}

func TestErrors(t *testing.T) {
	h, _ := newTestHandler(t)

	for _, tt := range []struct {
		method, path, body string
		status             int
	}{
		{http.MethodGet, PathSchedule, "", http.StatusNotFound},
		{http.MethodGet, "/v1/requests/0x1234", "", http.StatusBadRequest},
		{http.MethodGet, "/v1/requests/" + common.Address{0x09}.Hex(), "", http.StatusNotFound},
		{http.MethodGet, "/v1/tokens/" + common.Address{0x09}.Hex(), "", http.StatusNotFound},
		{http.MethodGet, "/v1/nonces/0x12", "", http.StatusBadRequest},
		{http.MethodPost, PathSubmit, "{", http.StatusBadRequest},
		{http.MethodPost, PathSubmit, "{}", http.StatusUnprocessableEntity},
	} {
		rec := serve(h, tt.method, tt.path, tt.body)
		require.Equal(t, tt.status, rec.Code, "%s %s", tt.method, tt.path)
		var ev ErrorView
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&ev))
		assert.NotEmpty(t, ev.Error)
	}
}

func TestMintAndBalance(t *testing.T) {
	h, n := newTestHandler(t)

	rec := serve(h, http.MethodGet, PathMint, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var m MintView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&m))
	assert.Equal(t, n.Accounts().Schedule, m.TransferFeeConfigAuthority)
	assert.Equal(t, "1000000000", m.Supply)

	rec = serve(h, http.MethodGet, "/v1/balances/"+common.Address{0x01}.Hex(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var bv BalanceView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&bv))
	assert.Equal(t, "1000000000000", bv.Balance)

	rec = serve(h, http.MethodGet, "/v1/nonces/"+common.Address{0x01}.Hex(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var nv NonceView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&nv))
	assert.Equal(t, common.Address{0x01}, nv.Address)
	assert.Zero(t, nv.Nonce)
}

func TestMetricsAndCors(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := serve(h, http.MethodGet, Defaults.Metrics.Path, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "feecycle_")

	req := httptest.NewRequest(http.MethodGet, PathChain, nil)
	req.Header.Set("Origin", "http://example.org")
	out := httptest.NewRecorder()
	h.ServeHTTP(out, req)
	assert.Equal(t, "*", out.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsDisabled(t *testing.T) {
	_, n := newTestHandler(t)
	cfg := Defaults
	cfg.Metrics.Enabled = false
	h := NewHandler(n, cfg)
	rec := serve(h, http.MethodGet, Defaults.Metrics.Path, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
