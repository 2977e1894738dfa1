package http

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/hashgate/adapters/identity"
	"github.com/layer-3/hashgate/adapters/store"
	"github.com/layer-3/hashgate/adapters/tokenizer"
	"github.com/layer-3/hashgate/core"
	"github.com/layer-3/hashgate/ports"
	"github.com/layer-3/hashgate/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAccount = "0.0.1234"

type stubPager struct {
	pages []core.BalancePage
	idx   int
}

func (p *stubPager) Next(ctx context.Context) (core.BalancePage, bool) {
	if p.idx >= len(p.pages) {
		return core.BalancePage{}, false
	}
	page := p.pages[p.idx]
	p.idx++
	return page, true
}

func (p *stubPager) PagesFetched() int { return p.idx }

type stubLedger struct {
	keys  map[string]ed25519.PublicKey
	pages []core.BalancePage
}

func (l *stubLedger) AccountKey(ctx context.Context, accountID string) (ed25519.PublicKey, error) {
	key, ok := l.keys[accountID]
	if !ok {
		return nil, core.ErrAccountNotFound
	}
	return key, nil
}

func (l *stubLedger) TokenBalances(tokenID string, limit, maxPages, target int) ports.BalancePager {
	return &stubPager{pages: l.pages}
}

type fixture struct {
	router *gin.Engine
	priv   ed25519.PrivateKey
}

func newFixture(t *testing.T, pages []core.BalancePage) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	logger := slog.Default()
	ledger := &stubLedger{keys: map[string]ed25519.PublicKey{testAccount: pub}, pages: pages}
	sessionTokenizer := tokenizer.NewJWTTokenizer([]byte("session-secret"), "hashgate-test")

	authService := service.NewAuthService(
		store.NewMemoryStore(),
		ledger,
		identity.NewMemoryDirectory(),
		sessionTokenizer,
		nil,
		logger,
		service.AuthConfig{
			ChallengeSecret: []byte("challenge-secret"),
			FrontendURL:     "https://app.example.com",
		},
	)
	holdersService := service.NewHoldersService(ledger, logger)

	handlers := NewHandlers(authService, holdersService, logger)
	router := SetupRouter(handlers, sessionTokenizer)

	return &fixture{router: router, priv: priv}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	return rec
}

type challengeResponse struct {
	Payload         core.ChallengePayload `json:"payload"`
	ServerSignature string                `json:"serverSignature"`
	Nonce           string                `json:"nonce"`
}

func (f *fixture) requestChallenge(t *testing.T) challengeResponse {
	t.Helper()

	rec := f.do(t, http.MethodPost, "/challenge", gin.H{"accountId": testAccount})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp challengeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, resp.Payload.Data.Nonce, resp.Nonce)

	return resp
}

func (f *fixture) login(t *testing.T, resp challengeResponse) *httptest.ResponseRecorder {
	t.Helper()

	canonical, err := resp.Payload.CanonicalBytes()
	require.NoError(t, err)
	sig := ed25519.Sign(f.priv, canonical)

	return f.do(t, http.MethodPost, "/login", gin.H{
		"accountId": testAccount,
		"nonce":     resp.Nonce,
		"signature": hex.EncodeToString(sig),
		"challenge": gin.H{
			"payload":         resp.Payload,
			"serverSignature": resp.ServerSignature,
		},
	})
}

func TestChallengeEndpoint(t *testing.T) {
	f := newFixture(t, nil)

	resp := f.requestChallenge(t)
	assert.Equal(t, testAccount, resp.Payload.Data.AccountID)
	assert.Equal(t, "https://app.example.com", resp.Payload.URL)
	assert.NotEmpty(t, resp.ServerSignature)
	assert.Len(t, resp.Nonce, 32)
}

func TestChallengeEndpointRejectsMissingAccount(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/challenge", gin.H{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginRoundtrip(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.login(t, f.requestChallenge(t))
	require.Equal(t, http.StatusOK, rec.Code)

	var result core.LoginResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.NotEmpty(t, result.Token)
	assert.NotEmpty(t, result.UserID)
	assert.Equal(t, testAccount, result.AccountID)

	// The issued token opens the protected surface.
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+result.Token)
	meRec := httptest.NewRecorder()
	f.router.ServeHTTP(meRec, req)
	assert.Equal(t, http.StatusOK, meRec.Code)
	assert.Contains(t, meRec.Body.String(), result.UserID)
}

func TestLoginReplayRejected(t *testing.T) {
	f := newFixture(t, nil)
	challenge := f.requestChallenge(t)

	first := f.login(t, challenge)
	require.Equal(t, http.StatusOK, first.Code)

	second := f.login(t, challenge)
	assert.Equal(t, http.StatusUnauthorized, second.Code)
}

func TestLoginUnknownNonce(t *testing.T) {
	f := newFixture(t, nil)
	challenge := f.requestChallenge(t)
	challenge.Nonce = "ffffffffffffffffffffffffffffffff"
	challenge.Payload.Data.Nonce = challenge.Nonce

	rec := f.login(t, challenge)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginMalformedBody(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/login", gin.H{"accountId": testAccount})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMeRequiresToken(t *testing.T) {
	f := newFixture(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTopHoldersEndpoint(t *testing.T) {
	f := newFixture(t, []core.BalancePage{
		{Entries: []core.HolderEntry{{Account: "A", Balance: 50}, {Account: "B", Balance: 200}}, Timestamp: "1700000000.0"},
		{Entries: []core.HolderEntry{{Account: "C", Balance: 10}, {Account: "D", Balance: 500}}},
	})

	rec := f.do(t, http.MethodGet, "/top-holders?tokenId=0.0.999&topN=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result core.HoldersResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Data, 3)
	assert.Equal(t, "D", result.Data[0].Account)
	assert.Equal(t, "B", result.Data[1].Account)
	assert.Equal(t, "A", result.Data[2].Account)
	assert.Equal(t, 2, result.Meta.PagesFetched)
	assert.Equal(t, "1700000000.0", result.Meta.Timestamp)
}

func TestTopHoldersRequiresTokenID(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/top-holders", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTopHoldersClampsParams(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/top-holders?tokenId=0.0.999&topN=5000&maxPages=0&pageLimit=0&ttl=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result core.HoldersResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 1000, result.Meta.TopN)
	assert.Equal(t, 1, result.Meta.MaxPages)
	assert.Equal(t, 1, result.Meta.PageLimit)
	assert.Equal(t, 60, result.Meta.TTLSeconds)
}

func TestHealthz(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
