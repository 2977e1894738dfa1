package service

import (
	"context"
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/layer-3/hashgate/core"
	"github.com/layer-3/hashgate/ports"
)

const (
	// DefaultChallengeTTL is how long an issued challenge can be redeemed.
	DefaultChallengeTTL = 5 * time.Minute

	nonceBytes = 16
)

// AuthConfig carries the authentication settings owned by the process entry
// point.
type AuthConfig struct {
	// ChallengeSecret keys the HMAC proving server authorship of challenges.
	ChallengeSecret []byte
	// FrontendURL is the origin embedded in every challenge payload.
	FrontendURL string
	// BypassVerification skips wallet signature verification. Only settable
	// through server-side configuration, never through request input.
	BypassVerification bool
	// ChallengeTTL overrides DefaultChallengeTTL when positive.
	ChallengeTTL time.Duration
}

// AuthService handles the challenge-response wallet authentication flow
type AuthService struct {
	store     ports.NonceStore
	ledger    ports.Ledger
	directory ports.Directory
	tokenizer ports.SessionTokenizer
	eventPub  ports.EventPublisher
	logger    *slog.Logger

	secret       []byte
	frontendURL  string
	bypass       bool
	challengeTTL time.Duration
}

// NewAuthService creates a new authentication service
func NewAuthService(
	store ports.NonceStore,
	ledger ports.Ledger,
	directory ports.Directory,
	tokenizer ports.SessionTokenizer,
	eventPub ports.EventPublisher,
	logger *slog.Logger,
	cfg AuthConfig,
) *AuthService {
	challengeTTL := cfg.ChallengeTTL
	if challengeTTL <= 0 {
		challengeTTL = DefaultChallengeTTL
	}

	return &AuthService{
		store:        store,
		ledger:       ledger,
		directory:    directory,
		tokenizer:    tokenizer,
		eventPub:     eventPub,
		logger:       logger,
		secret:       cfg.ChallengeSecret,
		frontendURL:  cfg.FrontendURL,
		bypass:       cfg.BypassVerification,
		challengeTTL: challengeTTL,
	}
}

// IssueChallenge builds a server-signed challenge for the claimed account and
// persists its nonce record.
func (s *AuthService) IssueChallenge(ctx context.Context, accountID string) (core.Challenge, error) {
	if accountID == "" {
		return core.Challenge{}, fmt.Errorf("missing account id: %w", core.ErrInvalidRequest)
	}

	raw := make([]byte, nonceBytes)
	if _, err := rand.Read(raw); err != nil {
		return core.Challenge{}, fmt.Errorf("failed to generate nonce: %w", err)
	}
	nonce := hex.EncodeToString(raw)

	now := time.Now()
	payload := core.ChallengePayload{
		URL: s.frontendURL,
		Data: core.ChallengeData{
			TS:        now.UnixMilli(),
			AccountID: accountID,
			Nonce:     nonce,
		},
	}

	serverSignature, err := s.signPayload(payload)
	if err != nil {
		return core.Challenge{}, err
	}

	record := core.NonceRecord{
		Nonce:           nonce,
		AccountID:       accountID,
		IssuedAtMs:      now.UnixMilli(),
		Payload:         payload,
		ServerSignature: serverSignature,
	}
	if err := s.store.Put(ctx, nonce, record, s.challengeTTL); err != nil {
		return core.Challenge{}, fmt.Errorf("failed to persist challenge: %w", err)
	}

	return core.Challenge{Payload: payload, ServerSignature: serverSignature}, nil
}

// Login redeems a signed challenge for a session token. Validation order
// matters: the nonce is consumed before any cryptographic check that could
// grant a session, so a nonce is never usable twice.
func (s *AuthService) Login(ctx context.Context, accountID, nonce string, signature json.RawMessage, challenge core.Challenge) (core.LoginResult, error) {
	record, found, err := s.store.Get(ctx, nonce)
	if err != nil {
		return core.LoginResult{}, fmt.Errorf("failed to read nonce: %w", err)
	}
	if !found {
		return core.LoginResult{}, core.ErrInvalidNonce
	}

	if record.AccountID != accountID {
		return core.LoginResult{}, core.ErrAccountMismatch
	}

	// The nonce binds the login to one specific issued challenge. A payload
	// that differs from the stored record is a foreign or replayed challenge,
	// even if it carries a valid server signature from another issuance.
	if challenge.Payload != record.Payload {
		return core.LoginResult{}, core.ErrInvalidServerSignature
	}

	// The store already expires records; this re-check covers stores with
	// coarser expiry resolution.
	if time.Since(time.UnixMilli(record.IssuedAtMs)) > s.challengeTTL {
		if _, err := s.store.Delete(ctx, nonce); err != nil {
			s.logger.Error("failed to delete expired nonce", slog.String("error", err.Error()))
		}
		return core.LoginResult{}, core.ErrNonceExpired
	}

	canonical, err := challenge.Payload.CanonicalBytes()
	if err != nil {
		return core.LoginResult{}, fmt.Errorf("failed to serialize challenge: %w", core.ErrInvalidRequest)
	}
	expected, err := s.signPayload(challenge.Payload)
	if err != nil {
		return core.LoginResult{}, err
	}
	if !hmac.Equal([]byte(expected), []byte(challenge.ServerSignature)) {
		return core.LoginResult{}, core.ErrInvalidServerSignature
	}

	// Consume the nonce. Exactly one concurrent attempt gets true here.
	consumed, err := s.store.Delete(ctx, nonce)
	if err != nil {
		return core.LoginResult{}, fmt.Errorf("failed to consume nonce: %w", err)
	}
	if !consumed {
		return core.LoginResult{}, core.ErrInvalidNonce
	}

	sigBytes, err := core.NormalizeSignature(signature)
	if err != nil {
		return core.LoginResult{}, err
	}

	if !s.verifySignature(ctx, accountID, canonical, sigBytes) {
		return core.LoginResult{}, core.ErrInvalidSignature
	}

	userID, err := s.directory.UpsertUser(ctx, accountID)
	if err != nil {
		return core.LoginResult{}, fmt.Errorf("failed to upsert user: %w", err)
	}

	token, err := s.tokenizer.Issue(userID, accountID)
	if err != nil {
		return core.LoginResult{}, fmt.Errorf("failed to issue session token: %w", err)
	}

	if s.eventPub != nil {
		if err := s.eventPub.PublishLogin(ctx, accountID, userID); err != nil {
			s.logger.Warn("failed to publish login event", slog.String("error", err.Error()))
		}
	}

	return core.LoginResult{Token: token, UserID: userID, AccountID: accountID}, nil
}

// verifySignature checks the wallet signature over the canonical challenge
// bytes against the account's on-chain Ed25519 key. It returns false on any
// failure; reasons are logged, never propagated.
func (s *AuthService) verifySignature(ctx context.Context, accountID string, message, signature []byte) bool {
	if s.bypass {
		s.logger.Warn("signature verification bypassed", slog.String("account", accountID))
		return true
	}

	key, err := s.ledger.AccountKey(ctx, accountID)
	if err != nil {
		s.logger.Info("account key resolution failed",
			slog.String("account", accountID),
			slog.String("error", err.Error()),
		)
		return false
	}

	if len(signature) != ed25519.SignatureSize {
		s.logger.Info("signature has wrong length",
			slog.String("account", accountID),
			slog.Int("length", len(signature)),
		)
		return false
	}

	return ed25519.Verify(key, message, signature)
}

func (s *AuthService) signPayload(payload core.ChallengePayload) (string, error) {
	canonical, err := payload.CanonicalBytes()
	if err != nil {
		return "", fmt.Errorf("failed to serialize challenge payload: %w", err)
	}

	mac := hmac.New(sha256.New, s.secret)
	mac.Write(canonical)

	return hex.EncodeToString(mac.Sum(nil)), nil
}
