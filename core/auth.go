package core

import (
	"encoding/json"
	"time"
)

// ChallengeData carries the fields the wallet commits to when signing.
type ChallengeData struct {
	TS        int64  `json:"ts"`        // Issue time in unix milliseconds
	AccountID string `json:"accountId"` // Claimed wallet account id
	Nonce     string `json:"nonce"`     // Single-use random token
}

// ChallengePayload is the structure the wallet signs. The canonical byte
// form is the encoding/json marshalling of this struct; field order is fixed
// by the declaration, so every producer and consumer of the signed message
// serializes it identically.
type ChallengePayload struct {
	URL  string        `json:"url"` // Configured frontend origin
	Data ChallengeData `json:"data"`
}

// CanonicalBytes returns the exact byte sequence covered by both the server
// HMAC and the wallet signature.
func (p ChallengePayload) CanonicalBytes() ([]byte, error) {
	return json.Marshal(p)
}

// Challenge is the structure issued to the client and submitted back at login.
type Challenge struct {
	Payload         ChallengePayload `json:"payload"`
	ServerSignature string           `json:"serverSignature"` // hex HMAC-SHA256 over the canonical payload bytes
}

// NonceRecord is the pending authentication attempt persisted in the nonce
// store, keyed by its nonce.
type NonceRecord struct {
	Nonce           string           `json:"nonce"`
	AccountID       string           `json:"accountId"`
	IssuedAtMs      int64            `json:"issuedAtMs"`
	Payload         ChallengePayload `json:"payload"`
	ServerSignature string           `json:"serverSignature"`
}

// LoginResult is returned to the client after a successful authentication.
type LoginResult struct {
	Token     string `json:"token"`
	UserID    string `json:"userId"`
	AccountID string `json:"accountId"`
}

// Session is the identity extracted from a validated session token.
type Session struct {
	UserID    string
	AccountID string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
