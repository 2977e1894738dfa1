package tokenizer

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/layer-3/hashgate/core"
	"github.com/layer-3/hashgate/ports"
)

// DefaultSessionTTL is how long an issued session token stays valid.
const DefaultSessionTTL = 7 * 24 * time.Hour

// JWTTokenizer implements the SessionTokenizer interface using HS256 JWTs
type JWTTokenizer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewJWTTokenizer creates a new JWT tokenizer
func NewJWTTokenizer(secret []byte, issuer string) *JWTTokenizer {
	return &JWTTokenizer{
		secret: secret,
		issuer: issuer,
		ttl:    DefaultSessionTTL,
	}
}

// Issue mints a session token for the given user
func (j *JWTTokenizer) Issue(userID, accountID string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
		Roles: RoleClaims{
			AllowedRoles: []string{"user"},
			DefaultRole:  "user",
			UserID:       userID,
			AccountID:    accountID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return signedToken, nil
}

// Parse validates a session token and returns the session it carries
func (j *JWTTokenizer) Parse(tokenStr string) (core.Session, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	}, jwt.WithIssuer(j.issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return core.Session{}, core.ErrTokenExpired
		}
		return core.Session{}, fmt.Errorf("failed to parse session token: %w", core.ErrInvalidToken)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return core.Session{}, core.ErrInvalidToken
	}

	session := core.Session{
		UserID:    claims.Subject,
		AccountID: claims.Roles.AccountID,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}

	return session, nil
}

var _ ports.SessionTokenizer = (*JWTTokenizer)(nil)
