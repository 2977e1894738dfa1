package core

import "errors"

var (
	ErrInvalidRequest         = errors.New("invalid request")
	ErrInvalidNonce           = errors.New("nonce is invalid or already consumed")
	ErrNonceExpired           = errors.New("nonce has expired")
	ErrAccountMismatch        = errors.New("account does not match challenge")
	ErrInvalidServerSignature = errors.New("server signature mismatch")
	ErrInvalidSignature       = errors.New("invalid signature")
	ErrUnsupportedKey         = errors.New("unsupported account key type")
	ErrAccountNotFound        = errors.New("account not found")
	ErrUpstreamUnavailable    = errors.New("upstream service unavailable")
	ErrInvalidToken           = errors.New("invalid token")
	ErrTokenExpired           = errors.New("token has expired")
)
