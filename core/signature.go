package core

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// NormalizeSignature converts the wire form of a wallet signature into raw
// bytes. Wallets submit signatures in one of four shapes: a hex string
// (optionally 0x-prefixed), a base64 string, a JSON array of byte values, or
// a serialized Buffer object ({"type":"Buffer","data":[...]}).
// A string that decodes as both hex and base64 is treated as hex; clients
// wanting base64 semantics for hex-looking input must send the array form.
// Unrecognized shapes are rejected with ErrInvalidRequest.
func NormalizeSignature(raw json.RawMessage) ([]byte, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return nil, fmt.Errorf("empty signature: %w", ErrInvalidRequest)
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("malformed signature string: %w", ErrInvalidRequest)
		}
		return decodeSignatureString(s)
	case '[':
		var nums []int
		if err := json.Unmarshal(raw, &nums); err != nil {
			return nil, fmt.Errorf("malformed signature array: %w", ErrInvalidRequest)
		}
		return bytesFromInts(nums)
	case '{':
		var buf struct {
			Type string `json:"type"`
			Data []int  `json:"data"`
		}
		if err := json.Unmarshal(raw, &buf); err != nil {
			return nil, fmt.Errorf("malformed signature object: %w", ErrInvalidRequest)
		}
		if buf.Type != "Buffer" || buf.Data == nil {
			return nil, fmt.Errorf("unrecognized signature object: %w", ErrInvalidRequest)
		}
		return bytesFromInts(buf.Data)
	default:
		return nil, fmt.Errorf("unrecognized signature shape: %w", ErrInvalidRequest)
	}
}

func bytesFromInts(nums []int) ([]byte, error) {
	out := make([]byte, len(nums))
	for i, n := range nums {
		if n < 0 || n > 255 {
			return nil, fmt.Errorf("signature value out of byte range: %w", ErrInvalidRequest)
		}
		out[i] = byte(n)
	}
	return out, nil
}

func decodeSignatureString(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty signature: %w", ErrInvalidRequest)
	}

	hexStr := strings.TrimPrefix(s, "0x")
	if b, err := hex.DecodeString(hexStr); err == nil {
		return b, nil
	}

	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}

	return nil, fmt.Errorf("signature is neither hex nor base64: %w", ErrInvalidRequest)
}
