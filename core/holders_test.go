package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHolderParamsClamped(t *testing.T) {
	tests := []struct {
		name string
		in   HolderParams
		want HolderParams
	}{
		{
			"values above range are clamped down",
			HolderParams{TokenID: "0.0.123", TopN: 5000, PageLimit: 9999, MaxPages: 500, TTLSeconds: 90000},
			HolderParams{TokenID: "0.0.123", TopN: 1000, PageLimit: 1000, MaxPages: 200, TTLSeconds: 3600},
		},
		{
			"values below range are clamped up",
			HolderParams{TokenID: "0.0.123", TopN: 0, PageLimit: -5, MaxPages: 0, TTLSeconds: 1},
			HolderParams{TokenID: "0.0.123", TopN: 1, PageLimit: 1, MaxPages: 1, TTLSeconds: 60},
		},
		{
			"in-range values pass through",
			HolderParams{TokenID: "0.0.123", TopN: 50, PageLimit: 100, MaxPages: 10, TTLSeconds: 300},
			HolderParams{TokenID: "0.0.123", TopN: 50, PageLimit: 100, MaxPages: 10, TTLSeconds: 300},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Clamped()
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChallengePayloadCanonicalBytes(t *testing.T) {
	payload := ChallengePayload{
		URL: "https://app.example.com",
		Data: ChallengeData{
			TS:        1700000000000,
			AccountID: "0.0.1234",
			Nonce:     "abcd1234",
		},
	}

	first, err := payload.CanonicalBytes()
	assert.NoError(t, err)
	second, err := payload.CanonicalBytes()
	assert.NoError(t, err)

	// Struct-order marshalling is deterministic.
	assert.Equal(t, first, second)
	assert.JSONEq(t,
		`{"url":"https://app.example.com","data":{"ts":1700000000000,"accountId":"0.0.1234","nonce":"abcd1234"}}`,
		string(first),
	)
}
