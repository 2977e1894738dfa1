package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/layer-3/hashgate/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord(nonce string) core.NonceRecord {
	return core.NonceRecord{
		Nonce:      nonce,
		AccountID:  "0.0.1234",
		IssuedAtMs: time.Now().UnixMilli(),
		Payload: core.ChallengePayload{
			URL:  "https://app.example.com",
			Data: core.ChallengeData{TS: time.Now().UnixMilli(), AccountID: "0.0.1234", Nonce: nonce},
		},
		ServerSignature: "deadbeef",
	}
}

func TestMemoryStorePutGetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Put(ctx, "n1", testRecord("n1"), time.Minute))

	record, found, err := s.Get(ctx, "n1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "0.0.1234", record.AccountID)

	deleted, err := s.Delete(ctx, "n1")
	require.NoError(t, err)
	assert.True(t, deleted)

	_, found, err = s.Get(ctx, "n1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStoreGetMissing(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, found, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	deleted, err := s.Delete(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Put(ctx, "n1", testRecord("n1"), 20*time.Millisecond))
	time.Sleep(50 * time.Millisecond)

	_, found, err := s.Get(ctx, "n1")
	require.NoError(t, err)
	assert.False(t, found)

	deleted, err := s.Delete(ctx, "n1")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestMemoryStoreDeleteOnce(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Put(ctx, "n1", testRecord("n1"), time.Minute))

	const attempts = 16
	results := make([]bool, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			deleted, err := s.Delete(ctx, "n1")
			assert.NoError(t, err)
			results[i] = deleted
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, deleted := range results {
		if deleted {
			wins++
		}
	}
	assert.Equal(t, 1, wins)
}
