package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetTokenIssueAndVerify(t *testing.T) {
	store := NewResetTokenStore(time.Hour)

	token := store.Issue(42)
	require.NotEmpty(t, token)

	userID, ok := store.Verify(token)
	require.True(t, ok)
	assert.Equal(t, uint(42), userID)

	_, ok = store.Verify("unknown-token")
	assert.False(t, ok)
}

func TestResetTokenExpiry(t *testing.T) {
	store := NewResetTokenStore(time.Hour)

	current := time.Now()
	store.SetClock(func() time.Time { return current })

	token := store.Issue(7)

	// Still valid just inside the TTL
	current = current.Add(59 * time.Minute)
	_, ok := store.Verify(token)
	assert.True(t, ok)

	// Expired past the TTL, and removed on verification
	current = current.Add(2 * time.Minute)
	_, ok = store.Verify(token)
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestResetTokenInvalidate(t *testing.T) {
	store := NewResetTokenStore(time.Hour)

	token := store.Issue(7)
	store.Invalidate(token)

	_, ok := store.Verify(token)
	assert.False(t, ok)
}

func TestResetTokenSweep(t *testing.T) {
	store := NewResetTokenStore(time.Hour)

	current := time.Now()
	store.SetClock(func() time.Time { return current })

	expired := store.Issue(1)
	current = current.Add(30 * time.Minute)
	fresh := store.Issue(2)

	current = current.Add(45 * time.Minute)
	store.Sweep()

	_, ok := store.Verify(expired)
	assert.False(t, ok)
	_, ok = store.Verify(fresh)
	assert.True(t, ok)
	assert.Equal(t, 1, store.Len())
}

func TestResetTokensAreUnique(t *testing.T) {
	store := NewResetTokenStore(time.Hour)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token := store.Issue(uint(i))
		assert.False(t, seen[token])
		seen[token] = true
	}
}
