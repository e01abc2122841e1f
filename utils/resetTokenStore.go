package utils

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ResetTokenStore holds password-reset tokens in process memory with a
// fixed TTL. Tokens do not survive a restart and are not shared between
// instances; a lost token just means requesting a new link. The clock is
// a field so expiry is testable without waiting.
type ResetTokenStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	tokens map[string]resetToken
}

type resetToken struct {
	userID    uint
	expiresAt time.Time
}

// ResetTokens is the global store used by the password controllers,
// swept periodically from main
var ResetTokens = NewResetTokenStore(time.Hour)

// NewResetTokenStore creates a store whose tokens expire after ttl
func NewResetTokenStore(ttl time.Duration) *ResetTokenStore {
	return &ResetTokenStore{
		ttl:    ttl,
		now:    time.Now,
		tokens: make(map[string]resetToken),
	}
}

// SetClock replaces the store's time source
func (s *ResetTokenStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Issue creates and stores a fresh token for the user
func (s *ResetTokenStore) Issue(userID uint) string {
	token := strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = resetToken{
		userID:    userID,
		expiresAt: s.now().Add(s.ttl),
	}

	return token
}

// Verify returns the user the token was issued for, or false if the
// token is unknown or expired. Expired tokens are removed on the spot.
func (s *ResetTokenStore) Verify(token string) (uint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.tokens[token]
	if !ok {
		return 0, false
	}
	if s.now().After(entry.expiresAt) {
		delete(s.tokens, token)
		return 0, false
	}

	return entry.userID, true
}

// Invalidate removes a token after a successful reset
func (s *ResetTokenStore) Invalidate(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

// Sweep drops every expired token
func (s *ResetTokenStore) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for token, entry := range s.tokens {
		if now.After(entry.expiresAt) {
			delete(s.tokens, token)
		}
	}
}

// Len reports how many tokens are currently held
func (s *ResetTokenStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}
