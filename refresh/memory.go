package refresh

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"
)

type memoryRecord struct {
	token     string
	expiresAt time.Time
}

func (r memoryRecord) expired(now time.Time) bool {
	return !r.expiresAt.IsZero() && !now.Before(r.expiresAt)
}

// MemoryStore is an in-process refresh token store. Records expire lazily
// on access. The zero value is not usable; call NewMemoryStore.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]memoryRecord
	now     func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]memoryRecord),
		now:     time.Now,
	}
}

// Save replaces any token stored for userID. A non-positive ttl keeps the
// record until it is revoked or replaced.
func (s *MemoryStore) Save(ctx context.Context, userID, token string, ttl time.Duration) error {
	if userID == "" || token == "" {
		return ErrInvalidRecord
	}

	s.mu.Lock()
	s.records[userID] = s.record(token, ttl)
	s.mu.Unlock()
	return nil
}

// Get returns the live token for userID.
func (s *MemoryStore) Get(ctx context.Context, userID string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.lookup(userID)
	if !ok {
		return "", false, nil
	}
	return rec.token, true, nil
}

// Revoke removes the record for userID. Revoking an absent record is a no-op.
func (s *MemoryStore) Revoke(ctx context.Context, userID string) error {
	s.mu.Lock()
	delete(s.records, userID)
	s.mu.Unlock()
	return nil
}

// Validate reports whether token is exactly the live token for userID.
func (s *MemoryStore) Validate(ctx context.Context, userID, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.lookup(userID)
	if !ok {
		return false, nil
	}
	return tokensEqual(rec.token, token), nil
}

// Rotate replaces current with next for userID if current is still the live
// token.
func (s *MemoryStore) Rotate(ctx context.Context, userID, current, next string, ttl time.Duration) error {
	if userID == "" || next == "" {
		return ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.lookup(userID)
	if !ok {
		return ErrRecordNotFound
	}
	if !tokensEqual(rec.token, current) {
		return ErrTokenMismatch
	}
	s.records[userID] = s.record(next, ttl)
	return nil
}

// Len returns the number of live records.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for userID, rec := range s.records {
		if rec.expired(now) {
			delete(s.records, userID)
			continue
		}
		n++
	}
	return n
}

func (s *MemoryStore) record(token string, ttl time.Duration) memoryRecord {
	rec := memoryRecord{token: token}
	if ttl > 0 {
		rec.expiresAt = s.now().Add(ttl)
	}
	return rec
}

// lookup must be called with mu held.
func (s *MemoryStore) lookup(userID string) (memoryRecord, bool) {
	rec, ok := s.records[userID]
	if !ok {
		return memoryRecord{}, false
	}
	if rec.expired(s.now()) {
		delete(s.records, userID)
		return memoryRecord{}, false
	}
	return rec, true
}

func tokensEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
