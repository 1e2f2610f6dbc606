package mfa

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store used in tests.
type MemoryStore struct {
	mu         sync.Mutex
	challenges map[string]memoryEntry
	trusted    map[string]time.Time
}

type memoryEntry struct {
	ch      Challenge
	expires time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		challenges: make(map[string]memoryEntry),
		trusted:    make(map[string]time.Time),
	}
}

func (s *MemoryStore) SaveChallenge(ctx context.Context, ch Challenge, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[ch.ID] = memoryEntry{ch: ch, expires: time.Now().Add(ttl)}
	return nil
}

func (s *MemoryStore) GetChallenge(ctx context.Context, id string) (*Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.challenges[id]
	if !ok || time.Now().After(e.expires) {
		return nil, ErrChallengeNotFound
	}
	ch := e.ch
	return &ch, nil
}

func (s *MemoryStore) DeleteChallenge(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.challenges, id)
	return nil
}

func (s *MemoryStore) TrustDevice(ctx context.Context, userID, deviceID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trusted[userID+":"+deviceID] = time.Now().Add(ttl)
	return nil
}

func (s *MemoryStore) IsTrusted(ctx context.Context, userID, deviceID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.trusted[userID+":"+deviceID]
	return ok && time.Now().Before(exp), nil
}
