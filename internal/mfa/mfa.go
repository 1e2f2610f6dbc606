// Package mfa implements the identity-verification challenge: a fixed-length
// six-digit numeric code with a short TTL, and a device-trust bypass once a
// device has verified successfully.
package mfa

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

const CodeLength = 6

var (
	ErrChallengeNotFound = errors.New("challenge not found or expired")
	ErrCodeMismatch      = errors.New("verification code mismatch")
)

// Challenge is one pending verification.
type Challenge struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Code   string `json:"code"`
}

// Store persists pending challenges and device-trust marks. Both are
// TTL-bounded key/value records.
type Store interface {
	SaveChallenge(ctx context.Context, ch Challenge, ttl time.Duration) error
	GetChallenge(ctx context.Context, id string) (*Challenge, error)
	DeleteChallenge(ctx context.Context, id string) error
	TrustDevice(ctx context.Context, userID, deviceID string, ttl time.Duration) error
	IsTrusted(ctx context.Context, userID, deviceID string) (bool, error)
}

// Manager issues and verifies challenges.
type Manager struct {
	store        Store
	challengeTTL time.Duration
	trustTTL     time.Duration
}

func NewManager(store Store, challengeTTL, trustTTL time.Duration) *Manager {
	return &Manager{store: store, challengeTTL: challengeTTL, trustTTL: trustTTL}
}

// IsTrusted reports whether the device may skip the challenge.
func (m *Manager) IsTrusted(ctx context.Context, userID, deviceID string) (bool, error) {
	if deviceID == "" {
		return false, nil
	}
	return m.store.IsTrusted(ctx, userID, deviceID)
}

// IssueChallenge creates a pending challenge for the user and returns it.
// The caller is responsible for delivering the code out of band.
func (m *Manager) IssueChallenge(ctx context.Context, userID string) (*Challenge, error) {
	code, err := randomCode()
	if err != nil {
		return nil, err
	}
	ch := Challenge{
		ID:     uuid.NewString(),
		UserID: userID,
		Code:   code,
	}
	if err := m.store.SaveChallenge(ctx, ch, m.challengeTTL); err != nil {
		return nil, err
	}
	return &ch, nil
}

// Verify checks the code against the pending challenge. On success the
// challenge is consumed and, when a device id is supplied, the device is
// marked trusted so later logins bypass the challenge.
func (m *Manager) Verify(ctx context.Context, challengeID, code, deviceID string) (string, error) {
	if len(code) != CodeLength {
		return "", ErrCodeMismatch
	}
	ch, err := m.store.GetChallenge(ctx, challengeID)
	if err != nil {
		return "", err
	}
	if ch.Code != code {
		return "", ErrCodeMismatch
	}

	if err := m.store.DeleteChallenge(ctx, challengeID); err != nil {
		return "", err
	}
	if deviceID != "" {
		if err := m.store.TrustDevice(ctx, ch.UserID, deviceID, m.trustTTL); err != nil {
			return "", err
		}
	}
	return ch.UserID, nil
}

// randomCode returns a uniformly random six-digit string, zero padded.
func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
