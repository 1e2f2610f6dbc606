package mfa_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"peakform/coaching-app/internal/mfa"
)

func newManager() *mfa.Manager {
	return mfa.NewManager(mfa.NewMemoryStore(), 5*time.Minute, time.Hour)
}

// TestIssueAndVerify tests the issue -> verify round trip and device trust.
func TestIssueAndVerify(t *testing.T) {
	ctx := context.Background()
	m := newManager()

	ch, err := m.IssueChallenge(ctx, "user-1")
	if err != nil {
		t.Fatalf("IssueChallenge: %v", err)
	}
	if len(ch.Code) != mfa.CodeLength {
		t.Fatalf("code length = %d, want %d", len(ch.Code), mfa.CodeLength)
	}
	for _, r := range ch.Code {
		if r < '0' || r > '9' {
			t.Fatalf("code %q is not numeric", ch.Code)
		}
	}

	userID, err := m.Verify(ctx, ch.ID, ch.Code, "device-1")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if userID != "user-1" {
		t.Errorf("userID = %q, want user-1", userID)
	}

	trusted, err := m.IsTrusted(ctx, "user-1", "device-1")
	if err != nil {
		t.Fatalf("IsTrusted: %v", err)
	}
	if !trusted {
		t.Error("device not trusted after successful verify")
	}

	// The challenge is consumed: replaying it must fail.
	if _, err := m.Verify(ctx, ch.ID, ch.Code, "device-1"); !errors.Is(err, mfa.ErrChallengeNotFound) {
		t.Errorf("replay err = %v, want ErrChallengeNotFound", err)
	}
}

// TestVerify_Rejections tests wrong codes and unknown challenges.
func TestVerify_Rejections(t *testing.T) {
	ctx := context.Background()
	m := newManager()

	ch, err := m.IssueChallenge(ctx, "user-1")
	if err != nil {
		t.Fatalf("IssueChallenge: %v", err)
	}

	tests := []struct {
		name        string
		challengeID string
		code        string
		wantErr     error
	}{
		{"wrong length short", ch.ID, "123", mfa.ErrCodeMismatch},
		{"wrong length long", ch.ID, "1234567", mfa.ErrCodeMismatch},
		{"unknown challenge", "nope", "123456", mfa.ErrChallengeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.Verify(ctx, tt.challengeID, tt.code, ""); !errors.Is(err, tt.wantErr) {
				t.Errorf("Verify() err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	// A wrong six-digit code leaves the challenge pending for a retry.
	wrong := "000000"
	if wrong == ch.Code {
		wrong = "000001"
	}
	if _, err := m.Verify(ctx, ch.ID, wrong, ""); !errors.Is(err, mfa.ErrCodeMismatch) {
		t.Fatalf("wrong code err = %v, want ErrCodeMismatch", err)
	}
	if _, err := m.Verify(ctx, ch.ID, ch.Code, ""); err != nil {
		t.Errorf("retry with correct code failed: %v", err)
	}
}

// TestIsTrusted_UnknownDevice tests the bypass never fires for fresh devices.
func TestIsTrusted_UnknownDevice(t *testing.T) {
	ctx := context.Background()
	m := newManager()

	trusted, err := m.IsTrusted(ctx, "user-1", "never-seen")
	if err != nil {
		t.Fatalf("IsTrusted: %v", err)
	}
	if trusted {
		t.Error("unknown device reported trusted")
	}

	trusted, err = m.IsTrusted(ctx, "user-1", "")
	if err != nil || trusted {
		t.Error("empty device id must never be trusted")
	}
}
