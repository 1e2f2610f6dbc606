package service_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"peakform/coaching-app/internal/domain"
	"peakform/coaching-app/internal/mfa"
	"peakform/coaching-app/internal/platform/logger"
	"peakform/coaching-app/internal/service"

	"github.com/golang-jwt/jwt/v4"
)

// recordingSender captures outbound mail so tests can read the MFA code that
// would have been emailed.
type recordingSender struct {
	to, subject, body string
	sent              int
}

func (s *recordingSender) Send(ctx context.Context, to, subject, body string) error {
	s.to, s.subject, s.body = to, subject, body
	s.sent++
	return nil
}

var codePattern = regexp.MustCompile(`\b(\d{6})\b`)

func (s *recordingSender) lastCode(t *testing.T) string {
	t.Helper()
	m := codePattern.FindStringSubmatch(s.body)
	if m == nil {
		t.Fatalf("no 6-digit code in body %q", s.body)
	}
	return m[1]
}

type authFixture struct {
	users  *fakeUserRepo
	sender *recordingSender
	svc    service.AuthService
}

const testJWTSecret = "test-secret"

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		users:  newFakeUserRepo(),
		sender: &recordingSender{},
	}
	manager := mfa.NewManager(mfa.NewMemoryStore(), 5*time.Minute, 30*24*time.Hour)
	f.svc = service.NewAuthService(f.users, manager, f.sender, logger.NewNop(), testJWTSecret, time.Hour)
	return f
}

func (f *authFixture) register(t *testing.T) *domain.User {
	t.Helper()
	user, err := f.svc.Register(context.Background(), "Ira", "ira@example.com", "hunter2secret", "+15550001", domain.RoleAthlete)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return user
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t)

	_, err := f.svc.Register(context.Background(), "Other", "ira@example.com", "different", "", domain.RoleCoach)
	if !errors.Is(err, service.ErrEmailExists) {
		t.Fatalf("Register() error = %v, want ErrEmailExists", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t)

	if _, err := f.svc.Login(context.Background(), "ira@example.com", "wrong", "dev-1"); !errors.Is(err, service.ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := f.svc.Login(context.Background(), "nobody@example.com", "hunter2secret", "dev-1"); !errors.Is(err, service.ErrInvalidCredentials) {
		t.Errorf("unknown email error = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginMFAFlow(t *testing.T) {
	f := newAuthFixture(t)
	user := f.register(t)
	ctx := context.Background()

	// New device: no token yet, a challenge instead, code delivered by mail.
	res, err := f.svc.Login(ctx, "ira@example.com", "hunter2secret", "dev-1")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if !res.MFARequired || res.Token != "" || res.ChallengeID == "" {
		t.Fatalf("first login = %+v, want a pending challenge and no token", res)
	}
	if f.sender.to != "ira@example.com" {
		t.Errorf("code mailed to %q", f.sender.to)
	}

	// Wrong code is rejected; the right one settles the challenge.
	code := f.sender.lastCode(t)
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	if _, err := f.svc.VerifyMFA(ctx, res.ChallengeID, wrong, "dev-1"); !errors.Is(err, mfa.ErrCodeMismatch) {
		t.Errorf("wrong code error = %v, want ErrCodeMismatch", err)
	}
	verified, err := f.svc.VerifyMFA(ctx, res.ChallengeID, code, "dev-1")
	if err != nil {
		t.Fatalf("VerifyMFA() error = %v", err)
	}
	if verified.Token == "" {
		t.Fatal("no token after verification")
	}

	// The token carries the user id and role.
	token, err := jwt.Parse(verified.Token, func(tok *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	claims := token.Claims.(jwt.MapClaims)
	if claims["uid"] != user.ID.Hex() || claims["role"] != string(domain.RoleAthlete) {
		t.Errorf("claims = %v", claims)
	}

	// The verified device is now trusted: next login skips the challenge.
	mailed := f.sender.sent
	res, err = f.svc.Login(ctx, "ira@example.com", "hunter2secret", "dev-1")
	if err != nil {
		t.Fatalf("trusted login error = %v", err)
	}
	if res.MFARequired || res.Token == "" {
		t.Errorf("trusted login = %+v, want an immediate token", res)
	}
	if f.sender.sent != mailed {
		t.Error("trusted login still sent a code")
	}

	// A different device starts over.
	res, err = f.svc.Login(ctx, "ira@example.com", "hunter2secret", "dev-2")
	if err != nil {
		t.Fatalf("new device login error = %v", err)
	}
	if !res.MFARequired {
		t.Error("unknown device skipped the challenge")
	}
}
