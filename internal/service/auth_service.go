package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"peakform/coaching-app/internal/domain"
	"peakform/coaching-app/internal/mfa"
	"peakform/coaching-app/internal/notify"
	"peakform/coaching-app/internal/platform/logger"
	"peakform/coaching-app/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

// LoginResult is either an issued token (trusted device) or a pending MFA
// challenge the caller must verify first.
type LoginResult struct {
	Token       string
	ChallengeID string
	MFARequired bool
	User        *domain.User
}

// --- Service Interface ---
type AuthService interface {
	Register(ctx context.Context, name, email, password, phone string, role domain.Role) (*domain.User, error)
	Login(ctx context.Context, email, password, deviceID string) (*LoginResult, error)
	VerifyMFA(ctx context.Context, challengeID, code, deviceID string) (*LoginResult, error)
}

// --- Service Implementation ---

type authService struct {
	userRepo      repository.UserRepository
	mfaManager    *mfa.Manager
	sender        notify.Sender
	log           *logger.Logger
	jwtSecret     string
	jwtExpiration time.Duration
}

// NewAuthService creates a new instance of authService.
func NewAuthService(
	userRepo repository.UserRepository,
	mfaManager *mfa.Manager,
	sender notify.Sender,
	log *logger.Logger,
	jwtSecret string,
	jwtExpiration time.Duration,
) AuthService {
	return &authService{
		userRepo:      userRepo,
		mfaManager:    mfaManager,
		sender:        sender,
		log:           log.With("service", "auth"),
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// Register creates a new user account with a bcrypt-hashed password.
func (s *authService) Register(ctx context.Context, name, email, password, phone string, role domain.Role) (*domain.User, error) {
	if email == "" || password == "" || name == "" {
		return nil, errors.New("name, email and password are required")
	}
	if role != domain.RoleAthlete && role != domain.RoleCoach {
		return nil, errors.New("role must be athlete or coach")
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: string(hash),
		Role:         role,
	}
	id, err := s.userRepo.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	user.ID = id
	s.log.Info("user registered", "email", email, "role", role)
	return user, nil
}

// Login checks credentials. Trusted devices get a token straight away; new
// devices get a six-digit challenge delivered by email.
func (s *authService) Login(ctx context.Context, email, password, deviceID string) (*LoginResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	trusted, err := s.mfaManager.IsTrusted(ctx, user.ID.Hex(), deviceID)
	if err != nil {
		return nil, err
	}
	if trusted {
		token, err := s.generateJWT(user)
		if err != nil {
			return nil, err
		}
		return &LoginResult{Token: token, User: user}, nil
	}

	ch, err := s.mfaManager.IssueChallenge(ctx, user.ID.Hex())
	if err != nil {
		return nil, err
	}
	if err := s.sender.Send(ctx, user.Email, "Your verification code",
		fmt.Sprintf("Your PeakForm verification code is %s. It expires in a few minutes.", ch.Code)); err != nil {
		s.log.Warn("could not deliver mfa code", "email", user.Email, "err", err)
	}
	return &LoginResult{ChallengeID: ch.ID, MFARequired: true, User: user}, nil
}

// VerifyMFA settles a pending challenge and issues a token. The verified
// device is trusted for subsequent logins.
func (s *authService) VerifyMFA(ctx context.Context, challengeID, code, deviceID string) (*LoginResult, error) {
	userIDHex, err := s.mfaManager.Verify(ctx, challengeID, code, deviceID)
	if err != nil {
		return nil, err
	}

	userID, err := primitive.ObjectIDFromHex(userIDHex)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: user}, nil
}

// generateJWT creates a signed token carrying the user id and role.
func (s *authService) generateJWT(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"uid":  user.ID.Hex(),
		"role": user.Role,
		"exp":  time.Now().Add(s.jwtExpiration).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
