package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vibast-solutions/ms-go-identity/app/dto"
	"github.com/vibast-solutions/ms-go-identity/app/entity"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrPasswordMismatch   = errors.New("passwords do not match")
)

// ResetRequestMessage is returned by RequestPasswordReset whether or not the
// email belongs to an account, so responses never reveal account existence.
const ResetRequestMessage = "If an account with that email exists, a password reset link has been sent."

// ResetSuccessMessage is returned after a successful password reset.
const ResetSuccessMessage = "Password has been reset successfully"

type userRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id uint64) (*entity.User, error)
	UpdatePasswordHash(ctx context.Context, userID uint64, passwordHash string) (int64, error)
}

type passwordResetMailer interface {
	SendPasswordResetEmail(ctx context.Context, to, resetLink, userName string) error
}

// AuthService composes the hasher, the reset-token ledger and the session
// issuer into the register / login / forgot-password / reset-password use
// cases.
type AuthService struct {
	userRepo       userRepository
	hasher         *PasswordHasher
	resetService   *PasswordResetService
	sessionService *SessionService
	mailer         passwordResetMailer
	frontendURL    string
}

func NewAuthService(
	userRepo userRepository,
	hasher *PasswordHasher,
	resetService *PasswordResetService,
	sessionService *SessionService,
	mailer passwordResetMailer,
	frontendURL string,
) *AuthService {
	return &AuthService{
		userRepo:       userRepo,
		hasher:         hasher,
		resetService:   resetService,
		sessionService: sessionService,
		mailer:         mailer,
		frontendURL:    frontendURL,
	}
}

func (s *AuthService) Register(ctx context.Context, email, password, firstName, lastName string) (*dto.RegisterResult, error) {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	hashedPassword, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &entity.User{
		Email:        email,
		PasswordHash: hashedPassword,
		FirstName:    sql.NullString{String: firstName, Valid: firstName != ""},
		LastName:     sql.NullString{String: lastName, Valid: lastName != ""},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	accessToken, err := s.sessionService.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	return &dto.RegisterResult{
		User:        user,
		AccessToken: accessToken,
		ExpiresIn:   s.sessionService.TTLSeconds(),
	}, nil
}

// Login deliberately reports the same ErrInvalidCredentials for an unknown
// email and a wrong password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*dto.LoginResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.sessionService.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResult{
		User:        user,
		AccessToken: accessToken,
		ExpiresIn:   s.sessionService.TTLSeconds(),
	}, nil
}

// RequestPasswordReset returns ResetRequestMessage regardless of whether the
// email is registered. For unknown emails no token is issued and no mail is
// attempted; delivery failures for known emails are logged and swallowed.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return ResetRequestMessage, nil
	}

	token, err := s.resetService.GenerateToken()
	if err != nil {
		return "", err
	}
	if _, err := s.resetService.SaveToken(ctx, user.ID, token); err != nil {
		return "", err
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, token)
	userName := user.Email
	if user.FirstName.Valid {
		userName = user.FirstName.String
	}

	if err := s.mailer.SendPasswordResetEmail(ctx, user.Email, resetLink, userName); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Warn("Failed to deliver password reset email")
	}

	return ResetRequestMessage, nil
}

// ResetPassword validates the confirmation pair before touching the ledger,
// then updates the password before consuming the token: a crash in between
// leaves the token reusable rather than the password silently unchanged.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword, confirmPassword string) (string, error) {
	if newPassword == "" || newPassword != confirmPassword {
		return "", ErrPasswordMismatch
	}

	resetToken, err := s.resetService.ValidateToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrResetTokenNotFound) || errors.Is(err, ErrResetTokenUsed) || errors.Is(err, ErrResetTokenExpired) {
			logrus.WithError(err).Debug("Reset token rejected")
			return "", ErrInvalidResetToken
		}
		return "", err
	}

	hashedPassword, err := s.hasher.Hash(newPassword)
	if err != nil {
		return "", err
	}

	affected, err := s.userRepo.UpdatePasswordHash(ctx, resetToken.UserID, hashedPassword)
	if err != nil {
		return "", err
	}
	if affected == 0 {
		return "", ErrUserNotFound
	}

	if err := s.resetService.MarkTokenUsed(ctx, token); err != nil {
		return "", err
	}

	return ResetSuccessMessage, nil
}

// ValidateAccessToken is the contract the HTTP guard consumes.
func (s *AuthService) ValidateAccessToken(tokenString string) (*SessionClaims, error) {
	return s.sessionService.Verify(tokenString)
}

// ResetTokenExpirySeconds is exposed for clients that display the TTL.
func (s *AuthService) ResetTokenExpirySeconds() int {
	return s.resetService.TokenExpirySeconds()
}
