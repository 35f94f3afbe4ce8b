package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/vibast-solutions/ms-go-identity/app/entity"
	"github.com/vibast-solutions/ms-go-identity/app/repository"
)

// Internal diagnostics only: the boundary collapses all three into
// ErrInvalidResetToken so callers cannot tell which check failed.
var (
	ErrResetTokenNotFound = errors.New("reset token not found")
	ErrResetTokenUsed     = errors.New("reset token already used")
	ErrResetTokenExpired  = errors.New("reset token expired")
)

const resetTokenBytes = 32

// PasswordResetService owns the reset-token lifecycle: generate, store,
// validate, consume, purge.
type PasswordResetService struct {
	db        *sql.DB
	tokenRepo *repository.PasswordResetTokenRepository
	ttl       time.Duration
}

func NewPasswordResetService(db *sql.DB, tokenRepo *repository.PasswordResetTokenRepository, ttl time.Duration) *PasswordResetService {
	return &PasswordResetService{
		db:        db,
		tokenRepo: tokenRepo,
		ttl:       ttl,
	}
}

// GenerateToken produces a 32-byte cryptographically random secret,
// hex-encoded. Uniqueness is additionally enforced by the UNIQUE constraint
// on the token column.
func (s *PasswordResetService) GenerateToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// SaveToken invalidates every outstanding unused token for the user and
// stores the new one in a single transaction, so two concurrent requests for
// the same account can never leave two usable tokens behind.
func (s *PasswordResetService) SaveToken(ctx context.Context, userID uint64, token string) (*entity.PasswordResetToken, error) {
	now := time.Now()
	resetToken := &entity.PasswordResetToken{
		ID:        uuid.New().String(),
		UserID:    userID,
		Token:     token,
		ExpiresAt: now.Add(s.ttl),
		Used:      false,
		CreatedAt: now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	txRepo := s.tokenRepo.WithTx(tx)
	if _, err := txRepo.InvalidateByUserID(ctx, userID); err != nil {
		return nil, err
	}
	if err := txRepo.Create(ctx, resetToken); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return resetToken, nil
}

// ValidateToken rejects unknown, consumed and expired tokens, each with its
// own sentinel. Used and expired tokens are never reactivated.
func (s *PasswordResetService) ValidateToken(ctx context.Context, token string) (*entity.PasswordResetToken, error) {
	resetToken, err := s.tokenRepo.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if resetToken == nil {
		return nil, ErrResetTokenNotFound
	}
	if resetToken.Used {
		return nil, ErrResetTokenUsed
	}
	if resetToken.IsExpired(time.Now()) {
		return nil, ErrResetTokenExpired
	}
	return resetToken, nil
}

// MarkTokenUsed consumes the token. Idempotent: consuming an already-used
// token is a no-op, the reject-if-used rule lives in ValidateToken.
func (s *PasswordResetService) MarkTokenUsed(ctx context.Context, token string) error {
	return s.tokenRepo.MarkUsed(ctx, token)
}

// CleanupExpiredTokens deletes expired rows and returns how many went away.
// Retention only; validation already rejects everything this removes.
func (s *PasswordResetService) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	return s.tokenRepo.DeleteExpired(ctx, time.Now())
}

// TokenExpirySeconds returns the configured TTL for display to clients.
func (s *PasswordResetService) TokenExpirySeconds() int {
	return int(s.ttl.Seconds())
}
