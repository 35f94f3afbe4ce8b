package service_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-identity/app/repository"
	"github.com/vibast-solutions/ms-go-identity/app/service"

	"github.com/DATA-DOG/go-sqlmock"
)

const (
	insertResetTokenQuery    = `(?s)INSERT INTO password_reset_tokens \(id, user_id, token, expires_at, used, created_at\)\s+VALUES \(\?, \?, \?, \?, \?, \?\)`
	findResetTokenQuery      = `(?s)SELECT id, user_id, token, expires_at, used, created_at\s+FROM password_reset_tokens WHERE token = \?`
	invalidateByUserIDQuery  = `(?s)UPDATE password_reset_tokens SET used = 1 WHERE user_id = \? AND used = 0`
	markResetTokenUsedQuery  = `(?s)UPDATE password_reset_tokens SET used = 1 WHERE token = \?`
	deleteExpiredTokensQuery = `(?s)DELETE FROM password_reset_tokens WHERE expires_at < \?`
)

var resetTokenColumns = []string{
	"id",
	"user_id",
	"token",
	"expires_at",
	"used",
	"created_at",
}

func newResetServiceWithMock(t *testing.T) (*service.PasswordResetService, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	tokenRepo := repository.NewPasswordResetTokenRepository(db)
	svc := service.NewPasswordResetService(db, tokenRepo, time.Hour)

	return svc, mock, func() { _ = db.Close() }
}

func TestPasswordResetService_GenerateToken(t *testing.T) {
	svc, _, cleanup := newResetServiceWithMock(t)
	defer cleanup()

	first, err := svc.GenerateToken()
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	second, err := svc.GenerateToken()
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	// 32 random bytes, hex-encoded.
	if len(first) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(first))
	}
	if !regexp.MustCompile(`^[a-f0-9]+$`).MatchString(first) {
		t.Fatalf("expected lowercase hex, got %q", first)
	}
	if first == second {
		t.Fatalf("expected generated tokens to differ")
	}
}

func TestPasswordResetService_SaveToken_InvalidatesThenInserts(t *testing.T) {
	svc, mock, cleanup := newResetServiceWithMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(invalidateByUserIDQuery).
		WithArgs(uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insertResetTokenQuery).
		WithArgs(sqlmock.AnyArg(), uint64(1), "secret", sqlmock.AnyArg(), false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	token, err := svc.SaveToken(context.Background(), 1, "secret")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if token.UserID != 1 || token.Token != "secret" || token.Used {
		t.Fatalf("unexpected token: %+v", token)
	}
	if token.ID == "" {
		t.Fatalf("expected generated token ID")
	}
	if remaining := time.Until(token.ExpiresAt); remaining < 59*time.Minute || remaining > time.Hour {
		t.Fatalf("unexpected expiry: %v", token.ExpiresAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPasswordResetService_SaveToken_RollsBackOnInsertError(t *testing.T) {
	svc, mock, cleanup := newResetServiceWithMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(invalidateByUserIDQuery).
		WithArgs(uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(insertResetTokenQuery).
		WithArgs(sqlmock.AnyArg(), uint64(1), "secret", sqlmock.AnyArg(), false, sqlmock.AnyArg()).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	if _, err := svc.SaveToken(context.Background(), 1, "secret"); err == nil {
		t.Fatalf("expected save to fail")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPasswordResetService_ValidateToken(t *testing.T) {
	svc, mock, cleanup := newResetServiceWithMock(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(findResetTokenQuery).
		WithArgs("secret").
		WillReturnRows(sqlmock.NewRows(resetTokenColumns).AddRow(
			"id", uint64(1), "secret", now.Add(time.Hour), false, now,
		))

	token, err := svc.ValidateToken(context.Background(), "secret")
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if token.UserID != 1 {
		t.Fatalf("unexpected token: %+v", token)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPasswordResetService_ValidateToken_NotFound(t *testing.T) {
	svc, mock, cleanup := newResetServiceWithMock(t)
	defer cleanup()

	mock.ExpectQuery(findResetTokenQuery).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(resetTokenColumns))

	if _, err := svc.ValidateToken(context.Background(), "missing"); !errors.Is(err, service.ErrResetTokenNotFound) {
		t.Fatalf("expected ErrResetTokenNotFound, got %v", err)
	}
}

func TestPasswordResetService_ValidateToken_Used(t *testing.T) {
	svc, mock, cleanup := newResetServiceWithMock(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectQuery(findResetTokenQuery).
		WithArgs("secret").
		WillReturnRows(sqlmock.NewRows(resetTokenColumns).AddRow(
			"id", uint64(1), "secret", now.Add(time.Hour), true, now,
		))

	if _, err := svc.ValidateToken(context.Background(), "secret"); !errors.Is(err, service.ErrResetTokenUsed) {
		t.Fatalf("expected ErrResetTokenUsed, got %v", err)
	}
}

func TestPasswordResetService_ValidateToken_Expired(t *testing.T) {
	svc, mock, cleanup := newResetServiceWithMock(t)
	defer cleanup()

	now := time.Now()
	// Expired wins even though the token is unused.
	mock.ExpectQuery(findResetTokenQuery).
		WithArgs("secret").
		WillReturnRows(sqlmock.NewRows(resetTokenColumns).AddRow(
			"id", uint64(1), "secret", now.Add(-time.Minute), false, now.Add(-2*time.Hour),
		))

	if _, err := svc.ValidateToken(context.Background(), "secret"); !errors.Is(err, service.ErrResetTokenExpired) {
		t.Fatalf("expected ErrResetTokenExpired, got %v", err)
	}
}

func TestPasswordResetService_MarkTokenUsed(t *testing.T) {
	svc, mock, cleanup := newResetServiceWithMock(t)
	defer cleanup()

	mock.ExpectExec(markResetTokenUsedQuery).
		WithArgs("secret").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := svc.MarkTokenUsed(context.Background(), "secret"); err != nil {
		t.Fatalf("mark used failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPasswordResetService_CleanupExpiredTokens(t *testing.T) {
	svc, mock, cleanup := newResetServiceWithMock(t)
	defer cleanup()

	mock.ExpectExec(deleteExpiredTokensQuery).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	count, err := svc.CleanupExpiredTokens(context.Background())
	if err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 deleted, got %d", count)
	}
}

func TestPasswordResetService_TokenExpirySeconds(t *testing.T) {
	svc, _, cleanup := newResetServiceWithMock(t)
	defer cleanup()

	if got := svc.TokenExpirySeconds(); got != 3600 {
		t.Fatalf("expected 3600, got %d", got)
	}
}
