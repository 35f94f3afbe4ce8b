package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-identity/app/middleware"
	"github.com/vibast-solutions/ms-go-identity/app/service"

	"github.com/labstack/echo/v4"
)

type sessionAdapter struct {
	sessions *service.SessionService
}

func (a sessionAdapter) ValidateAccessToken(tokenString string) (*service.SessionClaims, error) {
	return a.sessions.Verify(tokenString)
}

func runRequireAuth(t *testing.T, sessions *service.SessionService, authHeader string) (*httptest.ResponseRecorder, echo.Context, bool) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	called := false
	handler := middleware.NewAuthMiddleware(sessionAdapter{sessions: sessions}).RequireAuth(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(ctx); err != nil {
		t.Fatalf("middleware failed: %v", err)
	}
	return rec, ctx, called
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	sessions := service.NewSessionService("test-secret", time.Minute)

	rec, _, called := runRequireAuth(t, sessions, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if called {
		t.Fatalf("handler should not run without a token")
	}
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	sessions := service.NewSessionService("test-secret", time.Minute)

	for _, header := range []string{"token-only", "Basic abc123", "Bearer a b"} {
		rec, _, called := runRequireAuth(t, sessions, header)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, rec.Code)
		}
		if called {
			t.Fatalf("header %q: handler should not run", header)
		}
	}
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	sessions := service.NewSessionService("test-secret", time.Minute)

	rec, _, called := runRequireAuth(t, sessions, "Bearer not-a-token")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if called {
		t.Fatalf("handler should not run with a bad token")
	}
}

func TestRequireAuth_ValidTokenSetsIdentity(t *testing.T) {
	sessions := service.NewSessionService("test-secret", time.Minute)
	token, err := sessions.Issue(42, "a@x.com")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	rec, ctx, called := runRequireAuth(t, sessions, "Bearer "+token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !called {
		t.Fatalf("handler should run with a valid token")
	}
	if got, ok := ctx.Get("user_id").(uint64); !ok || got != 42 {
		t.Fatalf("unexpected user_id: %v", ctx.Get("user_id"))
	}
	if got, ok := ctx.Get("user_email").(string); !ok || got != "a@x.com" {
		t.Fatalf("unexpected user_email: %v", ctx.Get("user_email"))
	}
}
