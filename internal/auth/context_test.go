package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestUserIDRoundTrip(t *testing.T) {
	ctx := ContextWithUserID(context.Background(), "user-1")
	id, ok := UserIDFromContext(ctx)
	if !ok || id != "user-1" {
		t.Fatalf("expected user-1, got %q (%v)", id, ok)
	}

	if _, ok := UserIDFromContext(context.Background()); ok {
		t.Fatalf("expected no user on empty context")
	}

	if _, err := RequireUserID(context.Background()); err == nil {
		t.Fatalf("expected error without identity")
	}
}

func TestMiddlewareResolvesCookieAndHeader(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserIDFromContext(r.Context())
	})
	handler := Middleware(next)

	req := httptest.NewRequest(http.MethodGet, "/buyers", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "cookie-user"})
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "cookie-user" {
		t.Fatalf("expected cookie identity, got %q", seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/buyers", nil)
	req.Header.Set("X-User-ID", "header-user")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "header-user" {
		t.Fatalf("expected header identity, got %q", seen)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/buyers", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", rec.Code)
	}
}
