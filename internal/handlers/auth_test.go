package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gobarber/gobarber/libs/auth"
)

func TestRequireAuth(t *testing.T) {
	const secret = "test-secret"
	var gotCaller int64
	handler := RequireAuth(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCaller = CallerID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	token, err := auth.SignHS256(auth.Claims{
		Sub:  "42",
		Name: "Ada",
		Iat:  time.Now().Unix(),
		Exp:  time.Now().Add(time.Hour).Unix(),
	}, secret)
	if err != nil {
		t.Fatalf("SignHS256 failed: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if gotCaller != 42 {
		t.Fatalf("expected caller id 42, got %d", gotCaller)
	}
}

func TestRequireAuthMissingToken(t *testing.T) {
	handler := RequireAuth("s")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("handler should not run")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/appointments", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if rec.Body.String() != "{\"error\":\"Token not provided\"}\n" {
		t.Fatalf("unexpected body: %q", rec.Body.String())
	}
}

func TestRequireAuthBadToken(t *testing.T) {
	handler := RequireAuth("right-secret")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("handler should not run")
	}))

	token, err := auth.SignHS256(auth.Claims{Sub: "1", Exp: time.Now().Add(time.Hour).Unix()}, "wrong-secret")
	if err != nil {
		t.Fatalf("SignHS256 failed: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
