package authn

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestSignInSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/auth/v1/token" {
			t.Errorf("path = %s, want /auth/v1/token", r.URL.Path)
		}
		if got := r.URL.Query().Get("grant_type"); got != "password" {
			t.Errorf("grant_type = %q, want password", got)
		}
		if got := r.Header.Get("apikey"); got != "public-key" {
			t.Errorf("apikey header = %q, want public-key", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","user":{"email":"admin@miccroten.com"}}`))
	}))
	defer srv.Close()

	v := NewVerifier(srv.URL, "public-key", zap.NewNop())
	id, err := v.SignIn(context.Background(), "admin@miccroten.com", "secret123")
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if id.Username != "admin@miccroten.com" {
		t.Errorf("username = %q, want admin@miccroten.com", id.Username)
	}
}

func TestSignInInvalidCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
	}))
	defer srv.Close()

	v := NewVerifier(srv.URL, "public-key", zap.NewNop())
	_, err := v.SignIn(context.Background(), "admin@miccroten.com", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("error = %v, want ErrInvalidCredentials", err)
	}
}

func TestSignInServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	v := NewVerifier(srv.URL, "public-key", zap.NewNop())
	_, err := v.SignIn(context.Background(), "admin@miccroten.com", "secret123")
	if err == nil {
		t.Fatal("SignIn() should fail on 5xx")
	}
	if errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("5xx misclassified as invalid credentials: %v", err)
	}
}

func TestSignInUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // Shut down before calling.

	v := NewVerifier(srv.URL, "public-key", zap.NewNop())
	_, err := v.SignIn(context.Background(), "admin@miccroten.com", "secret123")
	if err == nil {
		t.Fatal("SignIn() should fail when the service is unreachable")
	}
	if errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("transport failure misclassified as invalid credentials: %v", err)
	}
}
