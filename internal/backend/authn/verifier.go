// Package authn wraps the hosted backend's authentication endpoint. The
// console delegates credential checking entirely: it posts a password grant
// and converts the outcome into a local session grant or an error.
package authn

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ErrInvalidCredentials is returned when the backend rejects the
// email/password pair. Anything else (transport failure, 5xx) is a plain
// service error; both are shown inline by the login view.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Identity is the authenticated admin as reported by the backend.
type Identity struct {
	Username string
}

// Verifier is an HTTP client for the backend's token endpoint.
type Verifier struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

// NewVerifier creates a verifier for the auth service at baseURL. The API
// key is the backend project's public key, sent with every request.
func NewVerifier(baseURL, apiKey string, logger *zap.Logger) *Verifier {
	return &Verifier{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

type tokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	User        struct {
		Email string `json:"email"`
	} `json:"user"`
	ErrorDescription string `json:"error_description"`
	Message          string `json:"msg"`
}

// SignIn submits the password grant. On success it yields the identity; the
// caller is responsible for granting the local session. On failure the
// session state is untouched and the error distinguishes bad credentials
// from service trouble only via errors.Is.
func (v *Verifier) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	body, err := json.Marshal(tokenRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("encode sign-in request: %w", err)
	}

	url := v.baseURL + "/auth/v1/token?grant_type=password"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build sign-in request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", v.apiKey)

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth service unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var parsed tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil && resp.StatusCode == http.StatusOK {
		return nil, fmt.Errorf("decode auth response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		username := parsed.User.Email
		if username == "" {
			username = email
		}
		v.logger.Info("sign-in succeeded", zap.String("username", username))
		return &Identity{Username: username}, nil

	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		detail := parsed.ErrorDescription
		if detail == "" {
			detail = parsed.Message
		}
		v.logger.Warn("sign-in rejected",
			zap.Int("status", resp.StatusCode), zap.String("detail", detail))
		if detail != "" {
			return nil, fmt.Errorf("%w: %s", ErrInvalidCredentials, detail)
		}
		return nil, ErrInvalidCredentials

	default:
		v.logger.Error("auth service error", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("auth service returned status %d", resp.StatusCode)
	}
}
