package marathon

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	jwt "github.com/golang-jwt/jwt/v4"

	"github.com/mesoscale/mesoscaler/internal/config"
	"github.com/mesoscale/mesoscaler/internal/errors"
)

// loginPath is the DC/OS ACS login endpoint.
const loginPath = "/acs/api/v1/auth/login"

// serviceLoginLifetime bounds the validity of the signed login claim a
// service account presents. The ACS token received back lives much longer.
const serviceLoginLifetime = 5 * time.Minute

// TokenSource supplies ACS tokens for Marathon API calls.
type TokenSource interface {
	// Token returns a valid ACS token, logging in if none is cached.
	Token(ctx context.Context) (string, error)

	// Invalidate discards the cached token, forcing re-login on next use.
	Invalidate()
}

// NewTokenSource builds a TokenSource from Marathon settings. Returns nil
// when no credentials are configured, meaning unauthenticated access.
func NewTokenSource(cfg *config.MarathonConfig, httpClient *http.Client) (TokenSource, error) {
	source := &acsTokenSource{
		loginURL:   strings.TrimSuffix(cfg.URL, "/") + loginPath,
		uid:        cfg.Auth.UserID,
		httpClient: httpClient,
	}

	switch cfg.Auth.Method() {
	case config.AuthMethodNone:
		return nil, nil

	case config.AuthMethodPassword:
		source.password = cfg.Auth.Password
		return source, nil

	case config.AuthMethodServiceAccount:
		pemData := []byte(cfg.Auth.PrivateKey)
		if cfg.Auth.PrivateKeyFile != "" {
			data, err := os.ReadFile(cfg.Auth.PrivateKeyFile)
			if err != nil {
				return nil, errors.NewConfigError("read private key file", err).
					WithField("marathon.auth.private_key_file").
					WithValue(cfg.Auth.PrivateKeyFile)
			}
			pemData = data
		}

		key, err := jwt.ParseRSAPrivateKeyFromPEM(pemData)
		if err != nil {
			return nil, errors.NewConfigError("parse RSA private key", err).
				WithField("marathon.auth.private_key")
		}
		source.privateKey = key
		return source, nil

	default:
		return nil, errors.NewConfigError("unsupported auth method", nil).
			WithField("marathon.auth").WithValue(cfg.Auth.Method())
	}
}

// acsTokenSource logs into the DC/OS ACS endpoint and caches the token
// until Invalidate is called. Safe for concurrent use.
type acsTokenSource struct {
	loginURL   string
	uid        string
	password   string          // password login when set
	privateKey *rsa.PrivateKey // service account login when set
	httpClient *http.Client

	mu    sync.Mutex
	token string
}

// Token returns the cached ACS token, logging in first if needed.
func (s *acsTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" {
		return s.token, nil
	}

	token, err := s.login(ctx)
	if err != nil {
		return "", err
	}
	s.token = token
	return token, nil
}

// Invalidate discards the cached token.
func (s *acsTokenSource) Invalidate() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}

// login posts credentials to the ACS endpoint and returns the ACS token.
// Service accounts present a short-lived RS256 token signed with their
// private key; user accounts present their password.
func (s *acsTokenSource) login(ctx context.Context) (string, error) {
	payload := map[string]string{"uid": s.uid}
	if s.privateKey != nil {
		claims := jwt.MapClaims{
			"uid": s.uid,
			"exp": time.Now().Add(serviceLoginLifetime).Unix(),
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.privateKey)
		if err != nil {
			return "", errors.NewOrchestratorError("sign service account claim",
				fmt.Errorf("%w: %v", errors.ErrAuthFailed, err)).WithOp("login")
		}
		payload["token"] = signed
	} else {
		payload["password"] = s.password
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", errors.NewOrchestratorError("encode login request", err).WithOp("login")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.loginURL, bytes.NewReader(body))
	if err != nil {
		return "", errors.NewOrchestratorError("create login request", err).WithOp("login")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", errors.NewOrchestratorError("login request failed",
			fmt.Errorf("%w: %v", errors.ErrOrchestratorUnavailable, err)).WithOp("login")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", errors.NewOrchestratorError("login rejected", errors.ErrAuthFailed).
			WithOp("login").WithStatusCode(resp.StatusCode)
	}

	var loginResp struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return "", errors.NewOrchestratorError("decode login response",
			fmt.Errorf("%w: %v", errors.ErrAuthFailed, err)).WithOp("login")
	}
	if loginResp.Token == "" {
		return "", errors.NewOrchestratorError("login returned empty token", errors.ErrAuthFailed).
			WithOp("login")
	}

	return loginResp.Token, nil
}
