package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/mobank/internal/client/models"
	"github.com/dmitrijs2005/mobank/internal/client/session"
	"github.com/dmitrijs2005/mobank/internal/common"
	"github.com/dmitrijs2005/mobank/internal/logging"
)

const maxBodySize = 1 << 20

type HTTPClient struct {
	baseURL string
	http    *http.Client
	log     logging.Logger
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient builds a client for the backend at baseURL
// (scheme://host[:port]); the /api/v1 prefix is added here.
func NewHTTPClient(baseURL string, timeout time.Duration, log logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/") + "/api/v1",
		http:    &http.Client{Timeout: timeout},
		log:     log.With("component", "api"),
	}
}

type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Detail  json.RawMessage `json:"detail"`
	Data    json.RawMessage `json:"data"`
}

type loginRequest struct {
	LoginID  string `json:"login_id"`
	Password string `json:"Password"`
}

type loginData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	models.Profile
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Login authenticates with the user's login id (username, email or CNIC).
func (c *HTTPClient) Login(ctx context.Context, loginID, password string) (*session.Credentials, error) {
	if loginID == "" || password == "" {
		return nil, fmt.Errorf("login id and password are required: %w", common.ErrInvalidArgument)
	}

	env, err := c.do(ctx, http.MethodPost, "/users/login", "", loginRequest{LoginID: loginID, Password: password})
	if err != nil {
		return nil, err
	}

	var d loginData
	if err := decodeData(env, &d); err != nil {
		return nil, err
	}
	if d.AccessToken == "" || d.Profile.UserID == "" {
		return nil, fmt.Errorf("login response lacks access token or user id: %w", common.ErrMalformedResponse)
	}

	c.log.Info(ctx, "logged in", "user_id", d.Profile.UserID)
	return &session.Credentials{
		AccessToken:  d.AccessToken,
		RefreshToken: d.RefreshToken,
		Profile:      d.Profile,
	}, nil
}

// Refresh exchanges refreshToken for a new access token. The token may be
// returned at the top level of the body or inside data.
func (c *HTTPClient) Refresh(ctx context.Context, refreshToken string) (session.TokenPair, error) {
	if refreshToken == "" {
		return session.TokenPair{}, fmt.Errorf("refresh token is required: %w", common.ErrInvalidArgument)
	}

	body, err := c.doRaw(ctx, http.MethodPost, "/users/refresh", "", refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return session.TokenPair{}, err
	}

	var top struct {
		tokenData
		Data *tokenData `json:"data"`
	}
	if err := json.Unmarshal(body, &top); err != nil {
		return session.TokenPair{}, fmt.Errorf("decode refresh response: %w: %w", common.ErrMalformedResponse, err)
	}

	t := top.tokenData
	if t.AccessToken == "" && top.Data != nil {
		t = *top.Data
	}
	if t.AccessToken == "" {
		return session.TokenPair{}, fmt.Errorf("refresh response has no access token: %w", common.ErrMalformedResponse)
	}
	return session.TokenPair{AccessToken: t.AccessToken, RefreshToken: t.RefreshToken}, nil
}

// Me reads the authenticated user's profile, including the balance.
func (c *HTTPClient) Me(ctx context.Context, accessToken string) (*models.Profile, error) {
	if accessToken == "" {
		return nil, common.ErrNoSession
	}

	env, err := c.do(ctx, http.MethodGet, "/users/me", accessToken, nil)
	if err != nil {
		return nil, err
	}

	var p models.Profile
	if err := decodeData(env, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, in any) (*envelope, error) {
	body, err := c.doRaw(ctx, method, path, token, in)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode %s response: %w: %w", path, common.ErrMalformedResponse, err)
	}
	if env.Success != nil && !*env.Success {
		msg := env.Message
		if msg == "" {
			msg = "request was not successful"
		}
		return nil, fmt.Errorf("%s: %s: %w", path, msg, common.ErrMalformedResponse)
	}
	return &env, nil
}

func (c *HTTPClient) doRaw(ctx context.Context, method, path, token string, in any) ([]byte, error) {
	var reqBody io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", path, err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		c.log.Warn(ctx, "request failed", "path", path, "error", err)
		return nil, fmt.Errorf("%s %s: %w: %w", method, path, common.ErrNetworkUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w: %w", path, common.ErrNetworkUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode, Message: serverMessage(body)}
		c.log.Warn(ctx, "request rejected", "path", path, "status", resp.StatusCode)
		return nil, apiErr
	}
	return body, nil
}

// serverMessage extracts "message" or "detail" from an error body.
func serverMessage(body []byte) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return strings.TrimSpace(string(body))
	}
	if env.Message != "" {
		return env.Message
	}
	var detail string
	if err := json.Unmarshal(env.Detail, &detail); err == nil {
		return detail
	}
	return string(env.Detail)
}

func decodeData(env *envelope, out any) error {
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return fmt.Errorf("response has no data: %w", common.ErrMalformedResponse)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w: %w", common.ErrMalformedResponse, err)
	}
	return nil
}
