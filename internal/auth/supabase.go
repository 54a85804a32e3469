// Package auth wraps the hosted Supabase identity service. It is the only
// component that talks to the auth provider; everything else sees opaque
// access tokens and user IDs.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type SupabaseClient struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
}

type Session struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"`
	TokenType    string       `json:"token_type"`
	User         SupabaseUser `json:"user"`
}

type SupabaseUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func NewSupabaseClient(baseURL, anonKey string) *SupabaseClient {
	return &SupabaseClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

// SignUp registers an email/password account. Instances with email
// confirmation enabled return a session without an access token; the caller
// has to log in after the address is verified.
func (c *SupabaseClient) SignUp(ctx context.Context, email, password string) (Session, error) {
	return c.grant(ctx, "/auth/v1/signup", email, password)
}

func (c *SupabaseClient) Login(ctx context.Context, email, password string) (Session, error) {
	return c.grant(ctx, "/auth/v1/token?grant_type=password", email, password)
}

// grant posts credentials to one of the GoTrue session endpoints. Signup and
// password login take the same payload and reply with the same session shape,
// so both funnel through here.
func (c *SupabaseClient) grant(ctx context.Context, path, email, password string) (Session, error) {
	creds := map[string]string{"email": email, "password": password}
	body, err := json.Marshal(creds)
	if err != nil {
		return Session{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return Session{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	var session Session
	if err := c.do(req, &session); err != nil {
		return Session{}, err
	}
	return session, nil
}

func (c *SupabaseClient) VerifyAccessToken(ctx context.Context, accessToken string) (SupabaseUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return SupabaseUser{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	var user SupabaseUser
	if err := c.do(req, &user); err != nil {
		return SupabaseUser{}, fmt.Errorf("verify token: %w", err)
	}
	return user, nil
}

// do sends req with the project api key attached and decodes the response
// into out. Non-2xx statuses are reported as errors with a trimmed slice of
// the body for context.
func (c *SupabaseClient) do(req *http.Request, out any) error {
	req.Header.Set("apikey", c.anonKey)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("supabase request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("supabase status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
