// Package remote talks to the hosted save gateway. Every failure crossing
// this boundary is a typed error; callers decide whether to fall back to
// local storage or queue the mutation for replay.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"musicsim/internal/auth"
	"musicsim/internal/savecodec"
)

var ErrNotFound = errors.New("remote: save not found")

// TransportError is any remote failure that is not a simple miss. Offline is
// set only for genuine connectivity-loss signatures; timeouts and 5xx
// responses are not offline.
type TransportError struct {
	StatusCode int
	Offline    bool
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("remote: status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("remote: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsOffline reports whether err should be treated as a connectivity loss,
// making the failed mutation eligible for the offline queue.
func IsOffline(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Offline
}

type SaveSummary struct {
	SaveID     string `json:"save_id"`
	SlotName   string `json:"slot_name"`
	ArtistName string `json:"artist_name"`
	Genre      string `json:"genre"`
	Timestamp  int64  `json:"timestamp"`
	Version    string `json:"version"`
}

type FullSave struct {
	SaveSummary
	State savecodec.SerializedGameState `json:"game_state"`
}

type Pagination struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Total   int `json:"total"`
}

type listResponse struct {
	Saves      []SaveSummary `json:"saves"`
	Pagination Pagination    `json:"pagination"`
}

type SaveRequest struct {
	SlotName  string                        `json:"slot_name"`
	Timestamp int64                         `json:"timestamp"`
	Version   string                        `json:"version"`
	GameState savecodec.SerializedGameState `json:"game_state"`
}

type Client struct {
	BaseURL     string
	AccessToken string
	HTTP        *http.Client
}

func NewClient(baseURL, accessToken string) *Client {
	return &Client{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		AccessToken: accessToken,
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Login exchanges credentials for a session via the gateway. No bearer token
// is attached yet.
func (c *Client) Login(ctx context.Context, email, password string) (auth.Session, error) {
	var out auth.Session
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	return out, err
}

func (c *Client) SignUp(ctx context.Context, email, password string) (auth.Session, error) {
	var out auth.Session
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/auth/signup", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	return out, err
}

func (c *Client) Save(ctx context.Context, req SaveRequest) (SaveSummary, error) {
	var out SaveSummary
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/saves", req, &out)
	return out, err
}

func (c *Client) Load(ctx context.Context, slot string) (FullSave, error) {
	var out FullSave
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/saves/"+url.PathEscape(slot), nil, &out)
	return out, err
}

func (c *Client) List(ctx context.Context) ([]SaveSummary, error) {
	all := []SaveSummary{}
	for page := 1; ; page++ {
		var out listResponse
		path := "/v1/saves?page=" + strconv.Itoa(page)
		if err := c.jsonRequest(ctx, http.MethodGet, path, nil, &out); err != nil {
			return nil, err
		}
		all = append(all, out.Saves...)
		if len(all) >= out.Pagination.Total || len(out.Saves) == 0 {
			return all, nil
		}
	}
}

// Delete removes a save by its internal identifier.
func (c *Client) Delete(ctx context.Context, saveID string) error {
	return c.jsonRequest(ctx, http.MethodDelete, "/v1/saves/"+url.PathEscape(saveID), nil, nil)
}

// DeleteSlot resolves a slot name to its save ID via List and deletes it.
// Deleting a slot with no remote counterpart is a no-op.
func (c *Client) DeleteSlot(ctx context.Context, slot string) error {
	saves, err := c.List(ctx)
	if err != nil {
		return err
	}
	for _, s := range saves {
		if s.SlotName == slot {
			return c.Delete(ctx, s.SaveID)
		}
	}
	return nil
}

// Healthy probes the gateway health endpoint. Used by the connectivity
// watcher to detect offline/online transitions.
func (c *Client) Healthy(ctx context.Context) bool {
	return c.jsonRequest(ctx, http.MethodGet, "/healthz", nil, nil) == nil
}

// Do issues an arbitrary request, used when replaying queued mutations.
func (c *Client) Do(ctx context.Context, method, path string, body json.RawMessage) error {
	var in any
	if len(body) > 0 {
		in = body
	}
	return c.jsonRequest(ctx, method, path, in, nil)
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.AccessToken)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return classify(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &TransportError{
			StatusCode: resp.StatusCode,
			Err:        errors.New(strings.TrimSpace(string(raw))),
		}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
