package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"syscall"
	"testing"
	"time"
)

func TestClassifyOffline(t *testing.T) {
	refused := &url.Error{
		Op:  "Post",
		URL: "http://gateway/v1/saves",
		Err: &net.OpError{Op: "dial", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)},
	}
	if !IsOffline(classify(refused)) {
		t.Fatal("connection refused should classify as offline")
	}

	dns := &url.Error{
		Op:  "Get",
		URL: "http://gateway/healthz",
		Err: &net.DNSError{Err: "no such host", Name: "gateway"},
	}
	if !IsOffline(classify(dns)) {
		t.Fatal("dns failure should classify as offline")
	}

	timeout := &url.Error{
		Op:  "Post",
		URL: "http://gateway/v1/saves",
		Err: timeoutError{},
	}
	if IsOffline(classify(timeout)) {
		t.Fatal("timeout must not classify as offline")
	}

	if IsOffline(classify(context.DeadlineExceeded)) {
		t.Fatal("deadline exceeded must not classify as offline")
	}
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestServerErrorIsNotOffline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "db down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "token")
	_, err := c.Load(context.Background(), "auto")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if te.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d", te.StatusCode)
	}
	if te.Offline {
		t.Fatal("5xx must not be offline")
	}
}

func TestNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "token")
	if _, err := c.Load(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListPaginates(t *testing.T) {
	pages := map[string][]SaveSummary{
		"1": {{SaveID: "a", SlotName: "auto"}, {SaveID: "b", SlotName: "tour"}},
		"2": {{SaveID: "c", SlotName: "studio"}},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		_ = json.NewEncoder(w).Encode(listResponse{
			Saves:      pages[page],
			Pagination: Pagination{Page: 1, PerPage: 2, Total: 3},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "token")
	saves, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(saves) != 3 {
		t.Fatalf("got %d saves, want 3", len(saves))
	}
	if saves[2].SlotName != "studio" {
		t.Fatalf("last slot = %q", saves[2].SlotName)
	}
}

func TestSignUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/auth/signup" || r.Method != http.MethodPost {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var creds map[string]string
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if creds["email"] != "a@b.c" {
			t.Errorf("email = %q", creds["email"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok",
			"user":         map[string]string{"id": "u1", "email": "a@b.c"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	session, err := c.SignUp(context.Background(), "a@b.c", "hunter2")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if session.AccessToken != "tok" || session.User.ID != "u1" {
		t.Fatalf("session = %+v", session)
	}
}

func TestDeleteSlotResolvesID(t *testing.T) {
	var deleted string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(listResponse{
				Saves:      []SaveSummary{{SaveID: "id-42", SlotName: "tour", Timestamp: time.Now().UnixMilli()}},
				Pagination: Pagination{Total: 1},
			})
		case http.MethodDelete:
			deleted = r.URL.Path
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "token")
	if err := c.DeleteSlot(context.Background(), "tour"); err != nil {
		t.Fatalf("delete slot: %v", err)
	}
	if deleted != "/v1/saves/id-42" {
		t.Fatalf("deleted path = %q", deleted)
	}

	// Unknown slot deletes nothing and succeeds.
	deleted = ""
	if err := c.DeleteSlot(context.Background(), "ghost"); err != nil {
		t.Fatalf("delete unknown slot: %v", err)
	}
	if deleted != "" {
		t.Fatalf("unexpected delete of %q", deleted)
	}
}
