package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	m, err := NewManager()
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return m
}

func TestSignedOutByDefault(t *testing.T) {
	m := newTestManager(t)
	if m.SignedIn() {
		t.Error("fresh manager should be signed out")
	}
	if m.User() != nil {
		t.Error("fresh manager should have no user")
	}
	if m.UserID() != "" {
		t.Error("fresh manager should have an empty user ID")
	}
}

func TestCredentialsRoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	m, err := NewManager()
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	m.credentials = &Credentials{
		Session: Session{
			AccessToken: "tok",
			ExpiresAt:   time.Now().Add(time.Hour).Unix(),
			User:        User{ID: "u1", Email: "kim@example.com", Name: "Kim"},
		},
		CreatedAt: time.Now().Unix(),
	}
	if err := m.save(); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	// A second manager picks the file up on construction.
	m2, err := NewManager()
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	if !m2.SignedIn() {
		t.Error("reloaded manager should be signed in")
	}
	if got := m2.UserID(); got != "u1" {
		t.Errorf("UserID = %q, want u1", got)
	}
}

func TestExpiredSessionIsSignedOut(t *testing.T) {
	m := newTestManager(t)
	m.credentials = &Credentials{
		Session: Session{
			AccessToken: "tok",
			ExpiresAt:   time.Now().Add(-time.Hour).Unix(),
			User:        User{ID: "u1"},
		},
	}
	if m.SignedIn() {
		t.Error("expired session should report signed out")
	}
}

func TestLogoutRemovesCredentialsFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	m, err := NewManager()
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	m.credentials = &Credentials{
		Session: Session{AccessToken: "tok", ExpiresAt: time.Now().Add(time.Hour).Unix()},
	}
	if err := m.save(); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if err := m.Logout(); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if m.SignedIn() {
		t.Error("manager should be signed out after Logout")
	}
	if _, err := os.Stat(filepath.Join(home, ".worklight", "credentials.json")); !os.IsNotExist(err) {
		t.Error("credentials file should be gone after Logout")
	}

	// Logging out twice is fine.
	if err := m.Logout(); err != nil {
		t.Errorf("second Logout failed: %v", err)
	}
}

func TestCallbackServerRejectsBadState(t *testing.T) {
	port, err := findAvailablePort(DefaultCallbackPort)
	if err != nil {
		t.Fatalf("no free port: %v", err)
	}

	resultCh := make(chan loginResult, 2)
	server, err := startCallbackServer(port, "expected-state", resultCh)
	if err != nil {
		t.Fatalf("startCallbackServer failed: %v", err)
	}
	defer server.Close()

	post := func(payload callbackPayload) *http.Response {
		body, _ := json.Marshal(payload)
		resp, err := http.Post(
			fmt.Sprintf("http://127.0.0.1:%d/callback", port),
			"application/json", bytes.NewReader(body))
		if err != nil {
			t.Fatalf("POST failed: %v", err)
		}
		resp.Body.Close()
		return resp
	}

	if resp := post(callbackPayload{AccessToken: "tok", State: "wrong"}); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad state should be rejected, got %d", resp.StatusCode)
	}
	if result := <-resultCh; result.err == nil {
		t.Error("bad state should surface an error")
	}

	if resp := post(callbackPayload{AccessToken: "tok", State: "expected-state"}); resp.StatusCode != http.StatusOK {
		t.Errorf("valid callback should succeed, got %d", resp.StatusCode)
	}
	result := <-resultCh
	if result.err != nil {
		t.Fatalf("valid callback errored: %v", result.err)
	}
	if result.session.AccessToken != "tok" {
		t.Errorf("AccessToken = %q, want tok", result.session.AccessToken)
	}
}
