// Package session manages the signed-in user for the worklight CLI.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

const (
	// DefaultCallbackPort is the first port tried for the local callback server.
	DefaultCallbackPort = 18940
	// LoginTimeout is the maximum time to wait for the browser to call back.
	LoginTimeout = 5 * time.Minute
	// DefaultLoginURL is the worklight web sign-in page.
	DefaultLoginURL = "https://worklight.dev/auth/cli/"
)

// User is the signed-in account.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Session holds the tokens for one signed-in user.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
	User         User   `json:"user"`
}

// Credentials is what gets persisted to disk.
type Credentials struct {
	Session   Session `json:"session"`
	CreatedAt int64   `json:"created_at"`
}

type loginResult struct {
	session Session
	err     error
}

// Manager loads, stores, and refreshes the local session.
type Manager struct {
	configDir   string
	loginURL    string
	mu          sync.RWMutex
	credentials *Credentials
}

// NewManager creates a session manager rooted at ~/.worklight and loads any
// existing credentials.
func NewManager() (*Manager, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".worklight")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	m := &Manager{
		configDir: configDir,
		loginURL:  DefaultLoginURL,
	}
	_ = m.load()
	return m, nil
}

// SignedIn reports whether a non-expired session is present. A five minute
// buffer is applied so a token about to expire does not count.
func (m *Manager) SignedIn() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.credentials == nil {
		return false
	}
	expiresAt := time.Unix(m.credentials.Session.ExpiresAt, 0)
	return time.Now().Before(expiresAt.Add(-5 * time.Minute))
}

// User returns the current user, or nil when signed out.
func (m *Manager) User() *User {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.credentials == nil {
		return nil
	}
	u := m.credentials.Session.User
	return &u
}

// UserID returns the current user's ID, or "" when signed out.
func (m *Manager) UserID() string {
	if u := m.User(); u != nil {
		return u.ID
	}
	return ""
}

// Login opens the browser sign-in page and waits for the web app to post the
// session back to a local callback server.
func (m *Manager) Login(ctx context.Context) (*Session, error) {
	port, err := findAvailablePort(DefaultCallbackPort)
	if err != nil {
		return nil, fmt.Errorf("find available port: %w", err)
	}

	state, err := randomState()
	if err != nil {
		return nil, fmt.Errorf("generate state: %w", err)
	}

	resultCh := make(chan loginResult, 1)
	server, err := startCallbackServer(port, state, resultCh)
	if err != nil {
		return nil, fmt.Errorf("start callback server: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	loginURL := fmt.Sprintf("%s?port=%d&state=%s", m.loginURL, port, state)
	if err := openBrowser(loginURL); err != nil {
		return nil, fmt.Errorf("open browser: %w\nOpen this URL manually: %s", err, loginURL)
	}

	select {
	case result := <-resultCh:
		if result.err != nil {
			return nil, result.err
		}
		m.mu.Lock()
		m.credentials = &Credentials{
			Session:   result.session,
			CreatedAt: time.Now().Unix(),
		}
		m.mu.Unlock()
		if err := m.save(); err != nil {
			return nil, fmt.Errorf("save credentials: %w", err)
		}
		return &result.session, nil

	case <-time.After(LoginTimeout):
		return nil, fmt.Errorf("sign-in timed out after %v", LoginTimeout)

	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Logout forgets the session in memory and on disk.
func (m *Manager) Logout() error {
	m.mu.Lock()
	m.credentials = nil
	m.mu.Unlock()

	if err := os.Remove(m.credentialsPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}

func (m *Manager) credentialsPath() string {
	return filepath.Join(m.configDir, "credentials.json")
}

func (m *Manager) load() error {
	data, err := os.ReadFile(m.credentialsPath())
	if err != nil {
		return err
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return err
	}

	m.mu.Lock()
	m.credentials = &creds
	m.mu.Unlock()
	return nil
}

func (m *Manager) save() error {
	m.mu.RLock()
	creds := m.credentials
	m.mu.RUnlock()

	if creds == nil {
		return nil
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.credentialsPath(), data, 0600)
}

type callbackPayload struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"`
	User         User   `json:"user"`
	State        string `json:"state"`
}

func startCallbackServer(port int, expectedState string, resultCh chan<- loginResult) (*http.Server, error) {
	mux := http.NewServeMux()

	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		// The web app posts from the browser, so CORS headers are needed.
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var payload callbackPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			resultCh <- loginResult{err: fmt.Errorf("invalid callback payload: %w", err)}
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if payload.State != expectedState {
			resultCh <- loginResult{err: fmt.Errorf("state mismatch in callback")}
			http.Error(w, "invalid state", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})

		resultCh <- loginResult{
			session: Session{
				AccessToken:  payload.AccessToken,
				RefreshToken: payload.RefreshToken,
				ExpiresAt:    payload.ExpiresAt,
				User:         payload.User,
			},
		}
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: mux,
	}

	listener, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return nil, err
	}
	go func() {
		if err := server.Serve(listener); err != http.ErrServerClosed {
			resultCh <- loginResult{err: fmt.Errorf("callback server error: %w", err)}
		}
	}()
	return server, nil
}

func findAvailablePort(startPort int) (int, error) {
	for port := startPort; port < startPort+100; port++ {
		listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
		if err == nil {
			listener.Close()
			return port, nil
		}
	}
	return 0, fmt.Errorf("no available port in range %d-%d", startPort, startPort+100)
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}
