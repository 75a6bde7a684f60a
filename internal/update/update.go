// Package update provides version checking and self-update for the
// worklight binary.
package update

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const (
	// GitHubRepo is the repository checked for new releases.
	GitHubRepo = "minseo-dev/worklight"
	// CheckInterval is the minimum time between release checks.
	CheckInterval = 24 * time.Hour
)

// Version is set at build time via -ldflags.
var Version = "0.1.0"

type release struct {
	TagName string  `json:"tag_name"`
	Assets  []asset `json:"assets"`
}

type asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

type checkCache struct {
	LastCheck     int64  `json:"last_check"`
	LatestVersion string `json:"latest_version"`
	DownloadURL   string `json:"download_url"`
}

// Checker checks GitHub for newer releases, remembering the result so the
// API is hit at most once per CheckInterval.
type Checker struct {
	configDir string
	client    *http.Client
	cache     *checkCache
}

// NewChecker creates an update checker rooted at ~/.worklight.
func NewChecker() (*Checker, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("get home directory: %w", err)
	}
	configDir := filepath.Join(homeDir, ".worklight")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	c := &Checker{
		configDir: configDir,
		client:    &http.Client{Timeout: 5 * time.Second},
	}
	_ = c.loadCache()
	return c, nil
}

// ShouldCheck reports whether the check interval has elapsed.
func (c *Checker) ShouldCheck() bool {
	if c.cache == nil {
		return true
	}
	return time.Since(time.Unix(c.cache.LastCheck, 0)) > CheckInterval
}

// Check queries GitHub for the latest release. It returns whether a newer
// version exists and what that version is.
func (c *Checker) Check() (bool, string, error) {
	url := fmt.Sprintf("https://api.github.com/repos/%s/releases/latest", GitHubRepo)
	resp, err := c.client.Get(url)
	if err != nil {
		return false, "", fmt.Errorf("check for updates: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, "", fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return false, "", fmt.Errorf("parse release info: %w", err)
	}

	latest := strings.TrimPrefix(rel.TagName, "v")
	current := strings.TrimPrefix(Version, "v")

	c.cache = &checkCache{
		LastCheck:     time.Now().Unix(),
		LatestVersion: latest,
		DownloadURL:   assetURL(rel.Assets),
	}
	_ = c.saveCache()

	return latest != current && current != "dev", latest, nil
}

// Install downloads the latest release binary and swaps it in place of the
// running executable, keeping a .old backup for rollback.
func (c *Checker) Install() error {
	if c.cache == nil || c.cache.DownloadURL == "" {
		if _, _, err := c.Check(); err != nil {
			return err
		}
	}
	downloadURL := c.cache.DownloadURL
	if downloadURL == "" {
		return fmt.Errorf("no release asset for %s/%s", runtime.GOOS, runtime.GOARCH)
	}

	resp, err := c.client.Get(downloadURL)
	if err != nil {
		return fmt.Errorf("download release: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	tmpFile, err := os.CreateTemp("", "worklight-update-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		tmpFile.Close()
		return fmt.Errorf("write download: %w", err)
	}
	tmpFile.Close()
	if err := os.Chmod(tmpPath, 0755); err != nil {
		return fmt.Errorf("set permissions: %w", err)
	}

	currentBin, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate current executable: %w", err)
	}
	currentBin, _ = filepath.EvalSymlinks(currentBin)

	// A running binary cannot be overwritten on every platform, so rename
	// it aside first and restore on failure.
	backupPath := currentBin + ".old"
	os.Remove(backupPath)
	if err := os.Rename(currentBin, backupPath); err != nil {
		return fmt.Errorf("back up current binary: %w", err)
	}
	if err := copyFile(tmpPath, currentBin); err != nil {
		os.Rename(backupPath, currentBin)
		return fmt.Errorf("install new binary: %w", err)
	}
	if err := os.Chmod(currentBin, 0755); err != nil {
		return fmt.Errorf("set binary permissions: %w", err)
	}
	os.Remove(backupPath)
	return nil
}

// assetURL picks the release asset matching this OS and architecture.
func assetURL(assets []asset) string {
	want := fmt.Sprintf("worklight-%s-%s", runtime.GOOS, runtime.GOARCH)
	for _, a := range assets {
		name := a.Name
		if runtime.GOOS == "windows" {
			name = strings.TrimSuffix(name, ".exe")
		}
		if name == want {
			return a.BrowserDownloadURL
		}
	}
	return ""
}

func (c *Checker) cachePath() string {
	return filepath.Join(c.configDir, "update-check.json")
}

func (c *Checker) loadCache() error {
	data, err := os.ReadFile(c.cachePath())
	if err != nil {
		return err
	}
	var cache checkCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return err
	}
	c.cache = &cache
	return nil
}

func (c *Checker) saveCache() error {
	if c.cache == nil {
		return nil
	}
	data, err := json.Marshal(c.cache)
	if err != nil {
		return err
	}
	return os.WriteFile(c.cachePath(), data, 0600)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
