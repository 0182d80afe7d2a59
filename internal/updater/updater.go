// Package updater checks GitHub Releases for a newer desktop build,
// downloads it, and stages the binary swap. Progress surfaces as bus
// events; the tray tooltip and settings window render them.
package updater

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/palefire-io/palefire/internal/buildinfo"
	"github.com/palefire-io/palefire/internal/config"
	"github.com/palefire-io/palefire/internal/shell/event"
)

const (
	defaultReleasesURL = "https://api.github.com/repos/palefire-io/palefire/releases/latest"
	checkInterval      = 6 * time.Hour
)

// ReleaseInfo is the GitHub release payload we consume.
type ReleaseInfo struct {
	TagName string  `json:"tag_name"`
	HTMLURL string  `json:"html_url"`
	Assets  []Asset `json:"assets"`
}

// Asset is one downloadable file in a release.
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Size               int64  `json:"size"`
}

// Result is the outcome of one update check.
type Result struct {
	Available      bool
	CurrentVersion string
	LatestVersion  string
	ReleaseURL     string
	Release        *ReleaseInfo
}

// Service runs periodic update checks and downloads.
type Service struct {
	bus         *event.Bus
	store       *config.Store
	log         *zap.Logger
	client      *http.Client
	releasesURL string
}

// New builds the service. The bus may be nil for CLI one-shot checks.
func New(bus *event.Bus, store *config.Store, log *zap.Logger) *Service {
	return &Service{
		bus:         bus,
		store:       store,
		log:         log,
		client:      &http.Client{Timeout: 30 * time.Second},
		releasesURL: defaultReleasesURL,
	}
}

// Start begins the periodic check loop if the user has startup checks
// enabled. Runs until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	if !s.store.Snapshot().Updates.CheckOnStartup {
		s.log.Debug("startup update checks disabled")
		return
	}
	go s.loop(ctx)
}

func (s *Service) loop(ctx context.Context) {
	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()

	s.checkAndMaybeDownload(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkAndMaybeDownload(ctx)
		}
	}
}

func (s *Service) checkAndMaybeDownload(ctx context.Context) {
	result, err := s.Check(ctx)
	if err != nil {
		s.log.Warn("update check failed", zap.Error(err))
		s.publish(event.Event{Kind: event.KindUpdateError, Message: err.Error()})
		return
	}
	if !result.Available {
		return
	}
	if !s.store.Snapshot().Updates.AutoDownload {
		return
	}
	path, err := s.Download(ctx, result)
	if err != nil {
		s.log.Warn("update download failed", zap.Error(err))
		s.publish(event.Event{Kind: event.KindUpdateError, Message: err.Error()})
		return
	}
	s.log.Info("update staged",
		zap.String("version", result.LatestVersion),
		zap.String("path", path))
}

// Check queries the releases API and reports whether a newer version
// exists. An unparseable current version ("dev" builds) counts as
// older than any release.
func (s *Service) Check(ctx context.Context) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.releasesURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "palefire/"+buildinfo.Version)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch releases: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// No releases published yet.
		return &Result{CurrentVersion: buildinfo.Version}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("releases API returned %d", resp.StatusCode)
	}

	var release ReleaseInfo
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("decode release: %w", err)
	}

	latestVersion := strings.TrimPrefix(release.TagName, "v")
	result := &Result{
		CurrentVersion: buildinfo.Version,
		LatestVersion:  latestVersion,
		ReleaseURL:     release.HTMLURL,
		Release:        &release,
	}

	current, err := ParseVersion(buildinfo.Version)
	if err != nil {
		result.Available = true
	} else {
		latest, err := ParseVersion(latestVersion)
		if err != nil {
			return nil, fmt.Errorf("parse latest version %q: %w", latestVersion, err)
		}
		result.Available = current.Older(latest)
	}

	if result.Available {
		s.publish(event.Event{Kind: event.KindUpdateAvailable, Version: latestVersion})
	}
	return result, nil
}

// Download fetches the platform asset to a temp file and returns its
// path. Progress events fire roughly per percent.
func (s *Service) Download(ctx context.Context, result *Result) (string, error) {
	asset := FindAsset(result.Release, AssetName())
	if asset == nil {
		return "", fmt.Errorf("release %s has no asset %q", result.LatestVersion, AssetName())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset.BrowserDownloadURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download asset: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download returned %d", resp.StatusCode)
	}

	tmpFile, err := os.CreateTemp("", "palefire-update-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	if err := s.copyWithProgress(tmpFile, resp.Body, asset.Size); err != nil {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	tmpFile.Close()

	if err := os.Chmod(tmpFile.Name(), 0755); err != nil {
		os.Remove(tmpFile.Name())
		return "", fmt.Errorf("chmod temp file: %w", err)
	}

	s.publish(event.Event{Kind: event.KindUpdateDownloaded, Version: result.LatestVersion})
	return tmpFile.Name(), nil
}

func (s *Service) copyWithProgress(dst io.Writer, src io.Reader, total int64) error {
	buf := make([]byte, 64*1024)
	var written int64
	lastPercent := -1
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return werr
			}
			written += int64(n)
			if total > 0 {
				percent := int(written * 100 / total)
				if percent != lastPercent {
					lastPercent = percent
					s.publish(event.Event{Kind: event.KindUpdateProgress, Percent: percent})
				}
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (s *Service) publish(ev event.Event) {
	if s.bus != nil {
		s.bus.Publish(ev)
	}
}

// AssetName is the release asset for this platform.
func AssetName() string {
	return fmt.Sprintf("palefire-%s-%s", runtime.GOOS, runtime.GOARCH)
}

// FindAsset finds a release asset by name.
func FindAsset(release *ReleaseInfo, name string) *Asset {
	if release == nil {
		return nil
	}
	for i := range release.Assets {
		if release.Assets[i].Name == name {
			return &release.Assets[i]
		}
	}
	return nil
}

// ReplaceBinary swaps the running binary for the staged one, keeping a
// backup until the swap sticks.
func ReplaceBinary(destPath, newPath string) error {
	destPath, err := filepath.EvalSymlinks(destPath)
	if err != nil {
		return fmt.Errorf("resolve symlink: %w", err)
	}

	bakPath := destPath + ".bak"
	os.Remove(bakPath)

	if err := os.Rename(destPath, bakPath); err != nil {
		return fmt.Errorf("backup old binary: %w", err)
	}
	if err := os.Rename(newPath, destPath); err != nil {
		_ = os.Rename(bakPath, destPath)
		return fmt.Errorf("install new binary: %w", err)
	}
	os.Remove(bakPath)
	return nil
}
