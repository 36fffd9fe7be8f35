// Package download resolves a requested editor version and platform to a
// ready-to-run local executable, fetching and caching builds from the update
// service on first use.
package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/tidwall/gjson"

	"github.com/qiu8310/vscode-test/internal/cache"
	"github.com/qiu8310/vscode-test/internal/progress"
)

// DefaultServiceURL is the public update service.
const DefaultServiceURL = "https://update.code.visualstudio.com"

// manifestName is the install manifest database inside the cache path.
const manifestName = "installs.db"

// Options configure one resolution.
type Options struct {
	// Version is "", "stable" or "latest" for the newest release, "insiders"
	// for the newest insiders build, an exact version like "1.92.0", or a
	// semver range like "1.90.x" which picks the newest matching release.
	Version string

	// Platform is an update-service identifier; empty means detect from the
	// running OS and architecture.
	Platform string

	// CachePath is where archives are extracted and the install manifest
	// lives. Empty means .vscode-test under the working directory. This is
	// always explicit state, never a package-level default.
	CachePath string

	// ServiceURL overrides the update service, mainly for tests.
	ServiceURL string

	Reporter   progress.Reporter
	HTTPClient *http.Client
}

// Install describes a ready-to-run editor build.
type Install struct {
	Version        string
	Platform       string
	Dir            string // extracted install directory
	ExecutablePath string
	CacheRoot      string // isolation dirs for test runs are created under it
}

// DefaultCachePath returns .vscode-test resolved against the working
// directory.
func DefaultCachePath() string {
	wd, err := os.Getwd()
	if err != nil {
		return ".vscode-test"
	}
	return filepath.Join(wd, ".vscode-test")
}

// Resolve returns a local install for the requested version and platform,
// downloading, verifying and extracting the build on first use. A manifest
// hit whose directory still exists skips the download entirely.
func Resolve(ctx context.Context, opts Options) (*Install, error) {
	rep := opts.Reporter
	if rep == nil {
		rep = progress.Silent{}
	}
	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	serviceURL := strings.TrimSuffix(opts.ServiceURL, "/")
	if serviceURL == "" {
		serviceURL = DefaultServiceURL
	}
	cachePath := opts.CachePath
	if cachePath == "" {
		cachePath = DefaultCachePath()
	}

	platform := opts.Platform
	if platform == "" {
		p, err := DetectPlatform()
		if err != nil {
			return nil, err
		}
		platform = p
	} else if !ValidPlatform(platform) {
		return nil, fmt.Errorf("unknown platform %q", platform)
	}

	version, err := resolveVersion(ctx, client, serviceURL, opts.Version)
	if err != nil {
		return nil, err
	}
	insiders := strings.Contains(version, "insider")
	rep.Stage("resolved", version+" "+platform)

	if err := os.MkdirAll(cachePath, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir %s: %w", cachePath, err)
	}
	store, err := cache.Open(filepath.Join(cachePath, manifestName))
	if err != nil {
		return nil, err
	}
	defer store.Close()

	dir := filepath.Join(cachePath, fmt.Sprintf("vscode-%s-%s", platform, version))
	if known, err := store.Get(ctx, version, platform); err == nil {
		if _, statErr := os.Stat(known.Path); statErr == nil {
			rep.Stage("cached", known.Path)
			return installFor(version, platform, known.Path, cachePath, insiders), nil
		}
	}

	sum, err := fetchAndExtract(ctx, client, rep, serviceURL, version, platform, dir, cachePath)
	if err != nil {
		return nil, err
	}

	if err := store.Put(ctx, &cache.Install{
		Version:      version,
		Platform:     platform,
		Path:         dir,
		SHA256:       sum,
		DownloadedAt: time.Now(),
	}); err != nil {
		return nil, err
	}

	return installFor(version, platform, dir, cachePath, insiders), nil
}

func installFor(version, platform, dir, cacheRoot string, insiders bool) *Install {
	return &Install{
		Version:        version,
		Platform:       platform,
		Dir:            dir,
		ExecutablePath: ExecutablePath(dir, platform, insiders),
		CacheRoot:      cacheRoot,
	}
}

// quality returns the update-service quality channel for a version string.
func quality(version string) string {
	if strings.Contains(version, "insider") {
		return "insider"
	}
	return "stable"
}

// resolveVersion turns the requested version into a concrete published one.
func resolveVersion(ctx context.Context, client *http.Client, serviceURL, requested string) (string, error) {
	switch requested {
	case "", "stable", "latest":
		return newestRelease(ctx, client, serviceURL, "stable")
	case "insiders":
		return newestRelease(ctx, client, serviceURL, "insider")
	}

	if _, err := semver.StrictNewVersion(strings.TrimSuffix(requested, "-insider")); err == nil {
		return requested, nil
	}

	// A range like "1.90.x" picks the newest published release satisfying it.
	c, err := semver.NewConstraint(requested)
	if err != nil {
		return "", fmt.Errorf("invalid version %q: %w", requested, err)
	}
	versions, err := fetchReleases(ctx, client, serviceURL, "stable")
	if err != nil {
		return "", err
	}
	for _, v := range versions {
		sv, err := semver.NewVersion(v)
		if err != nil {
			continue
		}
		if c.Check(sv) {
			return v, nil
		}
	}
	return "", fmt.Errorf("no released version satisfies %q", requested)
}

func newestRelease(ctx context.Context, client *http.Client, serviceURL, channel string) (string, error) {
	versions, err := fetchReleases(ctx, client, serviceURL, channel)
	if err != nil {
		return "", err
	}
	if len(versions) == 0 {
		return "", fmt.Errorf("update service returned no %s releases", channel)
	}
	return versions[0], nil
}

// fetchReleases returns the published versions for a channel, newest first.
func fetchReleases(ctx context.Context, client *http.Client, serviceURL, channel string) ([]string, error) {
	body, err := get(ctx, client, serviceURL+"/api/releases/"+channel)
	if err != nil {
		return nil, fmt.Errorf("listing %s releases: %w", channel, err)
	}
	parsed := gjson.ParseBytes(body)
	if !parsed.IsArray() {
		return nil, fmt.Errorf("listing %s releases: unexpected response shape", channel)
	}
	var out []string
	for _, v := range parsed.Array() {
		out = append(out, v.String())
	}
	return out, nil
}

// fetchSHA256 returns the digest the update service publishes for a build,
// or "" when the service does not know one.
func fetchSHA256(ctx context.Context, client *http.Client, serviceURL, version, platform string) (string, error) {
	url := fmt.Sprintf("%s/api/versions/%s/%s/%s", serviceURL, version, platform, quality(version))
	body, err := get(ctx, client, url)
	if err != nil {
		return "", nil // metadata endpoint is best effort
	}
	return gjson.GetBytes(body, "sha256hash").String(), nil
}

func fetchAndExtract(ctx context.Context, client *http.Client, rep progress.Reporter, serviceURL, version, platform, dir, cachePath string) (string, error) {
	expected, _ := fetchSHA256(ctx, client, serviceURL, version, platform)

	url := fmt.Sprintf("%s/%s/%s/%s", serviceURL, version, platform, quality(version))
	rep.Stage("downloading", url)

	archivePath := filepath.Join(cachePath, fmt.Sprintf("vscode-%s-%s%s", platform, version, archiveExt(platform)))
	sum, err := downloadArchive(ctx, client, rep, url, archivePath)
	if err != nil {
		return "", err
	}
	defer os.Remove(archivePath)

	if expected != "" && !strings.EqualFold(sum, expected) {
		return "", fmt.Errorf("archive %s: sha256 mismatch: got %s, want %s", archivePath, sum, expected)
	}

	rep.Stage("extracting", dir)
	if err := os.RemoveAll(dir); err != nil {
		return "", fmt.Errorf("clearing %s: %w", dir, err)
	}
	if err := Extract(archivePath, dir); err != nil {
		return "", err
	}
	return sum, nil
}

// downloadArchive streams url into dest, reporting progress and returning
// the hex SHA-256 of the bytes written.
func downloadArchive(ctx context.Context, client *http.Client, rep progress.Reporter, url, dest string) (string, error) {
	body, length, err := getStream(ctx, client, url)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", url, err)
	}
	defer body.Close()

	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", dest, err)
	}
	h := sha256.New()
	pw := &progressWriter{rep: rep, total: length}
	if _, err := io.Copy(io.MultiWriter(f, h, pw), body); err != nil {
		f.Close()
		return "", fmt.Errorf("writing %s: %w", dest, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", dest, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func get(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	body, _, err := getStream(ctx, client, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return io.ReadAll(body)
}

func getStream(ctx context.Context, client *http.Client, url string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, 0, fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	return resp.Body, resp.ContentLength, nil
}

type progressWriter struct {
	rep      progress.Reporter
	received int64
	total    int64
}

func (w *progressWriter) Write(p []byte) (int, error) {
	w.received += int64(len(p))
	w.rep.Progress(w.received, w.total)
	return len(p), nil
}
