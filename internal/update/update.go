// Package update asks GitHub whether a newer pulse release exists.
package update

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const LatestReleaseURL = "https://api.github.com/repos/amberorigin46/news-ai-auto/releases/latest"

// Result holds the outcome of a version check.
type Result struct {
	LatestVersion string
	URL           string
}

// Checker looks up the latest release at URL.
type Checker struct {
	URL    string
	Client *http.Client
}

// Check returns nil when the current version is the latest or the lookup
// failed. A version check never blocks the command that asked for it.
func (c Checker) Check(ctx context.Context, currentVersion string) *Result {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	url := c.URL
	if url == "" {
		url = LatestReleaseURL
	}
	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || !gjson.ValidBytes(body) {
		return nil
	}

	release := gjson.ParseBytes(body)
	latest := strings.TrimPrefix(release.Get("tag_name").String(), "v")
	current := strings.TrimPrefix(currentVersion, "v")

	if latest == "" || latest == current || current == "dev" {
		return nil
	}
	return &Result{LatestVersion: latest, URL: release.Get("html_url").String()}
}
