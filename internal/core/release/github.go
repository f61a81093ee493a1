// Package release asks the GitHub REST API for the newest published
// versions of the docuisine repositories.
package release

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const DefaultAPI = "https://api.github.com"

type GitHub struct {
	BaseURL string
	HTTP    *http.Client
}

func NewGitHub(baseURL string) *GitHub {
	if baseURL == "" {
		baseURL = DefaultAPI
	}
	return &GitHub{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 5 * time.Second},
	}
}

// LatestRelease returns the tag name of repo's latest release ("owner/name").
func (g *GitHub) LatestRelease(ctx context.Context, repo string) (string, error) {
	return g.field(ctx, "/repos/"+repo+"/releases/latest", "tag_name")
}

// LatestCommit returns the head commit sha of branch.
func (g *GitHub) LatestCommit(ctx context.Context, repo, branch string) (string, error) {
	if branch == "" {
		branch = "master"
	}
	return g.field(ctx, "/repos/"+repo+"/commits/"+branch, "sha")
}

func (g *GitHub) field(ctx context.Context, path, key string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.BaseURL+path, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "docuisine")

	res, err := g.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("github %s: %w", path, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("github %s: read body: %w", path, err)
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("github %s: status %d: %s", path, res.StatusCode, gjson.GetBytes(body, "message").String())
	}
	v := gjson.GetBytes(body, key)
	if !v.Exists() || v.String() == "" {
		return "", fmt.Errorf("github %s: no %s in response", path, key)
	}
	return v.String(), nil
}
