package release

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/kcd-modkit/modkit/internal/fault"
)

// LatestURL returns the "latest release" metadata endpoint for owner/repo.
func (c *Client) LatestURL(owner, repo string) string {
	return fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.apiBase, url.PathEscape(owner), url.PathEscape(repo))
}

// LatestRelease fetches the newest published release of owner/repo.
func (c *Client) LatestRelease(ctx context.Context, owner, repo string) (*Release, error) {
	endpoint := c.LatestURL(owner, repo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fault.Network("release.latest", endpoint, fmt.Errorf("creating request: %w", err))
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fault.Network("release.latest", endpoint, fmt.Errorf("fetching release: %w", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fault.Network("release.latest", endpoint,
			fmt.Errorf("no published release for %s/%s (status 404)", owner, repo))
	case resp.StatusCode == http.StatusForbidden:
		return nil, fault.Network("release.latest", endpoint,
			fmt.Errorf("GitHub API rate limit exceeded (status 403). Set GITHUB_TOKEN for higher limits"))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fault.Network("release.latest", endpoint,
			fmt.Errorf("GitHub API returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fault.Network("release.latest", endpoint, fmt.Errorf("reading response body: %w", err))
	}

	var rel Release
	if err := json.Unmarshal(body, &rel); err != nil {
		return nil, fault.Network("release.latest", endpoint, fmt.Errorf("parsing release JSON: %w", err))
	}

	// If a mirror is configured, rewrite asset download URLs.
	if c.mirror != "" {
		for i := range rel.Assets {
			rel.Assets[i].DownloadURL = strings.TrimRight(c.mirror, "/") + "/" + rel.Assets[i].Name
		}
	}

	return &rel, nil
}

// ResolveLatestAsset returns the latest release of owner/repo together with
// its asset named assetName. The name match is exact and case-sensitive; the
// first match wins.
func (c *Client) ResolveLatestAsset(ctx context.Context, owner, repo, assetName string) (*Release, *Asset, error) {
	rel, err := c.LatestRelease(ctx, owner, repo)
	if err != nil {
		return nil, nil, err
	}

	asset := rel.Asset(assetName)
	if asset == nil {
		return rel, nil, &fault.OpError{
			Op:   "release.asset",
			Kind: fault.KindAssetNotFound,
			URL:  c.LatestURL(owner, repo),
			Err:  fmt.Errorf("release %s of %s/%s has no asset named %q", rel.Version, owner, repo, assetName),
		}
	}
	return rel, asset, nil
}

// ResolveLatestAssetURL returns only the download URL of the asset.
func (c *Client) ResolveLatestAssetURL(ctx context.Context, owner, repo, assetName string) (string, error) {
	_, asset, err := c.ResolveLatestAsset(ctx, owner, repo, assetName)
	if err != nil {
		return "", err
	}
	return asset.DownloadURL, nil
}
