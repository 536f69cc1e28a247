package release

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultAPIBase is the public GitHub REST API.
const DefaultAPIBase = "https://api.github.com"

// Release represents a GitHub release.
type Release struct {
	Version   string    `json:"tag_name"`
	Name      string    `json:"name"`
	Assets    []Asset   `json:"assets"`
	Published time.Time `json:"published_at"`
	HTMLURL   string    `json:"html_url"`
}

// Asset represents a downloadable file attached to a release.
type Asset struct {
	Name        string `json:"name"`
	DownloadURL string `json:"browser_download_url"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// Asset returns the first asset whose name equals name exactly, or nil.
func (r *Release) Asset(name string) *Asset {
	for i := range r.Assets {
		if r.Assets[i].Name == name {
			return &r.Assets[i]
		}
	}
	return nil
}

// Client queries release metadata.
type Client struct {
	httpClient *http.Client
	apiBase    string
	mirror     string
	token      string
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithAPIBase points the client at a different API root, e.g. a GitHub
// Enterprise host or a test server.
func WithAPIBase(base string) Option {
	return func(cl *Client) {
		if base != "" {
			cl.apiBase = strings.TrimRight(base, "/")
		}
	}
}

// WithMirror rewrites every asset download URL to <mirror>/<asset name>.
func WithMirror(mirror string) Option {
	return func(cl *Client) {
		cl.mirror = mirror
	}
}

// WithToken sends a GitHub token for higher rate limits.
func WithToken(token string) Option {
	return func(cl *Client) {
		cl.token = token
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(cl *Client) {
		if ua != "" {
			cl.userAgent = ua
		}
	}
}

// New creates a Client with the given options.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		apiBase:    DefaultAPIBase,
		userAgent:  "modkit",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ParseRepo splits "owner/repo" into its parts.
func ParseRepo(s string) (owner, repo string, err error) {
	owner, repo, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("invalid repository %q: want owner/repo", s)
	}
	return owner, repo, nil
}
