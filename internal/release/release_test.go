package release

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/kcd-modkit/modkit/internal/fault"
)

const latestJSON = `{
  "tag_name": "v0.0.2",
  "name": "KCDUtils 0.0.2",
  "html_url": "https://github.com/Destuur/KCDUtils/releases/tag/v0.0.2",
  "assets": [
    {"name": "kcdutils-src.zip", "browser_download_url": "https://example.com/src.zip", "size": 10},
    {"name": "kcdutils.zip", "browser_download_url": "https://example.com/kcdutils.zip", "size": 20},
    {"name": "kcdutils.zip", "browser_download_url": "https://example.com/duplicate.zip", "size": 30}
  ]
}`

// recorder keeps the requests a test server has received.
type recorder struct {
	mu   sync.Mutex
	reqs []*http.Request
}

func (r *recorder) add(req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, req.Clone(context.Background()))
}

func (r *recorder) all() []*http.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*http.Request(nil), r.reqs...)
}

func newReleaseServer(t *testing.T, status int, body string) (*httptest.Server, *recorder) {
	t.Helper()
	seen := &recorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.add(r)
		if r.URL.Path != "/repos/Destuur/KCDUtils/releases/latest" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server, seen
}

func TestResolveLatestAssetURL(t *testing.T) {
	server, seen := newReleaseServer(t, http.StatusOK, latestJSON)
	c := New(WithHTTPClient(server.Client()), WithAPIBase(server.URL))

	url, err := c.ResolveLatestAssetURL(context.Background(), "Destuur", "KCDUtils", "kcdutils.zip")
	if err != nil {
		t.Fatalf("ResolveLatestAssetURL() error: %v", err)
	}
	if url != "https://example.com/kcdutils.zip" {
		t.Errorf("url = %q, want first matching asset", url)
	}
	reqs := seen.all()
	if len(reqs) != 1 {
		t.Fatalf("requests = %d, want exactly 1", len(reqs))
	}

	req := reqs[0]
	if got := req.Header.Get("Accept"); got != "application/vnd.github+json" {
		t.Errorf("Accept = %q", got)
	}
	if got := req.Header.Get("Authorization"); got != "" {
		t.Errorf("Authorization = %q, want none without a token", got)
	}
}

func TestResolveLatestAssetMissing(t *testing.T) {
	server, _ := newReleaseServer(t, http.StatusOK, latestJSON)
	c := New(WithHTTPClient(server.Client()), WithAPIBase(server.URL))

	url, err := c.ResolveLatestAssetURL(context.Background(), "Destuur", "KCDUtils", "missing.zip")
	if err == nil {
		t.Fatalf("expected error, got url %q", url)
	}
	if !fault.IsKind(err, fault.KindAssetNotFound) {
		t.Errorf("error kind = %q, want %q", fault.KindOf(err), fault.KindAssetNotFound)
	}
	if url != "" {
		t.Errorf("url = %q, want empty", url)
	}
}

func TestResolveLatestAssetCaseSensitive(t *testing.T) {
	server, _ := newReleaseServer(t, http.StatusOK, latestJSON)
	c := New(WithHTTPClient(server.Client()), WithAPIBase(server.URL))

	_, err := c.ResolveLatestAssetURL(context.Background(), "Destuur", "KCDUtils", "KCDUtils.zip")
	if !fault.IsKind(err, fault.KindAssetNotFound) {
		t.Errorf("expected asset_not_found for differently cased name, got %v", err)
	}
}

func TestLatestReleaseStatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"not found", http.StatusNotFound},
		{"rate limited", http.StatusForbidden},
		{"server error", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := newReleaseServer(t, tt.status, `{"message":"nope"}`)
			c := New(WithHTTPClient(server.Client()), WithAPIBase(server.URL))

			_, err := c.ResolveLatestAssetURL(context.Background(), "Destuur", "KCDUtils", "kcdutils.zip")
			if !fault.IsKind(err, fault.KindNetwork) {
				t.Fatalf("error kind = %q, want %q (err: %v)", fault.KindOf(err), fault.KindNetwork, err)
			}
		})
	}
}

func TestLatestReleaseMalformedJSON(t *testing.T) {
	server, _ := newReleaseServer(t, http.StatusOK, `{"assets": [`)
	c := New(WithHTTPClient(server.Client()), WithAPIBase(server.URL))

	_, err := c.LatestRelease(context.Background(), "Destuur", "KCDUtils")
	if !fault.IsKind(err, fault.KindNetwork) {
		t.Errorf("error kind = %q, want %q", fault.KindOf(err), fault.KindNetwork)
	}
}

func TestLatestReleaseUnreachable(t *testing.T) {
	server, _ := newReleaseServer(t, http.StatusOK, latestJSON)
	base := server.URL
	server.Close()

	c := New(WithAPIBase(base))
	_, err := c.LatestRelease(context.Background(), "Destuur", "KCDUtils")
	if !fault.IsKind(err, fault.KindNetwork) {
		t.Errorf("error kind = %q, want %q", fault.KindOf(err), fault.KindNetwork)
	}
}

func TestMirrorAndToken(t *testing.T) {
	server, seen := newReleaseServer(t, http.StatusOK, latestJSON)
	c := New(
		WithHTTPClient(server.Client()),
		WithAPIBase(server.URL+"/"),
		WithMirror("https://mirror.example.com/kcd/"),
		WithToken("secret"),
		WithUserAgent("modkit-test"),
	)

	rel, err := c.LatestRelease(context.Background(), "Destuur", "KCDUtils")
	if err != nil {
		t.Fatalf("LatestRelease() error: %v", err)
	}
	if rel.Version != "v0.0.2" {
		t.Errorf("Version = %q, want v0.0.2", rel.Version)
	}
	if got := rel.Asset("kcdutils.zip").DownloadURL; got != "https://mirror.example.com/kcd/kcdutils.zip" {
		t.Errorf("mirrored URL = %q", got)
	}

	req := seen.all()[0]
	if got := req.Header.Get("Authorization"); got != "token secret" {
		t.Errorf("Authorization = %q", got)
	}
	if got := req.Header.Get("User-Agent"); got != "modkit-test" {
		t.Errorf("User-Agent = %q", got)
	}
}

func TestParseRepo(t *testing.T) {
	tests := []struct {
		in        string
		owner     string
		repo      string
		wantError bool
	}{
		{"Destuur/KCDUtils", "Destuur", "KCDUtils", false},
		{" owner/repo ", "owner", "repo", false},
		{"noslash", "", "", true},
		{"/repo", "", "", true},
		{"owner/", "", "", true},
		{"a/b/c", "", "", true},
	}

	for _, tt := range tests {
		owner, repo, err := ParseRepo(tt.in)
		if (err != nil) != tt.wantError {
			t.Errorf("ParseRepo(%q) error = %v, wantError %v", tt.in, err, tt.wantError)
			continue
		}
		if owner != tt.owner || repo != tt.repo {
			t.Errorf("ParseRepo(%q) = %q, %q", tt.in, owner, repo)
		}
	}
}
