//go:build integration

package integration_test

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/klauspost/compress/zip"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	HomeDir string // HOME; holds ~/.modkit
	RootDir string // the folder mods are created in
}

// setupTestEnv creates isolated temp directories so no run touches the real
// home directory.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		HomeDir: t.TempDir(),
		RootDir: t.TempDir(),
	}
	t.Setenv("HOME", env.HomeDir)
	t.Setenv("GITHUB_TOKEN", "")
	return env
}

// fakeGitHub serves a "latest release" for Destuur/KCDUtils whose tag and
// archive contents can be swapped between runs.
type fakeGitHub struct {
	*httptest.Server

	mu      sync.Mutex
	tag     string
	archive []byte
}

func newFakeGitHub(t *testing.T, tag string, files map[string]string) *fakeGitHub {
	t.Helper()
	g := &fakeGitHub{}
	g.publish(t, tag, files)

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/Destuur/KCDUtils/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		g.mu.Lock()
		defer g.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"tag_name":%q,"assets":[{"name":"README.md","browser_download_url":"%s/dl/README.md"},{"name":"kcdutils.zip","browser_download_url":"%s/dl/%s/kcdutils.zip","size":%d}]}`,
			g.tag, g.URL, g.URL, g.tag, len(g.archive))
	})
	mux.HandleFunc("/dl/", func(w http.ResponseWriter, r *http.Request) {
		g.mu.Lock()
		defer g.mu.Unlock()
		if !strings.HasSuffix(r.URL.Path, "/"+g.tag+"/kcdutils.zip") {
			http.NotFound(w, r)
			return
		}
		w.Write(g.archive)
	})
	g.Server = httptest.NewServer(mux)
	t.Cleanup(g.Close)
	return g
}

// publish replaces the latest release with tag and a zip of files.
func (g *fakeGitHub) publish(t *testing.T, tag string, files map[string]string) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("creating zip entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("writing zip entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing zip: %v", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.tag = tag
	g.archive = buf.Bytes()
}

// writeFile creates a file with the given content, creating parent dirs as needed.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s", path)
	}
}

func assertContains(t *testing.T, path, want string) {
	t.Helper()
	if got := readFile(t, path); !strings.Contains(got, want) {
		t.Errorf("%s does not contain %q:\n%s", path, want, got)
	}
}
