package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func setupHome(t *testing.T) string {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("MODKIT_GITHUB_TOKEN", "")
	return home
}

func TestLoad_Defaults(t *testing.T) {
	setupHome(t)
	if err := Load(); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	s := Current()
	if s.DependencyRepo != "Destuur/KCDUtils" {
		t.Errorf("DependencyRepo = %q", s.DependencyRepo)
	}
	if s.DependencyAsset != "kcdutils.zip" {
		t.Errorf("DependencyAsset = %q", s.DependencyAsset)
	}
	if s.DependencyLibrary != "Data/kcdutils/Scripts/Mods/Utils" {
		t.Errorf("DependencyLibrary = %q", s.DependencyLibrary)
	}
	if s.HTTPTimeout != 10*time.Minute {
		t.Errorf("HTTPTimeout = %v", s.HTTPTimeout)
	}
	if s.LogLevel != "warn" {
		t.Errorf("LogLevel = %q", s.LogLevel)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	setupHome(t)
	t.Setenv("MODKIT_DEPENDENCY_ASSET", "other.zip")
	t.Setenv("GITHUB_TOKEN", "ghp_test")

	if err := Load(); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	s := Current()
	if s.DependencyAsset != "other.zip" {
		t.Errorf("DependencyAsset = %q, want other.zip", s.DependencyAsset)
	}
	if s.GitHubToken != "ghp_test" {
		t.Errorf("GitHubToken = %q, want ghp_test", s.GitHubToken)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	home := setupHome(t)
	dir := filepath.Join(home, ".modkit")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("mirror: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Load(); err == nil {
		t.Fatal("expected error for malformed config file")
	}
}

func TestSet_PersistsOnlyFileKeys(t *testing.T) {
	home := setupHome(t)
	if err := Load(); err != nil {
		t.Fatal(err)
	}

	if err := Set("mirror", "https://mirror.example.com"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if got := Get("mirror"); got != "https://mirror.example.com" {
		t.Errorf("Get(mirror) = %q", got)
	}

	data, err := os.ReadFile(filepath.Join(home, ".modkit", "config.yaml"))
	if err != nil {
		t.Fatalf("reading config file: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "mirror:") || !strings.Contains(content, "mirror.example.com") {
		t.Errorf("config file missing mirror:\n%s", content)
	}
	if strings.Contains(content, "api_base") {
		t.Errorf("config file should not persist defaults:\n%s", content)
	}

	// A fresh load sees the persisted value.
	viper.Reset()
	if err := Load(); err != nil {
		t.Fatal(err)
	}
	if got := Current().Mirror; got != "https://mirror.example.com" {
		t.Errorf("reloaded Mirror = %q", got)
	}
}

func TestSet_Rejects(t *testing.T) {
	setupHome(t)
	if err := Load(); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		key, value string
	}{
		{"no_such_key", "x"},
		{"http_timeout", "soon"},
	}
	for _, tt := range tests {
		if err := Set(tt.key, tt.value); err == nil {
			t.Errorf("Set(%q, %q) expected error", tt.key, tt.value)
		}
	}
}
