// Package branding provides compile-time identity values for the CLI.
//
// Forks edit branding.yaml in this package before building; Go's //go:embed
// bakes it into the binary. Hard defaults cover a missing or partial file.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName         string `yaml:"cli_name"`
	DisplayName     string `yaml:"display_name"`
	Description     string `yaml:"description"`
	HomeDir         string `yaml:"home_dir"`
	EnvPrefix       string `yaml:"env_prefix"`
	GoModule        string `yaml:"go_module"`
	DependencyRepo  string `yaml:"dependency_repo"`
	DependencyAsset string `yaml:"dependency_asset"`
}

func load() {
	once.Do(func() {
		defaults = brand{
			CLIName:         "modkit",
			DisplayName:     "KCD ModKit",
			Description:     "Scaffold Kingdom Come Deliverance Lua mods",
			HomeDir:         ".modkit",
			EnvPrefix:       "MODKIT",
			GoModule:        "github.com/kcd-modkit/modkit",
			DependencyRepo:  "Destuur/KCDUtils",
			DependencyAsset: "kcdutils.zip",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "modkit").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".modkit").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "MODKIT").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GoModule returns the Go module path. Not consumed at runtime.
func GoModule() string { load(); return defaults.GoModule }

// DependencyRepo returns the "owner/repo" publishing the companion library.
func DependencyRepo() string { load(); return defaults.DependencyRepo }

// DependencyAsset returns the release asset name of the companion library.
func DependencyAsset() string { load(); return defaults.DependencyAsset }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("HOME") → "MODKIT_HOME".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}

// UserAgent returns the User-Agent sent on HTTP requests.
func UserAgent(version string) string {
	load()
	return defaults.CLIName + "/" + version
}
