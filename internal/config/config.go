package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/kcd-modkit/modkit/internal/branding"
	"github.com/kcd-modkit/modkit/internal/platform"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Recognized keys.
const (
	KeyDependencyRepo    = "dependency.repo"
	KeyDependencyAsset   = "dependency.asset"
	KeyDependencyFolder  = "dependency.folder"
	KeyDependencyLibrary = "dependency.library"
	KeyAPIBase           = "api_base"
	KeyMirror            = "mirror"
	KeyGitHubToken       = "github_token"
	KeyHTTPTimeout       = "http_timeout"
	KeyLogLevel          = "log_level"
	KeyTemplatesDir      = "templates_dir"
)

// Settings is the resolved configuration used by one invocation.
type Settings struct {
	DependencyRepo    string
	DependencyAsset   string
	DependencyFolder  string
	DependencyLibrary string
	APIBase           string
	Mirror            string
	GitHubToken       string
	HTTPTimeout       time.Duration
	LogLevel          string
	TemplatesDir      string
}

func defaults() map[string]any {
	return map[string]any{
		KeyDependencyRepo:    branding.DependencyRepo(),
		KeyDependencyAsset:   branding.DependencyAsset(),
		KeyDependencyFolder:  "kcdutils",
		KeyDependencyLibrary: "Data/kcdutils/Scripts/Mods/Utils",
		KeyAPIBase:           "https://api.github.com",
		KeyMirror:            "",
		KeyGitHubToken:       "",
		KeyHTTPTimeout:       "10m",
		KeyLogLevel:          "warn",
		KeyTemplatesDir:      "",
	}
}

// Keys returns every recognized key, sorted.
func Keys() []string {
	keys := make([]string, 0, len(defaults()))
	for k := range defaults() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Known reports whether key is a recognized configuration key.
func Known(key string) bool {
	return slices.Contains(Keys(), strings.ToLower(key))
}

// Dir returns the path to the config directory (~/.modkit/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.modkit/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, platform.DirPerm); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
// A missing config file is not an error; an unreadable one is.
func Load() error {
	for k, v := range defaults() {
		viper.SetDefault(k, v)
	}
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv(KeyGitHubToken, branding.EnvVar(KeyGitHubToken), "GITHUB_TOKEN")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", FilePath(), err)
	}
	return nil
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Current resolves all recognized keys into Settings.
func Current() Settings {
	return Settings{
		DependencyRepo:    viper.GetString(KeyDependencyRepo),
		DependencyAsset:   viper.GetString(KeyDependencyAsset),
		DependencyFolder:  viper.GetString(KeyDependencyFolder),
		DependencyLibrary: viper.GetString(KeyDependencyLibrary),
		APIBase:           viper.GetString(KeyAPIBase),
		Mirror:            viper.GetString(KeyMirror),
		GitHubToken:       viper.GetString(KeyGitHubToken),
		HTTPTimeout:       viper.GetDuration(KeyHTTPTimeout),
		LogLevel:          viper.GetString(KeyLogLevel),
		TemplatesDir:      viper.GetString(KeyTemplatesDir),
	}
}

// Set writes a config key-value pair and saves the config file. Only the
// file's own keys are persisted; defaults and environment values are not.
func Set(key, value string) error {
	key = strings.ToLower(key)
	if !Known(key) {
		return fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(Keys(), ", "))
	}
	if key == KeyHTTPTimeout {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
	}
	if err := EnsureDir(); err != nil {
		return err
	}

	configFile := FilePath()
	file := viper.New()
	file.SetConfigFile(configFile)
	file.SetConfigType(fileType)
	if err := file.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading config file %s: %w", configFile, err)
	}
	file.Set(key, value)

	if err := file.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	viper.Set(key, value)
	return nil
}
