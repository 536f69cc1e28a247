package project

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/kcd-modkit/modkit/internal/platform"
)

// FileName is the record's name inside the mod folder.
const FileName = ".modkit.yaml"

// Record describes a scaffolded mod and the dependency it was built against.
type Record struct {
	Name       string     `yaml:"name"`
	Slug       string     `yaml:"slug"`
	Symbol     string     `yaml:"symbol"`
	Created    string     `yaml:"created"`
	Dependency Dependency `yaml:"dependency"`
}

// Dependency identifies the extracted companion library.
type Dependency struct {
	Repo    string `yaml:"repo"`
	Asset   string `yaml:"asset"`
	Version string `yaml:"version,omitempty"`
	Root    string `yaml:"root,omitempty"` // relative to the mod folder
	Digest  string `yaml:"digest,omitempty"`
}

// Path returns the full path to the record for a mod folder.
func Path(modDir string) string {
	return filepath.Join(modDir, FileName)
}

// Load reads and parses the record from modDir.
func Load(modDir string) (*Record, error) {
	data, err := os.ReadFile(Path(modDir))
	if err != nil {
		return nil, fmt.Errorf("reading project record: %w", err)
	}

	var rec Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing project record: %w", err)
	}
	return &rec, nil
}

// Save writes the record into modDir.
func Save(modDir string, rec *Record) error {
	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling project record: %w", err)
	}

	if err := platform.WriteFileAtomic(Path(modDir), data, platform.FilePerm); err != nil {
		return fmt.Errorf("writing project record: %w", err)
	}
	return nil
}

// DependencyDir resolves the recorded dependency root against modDir.
func (r *Record) DependencyDir(modDir string) string {
	if r.Dependency.Root == "" {
		return ""
	}
	if filepath.IsAbs(r.Dependency.Root) {
		return r.Dependency.Root
	}
	return filepath.Join(modDir, filepath.FromSlash(r.Dependency.Root))
}
