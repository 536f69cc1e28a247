package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"

	"github.com/tidwall/jsonc"
	"go.uber.org/zap"

	"github.com/kcd-modkit/modkit/internal/fault"
	"github.com/kcd-modkit/modkit/internal/platform"
)

// Document is a persisted configuration document.
type Document map[string]any

// Patch holds proposed updates. Slice values are unioned with the existing
// sequence at the same key; any other value replaces the existing one.
type Patch map[string]any

// Outcome describes what a merge did to the file on disk.
type Outcome struct {
	Path      string
	Recovered bool // the existing file was unparseable and treated as empty
	Changed   bool // the file was (re)written
}

// Merger applies patches to documents on disk.
type Merger struct {
	logger *zap.Logger
}

// NewMerger returns a Merger that reports recovered documents to logger.
// A nil logger discards them.
func NewMerger(logger *zap.Logger) *Merger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Merger{logger: logger}
}

// Merge applies patch to the document at targetDir/relPath, creating the file
// and its parent directory if absent.
func (m *Merger) Merge(targetDir, relPath string, patch Patch) (Outcome, error) {
	path := filepath.Join(targetDir, relPath)
	out := Outcome{Path: path}

	if err := os.MkdirAll(filepath.Dir(path), platform.DirPerm); err != nil {
		return out, fault.FileSystem("settings.mkdir", filepath.Dir(path), err)
	}

	raw, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return out, fault.FileSystem("settings.read", path, err)
	}

	existing, parseErr := Parse(raw)
	if parseErr != nil {
		out.Recovered = true
		existing = Document{}
		m.logger.Warn("settings document unreadable, treating as empty",
			zap.String("path", path),
			zap.String("kind", string(fault.KindConfigParseRecovered)),
			zap.Error(parseErr),
		)
	}

	merged, err := Apply(existing, patch)
	if err != nil {
		return out, fmt.Errorf("merging %s: %w", path, err)
	}

	data, err := Encode(merged)
	if err != nil {
		return out, fmt.Errorf("encoding %s: %w", path, err)
	}

	if bytes.Equal(data, raw) {
		return out, nil
	}

	if err := platform.WriteFileAtomic(path, data, platform.FilePerm); err != nil {
		return out, fault.FileSystem("settings.write", path, err)
	}
	out.Changed = true

	m.logger.Debug("settings merged",
		zap.String("path", path),
		zap.Int("keys", len(patch)),
		zap.Bool("recovered", out.Recovered),
	)
	return out, nil
}

// Parse decodes a JSONC document. Empty or whitespace-only input is an empty
// document. Input that is not a JSON object is an error.
func Parse(raw []byte) (Document, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Document{}, nil
	}

	var v any
	if err := decode(jsonc.ToJSON(raw), &v); err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errors.New("parsing settings: top level is not an object")
	}
	return Document(obj), nil
}

// Apply returns a new document with patch merged into doc. doc is not modified.
func Apply(doc Document, patch Patch) (Document, error) {
	normalized, err := normalizePatch(patch)
	if err != nil {
		return nil, err
	}

	merged := make(Document, len(doc)+len(normalized))
	for k, v := range doc {
		merged[k] = v
	}

	for k, v := range normalized {
		seq, isSeq := v.([]any)
		if !isSeq {
			merged[k] = v
			continue
		}
		current, _ := merged[k].([]any)
		merged[k] = union(current, seq)
	}
	return merged, nil
}

// Encode renders doc with two-space indentation and a trailing newline.
func Encode(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// union returns existing followed by every value of add not already present,
// with duplicates in either input removed. Order of first appearance wins.
func union(existing, add []any) []any {
	out := make([]any, 0, len(existing)+len(add))
	for _, v := range existing {
		if !containsValue(out, v) {
			out = append(out, v)
		}
	}
	for _, v := range add {
		if !containsValue(out, v) {
			out = append(out, v)
		}
	}
	return out
}

func containsValue(values []any, v any) bool {
	for _, existing := range values {
		if reflect.DeepEqual(existing, v) {
			return true
		}
	}
	return false
}

// normalizePatch round-trips patch through JSON so its values have the same
// dynamic types as a decoded document ([]any, map[string]any, json.Number).
func normalizePatch(patch Patch) (map[string]any, error) {
	data, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("patch is not JSON-compatible: %w", err)
	}
	var out map[string]any
	if err := decode(data, &out); err != nil {
		return nil, fmt.Errorf("patch is not JSON-compatible: %w", err)
	}
	return out, nil
}

func decode(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected data after top-level value")
	}
	return nil
}
