package workspace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"

	"github.com/tidwall/jsonc"

	"github.com/kcd-modkit/modkit/internal/platform"
)

// Extension is the file extension VS Code expects for workspace files.
const Extension = ".code-workspace"

// Document is a multi-root workspace.
type Document struct {
	Folders    []Folder        `json:"folders"`
	Settings   map[string]any  `json:"settings"`
	Extensions *Recommendation `json:"extensions,omitempty"`

	// other holds top-level keys of a loaded file this type does not model,
	// such as "launch" or "tasks".
	other map[string]json.RawMessage
}

// Folder is one member of the workspace.
type Folder struct {
	Path string `json:"path"`
	Name string `json:"name,omitempty"`
}

// Recommendation lists extensions VS Code offers to install.
type Recommendation struct {
	Recommendations []string `json:"recommendations"`
}

// New builds a document whose folder paths are relative to the directory the
// workspace file will live in. Paths that cannot be made relative (different
// volume) are kept absolute.
func New(workspaceDir string, folders ...Folder) *Document {
	doc := &Document{Settings: map[string]any{}}
	for _, f := range folders {
		p := f.Path
		if rel, err := filepath.Rel(workspaceDir, p); err == nil {
			p = rel
		}
		doc.Folders = append(doc.Folders, Folder{Path: filepath.ToSlash(p), Name: f.Name})
	}
	return doc
}

// Load reads an existing workspace file. Comments and trailing commas are
// accepted. The document is returned together with its schema validation
// result; an invalid document is still returned when it decodes.
func Load(path string) (*Document, *ValidationResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	data := jsonc.ToJSON(raw)

	result, err := Validate(data)
	if err != nil {
		return nil, nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, result, fmt.Errorf("parsing workspace %s: %w", path, err)
	}
	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, result, fmt.Errorf("parsing workspace %s: %w", path, err)
	}
	if doc.Settings == nil {
		doc.Settings = map[string]any{}
	}
	for _, known := range []string{"folders", "settings", "extensions"} {
		delete(fields, known)
	}
	if len(fields) > 0 {
		doc.other = fields
	}
	return doc, result, nil
}

// Merge adds the folders and recommendations of generated that d does not
// already list. Existing entries, settings and unmodeled keys are kept.
// Folders are compared by cleaned path.
func (d *Document) Merge(generated *Document) {
	for _, f := range generated.Folders {
		if !slices.ContainsFunc(d.Folders, func(existing Folder) bool {
			return path.Clean(existing.Path) == path.Clean(f.Path)
		}) {
			d.Folders = append(d.Folders, f)
		}
	}
	for k, v := range generated.Settings {
		if _, ok := d.Settings[k]; !ok {
			d.Settings[k] = v
		}
	}
	if generated.Extensions == nil {
		return
	}
	if d.Extensions == nil {
		d.Extensions = &Recommendation{}
	}
	for _, id := range generated.Extensions.Recommendations {
		if !slices.Contains(d.Extensions.Recommendations, id) {
			d.Extensions.Recommendations = append(d.Extensions.Recommendations, id)
		}
	}
}

// Marshal renders the document with two-space indentation.
func (d *Document) Marshal() ([]byte, error) {
	var v any = d
	if len(d.other) > 0 {
		fields := make(map[string]any, len(d.other)+3)
		for k, raw := range d.other {
			fields[k] = raw
		}
		fields["folders"] = d.Folders
		fields["settings"] = d.Settings
		if d.Extensions != nil {
			fields["extensions"] = d.Extensions
		}
		v = fields
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("marshaling workspace: %w", err)
	}
	return buf.Bytes(), nil
}

// Write validates and writes the document to path. Schema issues do not stop
// the write; they are returned for the caller to surface.
func Write(path string, doc *Document) (*ValidationResult, error) {
	data, err := doc.Marshal()
	if err != nil {
		return nil, err
	}

	result, err := Validate(data)
	if err != nil {
		return nil, err
	}

	if err := platform.WriteFileAtomic(path, data, platform.FilePerm); err != nil {
		return result, fmt.Errorf("writing workspace %s: %w", path, err)
	}
	return result, nil
}
