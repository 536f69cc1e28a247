package scaffold

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"
)

// Template names looked up in the template set.
const (
	TemplateEntry    = "mod.lua"
	TemplateConfig   = "config.lua"
	TemplateManifest = "mod.manifest"
)

// Placeholders substituted in every template.
const (
	PlaceholderFolder = "{{MODNAME_FOLDER}}"
	PlaceholderClass  = "{{MODNAME_CLASS}}"
	PlaceholderDate   = "{{DATE}}"
)

// DateLayout is the manifest's creation date format.
const DateLayout = "2006-01-02"

//go:embed templates
var embedded embed.FS

// DefaultTemplates returns the built-in template set.
func DefaultTemplates() fs.FS {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		panic(fmt.Sprintf("embedded templates: %v", err))
	}
	return sub
}

// DirTemplates returns the template set stored in dir.
func DirTemplates(dir string) (fs.FS, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("opening templates directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("templates path %s is not a directory", dir)
	}
	return os.DirFS(dir), nil
}

// Vars are the values substituted for the placeholders.
type Vars struct {
	Folder string
	Class  string
	Date   time.Time
}

// Render replaces every placeholder occurrence in text.
func Render(text string, v Vars) string {
	r := strings.NewReplacer(
		PlaceholderFolder, v.Folder,
		PlaceholderClass, v.Class,
		PlaceholderDate, v.Date.Format(DateLayout),
	)
	return r.Replace(text)
}

// readTemplate loads name from fsys. A missing file reports ok=false with a nil error.
func readTemplate(fsys fs.FS, name string) (text string, ok bool, err error) {
	data, err := fs.ReadFile(fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading template %s: %w", name, err)
	}
	return string(data), true, nil
}
