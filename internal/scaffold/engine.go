package scaffold

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kcd-modkit/modkit/internal/archive"
	"github.com/kcd-modkit/modkit/internal/branding"
	"github.com/kcd-modkit/modkit/internal/fault"
	"github.com/kcd-modkit/modkit/internal/naming"
	"github.com/kcd-modkit/modkit/internal/platform"
	"github.com/kcd-modkit/modkit/internal/project"
	"github.com/kcd-modkit/modkit/internal/release"
	"github.com/kcd-modkit/modkit/internal/settings"
	"github.com/kcd-modkit/modkit/internal/workspace"
)

// State is one step of a scaffold run.
type State string

const (
	StateSelectingRoot      State = "selecting_root"
	StateNamingMod          State = "naming_mod"
	StateCheckingCollision  State = "checking_collision"
	StateWritingSkeleton    State = "writing_skeleton"
	StateFetchingDependency State = "fetching_dependency"
	StateMergingConfig      State = "merging_config"
	StateDone               State = "done"
	StateAborted            State = "aborted"
	StateFailed             State = "failed"
)

// LuaVersion is the runtime the game embeds.
const LuaVersion = "Lua 5.1"

// Lua language server settings keys.
const (
	KeyRuntimeVersion = "Lua.runtime.version"
	KeyLibrary        = "Lua.workspace.library"
	KeyGlobals        = "Lua.diagnostics.globals"
)

// SettingsPath is the editor settings file relative to a scope directory.
var SettingsPath = filepath.Join(".vscode", "settings.json")

// Prompter asks the user for whatever the Request leaves open.
// Returning fault.ErrCanceled aborts the run.
type Prompter interface {
	SelectRoot() (string, error)
	ModName() (string, error)
	ConfirmOverwrite(dir string) (bool, error)
}

// AssetResolver finds a named asset in a repository's latest release.
type AssetResolver interface {
	ResolveLatestAsset(ctx context.Context, owner, repo, assetName string) (*release.Release, *release.Asset, error)
}

// ArchiveFetcher downloads an archive and unpacks it into destDir.
type ArchiveFetcher interface {
	FetchAndExtract(ctx context.Context, url, destDir string) (*archive.Result, error)
}

// ConfigMerger applies a patch to a settings document on disk.
type ConfigMerger interface {
	Merge(targetDir, relPath string, patch settings.Patch) (settings.Outcome, error)
}

// Dependency describes the companion library every mod is wired against.
type Dependency struct {
	Repo    string // "owner/repo"
	Asset   string // release asset file name
	Folder  string // root folder when the archive has no single top-level directory
	Library string // Lua library path inside the dependency root, slash-separated
}

// DefaultDependency returns the KCDUtils dependency.
func DefaultDependency() Dependency {
	return Dependency{
		Repo:    branding.DependencyRepo(),
		Asset:   branding.DependencyAsset(),
		Folder:  "kcdutils",
		Library: "Data/kcdutils/Scripts/Mods/Utils",
	}
}

// Request carries the inputs of one run. Empty fields are prompted for.
type Request struct {
	Root      string
	RawName   string
	Overwrite bool // reuse an existing mod folder without asking
}

// Result holds the outcome of a run. It is returned even when the run fails.
type Result struct {
	Root              string
	ModDir            string
	Slug              string
	Symbol            string
	Dirs              []string
	Files             []string
	Reused            bool
	DependencyRoot    string
	DependencyVersion string
	Warnings          []string
	State             State
}

// Engine runs the scaffold pipeline.
type Engine struct {
	resolver  AssetResolver
	fetcher   ArchiveFetcher
	merger    ConfigMerger
	prompter  Prompter
	templates fs.FS
	dep       Dependency
	logger    *zap.Logger
	now       func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithPrompter sets the interactive prompter.
func WithPrompter(p Prompter) Option {
	return func(e *Engine) { e.prompter = p }
}

// WithTemplates replaces the embedded template set.
func WithTemplates(fsys fs.FS) Option {
	return func(e *Engine) {
		if fsys != nil {
			e.templates = fsys
		}
	}
}

// WithDependency overrides the companion library.
func WithDependency(d Dependency) Option {
	return func(e *Engine) { e.dep = d }
}

// WithLogger sets the logger for state transitions and warnings.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock sets the time source for the manifest date.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New creates an Engine.
func New(resolver AssetResolver, fetcher ArchiveFetcher, merger ConfigMerger, opts ...Option) *Engine {
	e := &Engine{
		resolver:  resolver,
		fetcher:   fetcher,
		merger:    merger,
		templates: DefaultTemplates(),
		dep:       DefaultDependency(),
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the pipeline. The returned Result is never nil; its State is
// Done on success, Aborted when the run stopped before writing anything, and
// Failed otherwise.
func (e *Engine) Run(ctx context.Context, req Request) (*Result, error) {
	res := &Result{}

	e.enter(res, StateSelectingRoot)
	root, err := e.selectRoot(req)
	if err != nil {
		return e.stop(res, err)
	}
	res.Root = root

	e.enter(res, StateNamingMod)
	names, err := e.nameMod(req)
	if err != nil {
		return e.stop(res, err)
	}
	res.Slug, res.Symbol = names.Slug, names.Symbol
	res.ModDir = filepath.Join(root, names.Slug)

	e.enter(res, StateCheckingCollision)
	if err := e.checkCollision(req, res); err != nil {
		return e.stop(res, err)
	}

	e.enter(res, StateWritingSkeleton)
	vars := Vars{Folder: names.Slug, Class: names.Symbol, Date: e.now()}
	if err := e.writeSkeleton(res, vars); err != nil {
		return e.stop(res, err)
	}

	e.enter(res, StateFetchingDependency)
	dep, err := e.fetchDependency(ctx, res)
	if err != nil {
		return e.stop(res, err)
	}

	e.enter(res, StateMergingConfig)
	e.mergeConfig(res)
	e.writeWorkspace(res)
	e.writeRecord(res, names, vars, dep)

	e.enter(res, StateDone)
	return res, nil
}

// fetched is what the dependency step learned about the library.
type fetched struct {
	release *release.Release
	archive *archive.Result
}

func (e *Engine) enter(res *Result, s State) {
	e.logger.Debug("scaffold transition",
		zap.String("from", string(res.State)),
		zap.String("to", string(s)))
	res.State = s
}

// stop ends the run. Errors raised before the skeleton is written abort;
// later ones fail.
func (e *Engine) stop(res *Result, err error) (*Result, error) {
	switch res.State {
	case StateSelectingRoot, StateNamingMod, StateCheckingCollision:
		e.enter(res, StateAborted)
	default:
		e.enter(res, StateFailed)
	}
	return res, err
}

func (e *Engine) warn(res *Result, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	e.logger.Warn(msg)
	res.Warnings = append(res.Warnings, msg)
}

func (e *Engine) selectRoot(req Request) (string, error) {
	const op = "scaffold.select_root"
	root := strings.TrimSpace(req.Root)
	if root == "" {
		if e.prompter == nil {
			return "", fmt.Errorf("%s: no root directory given", op)
		}
		answer, err := e.prompter.SelectRoot()
		if err != nil {
			return "", promptError(op, err)
		}
		root = strings.TrimSpace(answer)
		if root == "" {
			return "", promptError(op, fault.ErrCanceled)
		}
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fault.FileSystem(op, root, err)
	}
	return abs, nil
}

func (e *Engine) nameMod(req Request) (naming.Names, error) {
	const op = "scaffold.name_mod"
	raw := req.RawName
	if raw == "" {
		if e.prompter == nil {
			return naming.Names{}, fmt.Errorf("%s: no mod name given", op)
		}
		answer, err := e.prompter.ModName()
		if err != nil {
			return naming.Names{}, promptError(op, err)
		}
		raw = answer
	}
	return naming.Normalize(raw)
}

// checkCollision runs before anything is created so a decline leaves the
// filesystem untouched.
func (e *Engine) checkCollision(req Request, res *Result) error {
	const op = "scaffold.check_collision"
	info, err := os.Stat(res.ModDir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return fault.FileSystem(op, res.ModDir, err)
	case !info.IsDir():
		return fault.FileSystem(op, res.ModDir, errors.New("exists and is not a directory"))
	}

	if !req.Overwrite {
		ok := false
		if e.prompter != nil {
			ok, err = e.prompter.ConfirmOverwrite(res.ModDir)
			if err != nil && !errors.Is(err, fault.ErrDeclined) {
				return promptError(op, err)
			}
		}
		if !ok {
			return &fault.OpError{Op: op, Kind: fault.KindCollisionDeclined, Path: res.ModDir, Err: fault.ErrDeclined}
		}
	}

	res.Reused = true
	e.logger.Debug("reusing existing mod folder", zap.String("path", res.ModDir))
	return nil
}

func (e *Engine) writeSkeleton(res *Result, vars Vars) error {
	scriptsDir := filepath.Join(res.ModDir, "Data", vars.Folder, "Scripts", "Mods")
	if err := e.mkdir(res, scriptsDir); err != nil {
		return err
	}

	entry, err := e.requireTemplate(TemplateEntry)
	if err != nil {
		return err
	}
	if err := e.writeFile(res, filepath.Join(scriptsDir, vars.Folder+".lua"), Render(entry, vars)); err != nil {
		return err
	}

	config, ok, err := readTemplate(e.templates, TemplateConfig)
	switch {
	case err != nil:
		return err
	case !ok:
		e.warn(res, "template %s not found; skipped the per-mod config script", TemplateConfig)
	default:
		configDir := filepath.Join(scriptsDir, vars.Class)
		if err := e.mkdir(res, configDir); err != nil {
			return err
		}
		if err := e.writeFile(res, filepath.Join(configDir, TemplateConfig), Render(config, vars)); err != nil {
			return err
		}
	}

	manifest, err := e.requireTemplate(TemplateManifest)
	if err != nil {
		return err
	}
	return e.writeFile(res, filepath.Join(res.ModDir, TemplateManifest), Render(manifest, vars))
}

func (e *Engine) requireTemplate(name string) (string, error) {
	text, ok, err := readTemplate(e.templates, name)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fault.FileSystem("scaffold.read_template", name, fs.ErrNotExist)
	}
	return text, nil
}

func (e *Engine) mkdir(res *Result, dir string) error {
	if err := os.MkdirAll(dir, platform.DirPerm); err != nil {
		return fault.FileSystem("scaffold.mkdir", dir, err)
	}
	res.Dirs = append(res.Dirs, dir)
	return nil
}

func (e *Engine) writeFile(res *Result, path, content string) error {
	if err := platform.WriteFileAtomic(path, []byte(content), platform.FilePerm); err != nil {
		return fault.FileSystem("scaffold.write", path, err)
	}
	res.Files = append(res.Files, path)
	return nil
}

func (e *Engine) fetchDependency(ctx context.Context, res *Result) (fetched, error) {
	owner, repo, err := release.ParseRepo(e.dep.Repo)
	if err != nil {
		return fetched{}, fmt.Errorf("resolving dependency: %w", err)
	}

	rel, asset, err := e.resolver.ResolveLatestAsset(ctx, owner, repo, e.dep.Asset)
	if err != nil {
		return fetched{}, fmt.Errorf("resolving %s from %s: %w", e.dep.Asset, e.dep.Repo, err)
	}
	e.logger.Debug("dependency resolved",
		zap.String("version", rel.Version),
		zap.String("url", asset.DownloadURL))

	extracted, err := e.fetcher.FetchAndExtract(ctx, asset.DownloadURL, res.Root)
	if err != nil {
		return fetched{}, fmt.Errorf("downloading %s: %w", asset.DownloadURL, err)
	}

	depRoot := filepath.Join(res.Root, e.dep.Folder)
	if dir := extracted.RootDir(); dir != "" {
		depRoot = filepath.Join(res.Root, filepath.FromSlash(dir))
	}
	res.DependencyRoot = depRoot
	res.DependencyVersion = rel.Version
	return fetched{release: rel, archive: extracted}, nil
}

// Patches returns the dependency-scope and mod-scope settings patches.
func Patches(symbol, libraryPath string) (dependency, mod settings.Patch) {
	dependency = settings.Patch{
		KeyRuntimeVersion: LuaVersion,
		KeyGlobals:        []string{symbol},
	}
	mod = settings.Patch{
		KeyRuntimeVersion: LuaVersion,
		KeyLibrary:        []string{libraryPath},
		KeyGlobals:        []string{symbol},
	}
	return dependency, mod
}

// mergeConfig merges both scopes. A failing scope becomes a warning and the
// other scope still runs.
func (e *Engine) mergeConfig(res *Result) {
	library := filepath.Join(res.DependencyRoot, filepath.FromSlash(e.dep.Library))
	depPatch, modPatch := Patches(res.Symbol, library)

	scopes := []struct {
		name  string
		dir   string
		patch settings.Patch
	}{
		{"dependency", res.DependencyRoot, depPatch},
		{"mod", res.ModDir, modPatch},
	}
	for _, s := range scopes {
		out, err := e.merger.Merge(s.dir, SettingsPath, s.patch)
		if err != nil {
			e.warn(res, "merging %s settings: %v", s.name, err)
			continue
		}
		if out.Recovered {
			e.warn(res, "%s settings at %s could not be parsed and were replaced", s.name, out.Path)
		}
		if out.Changed {
			res.Files = append(res.Files, out.Path)
		}
	}
}

func (e *Engine) writeWorkspace(res *Result) {
	path := filepath.Join(res.ModDir, res.Slug+workspace.Extension)
	doc := workspace.New(res.ModDir,
		workspace.Folder{Path: res.ModDir, Name: res.Symbol},
		workspace.Folder{Path: res.DependencyRoot, Name: filepath.Base(res.DependencyRoot)},
	)
	doc.Extensions = &workspace.Recommendation{Recommendations: []string{"sumneko.lua"}}

	if res.Reused {
		doc = e.reuseWorkspace(res, path, doc)
	}

	vr, err := workspace.Write(path, doc)
	if err != nil {
		e.warn(res, "writing workspace: %v", err)
		return
	}
	res.Files = append(res.Files, path)
	if vr != nil && !vr.Valid {
		for _, issue := range vr.Issues {
			e.warn(res, "workspace %s", issue)
		}
	}
}

// reuseWorkspace merges generated into the workspace file already at path.
// A file that fails to parse or validate is replaced by generated.
func (e *Engine) reuseWorkspace(res *Result, path string, generated *workspace.Document) *workspace.Document {
	existing, vr, err := workspace.Load(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return generated
	case err != nil:
		e.warn(res, "existing workspace %s is unreadable and was replaced: %v", path, err)
		return generated
	case !vr.Valid:
		for _, issue := range vr.Issues {
			e.warn(res, "existing workspace %s was replaced: %s", path, issue)
		}
		return generated
	}
	existing.Merge(generated)
	return existing
}

func (e *Engine) writeRecord(res *Result, names naming.Names, vars Vars, dep fetched) {
	depRoot := res.DependencyRoot
	if rel, err := filepath.Rel(res.ModDir, depRoot); err == nil {
		depRoot = filepath.ToSlash(rel)
	}

	rec := &project.Record{
		Name:    names.Raw,
		Slug:    names.Slug,
		Symbol:  names.Symbol,
		Created: vars.Date.Format(DateLayout),
		Dependency: project.Dependency{
			Repo:    e.dep.Repo,
			Asset:   e.dep.Asset,
			Version: dep.release.Version,
			Root:    depRoot,
			Digest:  dep.archive.Digest,
		},
	}
	if err := project.Save(res.ModDir, rec); err != nil {
		e.warn(res, "%v", err)
		return
	}
	res.Files = append(res.Files, project.Path(res.ModDir))
}

func promptError(op string, err error) error {
	if errors.Is(err, fault.ErrCanceled) {
		return &fault.OpError{Op: op, Kind: fault.KindCanceled, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}
