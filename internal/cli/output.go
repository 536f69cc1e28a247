package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/kcd-modkit/modkit/internal/project"
	"github.com/kcd-modkit/modkit/internal/scaffold"
	"github.com/kcd-modkit/modkit/internal/workspace"
)

func printResult(w io.Writer, res *scaffold.Result) {
	success := color.New(color.FgGreen, color.Bold)
	info := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)

	verb := "Created"
	if res.Reused {
		verb = "Updated"
	}
	success.Fprintf(w, "✓ %s mod %s at %s\n", verb, res.Symbol, res.ModDir)
	for _, f := range res.Files {
		gray.Fprintf(w, "  %s\n", relTo(res.Root, f))
	}
	if res.DependencyRoot != "" {
		info.Fprintf(w, "\nKCDUtils %s extracted to %s\n", res.DependencyVersion, relTo(res.Root, res.DependencyRoot))
	}
	printWarnings(w, res.Warnings)

	info.Fprintln(w, "\nNext steps:")
	fmt.Fprintf(w, "  1. Open %s in VS Code\n", filepath.Join(res.ModDir, res.Slug+workspace.Extension))
	fmt.Fprintf(w, "  2. Edit Data/%s/Scripts/Mods/%s.lua\n", res.Slug, res.Slug)
}

// printPartial reports what a failed run left behind so the user can retry.
func printPartial(w io.Writer, res *scaffold.Result) {
	color.New(color.FgYellow, color.Bold).Fprintf(w, "Stopped during %s. Already written:\n", res.State)
	for _, f := range res.Files {
		fmt.Fprintf(w, "  %s\n", relTo(res.Root, f))
	}
	printWarnings(w, res.Warnings)
}

func printWarnings(w io.Writer, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	yellow := color.New(color.FgYellow)
	yellow.Fprintln(w, "\nWarnings:")
	for _, msg := range warnings {
		yellow.Fprintf(w, "  - %s\n", msg)
	}
}

func printNotice(w io.Writer, msg string) {
	color.New(color.FgYellow).Fprintln(w, msg)
}

func printStatus(w io.Writer, modDir string, rec *project.Record, st project.Status) {
	bold := color.New(color.Bold, color.FgCyan)
	bold.Fprintf(w, "%s (%s)\n", rec.Symbol, modDir)
	fmt.Fprintf(w, "  created:    %s\n", rec.Created)
	fmt.Fprintf(w, "  dependency: %s %s\n", rec.Dependency.Repo, rec.Dependency.Version)
	if dir := rec.DependencyDir(modDir); dir != "" {
		fmt.Fprintf(w, "  location:   %s\n", dir)
	}

	switch st.State {
	case project.StateUpToDate:
		color.New(color.FgGreen).Fprintf(w, "  status:     up to date\n")
	case project.StateOutdated:
		color.New(color.FgYellow).Fprintf(w, "  status:     %s available (run create again with --yes to refresh)\n", st.Latest)
	case project.StateAhead:
		fmt.Fprintf(w, "  status:     ahead of latest release %s\n", st.Latest)
	default:
		gray := color.New(color.FgHiBlack)
		if st.Reason != "" {
			gray.Fprintf(w, "  status:     unknown (%s)\n", st.Reason)
		} else {
			gray.Fprintf(w, "  status:     unknown\n")
		}
	}
}

func relTo(base, path string) string {
	if rel, err := filepath.Rel(base, path); err == nil {
		return rel
	}
	return path
}
