package cli

import (
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/kcd-modkit/modkit/internal/archive"
	"github.com/kcd-modkit/modkit/internal/config"
	"github.com/kcd-modkit/modkit/internal/fault"
	"github.com/kcd-modkit/modkit/internal/scaffold"
	"github.com/kcd-modkit/modkit/internal/settings"
)

var (
	createRoot       string
	createYes        bool
	createTemplates  string
	createNoProgress bool
	createNet        networkFlags
)

func init() {
	createCmd.Flags().StringVarP(&createRoot, "root", "r", "", "Folder to create the mod in (prompted when omitted)")
	createCmd.Flags().BoolVarP(&createYes, "yes", "y", false, "Reuse an existing mod folder without asking")
	createCmd.Flags().StringVar(&createTemplates, "templates", "", "Directory with mod.lua, config.lua and mod.manifest templates")
	createCmd.Flags().BoolVar(&createNoProgress, "no-progress", false, "Hide the download progress")
	createNet.AddFlags(createCmd.Flags())
	rootCmd.AddCommand(createCmd)
}

var createCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Scaffold a new Lua mod",
	Long: `Scaffold a new Kingdom Come: Deliverance Lua mod.

The name is normalized twice: a lowercase folder name (spaces become
underscores, everything but a-z and _ is dropped) and a CamelCase Lua table
name. The latest KCDUtils release is extracted next to the mod and both
folders get Lua language server settings and a shared workspace file.

Examples:
  modkit create "Epic Loot" --root ~/kcd-mods
  modkit create                      # prompts for folder and name
  modkit create "Epic Loot" -r . -y  # reuse an existing epic_loot folder`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCreate,
}

func runCreate(cmd *cobra.Command, args []string) error {
	cfg := config.Current()
	createNet.apply(cmd.Flags(), &cfg)

	templates, err := resolveTemplates(cfg)
	if err != nil {
		return err
	}

	var fetchOpts []archive.Option
	if !createNoProgress {
		fetchOpts = append(fetchOpts, archive.WithProgress(cmd.ErrOrStderr()))
	}

	opts := []scaffold.Option{
		scaffold.WithLogger(logger),
		scaffold.WithTemplates(templates),
		scaffold.WithDependency(scaffold.Dependency{
			Repo:    cfg.DependencyRepo,
			Asset:   cfg.DependencyAsset,
			Folder:  cfg.DependencyFolder,
			Library: cfg.DependencyLibrary,
		}),
	}
	if stdinIsTerminal() {
		cwd, _ := os.Getwd()
		opts = append(opts, scaffold.WithPrompter(surveyPrompter{defaultRoot: cwd}))
	}

	engine := scaffold.New(releaseClient(cfg), archiveFetcher(fetchOpts...), settings.NewMerger(logger), opts...)

	req := scaffold.Request{Root: createRoot, Overwrite: createYes}
	if len(args) > 0 {
		req.RawName = args[0]
	}

	ctx, cancel := commandContext(cmd.Context(), cfg.HTTPTimeout)
	defer cancel()

	fmt.Fprintf(cmd.ErrOrStderr(), "Fetching %s from %s...\n", cfg.DependencyAsset, cfg.DependencyRepo)
	res, err := engine.Run(ctx, req)
	if err != nil {
		switch fault.KindOf(err) {
		case fault.KindCanceled:
			printNotice(cmd.ErrOrStderr(), "Canceled. Nothing was written.")
			return nil
		case fault.KindCollisionDeclined:
			printNotice(cmd.ErrOrStderr(), fmt.Sprintf("Kept the existing folder %s. Nothing was written.", res.ModDir))
			return nil
		}
		if res.State == scaffold.StateFailed && len(res.Files) > 0 {
			printPartial(cmd.ErrOrStderr(), res)
		}
		return err
	}

	printResult(cmd.OutOrStdout(), res)
	return nil
}

var stdinIsTerminal = func() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// resolveTemplates prefers --templates, then templates_dir, then the embedded set.
func resolveTemplates(cfg config.Settings) (fs.FS, error) {
	dir := strings.TrimSpace(createTemplates)
	if dir == "" {
		dir = cfg.TemplatesDir
	}
	if dir == "" {
		return scaffold.DefaultTemplates(), nil
	}
	return scaffold.DirTemplates(dir)
}
