package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kcd-modkit/modkit/internal/config"
	"github.com/kcd-modkit/modkit/internal/project"
	"github.com/kcd-modkit/modkit/internal/release"
)

var (
	statusOffline bool
	statusNet     networkFlags
)

func init() {
	statusCmd.Flags().BoolVar(&statusOffline, "offline", false, "Show the record without asking GitHub for the latest release")
	statusNet.AddFlags(statusCmd.Flags())
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status [mod-dir]",
	Short: "Show a mod's recorded KCDUtils version",
	Long: `Read the mod's .modkit.yaml record and compare the KCDUtils version it was
created with against the latest release.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		modDir := "."
		if len(args) > 0 {
			modDir = args[0]
		}
		modDir, err := filepath.Abs(modDir)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", modDir, err)
		}

		rec, err := project.Load(modDir)
		if err != nil {
			return fmt.Errorf("%s has no %s record: %w", modDir, project.FileName, err)
		}

		st := project.Status{State: project.StateUnknown, Recorded: rec.Dependency.Version, Reason: "offline"}
		if !statusOffline {
			cfg := config.Current()
			statusNet.apply(cmd.Flags(), &cfg)

			owner, repo, err := release.ParseRepo(rec.Dependency.Repo)
			if err != nil {
				return err
			}

			ctx, cancel := commandContext(cmd.Context(), cfg.HTTPTimeout)
			defer cancel()

			latest, err := releaseClient(cfg).LatestRelease(ctx, owner, repo)
			if err != nil {
				return fmt.Errorf("checking latest release: %w", err)
			}
			st = rec.Check(latest.Version)
		}

		printStatus(cmd.OutOrStdout(), modDir, rec, st)
		return nil
	},
}
