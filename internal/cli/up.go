package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Masterminds/semver/v3"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

const repoSlug = "happyhackingspace/postag"

func (c *CLI) newUpCommand() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Self-update to the latest version",
		Example: `  postag up
  postag up --check`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.selfUpdate(cmd, check)
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "Only report whether a newer release exists")
	return cmd
}

// latestRelease returns the newest release for this platform and whether it
// is newer than the running version.
func (c *CLI) latestRelease(ctx context.Context, updater *selfupdate.Updater) (*selfupdate.Release, bool, error) {
	latest, found, err := updater.DetectLatest(ctx, selfupdate.ParseSlug(repoSlug))
	if err != nil {
		return nil, false, fmt.Errorf("detect latest version: %w", err)
	}
	if !found {
		return nil, false, fmt.Errorf("no release found for %s", repoSlug)
	}
	// Development builds such as "dev" compare as 0.0.0.
	current, err := semver.NewVersion(c.version)
	if err != nil {
		current = semver.New(0, 0, 0, "", "")
	}
	return latest, latest.GreaterThan(current.String()), nil
}

func (c *CLI) selfUpdate(cmd *cobra.Command, check bool) error {
	ctx := cmd.Context()
	updater, err := selfupdate.NewUpdater(c.updateConfig)
	if err != nil {
		return err
	}

	latest, newer, err := c.latestRelease(ctx, updater)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !newer {
		fmt.Fprintf(out, "Already up to date (%s)\n", c.version)
		return nil
	}
	if check {
		fmt.Fprintf(out, "Update available: %s -> %s\n", c.version, latest.Version())
		return nil
	}

	slog.Info("Updating", "from", c.version, "to", latest.Version(), "asset", latest.AssetName)

	exe, err := os.Executable()
	if err != nil {
		return err
	}
	if err := updater.UpdateTo(ctx, latest, exe); err != nil {
		return fmt.Errorf("update: %w", err)
	}

	fmt.Fprintf(out, "Updated to %s\n", latest.Version())
	return nil
}
