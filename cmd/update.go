package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/blang/semver"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"

	"github.com/s0up4200/captchaly/config"
)

const repoSlug = "s0up4200/captchaly"

var checkOnly bool

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update captchaly to the latest release",
	Long: `Check GitHub for a newer captchaly release and replace the running binary with it.

Development builds cannot be updated. Use --check to only report whether an
update is available.`,
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().BoolVar(&checkOnly, "check", false, "only check for a newer release")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger = setupLogger(config.LoggingConfig{Level: "info", Format: "console", Color: true})

	current, err := semver.ParseTolerant(version)
	if err != nil {
		return fmt.Errorf("cannot update development build %q", version)
	}

	logger.Debug().Str("repository", repoSlug).Str("current", current.String()).Msg("Checking for updates")

	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(repoSlug))
	if err != nil {
		return fmt.Errorf("failed to detect latest release: %w", err)
	}
	if !found {
		return fmt.Errorf("no release found for %s/%s", runtime.GOOS, runtime.GOARCH)
	}

	if latest.LessOrEqual(current.String()) {
		fmt.Printf("✓ Already up to date (%s)\n", current)
		return nil
	}

	if checkOnly {
		fmt.Printf("→ Update available: %s → %s\n", current, latest.Version())
		return nil
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to locate executable: %w", err)
	}

	fmt.Printf("→ Updating %s → %s... ", current, latest.Version())
	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		fmt.Println("✗ Failed")
		return fmt.Errorf("failed to update binary: %w", err)
	}
	fmt.Println("✓ Done")

	logger.Info().Str("version", latest.Version()).Msg("Updated captchaly")
	return nil
}
