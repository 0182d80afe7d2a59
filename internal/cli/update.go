package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/palefire-io/palefire/internal/config"
	"github.com/palefire-io/palefire/internal/logging"
	"github.com/palefire-io/palefire/internal/updater"
)

var updateApply bool

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Check for a newer release",
	Long: `Check GitHub Releases for a newer version. With --apply, download
the release asset for this platform and replace the running binary.`,
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().BoolVar(&updateApply, "apply", false, "download and install the update")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	store, err := config.OpenStore()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	svc := updater.New(nil, store, logging.Nop())
	result, err := svc.Check(cmd.Context())
	if err != nil {
		return fmt.Errorf("check for update: %w", err)
	}

	if !result.Available {
		fmt.Printf("Palefire %s is up to date\n", result.CurrentVersion)
		return nil
	}

	fmt.Printf("Update available: %s -> %s\n", result.CurrentVersion, result.LatestVersion)
	fmt.Printf("  Release: %s\n", result.ReleaseURL)

	if !updateApply {
		fmt.Println("Run with --apply to install.")
		return nil
	}

	path, err := svc.Download(cmd.Context(), result)
	if err != nil {
		return fmt.Errorf("download update: %w", err)
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate current binary: %w", err)
	}
	if err := updater.ReplaceBinary(exe, path); err != nil {
		return fmt.Errorf("install update: %w", err)
	}

	fmt.Printf("Installed %s. Restart Palefire to use it.\n", result.LatestVersion)
	return nil
}
