package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/palefire-io/palefire/internal/buildinfo"
	"github.com/palefire-io/palefire/internal/config"
	"github.com/palefire-io/palefire/internal/logging"
	"github.com/palefire-io/palefire/internal/platform"
	"github.com/palefire-io/palefire/internal/shell"
	"github.com/palefire-io/palefire/internal/shell/host"
	"github.com/palefire-io/palefire/internal/shell/notify"
	"github.com/palefire-io/palefire/internal/updater"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Launch the desktop shell",
	RunE:  runShell,
}

func runShell(cmd *cobra.Command, args []string) error {
	if err := config.EnsureGlobalDir(); err != nil {
		return fmt.Errorf("create global directory: %w", err)
	}

	logPath, err := config.GlobalLogFile()
	if err != nil {
		return fmt.Errorf("resolve log path: %w", err)
	}
	log := logging.New(logPath, buildinfo.IsDebug())
	defer log.Sync()

	store, err := config.OpenStore()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	variant := platform.Detect()
	desktop := platform.DetectDesktopEnv()
	log.Info("starting",
		zap.String("version", buildinfo.Version),
		zap.String("platform", variant.String()),
		zap.String("desktop", desktop.Name))

	h := host.New(log)

	sh, err := shell.New(shell.Options{
		Store:    store,
		Factory:  h.Windows,
		Tray:     h.Tray,
		Notifier: notify.NewBeeepNotifier(""),
		Badge:    host.Badge(),
		Frames:   host.NewFrameHost(h.App, h.Windows, log),
		Variant:  variant,
		Desktop:  desktop,
		Quit:     h.Quit,
		Watch:    true,
		Log:      log,
	})
	if err != nil {
		return fmt.Errorf("compose shell: %w", err)
	}
	h.API.Bind(sh)
	h.PublishDockActivation(sh.Bus())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := sh.Start(ctx); err != nil {
		return fmt.Errorf("start shell: %w", err)
	}

	updater.New(sh.Bus(), store, log).Start(ctx)

	// Quit the wails loop on SIGINT/SIGTERM so teardown runs.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigCh:
			log.Info("signal received", zap.String("signal", sig.String()))
			h.Quit()
		case <-ctx.Done():
		}
	}()

	// The wails loop must own the main thread (Cocoa requirement).
	runErr := h.Run()

	sh.Stop()
	if runErr != nil {
		return fmt.Errorf("shell exited: %w", runErr)
	}
	log.Info("stopped")
	return nil
}
