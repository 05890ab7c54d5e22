// Package httpd implements the httpd command for serving the classifier
// and dataset over HTTP.
package httpd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	cmdcommon "github.com/jonesrussell/subsift/cmd/common"
	"github.com/jonesrussell/subsift/internal/api"
	"github.com/jonesrussell/subsift/internal/model"
)

// DefaultShutdownTimeout bounds graceful shutdown.
const DefaultShutdownTimeout = 30 * time.Second

// Command returns the httpd command for use in the root command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "httpd",
		Short: "Serve the classifier and dataset over HTTP",
		Long: `Httpd starts an HTTP server exposing classification, dataset
statistics and the scrape run ledger. The saved model is loaded at
startup; without one the classification endpoints return 503 until a
model is trained and the server restarted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := cmdcommon.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}
			defer func() { _ = deps.Logger.Sync() }()

			return run(cmd.Context(), deps)
		},
	}
}

func run(ctx context.Context, deps cmdcommon.CommandDeps) error {
	store, err := cmdcommon.OpenStore(deps)
	if err != nil {
		return err
	}

	ledger, err := cmdcommon.OpenRunLog(deps)
	if err != nil {
		return err
	}
	defer ledger.Close()

	// A missing model is not fatal: the dataset and runs endpoints still
	// work, and ready reports the gap.
	var pipeline *model.Pipeline
	modelPath := deps.Config.GetTrainingConfig().ModelPath
	pipeline, err = model.Load(modelPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			deps.Logger.Warn("No saved model found, classification disabled", "path", modelPath)
			pipeline = nil
		} else {
			return fmt.Errorf("failed to load model from %s: %w", modelPath, err)
		}
	} else {
		deps.Logger.Info("Loaded model", "path", modelPath, "model", pipeline.Classifier.Name())
	}

	handler := api.NewHandler(pipeline, store, ledger, deps.Logger)
	server := api.NewServer(handler, deps.Config.GetServerConfig(), deps.Config.GetAppConfig().Debug, deps.Logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err = <-errCh:
		return err
	case sig := <-sigCh:
		deps.Logger.Info("Received signal, shutting down", "signal", sig.String())
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
