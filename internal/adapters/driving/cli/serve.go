package cli

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/halcyon-labs/askdoc/internal/adapters/driving/httpapi"
	"github.com/halcyon-labs/askdoc/internal/logger"
	"github.com/halcyon-labs/askdoc/internal/watch"
)

var (
	serveWatch bool
	serveAddr  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Starts the HTTP server exposing /ask, /ingest, /documents and a health
endpoint. With --watch, the source directory is monitored and the index
is rebuilt automatically when PDF files change.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (default from config)")
	serveCmd.Flags().BoolVarP(&serveWatch, "watch", "w", false, "re-ingest when the source directory changes")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if qaService == nil || ingestService == nil {
		return errors.New("services not configured")
	}
	if err := ensureStarted(cmd.Context()); err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = serverAddr
	}
	if addr == "" {
		addr = ":8080"
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if serveWatch {
		if sourceDir == "" {
			return errors.New("source directory not configured")
		}
		watcher := watch.New(sourceDir, ingestService)
		go func() {
			if err := watcher.Run(ctx); err != nil {
				logger.Error("watcher stopped: %v", err)
			}
		}()
		fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for changes\n", sourceDir)
	}

	server := httpapi.NewServer(qaService, ingestService, documentStore, indexSizer, sourceDir)
	fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", addr)
	return server.ListenAndServe(ctx, addr)
}
