// Package cli implements the askdoc command-line interface using cobra.
// Commands are thin adapters: they parse flags, call the driving ports
// and format the result. Services are injected via SetServices before
// Execute runs.
package cli

import (
	"context"
	"sync"

	"github.com/spf13/cobra"

	"github.com/halcyon-labs/askdoc/internal/adapters/driving/httpapi"
	"github.com/halcyon-labs/askdoc/internal/core/ports/driven"
	"github.com/halcyon-labs/askdoc/internal/core/ports/driving"
	"github.com/halcyon-labs/askdoc/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	verbose    bool
	configFile string
)

// Services injected by main before Execute.
var (
	qaService     driving.QAService
	ingestService driving.IngestService
	documentStore driven.DocumentStore
	indexSizer    httpapi.Sizer
	sourceDir     string
	serverAddr    string

	startFn   func(context.Context) error
	startOnce sync.Once
	startErr  error
)

// Services bundles the wired application services the commands depend on.
type Services struct {
	QA        driving.QAService
	Ingest    driving.IngestService
	Documents driven.DocumentStore
	Sizer     httpapi.Sizer

	// Start verifies providers are reachable. It runs at most once,
	// before the first command that needs the pipeline. Commands that
	// only read local state (version, documents) skip it.
	Start func(context.Context) error

	// SourceDir is the directory serve watches and uploads land in.
	SourceDir string

	// ServerAddr is the default listen address for serve.
	ServerAddr string
}

// SetServices injects the application services into the command tree.
func SetServices(s Services) {
	qaService = s.QA
	ingestService = s.Ingest
	documentStore = s.Documents
	indexSizer = s.Sizer
	startFn = s.Start
	sourceDir = s.SourceDir
	if s.ServerAddr != "" {
		serverAddr = s.ServerAddr
	}
}

// ensureStarted runs the injected start hook once. A nil hook is a
// no-op so tests can drive commands without a live pipeline.
func ensureStarted(ctx context.Context) error {
	if startFn == nil {
		return nil
	}
	startOnce.Do(func() {
		startErr = startFn(ctx)
	})
	return startErr
}

var rootCmd = &cobra.Command{
	Use:   "askdoc",
	Short: "Ask questions about your PDF documents",
	Long: `askdoc ingests a directory of PDF documents and answers natural-language
questions about them, citing the pages each answer came from.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	// The config flag is consumed before cobra parsing so the wiring in
	// main can load it first; it is registered here for help output.
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to config file (default ~/.askdoc/config.toml)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
