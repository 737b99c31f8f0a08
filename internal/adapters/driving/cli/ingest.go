package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Rebuild the index from the source directory",
	Long: `Extracts, chunks and embeds the PDF documents in the source directory
and replaces the index in one pass. An ingest that finds no documents
leaves the existing index untouched.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	if err := ensureStarted(cmd.Context()); err != nil {
		return err
	}

	stats, err := ingestService.Ingest(cmd.Context())
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Ingested %d document(s): %d page(s), %d chunk(s)\n",
		stats.Documents, stats.Pages, stats.Chunks)
	return nil
}
