package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var documentsJSON bool

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "List catalogued documents",
	Long:  `Lists the documents recorded during the last ingest, with page and chunk counts.`,
	Args:  cobra.NoArgs,
	RunE:  runDocuments,
}

func init() {
	documentsCmd.Flags().BoolVar(&documentsJSON, "json", false, "output the list as JSON")
	rootCmd.AddCommand(documentsCmd)
}

func runDocuments(cmd *cobra.Command, _ []string) error {
	if documentStore == nil {
		return errors.New("document store not configured")
	}

	docs, err := documentStore.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing documents failed: %w", err)
	}

	if documentsJSON {
		data, err := json.MarshalIndent(docs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal documents: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(docs) == 0 {
		cmd.Println("No documents ingested yet.")
		return nil
	}

	for _, doc := range docs {
		cmd.Printf("%s  %d page(s), %d chunk(s), ingested %s\n",
			doc.Filename, doc.Pages, doc.Chunks,
			doc.IngestedAt.Format("2006-01-02 15:04"))
	}
	return nil
}
