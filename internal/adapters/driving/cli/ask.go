package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/halcyon-labs/askdoc/internal/core/domain"
)

var (
	askSources []string
	askJSON    bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the ingested documents",
	Long: `Retrieves the most relevant passages from the ingested documents and
synthesises a grounded answer, citing the pages it came from.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringSliceVarP(&askSources, "source", "s", nil, "restrict the answer to these filenames (repeatable)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := args[0]

	if qaService == nil {
		return errors.New("qa service not configured")
	}
	if err := ensureStarted(cmd.Context()); err != nil {
		return err
	}

	answer, err := qaService.Ask(cmd.Context(), question, askSources)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputAnswerJSON(cmd, answer)
	}

	outputAnswerText(cmd, answer)
	return nil
}

func outputAnswerJSON(cmd *cobra.Command, answer domain.Answer) error {
	data, err := json.MarshalIndent(answer, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnswerText(cmd *cobra.Command, answer domain.Answer) {
	cmd.Println(strings.TrimSpace(answer.Text))

	if len(answer.Sources) == 0 {
		return
	}

	cmd.Println()
	cmd.Println("Sources:")
	for i, ref := range answer.Sources {
		cmd.Printf("  [%d] %s, page %d\n", i+1, ref.Filename, ref.Page)
	}
}
