package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	queryText string
	queryTopK int
	queryJSON bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Show the passages retrieved for a query",
	Long: `Embed the query and list the closest indexed passages with their citation tags.

Examples:
  ppdrag query -q "EPDS cut-off score"
  ppdrag query -q "baby blues duration" --top-k 10 --json`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "search query (required)")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of results (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output as JSON")
	queryCmd.MarkFlagRequired("query")
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	registry, err := newRegistry(cfg)
	if err != nil {
		return err
	}

	topK := cfg.Retrieve.TopK
	if queryTopK > 0 {
		topK = queryTopK
	}

	results, err := registry.Retriever(cfg.IndexDir(GetRootDir())).Retrieve(cmd.Context(), queryText, topK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if queryJSON {
		output, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(output))
		return nil
	}

	if len(results) == 0 {
		fmt.Fprintln(out, "No results found.")
		return nil
	}
	fmt.Fprintf(out, "Found %d results for: %s\n\n", len(results), queryText)
	for i, r := range results {
		fmt.Fprintf(out, "--- [%d] %s (score: %.3f) ---\n", i+1, r.Meta.Citation(), r.Score)
		// Truncate long text for display
		text := []rune(r.Text)
		if len(text) > 500 {
			text = append(text[:500], []rune("...")...)
		}
		fmt.Fprintln(out, string(text))
		fmt.Fprintln(out)
	}
	return nil
}
