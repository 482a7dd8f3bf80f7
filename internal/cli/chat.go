package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"ppdrag/internal/adapter/analyzer"
	"ppdrag/internal/adapter/llm"
	"ppdrag/internal/usecase"
)

var (
	chatMessage string
	chatHistory string
	chatJSON    bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Answer a message using the retrieved documents",
	Long: `Retrieve passages for the message and ask the language model to answer,
citing the passages it relied on. Prior turns can be supplied as a JSON file
holding [{"role": "user"|"assistant", "content": "..."}].

Examples:
  ppdrag chat -m "How long do baby blues last?"
  ppdrag chat -m "And after that?" --history turns.json --json`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVarP(&chatMessage, "message", "m", "", "user message")
	chatCmd.Flags().StringVar(&chatHistory, "history", "", "JSON file with prior turns")
	chatCmd.Flags().BoolVar(&chatJSON, "json", false, "output reply and sources as JSON")
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	history, err := loadHistory(chatHistory)
	if err != nil {
		return err
	}

	registry, err := newRegistry(cfg)
	if err != nil {
		return err
	}
	chatUC := usecase.NewChatUseCase(
		registry.Retriever(cfg.IndexDir(GetRootDir())),
		llm.NewLazyClient(cfg.LLM),
		usecase.NewContextPacker(analyzer.NewTokenizer(false), cfg.Prompt.ChatChunkChars),
		cfg.Retrieve.TopK,
	)

	result, err := chatUC.Reply(cmd.Context(), chatMessage, history)
	if err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if chatJSON {
		output, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(output))
		return nil
	}

	fmt.Fprintln(out, result.Reply)
	if len(result.Results) > 0 {
		fmt.Fprintf(out, "\nSources:\n")
		for _, r := range result.Results {
			fmt.Fprintf(out, "  %s (score: %.3f)\n", r.Meta.Citation(), r.Score)
		}
	}
	return nil
}
