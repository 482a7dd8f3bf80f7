package cli

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"ppdrag/internal/adapter/analyzer"
	"ppdrag/internal/adapter/llm"
	"ppdrag/internal/adapter/report"
	"ppdrag/internal/usecase"
)

var (
	scoreMessage string
	scoreHistory string
	scoreReport  string
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Produce a structured PPD risk assessment",
	Long: `Retrieve the category rubric and related passages, then ask the language
model to classify the message into one of five PPD categories. The assessment
is printed as JSON; a reply that is not valid JSON is reported as
{"error": "invalid_json_from_model", "raw_reply": ...}.

Examples:
  ppdrag score -m "I cry every day and can't sleep even when the baby sleeps"
  ppdrag score -m "..." --history turns.json --report assessment.pdf`,
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.Flags().StringVarP(&scoreMessage, "message", "m", "", "text describing symptoms, thoughts or context")
	scoreCmd.Flags().StringVar(&scoreHistory, "history", "", "JSON file with prior turns")
	scoreCmd.Flags().StringVar(&scoreReport, "report", "", "write the assessment as a PDF report to this path")
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	ctx := cmd.Context()

	history, err := loadHistory(scoreHistory)
	if err != nil {
		return err
	}

	registry, err := newRegistry(cfg)
	if err != nil {
		return err
	}
	scoreUC := usecase.NewScoreUseCase(
		registry.Retriever(cfg.IndexDir(GetRootDir())),
		llm.NewLazyClient(cfg.LLM),
		usecase.NewContextPacker(analyzer.NewTokenizer(false), cfg.Prompt.ScoreChunkChars),
		cfg.Retrieve.ScoreTopK,
	)

	result, err := scoreUC.Score(ctx, scoreMessage, history)
	if err != nil {
		return fmt.Errorf("scoring failed: %w", err)
	}

	var payload any = result.Assessment
	if result.Failure != nil {
		payload = result.Failure
	}
	output, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(output))

	if scoreReport == "" {
		return nil
	}
	if result.Assessment == nil {
		log.FromContext(ctx).Warn("no assessment to report", "path", scoreReport)
		return nil
	}
	if err := report.NewRenderer().WriteFile(ctx, scoreReport, *result.Assessment, result.Results); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	log.FromContext(ctx).Info("report written", "path", scoreReport)
	return nil
}
