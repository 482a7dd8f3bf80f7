package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"ppdrag/internal/adapter/chunker"
	"ppdrag/internal/adapter/embedding"
	"ppdrag/internal/adapter/fs"
	"ppdrag/internal/adapter/store"
	"ppdrag/internal/usecase"
)

var ingestNoProgress bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [data-dir]",
	Short: "Build the retrieval index from source documents",
	Long: `Load every PDF, CSV, TXT and MD file in the data directory, split it into
overlapping windows, embed them and write the index. A previous index is
replaced only once the new one is complete.

Examples:
  ppdrag ingest                 # Use ingest.data_dir from the config
  ppdrag ingest ./my-documents  # Ingest a specific directory`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().BoolVar(&ingestNoProgress, "no-progress", false, "disable progress bars")
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	dataDir := cfg.DataDir(GetRootDir())
	if len(args) > 0 {
		dataDir = args[0]
	}
	indexDir := cfg.IndexDir(GetRootDir())

	window, err := chunker.NewWindow(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
	if err != nil {
		return fmt.Errorf("invalid chunk settings: %w", err)
	}

	embedder, err := embedding.New(cfg.Embedding)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	ingestUC := usecase.NewIngestUseCase(
		fs.NewWalker(cfg.Ingest.Includes, cfg.Ingest.Excludes),
		chunker.NewCompositeLoader(window, cfg.Ingest.CSVMaxRows),
		embedder,
		usecase.IngestSettings{
			Provider:     cfg.Embedding.Provider,
			ChunkSize:    window.Size(),
			ChunkOverlap: window.Overlap(),
			ConfigHash:   store.ComputeConfigHash(cfg),
			BatchSize:    cfg.Embedding.BatchSize,
		},
	)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Scanning %s...\n", dataDir)

	var progress usecase.ProgressFunc
	if !ingestNoProgress {
		progress = newStageProgress(cmd.ErrOrStderr())
	}

	result, err := ingestUC.Ingest(cmd.Context(), dataDir, indexDir, progress)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Fprintf(out, "\nIngestion complete:\n")
	fmt.Fprintf(out, "  Files found:    %d\n", result.FilesFound)
	fmt.Fprintf(out, "  Files loaded:   %d\n", result.FilesLoaded)
	fmt.Fprintf(out, "  Chunks created: %d\n", result.ChunksCreated)
	fmt.Fprintf(out, "  Embedding:      %s (%d dims)\n", result.Manifest.EmbeddingModel, result.Manifest.Dimension)

	if len(result.Warnings) > 0 {
		fmt.Fprintf(out, "\nWarnings:\n")
		for _, w := range result.Warnings {
			fmt.Fprintf(out, "  - %s\n", w)
		}
	}

	fmt.Fprintf(out, "\nIndex stored at: %s (build %s)\n", indexDir, result.Manifest.BuildID)
	return nil
}

// newStageProgress draws one progress bar per ingestion stage.
func newStageProgress(w io.Writer) usecase.ProgressFunc {
	var (
		mu        sync.Mutex
		bar       *progressbar.ProgressBar
		stage     string
		startTime time.Time
	)

	return func(s string, done, total int) {
		mu.Lock()
		defer mu.Unlock()

		if bar == nil || s != stage {
			if bar != nil {
				_ = bar.Finish()
			}
			stage = s
			startTime = time.Now()
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(w),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription(stageLabel(s)),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(w)
				}),
			)
		}

		_ = bar.Set(done)

		if done > 0 && done < total {
			elapsed := time.Since(startTime)
			rate := float64(done) / elapsed.Seconds()
			if rate > 0 {
				eta := time.Duration(float64(total-done)/rate) * time.Second
				bar.Describe(fmt.Sprintf("%s ETA: %s", stageLabel(s), formatDuration(eta)))
			}
		}
	}
}

func stageLabel(stage string) string {
	switch stage {
	case usecase.StageLoad:
		return "[cyan]Loading[reset]"
	case usecase.StageEmbed:
		return "[cyan]Embedding[reset]"
	default:
		return stage
	}
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
