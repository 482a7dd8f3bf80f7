package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"ppdrag/config"
	"ppdrag/internal/logging"
)

var (
	cfgFile  string
	cfg      *config.Config
	rootDir  string
	logLevel string
	logJSON  bool
)

var rootCmd = &cobra.Command{
	Use:   "ppdrag",
	Short: "Postpartum depression RAG assistant",
	Long: `ppdrag indexes a folder of PDF, CSV and text documents about postpartum
depression, retrieves the passages relevant to a message, and asks a language
model either to answer it or to produce a structured risk assessment.

Example usage:
  ppdrag ingest                                  # Build the index from data/pdfs
  ppdrag query -q "EPDS cut-off"                 # Show the retrieved passages
  ppdrag chat -m "Is crying every day normal?"   # Grounded answer
  ppdrag score -m "I can't sleep" --report r.pdf # Risk assessment as JSON and PDF`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if err := godotenv.Load(filepath.Join(rootDir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if cmd.Flags().Changed("log-level") {
			cfg.Logging.Level = logLevel
		}
		if cmd.Flags().Changed("log-json") {
			cfg.Logging.JSON = logJSON
		}
		logger, err := logging.New(cfg.Logging, cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		cmd.SetContext(logging.Attach(ctx, logger))
		return nil
	},
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./ppdrag.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "project directory (default is current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}
