package main

import (
	"os"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"procwatch/internal/config"
)

var (
	configPath string

	// Global state shared by subcommands, resolved in PersistentPreRunE.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "procwatch",
	Short: "Public procurement irregularity detection",
	Long: `Procwatch ingests public procurement records and runs statistical,
spectral and pattern analysis to surface irregularities.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		setupLogger(cfg)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Configuration file path (TOML)")
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(ingestCmd)
}

// setupLogger configures the global logger from the logging section.
func setupLogger(cfg *config.Config) {
	log.DefaultLogger = log.Logger{
		Level:      log.ParseLevel(cfg.Logging.Level),
		TimeFormat: "15:04:05.000",
	}
	if cfg.Logging.Format == "console" {
		log.DefaultLogger.Writer = &log.ConsoleWriter{
			ColorOutput: true,
			Writer:      os.Stderr,
		}
	} else {
		log.DefaultLogger.Writer = &log.IOWriter{Writer: os.Stderr}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
