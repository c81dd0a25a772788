package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/RMahshie/lightcurve/internal/config"
	"github.com/RMahshie/lightcurve/internal/processing"
	"github.com/RMahshie/lightcurve/internal/storage"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	LogLevel string
	Env      string
}

// NewRootCommand creates the root command for the lightcurve CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "lightcurve",
		Short: "Period analysis of TESS light curves",
		Long: "Cleans a TESS light curve, computes its Lomb-Scargle periodogram, " +
			"folds it at the strongest periods and plots every stage.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "info", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.Env, "env", "dev", "environment; selects the .env.<env> file")

	// Add subcommands
	cmd.AddCommand(NewAnalyzeCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))

	return cmd
}

// loadConfig reads configuration with the command's flags bound and applies
// the configured log level.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}
	zerolog.SetGlobalLevel(level)
	return cfg, nil
}

// analyzerOptions maps the analysis and output sections onto the pipeline options.
func analyzerOptions(cfg *config.Config) processing.Options {
	opts := processing.DefaultOptions()
	opts.Target = cfg.Analysis.Target
	opts.Threshold = cfg.Analysis.Threshold
	opts.Grid.SamplesPerPeak = cfg.Analysis.SamplesPerPeak
	opts.Grid.NyquistFactor = cfg.Analysis.NyquistFactor
	opts.Selection.Count = cfg.Analysis.Peaks
	opts.Selection.ExclusionWidth = cfg.Analysis.ExclusionWidth
	opts.ZoomHalfWidth = cfg.Analysis.ZoomHalfWidth
	opts.SnapshotDir = cfg.Output.SnapshotDir
	opts.OutputDir = cfg.Output.OutputDir

	raw, clean, periodogram, folds := cfg.Output.PlotNames()
	opts.Plots = processing.PlotNames{Raw: raw, Clean: clean, Periodogram: periodogram, Folds: folds}
	return opts
}

func s3Config(cfg *config.Config) storage.S3Config {
	return storage.S3Config{
		Bucket:    cfg.AWS.S3Bucket,
		Endpoint:  cfg.AWS.S3Endpoint,
		Region:    cfg.AWS.Region,
		AccessKey: cfg.AWS.AccessKeyID,
		SecretKey: cfg.AWS.SecretAccessKey,
	}
}
