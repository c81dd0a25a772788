package config

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all configuration for the application
type Config struct {
	Analysis AnalysisConfig
	Output   OutputConfig
	Database DatabaseConfig
	Server   ServerConfig
	AWS      AWSConfig
	Log      LogConfig
}

// AnalysisConfig holds the light curve analysis parameters
type AnalysisConfig struct {
	Dataset        string
	Target         string
	Threshold      float64
	Peaks          int
	ExclusionWidth float64
	SamplesPerPeak float64
	NyquistFactor  float64
	ZoomHalfWidth  int
}

// OutputConfig holds where snapshots and figures are written
type OutputConfig struct {
	SnapshotDir     string
	OutputDir       string
	RawPlot         string
	CleanPlot       string
	PeriodogramPlot string
	FoldPlot        string
	// Format replaces the extension of every plot name when set.
	Format string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

// AWSConfig holds AWS/S3 configuration
type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
	S3Endpoint      string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"dataset":          "DATASET",
	"target":           "TARGET",
	"threshold":        "OUTLIER_THRESHOLD",
	"peaks":            "PEAK_COUNT",
	"exclusion-width":  "EXCLUSION_WIDTH",
	"samples-per-peak": "SAMPLES_PER_PEAK",
	"nyquist-factor":   "NYQUIST_FACTOR",
	"zoom-half-width":  "ZOOM_HALF_WIDTH",
	"snapshot-dir":     "SNAPSHOT_DIR",
	"output-dir":       "OUTPUT_DIR",
	"format":           "PLOT_FORMAT",
	"db":               "DATABASE_URL",
	"port":             "PORT",
	"env":              "ENVIRONMENT",
	"log-level":        "LOG_LEVEL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("DATASET", "tess2019112060037-s0011-0000000355151781-0143-s_lc.fits")
	v.SetDefault("TARGET", "HD74423")
	v.SetDefault("OUTLIER_THRESHOLD", 61500.0)
	v.SetDefault("PEAK_COUNT", 3)
	v.SetDefault("EXCLUSION_WIDTH", 0.1)
	v.SetDefault("SAMPLES_PER_PEAK", 5.0)
	v.SetDefault("NYQUIST_FACTOR", 5.0)
	v.SetDefault("ZOOM_HALF_WIDTH", 250)
	v.SetDefault("SNAPSHOT_DIR", ".")
	v.SetDefault("OUTPUT_DIR", ".")
	v.SetDefault("PLOT_RAW", "exit_0.eps")
	v.SetDefault("PLOT_CLEAN", "exit_1.eps")
	v.SetDefault("PLOT_PERIODOGRAM", "exit_2.eps")
	v.SetDefault("PLOT_FOLDS", "exit_3.eps")
	v.SetDefault("PLOT_FORMAT", "")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENVIRONMENT", "dev")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("AWS_ACCESS_KEY_ID", "")
	v.SetDefault("AWS_SECRET_ACCESS_KEY", "")
	v.SetDefault("S3_BUCKET", "lightcurve-data")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	v.SetDefault("LOG_LEVEL", "info")
}

// Load loads configuration from defaults, the .env file of the current
// environment, environment variables and flags, in increasing precedence.
// flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	return load(flags, ".")
}

func load(flags *pflag.FlagSet, configPaths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Environment variables override .env file values
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	// Read .env file for the current environment (ignore error if it doesn't exist)
	env := v.GetString("ENVIRONMENT")
	v.SetConfigName(".env." + env)
	v.SetConfigType("env")
	for _, p := range configPaths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read .env.%s: %w", env, err)
		}
	} else {
		log.Debug().Str("file", v.ConfigFileUsed()).Msg("Loaded environment file")
	}

	var config Config
	config.Analysis.Dataset = v.GetString("DATASET")
	config.Analysis.Target = v.GetString("TARGET")
	config.Analysis.Threshold = v.GetFloat64("OUTLIER_THRESHOLD")
	config.Analysis.Peaks = v.GetInt("PEAK_COUNT")
	config.Analysis.ExclusionWidth = v.GetFloat64("EXCLUSION_WIDTH")
	config.Analysis.SamplesPerPeak = v.GetFloat64("SAMPLES_PER_PEAK")
	config.Analysis.NyquistFactor = v.GetFloat64("NYQUIST_FACTOR")
	config.Analysis.ZoomHalfWidth = v.GetInt("ZOOM_HALF_WIDTH")
	config.Output.SnapshotDir = v.GetString("SNAPSHOT_DIR")
	config.Output.OutputDir = v.GetString("OUTPUT_DIR")
	config.Output.RawPlot = v.GetString("PLOT_RAW")
	config.Output.CleanPlot = v.GetString("PLOT_CLEAN")
	config.Output.PeriodogramPlot = v.GetString("PLOT_PERIODOGRAM")
	config.Output.FoldPlot = v.GetString("PLOT_FOLDS")
	config.Output.Format = strings.TrimPrefix(strings.ToLower(v.GetString("PLOT_FORMAT")), ".")
	config.Database.URL = v.GetString("DATABASE_URL")
	config.Server.Port = v.GetString("PORT")
	config.Server.Env = env
	config.Server.AllowedOrigins = splitList(v.GetString("ALLOWED_ORIGINS"))
	config.AWS.Region = v.GetString("AWS_REGION")
	config.AWS.AccessKeyID = v.GetString("AWS_ACCESS_KEY_ID")
	config.AWS.SecretAccessKey = v.GetString("AWS_SECRET_ACCESS_KEY")
	config.AWS.S3Bucket = v.GetString("S3_BUCKET")
	config.AWS.S3Endpoint = v.GetString("S3_ENDPOINT")
	config.Log.Level = v.GetString("LOG_LEVEL")

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate rejects parameters the analysis cannot run with.
func (c *Config) Validate() error {
	a := c.Analysis
	switch {
	case math.IsNaN(a.Threshold) || math.IsInf(a.Threshold, 0):
		return fmt.Errorf("%w: outlier threshold %g", ErrInvalid, a.Threshold)
	case a.Peaks <= 0:
		return fmt.Errorf("%w: peak count %d must be positive", ErrInvalid, a.Peaks)
	case a.ExclusionWidth < 0:
		return fmt.Errorf("%w: exclusion width %g must not be negative", ErrInvalid, a.ExclusionWidth)
	case a.SamplesPerPeak <= 0:
		return fmt.Errorf("%w: samples per peak %g must be positive", ErrInvalid, a.SamplesPerPeak)
	case a.NyquistFactor <= 0:
		return fmt.Errorf("%w: nyquist factor %g must be positive", ErrInvalid, a.NyquistFactor)
	case a.ZoomHalfWidth <= 0:
		return fmt.Errorf("%w: zoom half width %d must be positive", ErrInvalid, a.ZoomHalfWidth)
	}

	switch c.Output.Format {
	case "", "eps", "svg", "png", "pdf":
	default:
		return fmt.Errorf("%w: plot format %q", ErrInvalid, c.Output.Format)
	}

	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log level %q", ErrInvalid, c.Log.Level)
	}
	return nil
}

// PlotNames returns the four figure names with Format applied.
func (o OutputConfig) PlotNames() (raw, clean, periodogram, folds string) {
	return o.withFormat(o.RawPlot), o.withFormat(o.CleanPlot), o.withFormat(o.PeriodogramPlot), o.withFormat(o.FoldPlot)
}

func (o OutputConfig) withFormat(name string) string {
	if o.Format == "" {
		return name
	}
	return strings.TrimSuffix(name, filepath.Ext(name)) + "." + o.Format
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
