package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/iwvelando/premium-forecast/internal/config"
	"github.com/iwvelando/premium-forecast/pkg/constants"
	"github.com/iwvelando/premium-forecast/pkg/validation"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type rootOptions struct {
	configPath   string
	outputFormat string
	logLevel     string
}

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var cfg zap.Config
	switch format {
	case "console":
		cfg = zap.NewDevelopmentConfig()
	case "json":
		cfg = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		}
		_ = file.Close()

		cfg.OutputPaths = []string{loggingConfig.OutputFile}
		cfg.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return cfg.Build()
}

// session is the configuration, logger and output format shared by the
// planning subcommands.
type session struct {
	conf   *config.Configuration
	logger *zap.Logger
	format string
}

func (o *rootOptions) open() (*session, error) {
	conf, err := config.LoadConfiguration(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration at %s: %w", o.configPath, err)
	}

	logger, err := initializeLogger(conf.Logging, o.logLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	format := conf.Output.Format
	if o.outputFormat != "" {
		format = o.outputFormat
	}
	if format == "" {
		format = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(format); err != nil {
		_ = logger.Sync()
		return nil, err
	}
	conf.Output.Format = format

	if err := conf.Validate(); err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	return &session{conf: conf, logger: logger, format: format}, nil
}

func (s *session) close() {
	_ = s.logger.Sync()
}

func newRootCommand(out io.Writer) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "premium-forecast",
		Short:         "Plan and project a put-selling premium compounding strategy",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	flags.StringVar(&opts.outputFormat, "output-format", "", "type of output override: pretty, csv")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(
		newPlanCommand(opts),
		newProjectCommand(opts),
		newScenariosCommand(opts),
		newServeCommand(opts),
	)
	return root
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"warn\", \"msg\": \"failed to load .env\", \"error\": \"%v\"}\n", err)
	}

	if err := newRootCommand(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"command failed\", \"error\": %q}\n", err.Error())
		os.Exit(1)
	}
}
