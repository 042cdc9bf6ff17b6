package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/AVSAkash/interview-assistant/internal/config"
	"github.com/AVSAkash/interview-assistant/pkg/logger"
)

const app = "interview-assistant"

var (
	// Used for flags.
	cfgFile string
	debug   bool
	jsonLog bool

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "interview-assistant runs timed, AI-graded technical interviews",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cfgFile != "" {
				if err := os.Setenv(config.EnvConfig, cfgFile); err != nil {
					return err
				}
			}
			return setupLogging(cmd.Context(), "", jsonLog)
		},
	}
)

// Execute executes the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		logger.Get().Error(rootCmd.Context(), "command failed", logger.Error(err))
		_, _ = os.Stderr.WriteString(app + ": " + err.Error() + "\n")
	}
	_ = logger.Sync()
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a YAML config file (overrides INTERVIEW_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&jsonLog, "json", "j", false, "json format for logging")
}

// setupLogging initializes the global logger. The --debug flag wins over level.
func setupLogging(ctx context.Context, level string, asJSON bool) error {
	var opts []logger.Option
	if asJSON || jsonLog {
		opts = append(opts, logger.WithJSON())
	}
	if err := logger.Init(opts...); err != nil {
		return err
	}
	if debug {
		level = "debug"
	}
	if err := logger.SetLevelString(level); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", level), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return nil
}
