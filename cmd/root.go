package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gnolang/sklang/internal/config"
	"github.com/gnolang/sklang/loader"
)

const defaultTimeout = 5 * time.Minute

var (
	cfgFile string
	timeout time.Duration
	verbose bool

	settings = config.Default()
	logger   = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:              "sklang [paths...]",
	Short:            "sklang - resolves scripts against a pattern grammar",
	TraverseChildren: true, // Prioritize subcommands
	SilenceUsage:     true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		// init must work even when the existing file is broken
		if cmd == initCmd {
			settings = config.Default()
		} else if settings, err = config.Load(cfgFile); err != nil {
			return err
		}
		logger, err = newLogger(settings, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		// Format: sklang [path1 path2 ...] => behaves like the check subcommand
		return checkCmd.RunE(checkCmd, args)
	},
}

// Execute runs the command line.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "Configuration file (.yaml or .toml)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", defaultTimeout, "Timeout for checking scripts")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(replCmd)
}

// newLogger logs to stderr in development format when verbose, otherwise
// at the configured level.
func newLogger(cfg config.Config, verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.DisableStacktrace = true
	return zc.Build()
}

func newEngine() (*loader.Engine, error) {
	return loader.New(settings, logger)
}
