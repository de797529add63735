// Command chatnotify runs chat notification rules against a game client's
// chat log.
package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/chatnotify/chatnotify-go/pkg/chatnotify"
	"github.com/chatnotify/chatnotify-go/pkg/chatnotify/config"
)

// Environment variables read when the matching flag is not given.
const (
	envConfig  = "CHATNOTIFY_CONFIG"
	envProfile = "CHATNOTIFY_PROFILE"
)

var (
	// global flags
	verbose     bool
	configPath  string
	profileName string
)

var rootCmd = &cobra.Command{
	Use:   "chatnotify",
	Short: "Highlight and react to chat messages",
	Long: `chatnotify matches chat lines against a notification rule set.

A notification fires when one of its triggers matches a line. It can
highlight the matched text, play a sound and schedule replies.

Rule files are JSON by default, or YAML when the path ends in .yaml/.yml.
Settings may also come from a .env file in the working directory:

  CHATNOTIFY_CONFIG   rule file path (--config)
  CHATNOTIFY_PROFILE  player name for the username rule (--profile)
  CHATNOTIFY_LOGDIR   client log directory (watch --log-dir)`,
	SilenceUsage:      true,
	PersistentPreRunE: loadEnv,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging on stderr")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Rule file (JSON or YAML)")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "",
		"Player name used by the username rule")
	_ = rootCmd.RegisterFlagCompletionFunc("config", completeRuleFiles)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadEnv reads .env when present and fills unset flags from the
// environment.
func loadEnv(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	flags := cmd.Flags()
	if !flags.Changed("config") {
		if v := os.Getenv(envConfig); v != "" {
			configPath = v
		}
	}
	if !flags.Changed("profile") {
		if v := os.Getenv(envProfile); v != "" {
			profileName = v
		}
	}
	return nil
}

// newLogger returns a text logger writing to w.
func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig returns the rule set named by --config, or the default rule set
// when no file is configured. A file that cannot be loaded falls back to the
// default with a warning.
func loadConfig(logger *slog.Logger) *config.Config {
	if configPath == "" {
		return config.Default(profileName)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Warn("using default rules", "error", err)
		return config.Default(profileName)
	}
	return cfg
}

// newEngine builds an engine for the configured rule set.
func newEngine(logger *slog.Logger, opts ...chatnotify.Option) (*chatnotify.Engine, error) {
	opts = append([]chatnotify.Option{
		chatnotify.WithLogger(logger),
		chatnotify.WithProfileName(profileName),
	}, opts...)
	return chatnotify.NewEngine(loadConfig(logger), opts...)
}
