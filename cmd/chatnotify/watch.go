package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/chatnotify/chatnotify-go/internal/chatlog"
	"github.com/chatnotify/chatnotify-go/internal/watch"
	"github.com/chatnotify/chatnotify-go/pkg/chatnotify"
)

// tickInterval is the client tick length. Reply delays count these ticks.
const tickInterval = 50 * time.Millisecond

var (
	// watch flags
	logDir      string
	format      string
	replayLast  int
	showAll     bool
	bell        bool
	sendReplies bool
	waitForLogs bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the client log and report notifications",
	Long: `Follow the game client's chat log in real-time and run every chat line
through the notification rules.

Lines are output as JSON Lines by default (one JSON object per line),
which makes it easy to process with tools like jq.

Examples:
  # Monitor with default settings (auto-detect log directory)
  chatnotify watch

  # Use a rule file and show every chat line, highlighted
  chatnotify watch --config rules.yaml --all --format pretty

  # Replay the last 200 lines before following
  chatnotify watch --replay-last 200

  # Ring the terminal bell for notifications with a sound
  chatnotify watch --bell

  # Pipe to jq for filtering
  chatnotify watch | jq 'select(.index == 0)'`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&logDir, "log-dir", "d", "",
		"Client log directory (auto-detected if not specified)")
	watchCmd.Flags().StringVarP(&format, "format", "f", "jsonl",
		"Output format: jsonl, pretty")
	watchCmd.Flags().IntVar(&replayLast, "replay-last", -1,
		"Replay last N lines before following (-1 = disabled, 0 = from start)")
	watchCmd.Flags().BoolVarP(&showAll, "all", "a", false,
		"Output every chat line, not only notifications")
	watchCmd.Flags().BoolVar(&bell, "bell", false,
		"Ring the terminal bell when a notification plays a sound")
	watchCmd.Flags().BoolVar(&sendReplies, "replies", false,
		"Schedule automatic replies and log them when due")
	watchCmd.Flags().BoolVar(&waitForLogs, "wait", false,
		"Wait for a log file to appear instead of failing")
	_ = watchCmd.RegisterFlagCompletionFunc("format", completeFormats)

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if !validFormats[format] {
		return fmt.Errorf("unknown format: %s", format)
	}

	// Setup context with signal handling
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := newLogger(os.Stderr)

	var opts []chatnotify.Option
	if bell {
		opts = append(opts, chatnotify.WithSoundPlayer(bellPlayer(os.Stderr, logger)))
	}
	if sendReplies {
		opts = append(opts, chatnotify.WithSender(logSender(logger)))
	}
	engine, err := newEngine(logger, opts...)
	if err != nil {
		return err
	}

	watchOpts := []watch.Option{
		watch.WithLogDir(logDir),
		watch.WithWaitForLogs(waitForLogs),
		watch.WithLogger(logger),
	}
	switch {
	case replayLast == 0:
		watchOpts = append(watchOpts, watch.WithReplayFromStart())
	case replayLast > 0:
		watchOpts = append(watchOpts, watch.WithReplayLastN(replayLast))
	}

	// Create watcher (validates log directory)
	watcher, err := watch.New(watchOpts...)
	if err != nil {
		return err
	}
	defer watcher.Close()
	logger.Debug("watching", "dir", watcher.Dir())

	entries, errs, err := watcher.Watch(ctx)
	if err != nil {
		return err
	}
	return watchLoop(ctx, engine, entries, errs, cmd.OutOrStdout(), logger)
}

// watchLoop feeds entries to the engine and ticks it until the watcher
// stops or ctx is done.
func watchLoop(ctx context.Context, engine *chatnotify.Engine, entries <-chan chatlog.Entry, errs <-chan error, out io.Writer, logger *slog.Logger) error {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case entry, ok := <-entries:
			if !ok {
				return nil // Channel closed
			}
			res := engine.Process(entry.Line)
			if !showAll && !res.Activated {
				continue
			}
			if err := outputResult(format, entry.Time, res, out); err != nil {
				return fmt.Errorf("output error: %w", err)
			}

		case err, ok := <-errs:
			if !ok {
				return nil // Channel closed
			}
			logger.Warn("watch", "error", err)

		case <-ticker.C:
			engine.OnTick()

		case <-ctx.Done():
			return nil
		}
	}
}

// bellPlayer rings the terminal bell on w for every sound.
func bellPlayer(w io.Writer, logger *slog.Logger) chatnotify.SoundPlayer {
	return chatnotify.SoundPlayerFunc(func(id string, volume, pitch float64) {
		logger.Debug("sound", "id", id, "volume", volume, "pitch", pitch)
		_, _ = io.WriteString(w, "\a")
	})
}

// logSender reports replies instead of sending them; the client owns the
// connection.
func logSender(logger *slog.Logger) chatnotify.Sender {
	return chatnotify.SenderFuncs{
		Chat: func(text string) {
			logger.Info("reply", "chat", text)
		},
		Command: func(command string) {
			logger.Info("reply", "command", command)
		},
	}
}
