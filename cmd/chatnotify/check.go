package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/chatnotify/chatnotify-go/internal/chatlog"
	"github.com/chatnotify/chatnotify-go/pkg/chatnotify"
	"github.com/chatnotify/chatnotify-go/pkg/chatnotify/richtext"
)

var (
	// check flags
	checkFormat string
	sent        []string
)

var checkCmd = &cobra.Command{
	Use:   "check [line...]",
	Short: "Run chat lines through the rules",
	Long: `Run chat lines through the notification rules and print the outcome of
each one. Lines are taken from the arguments, or from stdin when none are
given. Both raw client log lines and bare chat messages are accepted.

Examples:
  # Does my rule fire?
  chatnotify check --config rules.json "<Bob> anyone seen Alice?"

  # Pretend "hello all" was just sent, so its echo is recognised
  chatnotify check --sent "hello all" "<Alice> hello all"

  # Replay an old log
  chatnotify check --format pretty < 2024-01-01-1.log`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "pretty",
		"Output format: jsonl, pretty")
	checkCmd.Flags().StringArrayVar(&sent, "sent", nil,
		"Outbound message recorded before the lines are processed (repeatable; a leading / marks a command)")
	_ = checkCmd.RegisterFlagCompletionFunc("format", completeFormats)

	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	if !validFormats[checkFormat] {
		return fmt.Errorf("unknown format: %s", checkFormat)
	}

	engine, err := newEngine(newLogger(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	for _, s := range sent {
		recordSent(engine, s)
	}

	out := cmd.OutOrStdout()
	if len(args) > 0 {
		for _, line := range args {
			if err := checkLine(engine, line, out); err != nil {
				return err
			}
		}
		return nil
	}
	return checkReader(engine, cmd.InOrStdin(), out)
}

// recordSent records s as an outbound message. A leading "/" marks a
// command.
func recordSent(engine *chatnotify.Engine, s string) {
	engine.RecordOutbound(s, strings.HasPrefix(s, "/"))
}

func checkReader(engine *chatnotify.Engine, r io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 512*1024)
	for scanner.Scan() {
		if err := checkLine(engine, scanner.Text(), out); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// checkLine processes one input line. Log lines that are not chat are
// skipped.
func checkLine(engine *chatnotify.Engine, line string, out io.Writer) error {
	ts, node, ok := parseInput(line)
	if !ok {
		return nil
	}
	return outputResult(checkFormat, ts, engine.Process(node), out)
}

// parseInput accepts a client log line or a bare message.
func parseInput(line string) (time.Time, richtext.Node, bool) {
	line = strings.TrimRight(line, "\r")
	if strings.TrimSpace(line) == "" {
		return time.Time{}, nil, false
	}
	entry, err := chatlog.Parse(line)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		return time.Time{}, nil, false
	}
	if entry != nil {
		return entry.Time, entry.Line, true
	}
	if looksLikeLogLine(line) {
		return time.Time{}, nil, false
	}
	return time.Time{}, chatlog.ParseMessage(line), true
}

// looksLikeLogLine reports whether line starts with the client's
// "[hh:mm:ss] [thread/LEVEL]: " header.
func looksLikeLogLine(line string) bool {
	return len(line) > 11 && line[0] == '[' && line[9] == ']' && strings.HasPrefix(line[10:], " [") &&
		strings.Contains(line, "]: ")
}
