// Package watch follows the client's current log file and delivers the chat
// lines written to it.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/chatnotify/chatnotify-go/internal/chatlog"
	"github.com/chatnotify/chatnotify-go/internal/logfinder"
	"github.com/chatnotify/chatnotify-go/internal/tailer"
)

// watcherErrBuffer is the buffer size for the error channel.
const watcherErrBuffer = 16

// discardLogger returns a logger that discards all output.
var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Watcher monitors the client log directory.
type Watcher struct {
	cfg    watchConfig // immutable after creation
	logDir string
	log    *slog.Logger

	mu       sync.Mutex
	closed   bool
	cancel   context.CancelFunc
	doneCh   chan struct{}
	watching bool
}

// New creates a watcher. It validates options and locates the log
// directory but starts no goroutines.
func New(opts ...Option) (*Watcher, error) {
	cfg := applyOptions(opts)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	logDir, err := logfinder.FindLogDir(cfg.logDir)
	if err != nil {
		// An explicit directory may still be empty when waiting for the
		// client to start.
		if !cfg.waitForLogs || cfg.logDir == "" || !isDir(cfg.logDir) {
			return nil, fmt.Errorf("finding log directory: %w", err)
		}
		logDir = cfg.logDir
	}

	log := cfg.logger
	if log == nil {
		log = discardLogger
	}

	return &Watcher{
		cfg:    *cfg,
		logDir: logDir,
		log:    log,
	}, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Dir returns the log directory being watched.
func (w *Watcher) Dir() string {
	return w.logDir
}

// Watch starts watching and returns channels.
// Both channels close on ctx.Done(), Close or a fatal error.
// Watch can only be called once per Watcher instance.
func (w *Watcher) Watch(ctx context.Context) (<-chan chatlog.Entry, <-chan error, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, nil, ErrWatcherClosed
	}
	if w.watching {
		return nil, nil, ErrAlreadyWatching
	}
	w.watching = true

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.doneCh = make(chan struct{})

	entryCh := make(chan chatlog.Entry)
	errCh := make(chan error, watcherErrBuffer)

	go w.run(ctx, entryCh, errCh)

	return entryCh, errCh, nil
}

// Close stops the watcher and waits for its goroutine to exit.
// Safe to call multiple times.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.cancel != nil {
		w.cancel()
	}
	doneCh := w.doneCh
	w.mu.Unlock()

	if doneCh != nil {
		<-doneCh
	}
	return nil
}

func (w *Watcher) run(ctx context.Context, entryCh chan<- chatlog.Entry, errCh chan<- error) {
	defer close(w.doneCh)
	defer close(entryCh)
	defer close(errCh)

	logFile, err := w.findLogFileWithWait(ctx, errCh)
	if err != nil {
		return
	}
	w.log.Debug("found latest log file", "path", logFile)

	cfg := tailer.DefaultConfig()
	cfg.FromStart = w.cfg.replay.Mode == ReplayFromStart

	if w.cfg.replay.Mode == ReplayLastN && w.cfg.replay.LastN > 0 {
		w.log.Debug("replaying last N lines", "n", w.cfg.replay.LastN, "path", logFile)
		if err := w.replayLastN(ctx, logFile, entryCh, errCh); err != nil {
			sendError(ctx, errCh, &WatchError{Op: WatchOpReplay, Path: logFile, Err: err})
		}
	}

	t, err := tailer.New(ctx, logFile, cfg)
	if err != nil {
		sendError(ctx, errCh, &WatchError{Op: WatchOpTail, Path: logFile, Err: err})
		return
	}
	w.log.Debug("started tailing", "path", logFile, "from_start", cfg.FromStart)

	rotationTicker := time.NewTicker(w.cfg.pollInterval)
	defer rotationTicker.Stop()
	defer func() { _ = t.Stop() }()

	currentFile := logFile

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-t.Lines():
			if !ok {
				return
			}
			w.processLine(ctx, line, entryCh, errCh)
		case err, ok := <-t.Errors():
			if !ok {
				return
			}
			sendError(ctx, errCh, &WatchError{Op: WatchOpTail, Path: currentFile, Err: err})
		case <-rotationTicker.C:
			// latest.log is reopened by the tailer; this catches a switch to
			// another file when the directory has no latest.log.
			newFile, err := logfinder.FindLatestLogFile(w.logDir)
			if err != nil {
				sendError(ctx, errCh, &WatchError{Op: WatchOpRotation, Err: err})
				continue
			}
			if newFile == currentFile {
				continue
			}
			w.log.Debug("log rotation detected", "from", currentFile, "to", newFile)
			_ = t.Stop()
			cfg := tailer.DefaultConfig()
			cfg.FromStart = true
			newTailer, err := tailer.New(ctx, newFile, cfg)
			if err != nil {
				sendError(ctx, errCh, &WatchError{Op: WatchOpTail, Path: newFile, Err: err})
				return
			}
			t = newTailer
			currentFile = newFile
		}
	}
}

// findLogFileWithWait finds the latest log file, optionally waiting if none
// exist yet. Errors are also sent to errCh.
func (w *Watcher) findLogFileWithWait(ctx context.Context, errCh chan<- error) (string, error) {
	logFile, err := logfinder.FindLatestLogFile(w.logDir)
	if err == nil {
		return logFile, nil
	}
	if !errors.Is(err, ErrNoLogFiles) || !w.cfg.waitForLogs {
		sendError(ctx, errCh, &WatchError{Op: WatchOpFindLatest, Err: err})
		return "", err
	}

	w.log.Debug("no log files found, waiting for logs to appear", "poll_interval", w.cfg.pollInterval)
	ticker := time.NewTicker(w.cfg.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Send directly; sendError gives up once ctx is done.
			err := ctx.Err()
			select {
			case errCh <- &WatchError{Op: WatchOpFindLatest, Err: err}:
			default:
			}
			return "", err
		case <-ticker.C:
			logFile, err := logfinder.FindLatestLogFile(w.logDir)
			if err == nil {
				w.log.Debug("log file appeared", "path", logFile)
				return logFile, nil
			}
			if !errors.Is(err, ErrNoLogFiles) {
				sendError(ctx, errCh, &WatchError{Op: WatchOpFindLatest, Err: err})
				return "", err
			}
		}
	}
}

func (w *Watcher) processLine(ctx context.Context, line string, entryCh chan<- chatlog.Entry, errCh chan<- error) {
	entry, err := chatlog.Parse(line)
	if err != nil {
		sendError(ctx, errCh, &ParseError{Line: line, Err: err})
		return
	}
	if entry == nil {
		return
	}
	select {
	case entryCh <- *entry:
	case <-ctx.Done():
	}
}

// replayLastN reads and processes the last N lines from the log file.
func (w *Watcher) replayLastN(ctx context.Context, logFile string, entryCh chan<- chatlog.Entry, errCh chan<- error) error {
	lines, err := readLastNLines(logFile, w.cfg.replay.LastN, w.cfg.maxReplayBytes, w.cfg.maxReplayLineBytes)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			return err
		}
		w.processLine(ctx, line, entryCh, errCh)
	}
	return nil
}

// sendError sends an error to the error channel. Errors are dropped only
// when the buffer is full or ctx is done.
func sendError(ctx context.Context, errCh chan<- error, err error) {
	if err == nil {
		return
	}
	select {
	case errCh <- err:
	case <-ctx.Done():
	default:
	}
}
