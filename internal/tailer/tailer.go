// Package tailer follows a growing log file and delivers its lines.
package tailer

import (
	"context"
	"io"
	"runtime"
	"strings"
	"sync"

	"github.com/nxadm/tail"
)

// errBuffer is the buffer size for the error channel.
const errBuffer = 8

// Config configures a Tailer.
type Config struct {
	// FromStart reads the file from the beginning instead of the end.
	FromStart bool
	// ReOpen follows the path when the file is truncated, removed or
	// recreated. The client does this to latest.log on every launch.
	ReOpen bool
	// Poll uses polling instead of file system notifications.
	Poll bool
	// MaxLineSize splits lines longer than this many bytes (0 = unlimited).
	MaxLineSize int
}

// DefaultConfig returns the configuration used for client logs.
func DefaultConfig() Config {
	return Config{
		ReOpen: true,
		// File notifications miss writes to files held open by the client on
		// Windows.
		Poll: runtime.GOOS == "windows",
	}
}

// Tailer delivers lines appended to a file.
type Tailer struct {
	t     *tail.Tail
	lines chan string
	errs  chan error

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// New starts following path. The file must exist. Lines are delivered until
// ctx is cancelled or Stop is called.
func New(ctx context.Context, path string, cfg Config) (*Tailer, error) {
	tc := tail.Config{
		Follow:      true,
		ReOpen:      cfg.ReOpen,
		MustExist:   true,
		Poll:        cfg.Poll,
		MaxLineSize: cfg.MaxLineSize,
		Logger:      tail.DiscardingLogger,
	}
	if !cfg.FromStart {
		tc.Location = &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd}
	}

	t, err := tail.TailFile(path, tc)
	if err != nil {
		return nil, err
	}

	tl := &Tailer{
		t:     t,
		lines: make(chan string),
		errs:  make(chan error, errBuffer),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go tl.run(ctx)
	return tl, nil
}

// Lines returns the channel of lines, without line terminators. It is
// closed when the tailer stops.
func (t *Tailer) Lines() <-chan string {
	return t.lines
}

// Errors returns the channel of read errors. It is closed when the tailer
// stops.
func (t *Tailer) Errors() <-chan error {
	return t.errs
}

// Stop stops following the file and waits for the delivery goroutine to
// exit. Safe to call multiple times.
func (t *Tailer) Stop() error {
	t.stopOnce.Do(func() { close(t.stop) })
	<-t.done
	err := t.t.Stop()
	t.t.Cleanup()
	return err
}

func (t *Tailer) run(ctx context.Context) {
	defer close(t.done)
	defer close(t.lines)
	defer close(t.errs)

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.stop:
			return
		case line, ok := <-t.t.Lines:
			if !ok {
				if err := t.t.Err(); err != nil {
					t.sendError(err)
				}
				return
			}
			if line.Err != nil {
				t.sendError(line.Err)
				continue
			}
			select {
			case t.lines <- strings.TrimRight(line.Text, "\r"):
			case <-ctx.Done():
				return
			case <-t.stop:
				return
			}
		}
	}
}

// sendError drops the error when the buffer is full.
func (t *Tailer) sendError(err error) {
	select {
	case t.errs <- err:
	default:
	}
}
