package watch

import (
	"errors"
	"fmt"

	"github.com/chatnotify/chatnotify-go/internal/logfinder"
)

// Sentinel errors.
var (
	// ErrWatcherClosed is returned by Watch after Close.
	ErrWatcherClosed = errors.New("watcher closed")
	// ErrAlreadyWatching is returned by a second call to Watch.
	ErrAlreadyWatching = errors.New("already watching")
	// ErrReplayLimitExceeded is returned when replay would read more than the
	// configured byte limits.
	ErrReplayLimitExceeded = errors.New("replay limit exceeded")

	ErrLogDirNotFound = logfinder.ErrLogDirNotFound
	ErrNoLogFiles     = logfinder.ErrNoLogFiles
)

// WatchOp names the step of watching that failed.
type WatchOp string

const (
	WatchOpFindLatest WatchOp = "find_latest"
	WatchOpTail       WatchOp = "tail"
	WatchOpRotation   WatchOp = "rotation"
	WatchOpReplay     WatchOp = "replay"
)

// WatchError reports a failure while following the log.
type WatchError struct {
	Op   WatchOp
	Path string
	Err  error
}

func (e *WatchError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("watch %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("watch %s: %v", e.Op, e.Err)
}

func (e *WatchError) Unwrap() error {
	return e.Err
}

// ParseError reports a log line that looked like chat but could not be
// parsed.
type ParseError struct {
	Line string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
