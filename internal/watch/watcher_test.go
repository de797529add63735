package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatnotify/chatnotify-go/internal/chatlog"
	"github.com/chatnotify/chatnotify-go/pkg/chatnotify/richtext"
)

const (
	aliceLine = "[12:00:00] [Render thread/INFO]: [System] [CHAT] <Alice> hi"
	bobLine   = "[12:00:01] [Render thread/INFO]: [System] [CHAT] <Bob> hello"
	noiseLine = "[12:00:02] [Render thread/INFO]: Loaded 12 advancements"
)

func nextEntry(t *testing.T, entries <-chan chatlog.Entry, errs <-chan error) chatlog.Entry {
	t.Helper()
	select {
	case e, ok := <-entries:
		require.True(t, ok, "entries channel closed")
		return e
	case err := <-errs:
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for entry")
	}
	return chatlog.Entry{}
}

func plain(e chatlog.Entry) string {
	return richtext.Plain(e.Line)
}

func TestNew_InvalidOptions(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		opt  Option
	}{
		{"negative replay", WithReplayLastN(-1)},
		{"replay too large", WithReplayLastN(DefaultMaxReplayLastN + 1)},
		{"zero poll interval", WithPollInterval(0)},
		{"negative max bytes", WithMaxReplayBytes(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(WithLogDir(dir), tt.opt)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid options")
		})
	}
}

func TestNew_MissingLogDir(t *testing.T) {
	_, err := New(WithLogDir(t.TempDir()))
	assert.ErrorIs(t, err, ErrLogDirNotFound)
}

func TestWatcher_ReplayFromStart(t *testing.T) {
	dir := t.TempDir()
	content := aliceLine + "\n" + noiseLine + "\n" + bobLine + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "latest.log"), []byte(content), 0644))

	w, err := New(WithLogDir(dir), WithReplayFromStart())
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	entries, errs, err := w.Watch(ctx)
	require.NoError(t, err)

	assert.Equal(t, "<Alice> hi", plain(nextEntry(t, entries, errs)))
	assert.Equal(t, "<Bob> hello", plain(nextEntry(t, entries, errs)))
}

func TestWatcher_ReplayLastN(t *testing.T) {
	dir := t.TempDir()
	content := aliceLine + "\n" + bobLine + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "latest.log"), []byte(content), 0644))

	w, err := New(WithLogDir(dir), WithReplayLastN(1))
	require.NoError(t, err)
	defer w.Close()

	entries, errs, err := w.Watch(context.Background())
	require.NoError(t, err)

	e := nextEntry(t, entries, errs)
	assert.Equal(t, "<Bob> hello", plain(e))
	assert.Equal(t, "Render thread", e.Thread)
}

func TestWatcher_FollowsAppends(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "latest.log")
	require.NoError(t, os.WriteFile(path, []byte(aliceLine+"\n"), 0644))

	w, err := New(WithLogDir(dir), WithReplayFromStart())
	require.NoError(t, err)
	defer w.Close()

	entries, errs, err := w.Watch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "<Alice> hi", plain(nextEntry(t, entries, errs)))

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString(noiseLine + "\n" + bobLine + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	assert.Equal(t, "<Bob> hello", plain(nextEntry(t, entries, errs)))
}

func TestWatcher_ParseError(t *testing.T) {
	dir := t.TempDir()
	content := "[99:99:99] [Render thread/INFO]: [System] [CHAT] <Alice> hi\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "latest.log"), []byte(content), 0644))

	w, err := New(WithLogDir(dir), WithReplayFromStart())
	require.NoError(t, err)
	defer w.Close()

	_, errs, err := w.Watch(context.Background())
	require.NoError(t, err)

	select {
	case err := <-errs:
		var pe *ParseError
		assert.True(t, errors.As(err, &pe), "got %T: %v", err, err)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for parse error")
	}
}

func TestWatcher_WaitForLogs(t *testing.T) {
	dir := t.TempDir()

	w, err := New(WithLogDir(dir), WithWaitForLogs(true), WithReplayFromStart(), WithPollInterval(50*time.Millisecond))
	require.NoError(t, err)
	defer w.Close()

	entries, errs, err := w.Watch(context.Background())
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "latest.log"), []byte(aliceLine+"\n"), 0644))

	assert.Equal(t, "<Alice> hi", plain(nextEntry(t, entries, errs)))
}

func TestWatcher_WaitForLogs_ContextCancel(t *testing.T) {
	dir := t.TempDir()

	w, err := New(WithLogDir(dir), WithWaitForLogs(true), WithPollInterval(50*time.Millisecond))
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_, errs, err := w.Watch(ctx)
	require.NoError(t, err)

	select {
	case err := <-errs:
		var watchErr *WatchError
		require.True(t, errors.As(err, &watchErr), "got %T: %v", err, err)
		assert.Equal(t, WatchOpFindLatest, watchErr.Op)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(5 * time.Second):
		t.Fatal("expected context cancellation error")
	}
}

func TestWatcher_Rotation(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "2024-01-01-1.log")
	require.NoError(t, os.WriteFile(old, []byte(aliceLine+"\n"), 0644))
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	w, err := New(WithLogDir(dir), WithReplayFromStart(), WithPollInterval(50*time.Millisecond))
	require.NoError(t, err)
	defer w.Close()

	entries, errs, err := w.Watch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "<Alice> hi", plain(nextEntry(t, entries, errs)))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "2024-01-01-2.log"), []byte(bobLine+"\n"), 0644))
	assert.Equal(t, "<Bob> hello", plain(nextEntry(t, entries, errs)))
}

func TestWatcher_WatchTwiceAndClose(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "latest.log"), nil, 0644))

	w, err := New(WithLogDir(dir))
	require.NoError(t, err)

	_, _, err = w.Watch(context.Background())
	require.NoError(t, err)
	_, _, err = w.Watch(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyWatching)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	_, _, err = w.Watch(context.Background())
	assert.ErrorIs(t, err, ErrWatcherClosed)
}
