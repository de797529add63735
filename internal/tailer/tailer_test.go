package tailer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(fromStart bool) Config {
	cfg := DefaultConfig()
	cfg.FromStart = fromStart
	cfg.Poll = true
	return cfg
}

func nextLine(t *testing.T, tl *Tailer) string {
	t.Helper()
	select {
	case line, ok := <-tl.Lines():
		require.True(t, ok, "lines channel closed")
		return line
	case err := <-tl.Errors():
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for line")
	}
	return ""
}

func appendLine(t *testing.T, path, line string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	defer f.Close()
	_, err = f.WriteString(line + "\n")
	require.NoError(t, err)
}

func TestTailer_FromStart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latest.log")
	require.NoError(t, os.WriteFile(path, []byte("first\r\nsecond\n"), 0644))

	tl, err := New(context.Background(), path, testConfig(true))
	require.NoError(t, err)
	defer tl.Stop()

	assert.Equal(t, "first", nextLine(t, tl))
	assert.Equal(t, "second", nextLine(t, tl))

	appendLine(t, path, "third")
	assert.Equal(t, "third", nextLine(t, tl))
}

func TestTailer_FromEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latest.log")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0644))

	tl, err := New(context.Background(), path, testConfig(false))
	require.NoError(t, err)
	defer tl.Stop()

	// Give the tailer time to seek to the end before appending.
	time.Sleep(100 * time.Millisecond)
	appendLine(t, path, "new")
	assert.Equal(t, "new", nextLine(t, tl))
}

func TestTailer_MissingFile(t *testing.T) {
	_, err := New(context.Background(), filepath.Join(t.TempDir(), "missing.log"), testConfig(true))
	assert.Error(t, err)
}

func TestTailer_ContextCancelClosesChannels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latest.log")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	ctx, cancel := context.WithCancel(context.Background())
	tl, err := New(ctx, path, testConfig(true))
	require.NoError(t, err)

	cancel()
	select {
	case _, ok := <-tl.Lines():
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("lines channel not closed after cancel")
	}
	_ = tl.Stop()
}

func TestTailer_StopIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "latest.log")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	tl, err := New(context.Background(), path, testConfig(true))
	require.NoError(t, err)

	_ = tl.Stop()
	_ = tl.Stop()
	_, ok := <-tl.Lines()
	assert.False(t, ok)
}
