package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/chatnotify/chatnotify-go/internal/chatlog"
	"github.com/chatnotify/chatnotify-go/pkg/chatnotify"
	"github.com/chatnotify/chatnotify-go/pkg/chatnotify/config"
)

func useWatchFlags(t *testing.T, outFormat string, all bool) {
	t.Helper()
	oldFormat, oldAll := format, showAll
	format, showAll = outFormat, all
	t.Cleanup(func() { format, showAll = oldFormat, oldAll })
}

func chatEntry(t *testing.T, line string) chatlog.Entry {
	t.Helper()
	entry, err := chatlog.Parse(line)
	if err != nil || entry == nil {
		t.Fatalf("Parse(%q) = %v, %v", line, entry, err)
	}
	return *entry
}

func TestWatchLoop_OutputsNotifications(t *testing.T) {
	useWatchFlags(t, "jsonl", false)
	engine, err := chatnotify.NewEngine(config.Default("Alice"))
	if err != nil {
		t.Fatal(err)
	}

	entries := make(chan chatlog.Entry, 2)
	errs := make(chan error)
	entries <- chatEntry(t, "[12:00:00] [Render thread/INFO]: [System] [CHAT] <Bob> nothing to see")
	entries <- chatEntry(t, "[12:00:01] [Render thread/INFO]: [System] [CHAT] <Bob> hi Alice")
	close(entries)

	var buf bytes.Buffer
	if err := watchLoop(context.Background(), engine, entries, errs, &buf, newLogger(&bytes.Buffer{})); err != nil {
		t.Fatalf("watchLoop() error = %v", err)
	}

	recs := decodeRecords(t, buf.String())
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1: %q", len(recs), buf.String())
	}
	if recs[0].Time != "12:00:01" || !recs[0].Activated {
		t.Errorf("record = %+v", recs[0])
	}
}

func TestWatchLoop_All(t *testing.T) {
	useWatchFlags(t, "pretty", true)
	engine, err := chatnotify.NewEngine(config.Default("Alice"))
	if err != nil {
		t.Fatal(err)
	}

	entries := make(chan chatlog.Entry, 1)
	entries <- chatEntry(t, "[12:00:00] [Render thread/INFO]: [System] [CHAT] <Bob> nothing to see")
	close(entries)

	var buf bytes.Buffer
	if err := watchLoop(context.Background(), engine, entries, make(chan error), &buf, newLogger(&bytes.Buffer{})); err != nil {
		t.Fatalf("watchLoop() error = %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[12:00:00]   <Bob> nothing to see" {
		t.Errorf("watchLoop() output = %q", got)
	}
}

func TestWatchLoop_TicksSendReplies(t *testing.T) {
	useWatchFlags(t, "jsonl", false)
	cfg := config.Default("Alice")
	n := config.NewNotification(config.Literal("tpa"))
	n.ResponseEnabled = true
	n.Responses = []config.ResponseMessage{{Text: "/tpaccept", Delay: 1}}
	cfg.AddNotification(n)

	sent := make(chan string, 1)
	engine, err := chatnotify.NewEngine(cfg, chatnotify.WithSender(chatnotify.SenderFuncs{
		Command: func(cmd string) { sent <- cmd },
	}))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	entries := make(chan chatlog.Entry, 1)
	entries <- chatEntry(t, "[12:00:00] [Render thread/INFO]: [System] [CHAT] Bob has requested to teleport to you (tpa)")

	done := make(chan error, 1)
	var buf bytes.Buffer
	go func() {
		done <- watchLoop(ctx, engine, entries, make(chan error), &buf, newLogger(&bytes.Buffer{}))
	}()

	select {
	case cmd := <-sent:
		if cmd != "tpaccept" {
			t.Errorf("sent command = %q, want tpaccept", cmd)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for reply")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("watchLoop() error = %v", err)
	}
}

func TestWatchLoop_ErrorsAreLogged(t *testing.T) {
	useWatchFlags(t, "jsonl", false)
	engine, err := chatnotify.NewEngine(nil)
	if err != nil {
		t.Fatal(err)
	}

	errs := make(chan error, 1)
	errs <- context.DeadlineExceeded
	close(errs)

	var logs bytes.Buffer
	if err := watchLoop(context.Background(), engine, make(chan chatlog.Entry), errs, &bytes.Buffer{}, newLogger(&logs)); err != nil {
		t.Fatalf("watchLoop() error = %v", err)
	}
	if !strings.Contains(logs.String(), "deadline exceeded") {
		t.Errorf("logs = %q, want the watch error", logs.String())
	}
}
