// Package respond schedules automatic replies and hands them to the client
// once their delay has elapsed.
//
// Delays are counted in host ticks. The scheduler is driven by Tick and
// starts no goroutines; it is not safe for concurrent use.
package respond

import (
	"io"
	"log/slog"
	"strings"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Sender delivers outgoing text. Failures are the sender's concern.
type Sender interface {
	SendChat(text string)
	SendCommand(command string)
}

// ConnectionState is implemented by senders that know whether the client is
// still connected. Pending messages are dropped once it reports false.
type ConnectionState interface {
	Connected() bool
}

// Message is one outgoing chat line or command.
type Message struct {
	Text    string
	Command bool
}

// NewMessage classifies text: a leading "/" makes it a command, sent without
// the slash.
func NewMessage(text string) Message {
	if cmd, ok := strings.CutPrefix(text, "/"); ok {
		return Message{Text: cmd, Command: true}
	}
	return Message{Text: text}
}

type pending struct {
	msg   Message
	ticks int
}

// Scheduler holds messages waiting for their delay.
type Scheduler struct {
	pending []pending
	logger  *slog.Logger
}

// NewScheduler returns an empty scheduler. A nil logger discards output.
func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = discardLogger
	}
	return &Scheduler{logger: logger}
}

// Schedule queues m to be sent after delay ticks. A delay <= 1 sends on the
// next tick.
func (s *Scheduler) Schedule(m Message, delay int) {
	if strings.TrimSpace(m.Text) == "" {
		return
	}
	s.pending = append(s.pending, pending{msg: m, ticks: delay})
}

// Tick advances every pending message by one tick and returns those that
// are due, in the order they were scheduled. When connected is false all
// pending messages are discarded instead.
func (s *Scheduler) Tick(connected bool) []Message {
	if len(s.pending) == 0 {
		return nil
	}
	if !connected {
		s.logger.Debug("dropping pending responses", "count", len(s.pending), "reason", "not connected")
		s.pending = nil
		return nil
	}

	var due []Message
	kept := s.pending[:0]
	for _, p := range s.pending {
		p.ticks--
		if p.ticks <= 0 {
			due = append(due, p.msg)
			continue
		}
		kept = append(kept, p)
	}
	s.pending = kept
	return due
}

// Dispatch hands msgs to sender in order.
func Dispatch(sender Sender, msgs []Message, logger *slog.Logger) {
	if logger == nil {
		logger = discardLogger
	}
	for _, m := range msgs {
		if m.Command {
			logger.Debug("sending response command", "command", m.Text)
			sender.SendCommand(m.Text)
		} else {
			logger.Debug("sending response", "text", m.Text)
			sender.SendChat(m.Text)
		}
	}
}

// Connected reports the connection state of sender. Senders that do not
// implement ConnectionState are assumed connected; a nil sender is not.
func Connected(sender Sender) bool {
	if sender == nil {
		return false
	}
	if cs, ok := sender.(ConnectionState); ok {
		return cs.Connected()
	}
	return true
}

// Len returns the number of pending messages.
func (s *Scheduler) Len() int {
	return len(s.pending)
}

// Clear discards all pending messages.
func (s *Scheduler) Clear() {
	s.pending = nil
}
