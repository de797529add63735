package respond

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingSender struct {
	sent         []string
	disconnected bool
}

func (r *recordingSender) SendChat(text string)       { r.sent = append(r.sent, "chat:"+text) }
func (r *recordingSender) SendCommand(command string) { r.sent = append(r.sent, "cmd:"+command) }
func (r *recordingSender) Connected() bool            { return !r.disconnected }

type plainSender struct{ n int }

func (p *plainSender) SendChat(string)    { p.n++ }
func (p *plainSender) SendCommand(string) { p.n++ }

func TestNewMessage(t *testing.T) {
	assert.Equal(t, Message{Text: "hello"}, NewMessage("hello"))
	assert.Equal(t, Message{Text: "msg bob hi", Command: true}, NewMessage("/msg bob hi"))
	assert.Equal(t, Message{Text: " /x"}, NewMessage(" /x"))
}

func TestScheduler_Delays(t *testing.T) {
	s := NewScheduler(nil)
	s.Schedule(NewMessage("later"), 3)
	s.Schedule(NewMessage("/now"), 0)
	s.Schedule(NewMessage("soon"), 1)

	assert.Equal(t, []Message{{Text: "now", Command: true}, {Text: "soon"}}, s.Tick(true))
	assert.Equal(t, 1, s.Len())
	assert.Empty(t, s.Tick(true))
	assert.Equal(t, []Message{{Text: "later"}}, s.Tick(true))
	assert.Equal(t, 0, s.Len())
}

func TestScheduler_DisconnectDropsAll(t *testing.T) {
	s := NewScheduler(nil)
	s.Schedule(NewMessage("a"), 2)
	s.Schedule(NewMessage("b"), 5)

	assert.Empty(t, s.Tick(true))
	assert.Empty(t, s.Tick(false))
	assert.Equal(t, 0, s.Len())

	for i := 0; i < 10; i++ {
		assert.Empty(t, s.Tick(true), "dropped messages are never sent")
	}
}

func TestScheduler_IgnoresBlank(t *testing.T) {
	s := NewScheduler(nil)
	s.Schedule(NewMessage("  "), 0)
	s.Schedule(NewMessage("/"), 0)
	assert.Equal(t, 0, s.Len())

	s.Schedule(NewMessage("x"), 4)
	s.Clear()
	assert.Equal(t, 0, s.Len())
}

func TestDispatch(t *testing.T) {
	r := &recordingSender{}
	Dispatch(r, []Message{{Text: "hi"}, {Text: "spawn", Command: true}}, nil)
	assert.Equal(t, []string{"chat:hi", "cmd:spawn"}, r.sent)
}

func TestConnected(t *testing.T) {
	assert.False(t, Connected(nil))
	assert.True(t, Connected(&plainSender{}))

	r := &recordingSender{}
	assert.True(t, Connected(r))
	r.disconnected = true
	assert.False(t, Connected(r))
}
