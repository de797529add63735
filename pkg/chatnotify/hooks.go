package chatnotify

// SoundPlayer plays notification sounds. Calls are fire-and-forget.
type SoundPlayer interface {
	PlaySound(id string, volume, pitch float64)
}

// SoundPlayerFunc is a function adapter for SoundPlayer.
type SoundPlayerFunc func(id string, volume, pitch float64)

// PlaySound calls f.
func (f SoundPlayerFunc) PlaySound(id string, volume, pitch float64) {
	f(id, volume, pitch)
}

// Sender sends automatic replies. Commands are passed without the leading
// slash. Failures are the sender's concern and are never retried.
type Sender interface {
	SendChat(text string)
	SendCommand(command string)
}

// ConnectionState may be implemented by a Sender. While it reports false,
// pending replies are discarded instead of sent.
type ConnectionState interface {
	Connected() bool
}

// SenderFuncs adapts plain functions to Sender and ConnectionState. Nil
// fields are no-ops; a nil IsConnected reports connected.
type SenderFuncs struct {
	Chat        func(text string)
	Command     func(command string)
	IsConnected func() bool
}

// SendChat calls s.Chat.
func (s SenderFuncs) SendChat(text string) {
	if s.Chat != nil {
		s.Chat(text)
	}
}

// SendCommand calls s.Command.
func (s SenderFuncs) SendCommand(command string) {
	if s.Command != nil {
		s.Command(command)
	}
}

// Connected calls s.IsConnected.
func (s SenderFuncs) Connected() bool {
	return s.IsConnected == nil || s.IsConnected()
}
