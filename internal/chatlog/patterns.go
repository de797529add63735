package chatlog

import "regexp"

// Timestamp format in client logs: "23:59:59"
const timestampLayout = "15:04:05"

// Compiled regex patterns for chat line detection.
var (
	// Matches: "[23:59:59] [Render thread/INFO]: [System] [CHAT] <Alice> hi"
	// Matches: "[23:59:59] [Client thread/INFO]: [CHAT] <Alice> hi"
	// Captures: (1) time, (2) thread, (3) message
	chatLinePattern = regexp.MustCompile(
		`^\[(\d{2}:\d{2}:\d{2})\] \[([^\]/]+)/INFO\]: (?:\[System\] )?\[CHAT\] (.*)$`,
	)
)

// shape maps a rendered message back to the template the server sent.
type shape struct {
	key     string
	pattern *regexp.Regexp
}

// shapes are tried in order; the captures become the template arguments.
var shapes = []shape{
	// "<Alice> hi"
	{"chat.type.text", regexp.MustCompile(`^<([^<>\s]+)> (.*)$`)},
	// "* Alice waves"
	{"chat.type.emote", regexp.MustCompile(`^\* (\S+) (.*)$`)},
	// "Alice whispers to you: psst"
	{"commands.message.display.incoming", regexp.MustCompile(`^(\S+) whispers to you: (.*)$`)},
	// "You whisper to Alice: psst"
	{"commands.message.display.outgoing", regexp.MustCompile(`^You whisper to (\S+): (.*)$`)},
	// "Alice joined the game"
	{"multiplayer.player.joined", regexp.MustCompile(`^(\S+) joined the game$`)},
	// "Alice left the game"
	{"multiplayer.player.left", regexp.MustCompile(`^(\S+) left the game$`)},
	// "[Server] restarting soon"
	{"chat.type.announcement", regexp.MustCompile(`^\[([^\]]+)\] (.*)$`)},
}

// unsignedMarker is prepended by clients to chat that carries no signature.
const unsignedMarker = "[Not Secure] "
