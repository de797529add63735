package chatlog

import "testing"

// BenchmarkParse_PlayerChat benchmarks parsing a player chat line.
func BenchmarkParse_PlayerChat(b *testing.B) {
	line := "[23:59:59] [Render thread/INFO]: [System] [CHAT] <Alice> anyone got spare iron?"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Parse(line)
	}
}

// BenchmarkParse_ServerMessage benchmarks parsing a chat line with no known shape.
func BenchmarkParse_ServerMessage(b *testing.B) {
	line := "[23:59:59] [Render thread/INFO]: [System] [CHAT] Welcome to the server, enjoy your stay"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Parse(line)
	}
}

// BenchmarkParse_NotChat benchmarks the quick exclusion path.
func BenchmarkParse_NotChat(b *testing.B) {
	line := "[23:59:59] [Render thread/INFO]: Loaded 1234 recipes"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Parse(line)
	}
}
