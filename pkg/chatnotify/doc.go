// Package chatnotify decides, for each incoming chat line of a game client,
// whether a user-configured notification fires.
//
// This package allows you to:
//   - Highlight words, phrases or regex matches inside rich text chat lines
//   - Play a sound cue when a notification fires
//   - Send automatic replies after a configurable number of ticks
//   - Ignore the server's echo of messages you sent yourself
//
// # Basic Usage
//
// Create an [Engine] from a rule set and call it from the client's hooks:
//
//	cfg, err := config.LoadOrDefault("chatnotify.json", "Steve")
//	if err != nil {
//	    log.Printf("using defaults: %v", err)
//	}
//
//	engine, err := chatnotify.NewEngine(cfg,
//	    chatnotify.WithProfileName("Steve"),
//	    chatnotify.WithSoundPlayer(chatnotify.SoundPlayerFunc(playSound)),
//	    chatnotify.WithSender(client),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// For every received line, before it is displayed:
//	line = engine.ProcessMessage(line)
//
//	// For every line or command the user sends:
//	engine.RecordOutbound(text, isCommand)
//
//	// Once per client tick:
//	engine.OnTick()
//
// ProcessMessage returns its argument unchanged when no notification fires,
// so callers can compare the result with the input to skip a re-render.
//
// # Rules
//
// Notifications are checked in order and at most one fires per line. The
// first notification is the username notification; it cannot be removed or
// moved. Catch-all notifications are moved behind all others when the rule
// set is validated. See the [config] package for the rule file format.
//
// # Rich Text
//
// Chat lines are [richtext.Node] trees. The engine never modifies a tree it
// is given; a restyled line is a new tree that shares unchanged subtrees
// with the input.
//
// # Concurrency
//
// All methods are safe for concurrent use. ProcessMessage does no I/O and
// never blocks on anything but the engine's own lock, and the engine starts
// no goroutines. Sound and send callbacks are invoked after the lock is
// released, so they may call back into the engine.
package chatnotify
