package chatnotify_test

import (
	"fmt"
	"log"

	"github.com/chatnotify/chatnotify-go/pkg/chatnotify"
	"github.com/chatnotify/chatnotify-go/pkg/chatnotify/config"
	"github.com/chatnotify/chatnotify-go/pkg/chatnotify/richtext"
)

func ExampleEngine_Process() {
	cfg := config.Default("Steve")
	cfg.AddNotification(config.NewNotification(config.Literal("diamond")))

	engine, err := chatnotify.NewEngine(cfg)
	if err != nil {
		log.Fatal(err)
	}

	res := engine.Process(richtext.Text("found a diamond today"))
	fmt.Println(res.Activated, res.Index, res.Matched)
	// Output: true 1 diamond
}

func ExampleEngine_RecordOutbound() {
	cfg := config.Default("Steve")
	cfg.IgnoreOwnMessages = true

	engine, err := chatnotify.NewEngine(cfg)
	if err != nil {
		log.Fatal(err)
	}

	engine.RecordOutbound("anyone selling iron?", false)
	res := engine.Process(&richtext.Template{
		Key:  "chat.type.text",
		Args: []richtext.Arg{richtext.StringArg("Steve"), richtext.StringArg("anyone selling iron?")},
	})
	fmt.Println(res.SelfMessage, res.Activated)
	// Output: true false
}

func ExampleWithSender() {
	cfg := config.Default("Steve")
	n := config.NewNotification(config.Literal("tpa"))
	n.ResponseEnabled = true
	n.Responses = []config.ResponseMessage{{Text: "/tpaccept", Delay: 2}}
	cfg.AddNotification(n)

	sender := chatnotify.SenderFuncs{
		Command: func(cmd string) { fmt.Println("command:", cmd) },
	}
	engine, err := chatnotify.NewEngine(cfg, chatnotify.WithSender(sender))
	if err != nil {
		log.Fatal(err)
	}

	engine.ProcessMessage(richtext.Text("Alex has requested to teleport to you (tpa)"))
	for i := 0; i < 3; i++ {
		engine.OnTick()
	}
	// Output: command: tpaccept
}
