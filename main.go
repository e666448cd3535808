/*
This is an example of application that will use the
engine package to test things out
*/
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/fyrebird/engine"
	"github.com/spaghettifunk/fyrebird/testbed"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML or YAML application configuration")
	flag.Parse()

	tb, err := testbed.NewTestGame(*configPath)
	if err != nil {
		panic(err)
	}

	e, err := engine.New(tb.Game)
	if err != nil {
		panic(err)
	}

	if err := e.Initialize(); err != nil {
		panic(err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// the loop notices the stop request and shuts the engine down itself
	go func() {
		<-sigCh
		e.Stop()
	}()

	// run engine
	if err := e.Run(); err != nil {
		panic(err)
	}
}
