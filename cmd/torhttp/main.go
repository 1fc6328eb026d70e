// Command torhttp sends a single HTTP request over tor and prints the response.
package main

import (
	"os"

	"github.com/apex/log"
	colorable "github.com/mattn/go-colorable"
)

func main() {
	log.Log = &log.Logger{Level: log.InfoLevel, Handler: newLogHandler(os.Stderr)}
	env := &environment{
		logger:       log.Log,
		setVerbose:   func() { log.SetLevel(log.DebugLevel) },
		stdout:       colorable.NewColorableStdout(),
		newTransport: newTorTransport,
	}
	if err := newRootCommand(env).Execute(); err != nil {
		os.Exit(1)
	}
}
