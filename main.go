package main

import (
	"log"
)

// Build information injected at compile time with -ldflags.
var (
	GitCommit string
	GitTag    string
	BuildTime string
)

func main() {
	app, err := NewApp()
	if err != nil {
		log.Fatal("book catalog failed to initialize: ", err)
	}
	if err = app.Run(); err != nil {
		log.Fatal("book catalog exited. check logs for more details. ", err)
	}
}
