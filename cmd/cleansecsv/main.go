package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

func main() {
	os.Exit(run())
}

func run() int {
	// The runtime's default SIGPIPE disposition kills the process on an
	// EPIPE write to stdout before the error can surface; ignore the
	// signal so the write returns EPIPE and the broken-pipe exit below
	// can run.
	signal.Ignore(syscall.SIGPIPE)

	// Load .env from the working directory before any env lookup; real
	// environment variables keep priority over file values.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		// Downstream consumers like head close the pipe early. That is a
		// clean exit, not a failure.
		if isBrokenPipe(err) {
			return 0
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
