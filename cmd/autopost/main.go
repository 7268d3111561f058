// Package main implements the autopost CLI: persona-voiced post generation
// behind a novelty gate that refuses near-duplicates of earlier posts.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(defaultDeps()).ExecuteContext(ctx)
	interrupted := ctx.Err() != nil
	stop()

	code := exitCode(err)
	if interrupted && err != nil {
		code = ExitInterrupted
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(code)
}
