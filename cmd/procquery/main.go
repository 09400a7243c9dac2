// Command procquery seeds, queries and explains process-instance queries.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/procquery/internal/cli"
)

const exitCodeInterrupted = 130 // 128 + SIGINT, mirrors shell convention

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := cli.NewRootCommand().ExecuteContext(ctx)
	if err == nil {
		return cli.ExitSuccess
	}
	if errors.Is(err, context.Canceled) && ctx.Err() == context.Canceled {
		return exitCodeInterrupted
	}

	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		// Usage errors from cobra (unknown flag, missing argument) are command errors.
		fmt.Fprintln(os.Stderr, "Error:", err)
		return cli.ExitCommandError
	}
	return exitErr.Code
}
