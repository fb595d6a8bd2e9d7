package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/nodegraph/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c := cli.New(os.Stderr, cli.LogInfo)
	if err := c.RootCommand().ExecuteContext(ctx); err != nil {
		code := cli.ExitCode(err)
		if code != 130 {
			fmt.Fprintln(os.Stderr, cli.ErrorMessage(err))
		}
		cancel()
		os.Exit(code)
	}
}
