package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fileorg/internal/services"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
			if services.IsPrecondition(err) {
				fmt.Fprintln(os.Stderr, "Run `fileorg check` to verify directories and the model endpoint.")
			}
		}
		stop()
		os.Exit(1)
	}
}
