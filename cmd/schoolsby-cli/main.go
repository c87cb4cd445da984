package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"schoolsby-client/cmd/schoolsby-cli/commands"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		cancel()
	}()

	commands.ExecuteContext(ctx)
}
