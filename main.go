package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/b0bbywan/go-hwdiscovery/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	daemon, err := cmd.NewDaemon(ctx, cancel)
	if err != nil {
		log.Fatalf("Failed to start hwdiscovery: %v", err)
	}
	defer daemon.Close()

	if err := daemon.Run(); err != nil {
		log.Fatalf("hwdiscovery exited with error: %v", err)
	}
}
