package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	hud "github.com/adityakaaltatva/ladle-tracking-system"
)

func main() {
	cfg, err := hud.LoadConfig("../../data/config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	sink, batches, closeBatches := hud.NewChannelSink("fanout", 32)
	defer closeBatches()

	rt, err := hud.NewRuntime(cfg, hud.WithSink(sink))
	if err != nil {
		log.Fatalf("build runtime: %v", err)
	}

	go ledgerWatcher("ledger", batches)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rt.Run(ctx); err != nil {
		log.Fatalf("runtime error: %v", err)
	}
}

func ledgerWatcher(name string, batches <-chan []hud.TickRecord) {
	for batch := range batches {
		for _, rec := range batch {
			fmt.Printf("[%s] %s %s %s\n", name, rec.At.Format(time.RFC3339), rec.Entry.LadleID, rec.Entry.Message)
		}
	}
}
