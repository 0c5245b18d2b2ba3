package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/adityakaaltatva/ladle-tracking-system/pkg/hud"
)

func main() {
	cfg, err := hud.LoadConfig("../../data/config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	callback := func(batch []hud.TickRecord) error {
		for _, rec := range batch {
			fmt.Printf("tick=%d %s ladle=%s op=%q energy=%.1fkW\n",
				rec.Tick,
				rec.Entry.Timestamp,
				rec.Entry.LadleID,
				rec.Entry.Operation,
				rec.Energy.Value,
			)
		}
		return nil
	}

	rt, err := hud.NewRuntime(cfg, hud.WithCallbackSink("stdout", callback))
	if err != nil {
		log.Fatalf("build runtime: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rt.Run(ctx); err != nil {
		log.Fatalf("runtime error: %v", err)
	}
}
