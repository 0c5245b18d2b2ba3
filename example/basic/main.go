package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	hud "github.com/adityakaaltatva/ladle-tracking-system"
)

func main() {
	cfg, err := hud.LoadConfig("../../data/config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	rt, err := hud.NewRuntime(cfg)
	if err != nil {
		log.Fatalf("build runtime: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rt.Run(ctx); err != nil {
		log.Fatalf("hud runtime exited: %v", err)
	}
}
