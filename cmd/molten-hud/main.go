package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	hud "github.com/adityakaaltatva/ladle-tracking-system"
	"github.com/adityakaaltatva/ladle-tracking-system/internal/adapters/journal"
	"github.com/adityakaaltatva/ladle-tracking-system/internal/adapters/observability"
	"github.com/adityakaaltatva/ladle-tracking-system/internal/domain"
	"github.com/adityakaaltatva/ladle-tracking-system/internal/ports"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	var err error

	switch cmd {
	case "run":
		err = runCommand(os.Args[2:])
	case "validate":
		err = validateCommand(os.Args[2:])
	case "stats":
		err = statsCommand(os.Args[2:])
	case "journal":
		err = journalCommand(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		printUsage()
		err = fmt.Errorf("unknown command %q", cmd)
	}

	if err != nil {
		log.Fatalf("molten-hud %s: %v", cmd, err)
	}
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", "./data/config.yaml", "Path to HUD configuration file")
	addr := fs.String("addr", "", "Override http.addr from the config")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := hud.LoadConfig(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *addr != "" {
		cfg.HTTP.Addr = *addr
	}

	rt, err := hud.NewRuntime(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return rt.Run(ctx)
}

func validateCommand(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	cfgPath := fs.String("config", "./data/config.yaml", "Path to configuration file to validate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := hud.LoadConfig(*cfgPath); err != nil {
		return err
	}
	fmt.Printf("config %s looks good\n", *cfgPath)
	return nil
}

func statsCommand(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	url := fs.String("url", "http://localhost:8080/metrics", "Prometheus metrics endpoint")
	interval := fs.Duration("interval", 2*time.Second, "Refresh interval")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	fmt.Printf("Streaming metrics from %s (Ctrl+C to stop)\n", *url)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := printMetricsSnapshot(*url); err != nil {
				fmt.Fprintf(os.Stderr, "stats error: %v\n", err)
			}
		}
	}
}

func printMetricsSnapshot(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	targets := map[string]float64{
		observability.MetricTicks:         0,
		observability.MetricEnergy:        0,
		observability.MetricExported:      0,
		observability.MetricExportDropped: 0,
		observability.MetricQueueLength:   0,
		observability.MetricJournalSize:   0,
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			continue
		}
		for key := range targets {
			if strings.HasPrefix(line, key+" ") {
				var value float64
				if _, err := fmt.Sscanf(line, key+" %g", &value); err == nil {
					targets[key] = value
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	fmt.Printf("[%s] ticks=%.0f energy_kw=%.1f exported=%.0f dropped=%.0f queue=%.0f journal_bytes=%.0f\n",
		time.Now().Format(time.RFC3339),
		targets[observability.MetricTicks],
		targets[observability.MetricEnergy],
		targets[observability.MetricExported],
		targets[observability.MetricExportDropped],
		targets[observability.MetricQueueLength],
		targets[observability.MetricJournalSize],
	)
	return nil
}

func journalCommand(args []string) error {
	fs := flag.NewFlagSet("journal", flag.ExitOnError)
	dir := fs.String("dir", "./data/journal", "Journal directory")
	from := fs.Uint64("from", 1, "First journal entry id to print")
	asJSON := fs.Bool("json", false, "Print raw JSON records")
	if err := fs.Parse(args); err != nil {
		return err
	}

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	enc := json.NewEncoder(w)

	return journal.Scan(*dir, ports.JournalEntryID(*from), func(id ports.JournalEntryID, r *domain.TickRecord) error {
		if *asJSON {
			return enc.Encode(r)
		}
		_, err := fmt.Fprintf(w, "%6d tick=%-6d %s %-7s %-18s %s %.1fkW\n",
			id, r.Tick, r.Entry.Timestamp, r.Entry.LadleID, r.Entry.Operation, r.Entry.Hash, r.Energy.Value)
		return err
	})
}

func printUsage() {
	fmt.Printf(`Molten Metal HUD simulator

Usage:
  molten-hud <command> [flags]

Commands:
  run        Start the simulator and HTTP API using the provided config
  validate   Load and validate a config file without starting the runtime
  stats      Poll the Prometheus metrics endpoint and print live counters
  journal    Print the tick records stored in a journal directory

Examples:
  molten-hud run -config ./data/config.yaml
  molten-hud validate -config ./data/config.yaml
  molten-hud stats -url http://localhost:8080/metrics -interval 1s
  molten-hud journal -dir ./data/journal -from 100
`)
}
