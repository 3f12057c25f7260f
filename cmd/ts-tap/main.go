package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"TunnelSpectra/internal/config"
	"TunnelSpectra/internal/model"
	"TunnelSpectra/internal/transport"
)

// ts-tap subscribes to the event subject and prints every derived event,
// which is handy for watching a monitor from another host.
func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if !cfg.NATS.Enabled {
		log.Fatalf("NATS is not enabled in config. Nothing to tap.")
	}

	sub, err := transport.NewSubscriber(cfg.NATS)
	if err != nil {
		log.Fatalf("Failed to create subscriber: %v", err)
	}
	defer sub.Close()

	err = sub.Start(func(ev *model.ConnectionEvent) {
		log.Printf("[%s] %s %s user=%q virtual=%q server=%s",
			ev.Timestamp.Format("2006-01-02 15:04:05"),
			ev.Type, ev.SessionKey(), ev.Username, ev.VirtualIP, ev.ServerName)
	})
	if err != nil {
		log.Fatalf("Failed to subscribe: %v", err)
	}
	log.Printf("Tapping subject %q, press Ctrl+C to stop.", cfg.NATS.Subject)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
}
