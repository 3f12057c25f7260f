package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"TunnelSpectra/internal/config"
	"TunnelSpectra/internal/monitor"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the configuration file")
	flag.Parse()

	log.Println("Starting ts-monitor...")

	// 1. Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Println("Configuration loaded successfully.")

	// 2. Initialize the monitor with its engine and sinks
	mon, err := monitor.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create monitor: %v", err)
	}

	// 3. Start polling
	mon.Start()

	// 4. Wait for a shutdown signal for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	log.Println("Shutdown signal received, stopping monitor...")
	mon.Stop()
	log.Println("Shutdown complete.")
}
