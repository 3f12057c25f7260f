package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"TunnelSpectra/internal/config"
	"TunnelSpectra/internal/query"

	"github.com/gorilla/mux"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if !cfg.ClickHouse.Enabled {
		log.Fatalf("ClickHouse is not enabled in config. API server cannot start.")
	}

	// Initialize querier
	querier, err := query.NewClickHouseQuerier(cfg.ClickHouse)
	if err != nil {
		log.Fatalf("Failed to create querier: %v", err)
	}

	// Initialize router
	r := mux.NewRouter()

	apiHandler := &APIHandler{querier: querier}

	r.HandleFunc("/api/v1/summary", apiHandler.summaryHandler).Methods("GET")
	r.HandleFunc("/api/v1/clients/top", apiHandler.topClientsHandler).Methods("GET")
	r.HandleFunc("/api/v1/events", apiHandler.timelineHandler).Methods("GET")
	r.HandleFunc("/api/v1/clients/{ip}/events", apiHandler.clientEventsHandler).Methods("GET")

	// Start HTTP server
	server := &http.Server{
		Addr:    cfg.API.ListenAddr,
		Handler: r,
	}

	go func() {
		log.Printf("API server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v", server.Addr, err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("API server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("API server exited.")
}
