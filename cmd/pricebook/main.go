package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rgoulet/pricebook/internal/database"
	"github.com/rgoulet/pricebook/internal/logging"
	"github.com/rgoulet/pricebook/internal/scanner"
	"github.com/rgoulet/pricebook/internal/server"
)

func main() {
	logger := logging.Setup(os.Getenv("PRICEBOOK_LOG_LEVEL"))

	port := os.Getenv("PRICEBOOK_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("PRICEBOOK_DB_PATH")
	if dbPath == "" {
		dbPath = "pricebook.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	scannerClient := scanner.NewClient(scanner.Config{
		BaseURL: os.Getenv("PRICEBOOK_SCANNER_URL"),
		APIKey:  os.Getenv("PRICEBOOK_SCANNER_API_KEY"),
	})
	if !scannerClient.Configured() {
		logger.Warn("receipt scanner not configured; POST /api/scans will return 503")
	}

	srv := server.New(db, scannerClient, logger)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Pricebook running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
