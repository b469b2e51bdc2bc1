package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/frontier/internal/api"
	"github.com/wonny/frontier/internal/api/handlers"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health            - Health check
  POST /api/v1/simulate   - Run a Monte Carlo simulation
  POST /api/v1/frontier   - Run an efficient frontier search

Example:
  go run ./cmd/frontier serve
  go run ./cmd/frontier serve --port 8080`,
	RunE: runServe,
}

var servePort string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "API server port (default from PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if servePort != "" {
		a.cfg.Port = servePort
	}

	runHandler := handlers.NewRunHandler(a.loader, a.cfg.AlphaVantage.StartYear, a.logger)
	router := api.NewRouter(runHandler, a.logger)
	server := api.New(a.cfg, a.logger, router)

	go func() {
		if err := server.Start(); err != nil {
			a.logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	if !quiet {
		fmt.Printf("Server running on http://localhost:%s\n", a.cfg.Port)
		fmt.Println("Press Ctrl+C to stop")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}
