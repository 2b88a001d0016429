// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/doodleparty/server/internal/clock"
	"github.com/doodleparty/server/internal/config"
	"github.com/doodleparty/server/internal/dispatcher"
	"github.com/doodleparty/server/internal/middleware"
	"github.com/doodleparty/server/internal/registry"
	"github.com/doodleparty/server/internal/scheduler"
	"github.com/doodleparty/server/internal/transport"
)

var (
	flagAddr     string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "doodleparty-server",
	Short: "Real-time lobby server for the drawing-and-voting party game",
	Long: `doodleparty-server hosts one or more concurrent game lobbies over
WebSocket connections: players join a lobby, vote on a theme, draw to a
prompt, vote on each other's drawings, and watch a showcase of the
results — all driven by a single per-lobby phase timer.`,
	RunE: runServe,
}

func init() {
	defaults := config.Defaults()
	rootCmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (default "+defaults.Addr+", or $DOODLEPARTY_ADDR)")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error (default "+defaults.LogLevel+", or $DOODLEPARTY_LOG_LEVEL)")
}

func runServe(_ *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: failed to load .env: %v\n", err)
	}

	cfg := config.FromEnv()
	if flagAddr != "" {
		cfg.Addr = flagAddr
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}

	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	clk := clock.Real()
	conns := registry.NewConnectionRegistry()
	lobbies := registry.NewLobbyRegistry(clk, func() int64 { return rand.Int63() })

	// The scheduler needs the dispatcher's ApplyEffects as its
	// EffectHandler, and the dispatcher needs the scheduler to arm/disarm
	// timers — build the dispatcher first with no scheduler, then bind it
	// once the scheduler exists.
	d := dispatcher.New(lobbies, conns, nil, logger)
	sched := scheduler.New(clk, lobbies.Get, d.ApplyEffects)
	d.SetScheduler(sched)

	handler := transport.NewHandler(d, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/ws", middleware.LogMiddleware(logger)(handler))

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.WithField("addr", cfg.Addr).Info("doodleparty-server: listening")
		errc <- server.ListenAndServe()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errc:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server exited: %w", err)
		}
	case sig := <-sigs:
		logger.WithField("signal", sig).Info("doodleparty-server: shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}
