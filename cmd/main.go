package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"medidesk/internal/config"
	"medidesk/internal/domain"
	"medidesk/internal/events"
	httpapi "medidesk/internal/http"
	"medidesk/internal/logger"
	"medidesk/internal/notification"
	"medidesk/internal/report"
	"medidesk/internal/repository"
	"medidesk/internal/service"
	"medidesk/internal/ws"

	_ "medidesk/docs"
)

// @title MediDesk API
// @version 1.0
// @description Clinic front desk queue, pharmacy inventory and staff notifications.
// @host localhost:9091
// @BasePath /api/v1
func main() {
	rootCmd := &cobra.Command{
		Use:   "medidesk",
		Short: "Clinic reception and pharmacy back office",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(exportInventoryCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func exportInventoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-inventory",
		Short: "Write the demo inventory to an xlsx file",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			lowOnly, _ := cmd.Flags().GetBool("low-stock")

			ctx := cmd.Context()
			store := repository.NewMemoryStore()
			if err := repository.SeedDemo(ctx, store, time.Now()); err != nil {
				return fmt.Errorf("seed demo data: %w", err)
			}
			products := service.NewProductService(store, repository.NewMemoryTx(store), nil, zerolog.Nop())

			var f repository.ProductFilter
			if lowOnly {
				f.Statuses = lowStatuses
			}
			list, err := products.List(ctx, f)
			if err != nil {
				return err
			}
			data, err := report.InventoryWorkbook(list)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d products to %s\n", len(list), out)
			return nil
		},
	}
	cmd.Flags().String("out", "inventory.xlsx", "Output file")
	cmd.Flags().Bool("low-stock", false, "Only products below their reorder threshold")
	return cmd
}

var lowStatuses = []domain.StockStatus{domain.StockLow, domain.StockOutOfStock}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("invalid config")
		return err
	}
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := repository.NewMemoryStore()
	if cfg.SeedDemo {
		if err := repository.SeedDemo(ctx, store, time.Now()); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
		log.Info().Msg("demo data loaded")
	}

	feed := notification.NewFeed(cfg.NotificationCapacity)
	hub := ws.NewHub(log.With().Str("component", "ws").Logger())
	go hub.Run(ctx)

	sinks := events.Multi{feed, hub}
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			// без Redis сервер работает, события остаются в ленте и WS
			log.Warn().Err(err).Msg("redis unavailable, stream sink disabled")
		} else {
			sinks = append(sinks, events.NewRedisStream(client, cfg.RedisStream, cfg.RedisStreamMaxLen))
			log.Info().Str("stream", cfg.RedisStream).Msg("redis stream sink enabled")
		}
	}

	tx := repository.NewMemoryTx(store)
	receptionSvc := service.NewReceptionService(repository.NewMemoryReception(store), repository.NewMemoryPatients(store), tx, sinks, log)
	productsSvc := service.NewProductService(store, tx, sinks, log)
	ordersSvc := service.NewOrderService(store, repository.NewMemoryOrders(store), tx, sinks, log)

	srv := httpapi.NewServer(httpapi.Deps{
		Reception:   receptionSvc,
		Products:    productsSvc,
		Orders:      ordersSvc,
		Feed:        feed,
		Hub:         hub,
		Log:         log,
		CORSOrigins: cfg.CORSOrigins,
	})

	httpServer := &http.Server{
		Addr:    cfg.Addr(),
		Handler: srv.Engine(),
	}

	go func() {
		log.Info().Str("addr", httpServer.Addr).Str("env", cfg.Env).Msg("HTTP server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
	cancel()
	return nil
}
