package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	apiserver "microcasa/internal/api/server"
	"microcasa/internal/config"
	database "microcasa/internal/db"
	"microcasa/internal/metrics"
	"microcasa/internal/session"
	"microcasa/internal/sink"
	"microcasa/internal/storage"
	"microcasa/internal/web"
)

var configFile string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the deck over HTTP",
	Long: `Serve the deck as HTML pages with a JSON API.

Configuration comes from config.yaml and MICROCASA_* environment variables;
MICROCASA_SESSION_SECRET is required. Prometheus metrics are exposed on
server.metrics_port at /_metrics.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to config.yaml")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	data, err := loadResearch(contentPath, cfg.Deck.ContentPath)
	if err != nil {
		return err
	}
	renderer, err := web.NewRenderer(data)
	if err != nil {
		return err
	}

	db, err := database.New(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.AutoMigrate(); err != nil {
		return err
	}

	store, err := storage.New(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var observers []session.ObserverFactory
	if cfg.MQTT.Broker != "" {
		dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		mq, err := sink.Dial(dialCtx, cfg.MQTT.Broker, cfg.MQTT.ClientID, cfg.MQTT.Topic, logger)
		cancel()
		if err != nil {
			return err
		}
		defer mq.Close()
		observers = append(observers, mq.Observer)
	}

	metrics.Register()

	sessions := session.NewManager(session.Options{
		Slides:    renderer.Slides,
		State:     session.NewStateManager(db.DB),
		Observers: observers,
		Logger:    logger,
	})

	srv := apiserver.New(cfg, apiserver.Deps{
		Sessions: sessions,
		Renderer: renderer,
		Research: data,
		Storage:  store,
		Logger:   logger,
	})

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/_metrics", promhttp.Handler())

	servers := []*http.Server{
		{Addr: cfg.Server.Addr, Handler: srv.Handler(), ReadHeaderTimeout: 10 * time.Second},
		{Addr: cfg.Server.MetricsPort, Handler: metricsMux, ReadHeaderTimeout: 10 * time.Second},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, hs := range servers {
		hs := hs
		g.Go(func() error {
			logger.Info("listening", zap.String("addr", hs.Addr))
			if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		return sessions.Janitor(gctx, time.Minute, cfg.SessionTTL())
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for _, hs := range servers {
			if err := hs.Shutdown(shutdownCtx); err != nil {
				logger.Warn("shutdown", zap.String("addr", hs.Addr), zap.Error(err))
			}
		}
		return nil
	})

	return g.Wait()
}
