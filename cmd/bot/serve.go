package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/shoushou-fitness/clubbot/internal/config"
	"github.com/shoushou-fitness/clubbot/internal/handlers"
	"github.com/shoushou-fitness/clubbot/internal/metrics"
	"github.com/shoushou-fitness/clubbot/internal/services"
	"github.com/shoushou-fitness/clubbot/internal/transport"
	"github.com/shoushou-fitness/clubbot/pkg/logging"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook server and optional NATS/WhatsApp channels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.NewConfig()
			if err := cfg.Validate(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logging.New(cfg.LogLevel))
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *logging.Logger) error {
	logger.Info("starting clubbot", "addr", cfg.HTTPAddr, "backend", cfg.DataBackend)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewBotMetrics(reg)

	gateway, closeGateway, err := openGateway(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open dataset: %w", err)
	}
	defer closeGateway()

	states, closeStates, err := openStateStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}
	defer closeStates()

	line, err := services.NewLineClient(services.LineConfig{
		BaseURL:       cfg.LineAPIBaseURL,
		AccessToken:   cfg.LineChannelAccessToken,
		ChannelSecret: cfg.LineChannelSecret,
		Metrics:       m,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	bot := newBot(cfg, gateway, states, m, logger)
	bot.AddChannel(handlers.ChannelLine, line)

	// optional channels, closed by the errgroup on shutdown
	var channels []func() error
	closeChannels := func() {
		for _, c := range channels {
			_ = c()
		}
	}

	if cfg.WhatsAppEnabled {
		wa, err := services.NewWhatsAppService(ctx, cfg.WhatsAppStorePath, m, logger)
		if err != nil {
			return fmt.Errorf("init whatsapp: %w", err)
		}
		channels = append(channels, func() error {
			wa.Disconnect()
			logger.Info("whatsapp channel stopped")
			return nil
		})
		bot.AddChannel(handlers.ChannelWhatsApp, wa)
		wa.AddEventHandler(bot.HandleMessage)
		logger.Info("whatsapp channel running")
	}

	if cfg.NatsURL != "" {
		nt, err := transport.NewNATSTransport(transport.NATSConfig{
			URL:     cfg.NatsURL,
			Subject: cfg.NatsSubject,
			Timeout: cfg.NatsTimeout,
		}, bot, m, logger)
		if err != nil {
			closeChannels()
			return err
		}
		if err := nt.Start(); err != nil {
			nt.Close()
			closeChannels()
			return err
		}
		channels = append(channels, func() error {
			logger.Info("nats transport stopped")
			return nt.Close()
		})
	}

	if cfg.APIKey == "" {
		logger.Warn("API_KEY is empty, push endpoint will reject requests")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(handlers.RequestLogger(logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Post("/webhook", handlers.NewLineWebhookHandler(line, bot, logger).ServeHTTP)
	r.Post("/api/send-message", handlers.NewMessageHandler(line, cfg.APIKey, logger).SendMessage)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	closeOnDone(gctx, g, channels)

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// closeOnDone runs each closer in g once ctx is done.
func closeOnDone(ctx context.Context, g *errgroup.Group, closers []func() error) {
	for _, c := range closers {
		g.Go(func() error {
			<-ctx.Done()
			return c()
		})
	}
}
