package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/AVSAkash/interview-assistant/internal/adapters/ai"
	"github.com/AVSAkash/interview-assistant/internal/adapters/http/api"
	"github.com/AVSAkash/interview-assistant/internal/adapters/http/site"
	"github.com/AVSAkash/interview-assistant/internal/adapters/http/swagger"
	"github.com/AVSAkash/interview-assistant/internal/adapters/mq/rabbit"
	workerpool "github.com/AVSAkash/interview-assistant/internal/adapters/mq/worker"
	"github.com/AVSAkash/interview-assistant/internal/adapters/storage"
	service "github.com/AVSAkash/interview-assistant/internal/app"
	"github.com/AVSAkash/interview-assistant/internal/config"
	"github.com/AVSAkash/interview-assistant/pkg/logger"
	"github.com/AVSAkash/interview-assistant/pkg/metrics"
)

// HTTP server timeout constants. The write timeout is derived from the AI
// timeout, see writeTimeoutFor.
const (
	readTimeout            = 30 * time.Second
	writeHeadroom          = 30 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interview API, candidate page and dashboard",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides addr from config)")
}

func serve(parent context.Context) error {
	// Default Go collectors would duplicate the system metrics sampled per scrape.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}
	if err := setupLogging(ctx, cfg.LogLevel, cfg.LogJSON); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	log := logger.Get()

	store, err := newStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error(ctx, "storage close failed", logger.Error(err))
		}
	}()

	svc, gateway, err := buildService(ctx, cfg, store, log)
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := svc.Stop(stopCtx); err != nil {
			log.Error(ctx, "service stop failed", logger.Error(err))
		}
	}()

	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc, gateway),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeoutFor(cfg),
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("storage", cfg.StorageBackend),
			logger.String("ai_provider", cfg.AIProvider))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for shutdown signal or a listener failure.
	select {
	case <-ctx.Done():
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// writeTimeoutFor bounds a response by the slowest request: an answer chains
// two model calls (evaluation, then the next question or the summary). A zero
// AI timeout leaves model calls unbounded, so the write is unbounded too.
func writeTimeoutFor(cfg *config.Config) time.Duration {
	if cfg.AITimeout <= 0 {
		return 0
	}
	return 2*cfg.AITimeout + writeHeadroom
}

// buildService wires the model and the event sink into a Service over store.
func buildService(ctx context.Context, cfg *config.Config, store storage.Store, log logger.Logger) (*service.Service, *ai.Gateway, error) {
	completer, err := newCompleter(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create ai client: %w", err)
	}
	gateway := ai.NewGateway(completer,
		ai.WithRole(cfg.AIRole),
		ai.WithTimeout(cfg.AITimeout),
		ai.WithLogger(log.Named("ai")),
	)
	sink, err := newSink(cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("create event sink: %w", err)
	}

	svc := service.New(store, gateway,
		service.WithLogger(log.Named("service")),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.EventQueueSize),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithSink(sink),
	)
	return svc, gateway, nil
}

func newStore(ctx context.Context, cfg *config.Config, log logger.Logger) (*storage.Instrumented, error) {
	var (
		store storage.Store
		err   error
	)
	switch cfg.StorageBackend {
	case config.StorageMemory:
		store = storage.NewMemory()
	case config.StorageFile:
		store, err = storage.NewFile(cfg.StorageDir)
	case config.StorageRedis:
		store, err = storage.NewRedis(ctx, storage.RedisConfig{
			Address:   cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			Namespace: cfg.StorageNamespace,
		})
	case config.StorageS3:
		prefix := cfg.S3Prefix
		if prefix == "" {
			prefix = cfg.StorageNamespace
		}
		store, err = storage.NewS3(ctx, storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Prefix:    prefix,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	default:
		return nil, fmt.Errorf("%w: unknown storage_backend %q", config.ErrInvalidConfig, cfg.StorageBackend)
	}
	if err != nil {
		return nil, err
	}
	return storage.NewInstrumented(store, cfg.StorageBackend, log.Named("storage")), nil
}

func newCompleter(ctx context.Context, cfg *config.Config) (ai.Completer, error) {
	switch cfg.AIProvider {
	case config.ProviderGemini:
		return ai.NewGeminiCompleter(ctx, cfg.AIAPIKey, cfg.AIModel)
	case config.ProviderOpenAI:
		return ai.NewOpenAICompleter(cfg.AIAPIKey,
			ai.WithBaseURL(cfg.AIBaseURL),
			ai.WithModel(cfg.AIModel),
			ai.WithReferer(cfg.AIReferer),
		)
	default:
		return nil, fmt.Errorf("%w: unknown ai_provider %q", config.ErrInvalidConfig, cfg.AIProvider)
	}
}

// newSink publishes to RabbitMQ when configured and logs events otherwise.
func newSink(cfg *config.Config, log logger.Logger) (workerpool.Sink, error) {
	if cfg.RabbitURL == "" {
		return rabbit.NewLogSink(log.Named("events")), nil
	}
	return rabbit.NewPublisher(rabbit.Config{
		URL:        cfg.RabbitURL,
		Queue:      cfg.RabbitQueue,
		Expiration: cfg.RabbitExpiration,
	}, log.Named("rabbit"))
}

// newMux registers the API, the API docs and the candidate page.
func newMux(ctx context.Context, svc *service.Service, gateway *ai.Gateway) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(svc, gateway).Register(ctx, mux)
	swagger.Register(ctx, mux)
	site.Register(ctx, mux)
	return mux
}

// startServiceMetricsUpdater refreshes service gauges until ctx is done.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

func updateServiceMetrics(svc *service.Service) {
	stats := svc.GetStats()

	if candidates, ok := stats["candidates"].(int); ok {
		metrics.UpdateCandidatesTotal(candidates)
	}
	if workerCount, ok := stats["workerCount"].(int); ok {
		metrics.UpdateWorkerCount(workerCount)
	}
	if queueLen, ok := stats["queueLength"].(int); ok {
		if queueSize, ok := stats["queueSize"].(int); ok && queueSize > 0 {
			metrics.UpdateQueueUtilization(float64(queueLen) / float64(queueSize))
		}
	}
}
