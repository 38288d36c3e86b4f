package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/training-portal/internal/config"
	"github.com/kirillkom/training-portal/internal/core/ports"
	"github.com/kirillkom/training-portal/internal/core/usecase"
	"github.com/kirillkom/training-portal/internal/infrastructure/accesslog/excel"
	"github.com/kirillkom/training-portal/internal/infrastructure/events/nats"
	"github.com/kirillkom/training-portal/internal/infrastructure/extractor"
	"github.com/kirillkom/training-portal/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/training-portal/internal/infrastructure/llm/openai"
	"github.com/kirillkom/training-portal/internal/infrastructure/provision"
	"github.com/kirillkom/training-portal/internal/infrastructure/resilience"
	"github.com/kirillkom/training-portal/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/training-portal/internal/observability/metrics"
)

const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

type App struct {
	Config  config.Config
	Metrics *metrics.PortalMetrics

	Materials ports.MaterialStore
	AccessLog ports.AccessLogStore
	Portal    ports.PortalService

	logger  *slog.Logger
	closeFn func()
}

// New builds the portal graph. The summary model is constructed once here
// and shared by every request.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	portalMetrics := metrics.NewPortalMetrics("portal")

	store, err := localfs.New(cfg.MaterialsDir)
	if err != nil {
		return nil, fmt.Errorf("init material store: %w", err)
	}
	accessLog, err := excel.New(cfg.AccessLogPath, cfg.AccessLogSheet)
	if err != nil {
		return nil, fmt.Errorf("init access log: %w", err)
	}

	model, err := newSummaryModel(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	publisher, closePublisher, err := newPublisher(cfg, logger)
	if err != nil {
		return nil, err
	}

	summarizer := usecase.NewSummarizeUseCase(model, usecase.SummaryConfig{
		MaxInputChars: cfg.SummaryMaxInputChars,
		MinLength:     cfg.SummaryMinLength,
		MaxLength:     cfg.SummaryMaxLength,
	}, portalMetrics)
	recorder := usecase.NewRecordAccessUseCase(accessLog, publisher, portalMetrics, logger)
	portal := usecase.NewPortalUseCase(store, extractor.NewDefault(store), summarizer, recorder, accessLog, logger)

	return &App{
		Config:    cfg,
		Metrics:   portalMetrics,
		Materials: store,
		AccessLog: accessLog,
		Portal:    portal,
		logger:    logger,
		closeFn:   closePublisher,
	}, nil
}

// Provision unpacks the bundled materials archive if it has not been done yet.
func (a *App) Provision(ctx context.Context) error {
	result, err := NewProvisioner(a.Config, a.logger).Ensure(ctx)
	if err != nil {
		a.Metrics.RecordProvision("error")
		return fmt.Errorf("provision materials: %w", err)
	}
	a.Metrics.RecordProvision(string(result))
	return nil
}

func NewProvisioner(cfg config.Config, logger *slog.Logger) *provision.Provisioner {
	return provision.New(cfg.ProvisionArchive, cfg.ProvisionDest, cfg.ProvisionMarker, logger)
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

func newExecutor(cfg config.Config, logger *slog.Logger) *resilience.Executor {
	rc := resilience.DefaultConfig()
	rc.RetryMaxAttempts = cfg.SummaryRetryMaxAttempts
	rc.BreakerEnabled = cfg.SummaryBreakerEnabled
	return resilience.NewExecutor(rc, logger)
}

func newSummaryModel(ctx context.Context, cfg config.Config, logger *slog.Logger) (ports.SummaryModel, error) {
	executor := newExecutor(cfg, logger)

	switch cfg.SummaryProvider {
	case ProviderOllama, "":
		client := ollama.NewWithOptions(cfg.OllamaURL, cfg.OllamaSummaryModel, ollama.Options{
			Seed:               cfg.SummarySeed,
			ResilienceExecutor: executor,
		})
		if cfg.SummaryPreload {
			if err := client.Preload(ctx); err != nil {
				logger.Warn("summary_model_preload_failed", "model", client.Model(), "error", err)
			} else {
				logger.Info("summary_model_preloaded", "model", client.Model())
			}
		}
		return ollama.NewSummarizer(client), nil
	case ProviderOpenAI:
		client := openai.NewClient(openai.Config{
			BaseURL: cfg.OpenAIBaseURL,
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAISummaryModel,
			Seed:    cfg.SummarySeed,
		})
		return openai.NewSummarizer(client, cfg.OpenAISummaryModel, cfg.SummarySeed, executor), nil
	default:
		return nil, fmt.Errorf("unknown summary provider %q", cfg.SummaryProvider)
	}
}

func newPublisher(cfg config.Config, logger *slog.Logger) (ports.AccessEventPublisher, func(), error) {
	if cfg.NATSURL == "" {
		return nats.Noop{}, func() {}, nil
	}
	publisher, err := nats.New(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: resilience.NewExecutor(resilience.DefaultConfig(), logger),
		Logger:             logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init access event publisher: %w", err)
	}
	return publisher, publisher.Close, nil
}
