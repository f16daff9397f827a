package bootstrap

import (
	"context"
	"log/slog"

	"github.com/kirillkom/discord-research-agent/internal/config"
	"github.com/kirillkom/discord-research-agent/internal/core/domain"
	"github.com/kirillkom/discord-research-agent/internal/core/ports"
	"github.com/kirillkom/discord-research-agent/internal/core/usecase"
	"github.com/kirillkom/discord-research-agent/internal/infrastructure/contentstore"
	"github.com/kirillkom/discord-research-agent/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/discord-research-agent/internal/infrastructure/memory"
	natsqueue "github.com/kirillkom/discord-research-agent/internal/infrastructure/queue/nats"
	"github.com/kirillkom/discord-research-agent/internal/infrastructure/resilience"
	"github.com/kirillkom/discord-research-agent/internal/infrastructure/tools/fsops"
	"github.com/kirillkom/discord-research-agent/internal/infrastructure/tools/shell"
	"github.com/kirillkom/discord-research-agent/internal/infrastructure/tools/web"
	"github.com/kirillkom/discord-research-agent/internal/infrastructure/transcribe/whisper"
	"github.com/kirillkom/discord-research-agent/internal/observability/metrics"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Runner      ports.AgentRunner
	Transcriber ports.Transcriber
	Metrics     *metrics.AgentMetrics

	closeFn func()
}

func New(cfg config.Config, logger *slog.Logger, service string) (*App, error) {
	executor := resilience.NewExecutor(resilience.DefaultConfig())

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaModel)
	oracle := ollama.NewOracle(ollamaClient)

	toolbox := usecase.Toolbox{
		Fetcher:  web.NewFetcher(cfg.FetchTimeout),
		Searcher: web.NewTavilyClient(cfg.TavilyAPIKey, cfg.ToolTimeout, executor),
		Reader:   fsops.New(),
		Writer:   fsops.New(),
		Runner:   shell.NewRunner(cfg.BashTimeout),
		Models:   ollama.NewModelCatalog(ollamaClient, executor),
	}

	store := contentstore.New()
	dispatcher := usecase.NewDispatcher(toolbox, store, cfg.ToolTimeout, logger)
	sessions := memory.NewRegistry(cfg.MemoryCapacity)

	agentMetrics := metrics.NewAgentMetrics(service)
	publishers := []ports.RunEventPublisher{agentMetrics}

	closeFn := func() {}
	if cfg.NATSURL != "" {
		queue, err := natsqueue.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, natsqueue.Options{
			ResilienceExecutor: executor,
		})
		if err != nil {
			return nil, err
		}
		publishers = append(publishers, queue)
		closeFn = queue.Close
	}

	loop := usecase.NewAgentLoop(
		oracle,
		dispatcher,
		sessions,
		fanout(publishers),
		usecase.Limits{
			MaxIterations: cfg.MaxIterations,
			OracleTimeout: cfg.OracleTimeout,
		},
		logger,
	)

	app := &App{
		Config:  cfg,
		Logger:  logger,
		Runner:  loop,
		Metrics: agentMetrics,
		closeFn: closeFn,
	}
	if cfg.WhisperURL != "" {
		app.Transcriber = whisper.New(cfg.WhisperURL)
	}
	return app, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

type fanout []ports.RunEventPublisher

func (f fanout) PublishRunEvent(ctx context.Context, event domain.RunEvent) error {
	var firstErr error
	for _, publisher := range f {
		if err := publisher.PublishRunEvent(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
