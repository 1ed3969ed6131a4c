package app

import (
	"context"
	"fmt"
	"log/slog"

	"InboxAgent/internal/classify"
	"InboxAgent/internal/config"
	"InboxAgent/internal/infrastructure/gmailbox"
	"InboxAgent/internal/infrastructure/llm"
	"InboxAgent/internal/infrastructure/scheduler"
	"InboxAgent/internal/logging"
	"InboxAgent/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	return &Application{cfg: cfg, logger: baseLogger}
}

// Run authenticates against Gmail, assembles the pipeline and executes it:
// once by default, or on the configured interval until the context ends.
func (a *Application) Run(ctx context.Context) error {
	svc, err := gmailbox.NewService(ctx, a.cfg.Gmail)
	if err != nil {
		return fmt.Errorf("gmail service: %w", err)
	}

	mailbox := gmailbox.NewMailbox(svc, a.logger.With("component", "gmail"))
	chat := llm.NewOpenAIClient(a.cfg.LLM, a.logger.With("component", "llm"))
	analyzer := classify.NewAnalyzer(chat,
		a.cfg.LLM.MaxRetries, a.cfg.LLM.Timeout(),
		a.logger.With("component", "analyzer"))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Mailbox:  mailbox,
		Cascade:  classify.NewCascade(a.cfg.Rules.MarketingSenders),
		Analyzer: analyzer,
		Logger:   a.logger.With("component", "pipeline"),
	})

	interval := a.cfg.Batch.PollInterval()
	if interval <= 0 {
		report, err := pipeline.ProcessBatch(ctx, a.cfg.Batch.Limit)
		if err != nil {
			return err
		}
		fmt.Printf("Done. checked=%d, labeled=%d, skipped=%d, failed=%d\n",
			report.Checked, report.Labeled, report.Skipped, report.Failed)
		return nil
	}

	driver := scheduler.NewInterval(interval)
	runner := usecase.NewScheduler(driver, pipeline, a.cfg.Batch.Limit,
		a.logger.With("component", "scheduler"))
	if err := runner.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()
	return runner.Stop(context.Background())
}
