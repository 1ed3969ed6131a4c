package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"InboxAgent/internal/classify"
	"InboxAgent/internal/domain"
	"InboxAgent/internal/labels"
	"InboxAgent/internal/ports"
)

// Report summarizes one batch run. Skipped covers already-processed messages
// and sentinel outcomes; Failed counts messages left unresolved.
type Report struct {
	Checked int
	Labeled int
	Skipped int
	Failed  int
}

// PipelineDeps wires the collaborators into the triage pipeline.
type PipelineDeps struct {
	Mailbox  ports.Mailbox
	Cascade  *classify.Cascade
	Analyzer *classify.Analyzer
	Logger   *slog.Logger
}

// Pipeline implements the per-message triage workflow: rule pass, optional
// body escalation and second rule pass, model fallback, label application.
// Messages are independent and handled sequentially to completion.
type Pipeline struct {
	mailbox  ports.Mailbox
	cascade  *classify.Cascade
	analyzer *classify.Analyzer
	logger   *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		mailbox:  deps.Mailbox,
		cascade:  deps.Cascade,
		analyzer: deps.Analyzer,
		logger:   logger,
	}
}

// ProcessBatch triages up to limit recent messages. A listing or label-setup
// failure aborts the run; anything that goes wrong on a single message is
// recorded and the batch continues.
func (p *Pipeline) ProcessBatch(ctx context.Context, limit int) (Report, error) {
	var report Report

	labelIDs, err := p.mailbox.EnsureLabels(ctx, labels.Wanted())
	if err != nil {
		return report, fmt.Errorf("ensure labels: %w", err)
	}
	processedID := labelIDs[domain.ProcessedLabel]

	messages, err := p.mailbox.ListRecent(ctx, limit)
	if err != nil {
		return report, fmt.Errorf("list recent: %w", err)
	}

	for _, msg := range messages {
		report.Checked++

		if msg.HasLabel(processedID) || msg.HasLabel(domain.ProcessedLabel) {
			report.Skipped++
			continue
		}

		decision, err := p.decide(ctx, msg)
		if err != nil {
			var failure *classify.FailureError
			if errors.As(err, &failure) {
				report.Failed++
				p.logger.Error("message left unresolved",
					"message_id", msg.ID, "attempts", failure.Attempts,
					"error", failure.LastErr, "raw_output", failure.RawOutput)
				continue
			}
			// Collaborator transport failure: likely systemic, stop the run.
			return report, fmt.Errorf("classify message %s: %w", msg.ID, err)
		}

		actions := labels.Resolve(decision)
		if decision.Category.IsSentinel() {
			p.logger.Debug("no confident decision",
				"message_id", msg.ID, "from", msg.From,
				"subject", msg.Subject, "reasoning", decision.Reasoning)
		}

		add := resolveIDs(labelIDs, actions.Add)
		remove := resolveIDs(labelIDs, actions.Remove)
		if err := p.mailbox.ApplyLabels(ctx, msg.ID, add, remove); err != nil {
			report.Failed++
			p.logger.Error("apply labels", "message_id", msg.ID, "error", err)
			continue
		}

		if decision.Category.IsSentinel() {
			report.Skipped++
			p.logger.Info("processed without category",
				"message_id", msg.ID, "subject", truncateSubject(msg.Subject))
			continue
		}

		report.Labeled++
		p.logger.Info("labeled",
			"message_id", msg.ID, "subject", truncateSubject(msg.Subject),
			"category", decision.Category, "origin", decision.Origin,
			"reasoning", decision.Reasoning)
	}

	return report, nil
}

// decide runs the layered classification for one message: cheap rule pass,
// escalation fetch with a second rule pass, then the model fallback. Body text
// is fetched at most once and only when the cheap signal is insufficient.
func (p *Pipeline) decide(ctx context.Context, msg domain.Message) (domain.Decision, error) {
	category, decided := p.cascade.Classify(msg.Subject, msg.Snippet, msg.From)

	body := ""
	if !decided || classify.NeedsFullBody(msg.Subject, msg.Snippet) {
		fetched, err := p.mailbox.FetchBody(ctx, msg.ID)
		if err != nil {
			// The cheap signal is still usable; degrade instead of dropping
			// the message.
			p.logger.Warn("fetch body", "message_id", msg.ID, "error", err)
		} else {
			body = fetched
		}
	}

	if body != "" {
		if second, ok := p.cascade.Classify(msg.Subject, msg.Snippet+"\n"+body, msg.From); ok {
			category, decided = second, true
		}
	}

	if decided {
		return domain.Decision{
			Category:  category,
			Urgency:   ruleUrgency(category),
			Reasoning: "rule_short_circuit",
			Origin:    domain.OriginRule,
		}, nil
	}

	enriched := msg
	if body != "" {
		enriched.Snippet = msg.Snippet + "\n" + body
	}
	return p.analyzer.Analyze(ctx, enriched)
}

// ruleUrgency assigns a default urgency per category for rule decisions; the
// cascade itself carries no urgency signal.
func ruleUrgency(c domain.Category) domain.Urgency {
	switch c {
	case domain.CategoryOTPSecurity, domain.CategoryInterviews:
		return domain.UrgencyHigh
	case domain.CategoryAssessments, domain.CategoryInProcess:
		return domain.UrgencyMedium
	default:
		return domain.UrgencyLow
	}
}

func resolveIDs(ids map[string]string, names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if id, ok := ids[name]; ok && id != "" {
			out = append(out, id)
			continue
		}
		// System labels such as UNREAD are addressed by their fixed id.
		out = append(out, name)
	}
	return out
}

func truncateSubject(s string) string {
	const max = 70
	if len(s) <= max {
		return s
	}
	return s[:max]
}
