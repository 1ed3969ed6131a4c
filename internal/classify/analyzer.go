package classify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"InboxAgent/internal/domain"
	"InboxAgent/internal/ports"
)

const systemPrompt = `You are an AI email assistant for a job-application inbox.
You MUST output ONLY valid JSON. No markdown. No extra text.

You MUST choose "label" from EXACTLY this list (case-sensitive):
APPLIED
ASSESSMENTS
IN_PROCESS
INTERVIEWS
REJECTED
OTP_SECURITY
RECOMMENDATIONS
JOB_ALERTS
ADVERTISEMENTS

If UNSURE about the label, choose OTHERS.

You MUST choose "urgency" from EXACTLY this list:
low
medium
high

Schema (return EXACTLY these keys, no more, no less):
{
  "label": "<ONE of the allowed label strings>",
  "urgency": "<low|medium|high>",
  "reasoning_brief": "<1 short sentence>",
  "needs_reply": boolean
}

Rules:
- Output JSON only.
- Use ONLY the key "label" (never "category").
- Never invent new labels.
- Keep reasoning_brief to 1 sentence.`

const rawOutputCap = 500

// FailureError reports an exhausted retry budget against the model. It
// carries the last parse/validation error and a truncated copy of the last
// raw output for diagnostics.
type FailureError struct {
	Attempts  int
	LastErr   error
	RawOutput string
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("model classification failed after %d attempts: %v", e.Attempts, e.LastErr)
}

func (e *FailureError) Unwrap() error { return e.LastErr }

// Analyzer is the model-backed fallback classifier. It is only consulted when
// the rule cascade missed on both passes.
type Analyzer struct {
	client     ports.ChatClient
	maxRetries int
	timeout    time.Duration
	logger     *slog.Logger
}

// NewAnalyzer wires the chat collaborator. maxRetries counts re-issues after
// the first attempt; a negative value falls back to the default of 2.
func NewAnalyzer(client ports.ChatClient, maxRetries int, timeout time.Duration, logger *slog.Logger) *Analyzer {
	if maxRetries < 0 {
		maxRetries = 2
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{client: client, maxRetries: maxRetries, timeout: timeout, logger: logger}
}

type modelResponse struct {
	Label          string `json:"label"`
	Urgency        string `json:"urgency"`
	ReasoningBrief string `json:"reasoning_brief"`
	NeedsReply     *bool  `json:"needs_reply"`
}

// Analyze asks the model for a decision on the message. Malformed output and
// per-attempt timeouts are retried with the exact error appended to the
// prompt; transport failures surface to the caller untouched.
func (a *Analyzer) Analyze(ctx context.Context, msg domain.Message) (domain.Decision, error) {
	userPrompt := fmt.Sprintf(`Classify this email for a job-application inbox.

From: %s
Date: %s
Subject: %s
Snippet: %s

Return ONLY JSON with EXACT keys: label, urgency, reasoning_brief, needs_reply.
The key must be "label" (NOT category).
Example:
{"label":"APPLIED","urgency":"low","reasoning_brief":"Application confirmation.","needs_reply":false}
`, msg.From, msg.Date, msg.Subject, msg.Snippet)

	var (
		lastErr error
		lastRaw string
	)

	attempts := a.maxRetries + 1
	for attempt := 0; attempt < attempts; attempt++ {
		raw, err := a.complete(ctx, userPrompt)
		switch {
		case err == nil:
			decision, parseErr := parseDecision(raw)
			if parseErr == nil {
				return decision, nil
			}
			lastErr, lastRaw = parseErr, raw
		case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
			// Attempt deadline hit, not the caller's: same treatment as a
			// malformed response.
			lastErr, lastRaw = err, ""
		default:
			return domain.Decision{}, fmt.Errorf("model completion: %w", err)
		}

		a.logger.Debug("model response rejected",
			"message_id", msg.ID, "attempt", attempt+1, "error", lastErr)

		userPrompt += fmt.Sprintf("\n\nYour previous output was invalid.\nError: %v\nReturn ONLY corrected JSON matching the schema.", lastErr)
	}

	return domain.Decision{}, &FailureError{
		Attempts:  attempts,
		LastErr:   lastErr,
		RawOutput: truncate(lastRaw, rawOutputCap),
	}
}

func (a *Analyzer) complete(ctx context.Context, userPrompt string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return a.client.Complete(attemptCtx, systemPrompt, userPrompt)
}

// parseDecision validates raw model output against the closed schema.
func parseDecision(raw string) (domain.Decision, error) {
	payload, ok := extractJSON(raw)
	if !ok {
		return domain.Decision{}, fmt.Errorf("no JSON object found in output %q", truncate(raw, rawOutputCap))
	}

	var resp modelResponse
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		return domain.Decision{}, fmt.Errorf("decode JSON: %w", err)
	}

	category, err := domain.ParseCategory(resp.Label)
	if err != nil {
		return domain.Decision{}, fmt.Errorf("validate label: %w", err)
	}
	urgency, err := domain.ParseUrgency(resp.Urgency)
	if err != nil {
		return domain.Decision{}, fmt.Errorf("validate urgency: %w", err)
	}
	if resp.NeedsReply == nil {
		return domain.Decision{}, errors.New(`missing "needs_reply" field`)
	}

	return domain.Decision{
		Category:   category,
		Urgency:    urgency,
		NeedsReply: *resp.NeedsReply,
		Reasoning:  strings.TrimSpace(resp.ReasoningBrief),
		Origin:     domain.OriginModel,
	}, nil
}

// extractJSON tries the whole trimmed text first, then falls back to the
// first balanced {...} span, skipping braces inside JSON strings.
func extractJSON(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if json.Valid([]byte(text)) && strings.HasPrefix(text, "{") {
		return text, true
	}

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
