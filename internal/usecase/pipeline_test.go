package usecase

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"testing"
	"time"

	"InboxAgent/internal/classify"
	"InboxAgent/internal/domain"
	"InboxAgent/internal/labels"
	"InboxAgent/internal/ports"
)

type fakeMailbox struct {
	messages []domain.Message
	bodies   map[string]string
	labelIDs map[string]string
	applied  []appliedCall
	fetches  int
}

type appliedCall struct {
	id     string
	add    []string
	remove []string
}

var _ ports.Mailbox = (*fakeMailbox)(nil)

func (f *fakeMailbox) ListRecent(ctx context.Context, limit int) ([]domain.Message, error) {
	return f.messages, nil
}

func (f *fakeMailbox) FetchBody(ctx context.Context, id string) (string, error) {
	f.fetches++
	return f.bodies[id], nil
}

func (f *fakeMailbox) EnsureLabels(ctx context.Context, names []string) (map[string]string, error) {
	if f.labelIDs == nil {
		f.labelIDs = make(map[string]string, len(names))
		for _, name := range names {
			f.labelIDs[name] = "Label_" + name
		}
	}
	return f.labelIDs, nil
}

func (f *fakeMailbox) ApplyLabels(ctx context.Context, id string, add, remove []string) error {
	f.applied = append(f.applied, appliedCall{id: id, add: add, remove: remove})
	return nil
}

type queuedChat struct {
	responses []string
	calls     int
}

func (q *queuedChat) Complete(ctx context.Context, system, user string) (string, error) {
	i := q.calls
	q.calls++
	if i < len(q.responses) {
		return q.responses[i], nil
	}
	return "", nil
}

func newTestPipeline(mailbox *fakeMailbox, chat ports.ChatClient) *Pipeline {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPipeline(PipelineDeps{
		Mailbox:  mailbox,
		Cascade:  classify.NewCascade(nil),
		Analyzer: classify.NewAnalyzer(chat, 2, time.Second, logger),
		Logger:   logger,
	})
}

func TestProcessBatchRuleDecision(t *testing.T) {
	t.Parallel()

	mailbox := &fakeMailbox{messages: []domain.Message{{
		ID:      "m1",
		From:    "recruiting@acme.example",
		Subject: "Interview invitation",
		Snippet: "We would like to schedule a call with you.",
	}}}
	chat := &queuedChat{}
	pipeline := newTestPipeline(mailbox, chat)

	report, err := pipeline.ProcessBatch(context.Background(), 10)
	if err != nil {
		t.Fatalf("ProcessBatch error: %v", err)
	}
	if report.Checked != 1 || report.Labeled != 1 || report.Skipped != 0 || report.Failed != 0 {
		t.Fatalf("report = %+v", report)
	}
	if chat.calls != 0 {
		t.Fatalf("rule decision must not consult the model, got %d calls", chat.calls)
	}
	if len(mailbox.applied) != 1 {
		t.Fatalf("expected 1 label application, got %d", len(mailbox.applied))
	}
	call := mailbox.applied[0]
	if !slices.Equal(call.add, []string{"Label_INTERVIEWS", "Label_PROCESSED"}) {
		t.Errorf("add = %v", call.add)
	}
	if len(call.remove) != 0 {
		t.Errorf("remove = %v; interviews must stay unread", call.remove)
	}
}

func TestProcessBatchSkipsProcessed(t *testing.T) {
	t.Parallel()

	mailbox := &fakeMailbox{messages: []domain.Message{{
		ID:       "m1",
		Subject:  "Interview invitation",
		LabelIDs: []string{"Label_" + domain.ProcessedLabel},
	}}}
	pipeline := newTestPipeline(mailbox, &queuedChat{})

	report, err := pipeline.ProcessBatch(context.Background(), 10)
	if err != nil {
		t.Fatalf("ProcessBatch error: %v", err)
	}
	if report.Checked != 1 || report.Skipped != 1 || report.Labeled != 0 {
		t.Fatalf("report = %+v", report)
	}
	if len(mailbox.applied) != 0 {
		t.Fatalf("processed message must not be touched, got %v", mailbox.applied)
	}
	if mailbox.fetches != 0 {
		t.Fatalf("processed message must not trigger a body fetch, got %d", mailbox.fetches)
	}
}

func TestProcessBatchEscalatesToBody(t *testing.T) {
	t.Parallel()

	mailbox := &fakeMailbox{
		messages: []domain.Message{{
			ID:      "m1",
			From:    "no-reply@acme.example",
			Subject: "Update on your application status",
			Snippet: "We wanted to share an update with you.",
		}},
		bodies: map[string]string{
			"m1": "Unfortunately, we will not be proceeding with your candidacy at this time.",
		},
	}
	chat := &queuedChat{}
	pipeline := newTestPipeline(mailbox, chat)

	report, err := pipeline.ProcessBatch(context.Background(), 10)
	if err != nil {
		t.Fatalf("ProcessBatch error: %v", err)
	}
	if report.Labeled != 1 {
		t.Fatalf("report = %+v", report)
	}
	if mailbox.fetches != 1 {
		t.Fatalf("expected exactly 1 body fetch, got %d", mailbox.fetches)
	}
	if chat.calls != 0 {
		t.Fatal("second rule pass decided, model must stay out")
	}
	call := mailbox.applied[0]
	if !slices.Contains(call.add, "Label_REJECTED") {
		t.Errorf("add = %v; want REJECTED", call.add)
	}
	if !slices.Contains(call.remove, labels.UnreadLabel) {
		t.Errorf("remove = %v; rejection should clear unread", call.remove)
	}
}

func TestProcessBatchModelFallback(t *testing.T) {
	t.Parallel()

	mailbox := &fakeMailbox{
		messages: []domain.Message{{
			ID:      "m1",
			From:    "someone@example.org",
			Subject: "Quick question",
			Snippet: "Do you have a minute this week?",
		}},
		bodies: map[string]string{"m1": "Would love to chat about your background."},
	}
	chat := &queuedChat{responses: []string{
		`{"label":"IN_PROCESS","urgency":"medium","reasoning_brief":"Follow-up conversation.","needs_reply":true}`,
	}}
	pipeline := newTestPipeline(mailbox, chat)

	report, err := pipeline.ProcessBatch(context.Background(), 10)
	if err != nil {
		t.Fatalf("ProcessBatch error: %v", err)
	}
	if report.Labeled != 1 || report.Failed != 0 {
		t.Fatalf("report = %+v", report)
	}
	if chat.calls != 1 {
		t.Fatalf("expected one model call, got %d", chat.calls)
	}
	if !slices.Equal(mailbox.applied[0].add, []string{"Label_IN PROCESS", "Label_PROCESSED"}) {
		t.Errorf("add = %v", mailbox.applied[0].add)
	}
}

func TestProcessBatchFailureDoesNotAbortBatch(t *testing.T) {
	t.Parallel()

	mailbox := &fakeMailbox{messages: []domain.Message{
		{ID: "m1", From: "someone@example.org", Subject: "Quick question", Snippet: "Got a minute this week?"},
		{ID: "m2", From: "recruiting@acme.example", Subject: "Interview invitation", Snippet: "Please schedule a call."},
	}}
	chat := &queuedChat{responses: []string{"not json", "still not json", "nope"}}
	pipeline := newTestPipeline(mailbox, chat)

	report, err := pipeline.ProcessBatch(context.Background(), 10)
	if err != nil {
		t.Fatalf("ProcessBatch error: %v", err)
	}
	if report.Checked != 2 || report.Failed != 1 || report.Labeled != 1 {
		t.Fatalf("report = %+v", report)
	}
	if chat.calls != 3 {
		t.Fatalf("expected 3 exhausted attempts for m1, got %d", chat.calls)
	}
	if len(mailbox.applied) != 1 || mailbox.applied[0].id != "m2" {
		t.Fatalf("only m2 should be labeled, got %v", mailbox.applied)
	}
}

func TestProcessBatchSentinelMarksProcessedOnly(t *testing.T) {
	t.Parallel()

	mailbox := &fakeMailbox{messages: []domain.Message{{
		ID:      "m1",
		From:    "someone@example.org",
		Subject: "Quick question",
		Snippet: "Got a minute this week?",
	}}}
	chat := &queuedChat{responses: []string{
		`{"label":"OTHERS","urgency":"low","reasoning_brief":"Personal note.","needs_reply":true}`,
	}}
	pipeline := newTestPipeline(mailbox, chat)

	report, err := pipeline.ProcessBatch(context.Background(), 10)
	if err != nil {
		t.Fatalf("ProcessBatch error: %v", err)
	}
	if report.Skipped != 1 || report.Labeled != 0 {
		t.Fatalf("report = %+v", report)
	}
	if !slices.Equal(mailbox.applied[0].add, []string{"Label_PROCESSED"}) {
		t.Errorf("add = %v; sentinel gets the processed marker only", mailbox.applied[0].add)
	}
}
