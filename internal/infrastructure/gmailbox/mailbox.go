package gmailbox

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	gmailv1 "google.golang.org/api/gmail/v1"

	"InboxAgent/internal/classify"
	"InboxAgent/internal/domain"
	"InboxAgent/internal/ports"
)

const user = "me"

// metadataHeaders are the only headers requested on the cheap listing path.
var metadataHeaders = []string{"From", "Subject", "Date"}

// Mailbox adapts the Gmail API to the Mailbox port.
type Mailbox struct {
	svc    *gmailv1.Service
	logger *slog.Logger
}

var _ ports.Mailbox = (*Mailbox)(nil)

// NewMailbox wraps an authenticated Gmail service.
func NewMailbox(svc *gmailv1.Service, logger *slog.Logger) *Mailbox {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mailbox{svc: svc, logger: logger}
}

// ListRecent returns up to limit of the newest messages, metadata only. Body
// text is not fetched here; escalation pays that cost per message.
func (m *Mailbox) ListRecent(ctx context.Context, limit int) ([]domain.Message, error) {
	resp, err := m.svc.Users.Messages.List(user).MaxResults(int64(limit)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	out := make([]domain.Message, 0, len(resp.Messages))
	for _, ref := range resp.Messages {
		full, err := m.svc.Users.Messages.Get(user, ref.Id).
			Format("metadata").
			MetadataHeaders(metadataHeaders...).
			Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("get message %s: %w", ref.Id, err)
		}

		var headers []*gmailv1.MessagePartHeader
		if full.Payload != nil {
			headers = full.Payload.Headers
		}

		out = append(out, domain.Message{
			ID:       full.Id,
			ThreadID: full.ThreadId,
			From:     headerValue(headers, "From"),
			Subject:  headerValue(headers, "Subject"),
			Snippet:  full.Snippet,
			Date:     headerValue(headers, "Date"),
			LabelIDs: full.LabelIds,
		})
	}

	return out, nil
}

// FetchBody retrieves the full message and extracts readable text: text/plain
// preferred, stripped HTML next, the snippet as a last resort.
func (m *Mailbox) FetchBody(ctx context.Context, messageID string) (string, error) {
	full, err := m.svc.Users.Messages.Get(user, messageID).Format("full").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get message %s: %w", messageID, err)
	}

	if full.Payload != nil {
		if body := extractPlainText(full.Payload); strings.TrimSpace(body) != "" {
			return strings.TrimSpace(body), nil
		}
		if html := extractHTML(full.Payload); html != "" {
			if text := strings.TrimSpace(classify.HTMLToText(html)); text != "" {
				return text, nil
			}
		}
	}

	return full.Snippet, nil
}

// EnsureLabels creates any missing labels and returns name -> label id.
func (m *Mailbox) EnsureLabels(ctx context.Context, names []string) (map[string]string, error) {
	resp, err := m.svc.Users.Labels.List(user).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}

	existing := make(map[string]string, len(resp.Labels))
	for _, l := range resp.Labels {
		existing[l.Name] = l.Id
	}

	out := make(map[string]string, len(names))
	for _, name := range names {
		if id, ok := existing[name]; ok {
			out[name] = id
			continue
		}
		created, err := m.svc.Users.Labels.Create(user, &gmailv1.Label{
			Name:                  name,
			LabelListVisibility:   "labelShow",
			MessageListVisibility: "show",
		}).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("create label %s: %w", name, err)
		}
		m.logger.Info("created label", "name", name, "id", created.Id)
		out[name] = created.Id
	}

	return out, nil
}

// ApplyLabels adds and removes label ids on one message atomically.
func (m *Mailbox) ApplyLabels(ctx context.Context, messageID string, add, remove []string) error {
	req := &gmailv1.ModifyMessageRequest{
		AddLabelIds:    add,
		RemoveLabelIds: remove,
	}
	if _, err := m.svc.Users.Messages.Modify(user, messageID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("modify message %s: %w", messageID, err)
	}
	return nil
}

func headerValue(headers []*gmailv1.MessagePartHeader, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}
