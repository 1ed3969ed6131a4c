package ports

import (
	"context"
	"time"

	"InboxAgent/internal/domain"
)

// Mailbox is the mail-provider collaborator. Implementations own transport,
// auth and rate-limit concerns; the pipeline only sees these four calls.
type Mailbox interface {
	// ListRecent returns up to limit of the newest messages, metadata only.
	ListRecent(ctx context.Context, limit int) ([]domain.Message, error)

	// FetchBody retrieves the plain-text body of one message. Used lazily,
	// only when the cheap subject+snippet signal is ambiguous.
	FetchBody(ctx context.Context, messageID string) (string, error)

	// EnsureLabels creates any missing labels and returns name -> label id.
	EnsureLabels(ctx context.Context, names []string) (map[string]string, error)

	// ApplyLabels adds and removes label ids on a message in one call.
	ApplyLabels(ctx context.Context, messageID string, add, remove []string) error
}

// ChatClient sends one system+user exchange to a language model and returns
// the raw completion text. Sampling and output caps are the adapter's
// configuration; retrying on malformed content is the caller's.
type ChatClient interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Scheduler controls when batch runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
