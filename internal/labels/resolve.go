// Package labels maps classification decisions onto mailbox label deltas.
package labels

import "InboxAgent/internal/domain"

// UnreadLabel is the provider's system label for unread messages.
const UnreadLabel = "UNREAD"

// Actions is the tag delta for one message: label names to add and remove.
type Actions struct {
	Add    []string
	Remove []string
}

// Resolve computes the label delta for a decision. No text matching happens
// here; it is a pure mapping, and all I/O stays with the mail collaborator.
//
// The sentinel category only marks the message processed: such messages count
// as skipped for reporting, never as labeled. Terminal categories whose
// substance the pipeline has already absorbed (applied confirmations,
// rejections, advertisements) additionally clear the unread flag so the inbox
// count reflects mail that still needs a human.
func Resolve(d domain.Decision) Actions {
	if d.Category.IsSentinel() {
		return Actions{Add: []string{domain.ProcessedLabel}}
	}

	actions := Actions{
		Add: []string{d.Category.LabelName(), domain.ProcessedLabel},
	}

	switch d.Category {
	case domain.CategoryApplied, domain.CategoryRejected, domain.CategoryAdvertisements:
		actions.Remove = append(actions.Remove, UnreadLabel)
	}

	return actions
}

// Wanted lists every label name the pipeline may apply, processed marker
// included. The sentinel is deliberately absent.
func Wanted() []string {
	cats := domain.Categories()
	names := make([]string, 0, len(cats)+1)
	for _, c := range cats {
		names = append(names, c.LabelName())
	}
	return append(names, domain.ProcessedLabel)
}
