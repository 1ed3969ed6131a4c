package domain

import (
	"fmt"
	"strings"
)

// Message is a mailbox entry as supplied by the mail provider. The body is
// deliberately absent: it is fetched lazily, only when escalation needs it.
type Message struct {
	ID       string
	ThreadID string
	From     string
	Subject  string
	Snippet  string
	Date     string
	LabelIDs []string
}

// HasLabel reports whether the message already carries the given label id or name.
func (m Message) HasLabel(label string) bool {
	for _, l := range m.LabelIDs {
		if l == label {
			return true
		}
	}
	return false
}

// Category enumerates the job-pipeline outcomes. The set is closed: anything
// outside it is rejected at the parse boundary.
type Category string

const (
	CategoryApplied         Category = "APPLIED"
	CategoryAssessments     Category = "ASSESSMENTS"
	CategoryInProcess       Category = "IN_PROCESS"
	CategoryInterviews      Category = "INTERVIEWS"
	CategoryRejected        Category = "REJECTED"
	CategoryOTPSecurity     Category = "OTP_SECURITY"
	CategoryRecommendations Category = "RECOMMENDATIONS"
	CategoryJobAlerts       Category = "JOB_ALERTS"
	CategoryAdvertisements  Category = "ADVERTISEMENTS"

	// CategoryOthers is the "no confident decision" sentinel. It marks a
	// message as processed without categorization and is never applied as a
	// mailbox label itself.
	CategoryOthers Category = "OTHERS"
)

// Categories lists every applyable category in a stable order. The sentinel is
// intentionally excluded.
func Categories() []Category {
	return []Category{
		CategoryApplied,
		CategoryAssessments,
		CategoryInProcess,
		CategoryInterviews,
		CategoryRejected,
		CategoryOTPSecurity,
		CategoryRecommendations,
		CategoryJobAlerts,
		CategoryAdvertisements,
	}
}

// ParseCategory validates a model-supplied label string against the closed
// set. The historical mailbox label "IN PROCESS" (with a space) is accepted as
// a spelling of IN_PROCESS.
func ParseCategory(s string) (Category, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	v = strings.ReplaceAll(v, " ", "_")
	switch c := Category(v); c {
	case CategoryApplied, CategoryAssessments, CategoryInProcess,
		CategoryInterviews, CategoryRejected, CategoryOTPSecurity,
		CategoryRecommendations, CategoryJobAlerts, CategoryAdvertisements,
		CategoryOthers:
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// IsSentinel reports whether the category means "no confident decision".
func (c Category) IsSentinel() bool {
	return c == CategoryOthers
}

// LabelName returns the mailbox label this category is filed under. IN_PROCESS
// keeps its historical space-separated label name.
func (c Category) LabelName() string {
	if c == CategoryInProcess {
		return "IN PROCESS"
	}
	return string(c)
}

// ProcessedLabel marks a message that already went through the pipeline, so
// repeated runs stay idempotent without any storage of our own.
const ProcessedLabel = "PROCESSED"

// Urgency says how time-sensitive a message is. Wire form is lowercase.
type Urgency string

const (
	UrgencyLow    Urgency = "LOW"
	UrgencyMedium Urgency = "MEDIUM"
	UrgencyHigh   Urgency = "HIGH"
)

// ParseUrgency validates an urgency string, accepting any casing.
func ParseUrgency(s string) (Urgency, error) {
	switch u := Urgency(strings.ToUpper(strings.TrimSpace(s))); u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
		return u, nil
	}
	return "", fmt.Errorf("unknown urgency %q", s)
}

// Origin records which stage produced a decision.
type Origin string

const (
	OriginRule  Origin = "RULE"
	OriginModel Origin = "MODEL"
)

// Decision is the immutable outcome of classifying one message. It is produced
// exactly once per message per run and consumed immediately by label
// resolution; nothing persists it.
type Decision struct {
	Category   Category
	Urgency    Urgency
	NeedsReply bool
	Reasoning  string
	Origin     Origin
}
