package classify

import (
	"regexp"
	"strings"

	"InboxAgent/internal/domain"
)

// Rule pairs a predicate over normalized text with a target category. Rules
// are static configuration: compiled once, immutable during a run.
type Rule struct {
	Name     string
	Category domain.Category
	Match    func(text string) bool
}

// Cascade evaluates an ordered rule list, first match wins. Order is the
// priority: high-confidence signals (security codes, explicit rejections,
// interview scheduling) sit above broad promotional phrasing so that a message
// carrying both an unsubscribe footer and interview language still files as an
// interview.
type Cascade struct {
	rules []Rule
}

var (
	otpExpr        = regexp.MustCompile(`\botp\b|\bverification code\b|\bsecurity code\b|\bpasscode\b|\bone[- ]time\b`)
	rejectedExpr   = regexp.MustCompile(`\bunfortunately\b|\bregret to inform\b|\bwe regret\b|\bnot selected\b|\bdeclined\b|\bmoving forward with other candidates?\b|\bnot to move forward\b`)
	interviewExpr  = regexp.MustCompile(`\binterview\b|\bschedule\b|\bcalendly\b|\bzoom\b|\bgoogle meet\b|\bteams meeting\b`)
	appliedExpr    = regexp.MustCompile(`\bwe (just )?(have )?received your (application|resume)\b` +
		`|\bconfirm(ing)? that we (have )?received your (application|resume)\b` +
		`|\bthank you for (your )?interest\b` +
		`|\bthanks for (your )?interest\b` +
		`|\bthanks for applying\b` +
		`|\byour application\b.*\b(received|submitted)\b`)
	assessmentExpr = regexp.MustCompile(`\b(assessment|coding challenge|skill assessment)\b`)
	assessActExpr  = regexp.MustCompile(`\b(start|click|begin|complete|link|timed)\b`)
	platformExpr   = regexp.MustCompile(`\bhackerrank\b|\bshl\b|\bcodility\b|\bkarat\b|\bcode(signal)?\b`)
	jobAlertExpr   = regexp.MustCompile(`\bjob alerts?\b|\bnew jobs?\b|\bjobs you may like\b|\brecommended jobs\b|\bjob matches\b`)
	recommendExpr  = regexp.MustCompile(`\brecommended for you\b|\byou might be interested\b|\bsuggested (role|job|position)\b|\bsimilar jobs\b`)
	adsExpr        = regexp.MustCompile(`\bunsubscribe\b|\bpromo\b|\bpromotion\b|\bdeal\b|\boffer\b|\bdiscount\b|\bsale\b|% off\b`)
	ambiguousExpr  = regexp.MustCompile(`\b(status|update|interest|next steps?|moving forward)\b`)
)

func patternRule(name string, cat domain.Category, expr *regexp.Regexp) Rule {
	return Rule{Name: name, Category: cat, Match: expr.MatchString}
}

// defaultRules is the designed precedence order. The tail (job alerts,
// recommendations, advertisements) is a tunable policy table rather than a
// hard law; tests pin only the load-bearing pairs.
func defaultRules() []Rule {
	return []Rule{
		patternRule("otp_security", domain.CategoryOTPSecurity, otpExpr),
		patternRule("rejected", domain.CategoryRejected, rejectedExpr),
		patternRule("interview", domain.CategoryInterviews, interviewExpr),
		patternRule("applied", domain.CategoryApplied, appliedExpr),
		{
			Name:     "assessment",
			Category: domain.CategoryAssessments,
			Match: func(text string) bool {
				if assessmentExpr.MatchString(text) && assessActExpr.MatchString(text) {
					return true
				}
				return platformExpr.MatchString(text)
			},
		},
		patternRule("job_alert", domain.CategoryJobAlerts, jobAlertExpr),
		patternRule("recommendation", domain.CategoryRecommendations, recommendExpr),
		patternRule("advertisement", domain.CategoryAdvertisements, adsExpr),
	}
}

// NewCascade builds the cascade. Configured marketing senders become
// advertisement rules evaluated ahead of everything else.
func NewCascade(marketingSenders []string) *Cascade {
	rules := make([]Rule, 0, len(marketingSenders)+8)
	for _, sender := range marketingSenders {
		needle := strings.ToLower(strings.TrimSpace(sender))
		if needle == "" {
			continue
		}
		rules = append(rules, Rule{
			Name:     "sender:" + needle,
			Category: domain.CategoryAdvertisements,
			Match: func(text string) bool {
				return strings.Contains(text, needle)
			},
		})
	}
	return &Cascade{rules: append(rules, defaultRules()...)}
}

// Classify runs the cascade over subject, snippet and sender. A miss returns
// ok=false; that is a defined outcome, not an error. Matching only considers
// presence in the combined normalized blob, never the match site.
func (c *Cascade) Classify(subject, snippet, from string) (domain.Category, bool) {
	text := NormalizeText(subject + "\n" + snippet + "\n" + from)
	for _, rule := range c.rules {
		if rule.Match(text) {
			return rule.Category, true
		}
	}
	return "", false
}

// NeedsFullBody reports whether the cheap subject+snippet text carries
// ambiguous template language. Phrases like "status" or "moving forward"
// appear identically in still-in-process and rejection templates, so the
// snippet alone is unreliable and the full body should be fetched.
func NeedsFullBody(subject, snippet string) bool {
	return ambiguousExpr.MatchString(NormalizeText(subject + "\n" + snippet))
}
