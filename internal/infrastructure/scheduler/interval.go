package scheduler

import (
	"context"
	"time"

	"InboxAgent/internal/ports"
)

// Interval runs the job immediately and then on a fixed period, using
// time.Ticker. Quota friendliness toward the mail and model collaborators
// comes from the period, not from any internal rate limiting.
type Interval struct {
	period time.Duration
	stop   chan struct{}
}

var _ ports.Scheduler = (*Interval)(nil)

// NewInterval builds a scheduler with the given period.
func NewInterval(period time.Duration) *Interval {
	return &Interval{period: period}
}

// Start begins ticking. The first run fires right away.
func (s *Interval) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil || s.period <= 0 {
		return nil
	}

	if s.stop != nil {
		return nil
	}

	s.stop = make(chan struct{})
	go func() {
		ticker := time.NewTicker(s.period)
		defer ticker.Stop()
		job(time.Now())
		for {
			select {
			case t := <-ticker.C:
				job(t)
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			}
		}
	}()

	return nil
}

// Stop halts the ticker goroutine.
func (s *Interval) Stop(ctx context.Context) error {
	if s.stop == nil {
		return nil
	}
	close(s.stop)
	s.stop = nil
	return nil
}
