package source

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Throttled wraps a Launcher so every navigation and click made through its
// sessions waits on a shared limiter. A nil limiter disables throttling.
func Throttled(l Launcher, limiter *rate.Limiter) Launcher {
	if limiter == nil {
		return l
	}
	return &throttledLauncher{next: l, limiter: limiter}
}

// NewLimiter returns a limiter allowing perSecond requests with a burst of 1,
// or nil when perSecond is not positive.
func NewLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

type throttledLauncher struct {
	next    Launcher
	limiter *rate.Limiter
}

func (t *throttledLauncher) NewSession(ctx context.Context) (Session, error) {
	s, err := t.next.NewSession(ctx)
	if err != nil {
		return nil, err
	}
	return &throttledSession{Session: s, limiter: t.limiter}, nil
}

type throttledSession struct {
	Session
	limiter *rate.Limiter
}

func (s *throttledSession) Navigate(ctx context.Context, url string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "throttle: navigate")
	}
	return s.Session.Navigate(ctx, url)
}

func (s *throttledSession) Click(ctx context.Context, selector string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "throttle: click")
	}
	return s.Session.Click(ctx, selector)
}
