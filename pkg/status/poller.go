// Package status polls a pull request's status until its checks settle.
package status

import (
	"context"
	"log/slog"
	"time"

	"thoreinstein.com/tug/pkg/host"
)

// DefaultInterval is the delay between two fetches when none is configured.
const DefaultInterval = 10 * time.Second

// Fetcher returns a fresh status snapshot. host.Client satisfies it.
type Fetcher interface {
	GetPullRequestStatus(ctx context.Context) (*host.PullRequestStatus, error)
}

// RenderFunc receives every snapshot the poller fetches.
type RenderFunc func(*host.PullRequestStatus)

// Poller fetches the status every interval until at least one check exists
// and none is pending, or until its context is cancelled.
type Poller struct {
	fetcher  Fetcher
	interval time.Duration
	verbose  bool
	logger   *slog.Logger
}

// PollerOption is a functional option for configuring Poller.
type PollerOption func(*Poller)

// WithLogger sets a custom logger for the poller.
func WithLogger(logger *slog.Logger) PollerOption {
	return func(p *Poller) {
		p.logger = logger
	}
}

// NewPoller creates a poller. A non-positive interval means DefaultInterval.
func NewPoller(fetcher Fetcher, interval time.Duration, verbose bool, opts ...PollerOption) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}

	p := &Poller{
		fetcher:  fetcher,
		interval: interval,
		verbose:  verbose,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Run polls until the checks settle and returns the final snapshot.
//
// Cancelling ctx is a normal way out: Run returns the last snapshot it saw
// (nil if none) and a nil error. Any fetch error while ctx is live is
// returned as is.
func (p *Poller) Run(ctx context.Context, render RenderFunc) (*host.PullRequestStatus, error) {
	var last *host.PullRequestStatus

	for tick := 1; ; tick++ {
		status, err := p.fetcher.GetPullRequestStatus(ctx)
		if err != nil {
			if ctx.Err() != nil {
				p.logDebug("poller cancelled during fetch", "tick", tick)
				return last, nil
			}
			return last, err
		}

		last = status
		if render != nil {
			render(status)
		}

		if status.ChecksSettled() {
			p.logDebug("checks settled", "tick", tick, "checks", len(status.Checks))
			return status, nil
		}

		p.logDebug("checks pending", "tick", tick, "next", p.interval)

		timer := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			p.logDebug("poller cancelled", "tick", tick)
			return last, nil
		case <-timer.C:
		}
	}
}

func (p *Poller) logDebug(msg string, args ...any) {
	if p.verbose {
		p.logger.Debug(msg, args...)
	}
}
