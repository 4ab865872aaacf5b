// Package janitor periodically deletes sessions that were created but never
// drafted.
package janitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/DoyleJ11/lol-draft-series/internal/engine"
	"github.com/DoyleJ11/lol-draft-series/internal/logging"
	"github.com/DoyleJ11/lol-draft-series/internal/store"
)

// Evictor stops the live lobby of a session, if any.
type Evictor interface {
	Remove(ctx context.Context, id string) (bool, error)
}

type Janitor struct {
	store   store.Store
	lobbies Evictor
	maxAge  time.Duration
	now     func() time.Time
	log     *zap.Logger
}

type Option func(*Janitor)

func WithClock(now func() time.Time) Option {
	return func(j *Janitor) { j.now = now }
}

func New(st store.Store, lobbies Evictor, maxAge time.Duration, log *zap.Logger, opts ...Option) *Janitor {
	if log == nil {
		log = zap.NewNop()
	}
	j := &Janitor{store: st, lobbies: lobbies, maxAge: maxAge, now: time.Now, log: log}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Sweep deletes config and lobby sessions idle for longer than maxAge and
// returns how many were removed. Drafting and completed sessions are kept.
func (j *Janitor) Sweep(ctx context.Context) (int, error) {
	sessions, err := j.store.ListSessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("list sessions: %w", err)
	}
	cutoff := j.now().Add(-j.maxAge)

	var (
		removed int
		errs    error
	)
	for _, s := range sessions {
		if !stale(s, cutoff) {
			continue
		}
		if j.lobbies != nil {
			if _, err := j.lobbies.Remove(ctx, s.ID); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("evict %s: %w", s.ID, err))
				continue
			}
		}
		// The lobby may have saved a ready or a draft start after the listing.
		current, err := j.store.GetSession(ctx, s.ID)
		if errors.Is(err, engine.ErrSessionNotFound) {
			continue
		}
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("reload %s: %w", s.ID, err))
			continue
		}
		if !stale(current, cutoff) {
			j.log.Debug("session became active during sweep", logging.Session(s.ID))
			continue
		}
		if err := j.store.DeleteSession(ctx, s.ID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("delete %s: %w", s.ID, err))
			continue
		}
		removed++
		j.log.Info("removed stale session", logging.Session(s.ID), zap.Time("last_activity", s.LastActivity))
	}
	return removed, errs
}

func stale(s engine.Session, cutoff time.Time) bool {
	if s.Status != engine.StatusConfig && s.Status != engine.StatusLobby {
		return false
	}
	return s.LastActivity.Before(cutoff)
}

// Run sweeps every interval until ctx is done.
func (j *Janitor) Run(ctx context.Context, interval time.Duration) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			n, err := j.Sweep(ctx)
			if err != nil {
				j.log.Warn("session sweep failed", zap.Error(err))
			}
			if n > 0 {
				j.log.Info("session sweep", zap.Int("removed", n))
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("schedule sweep: %w", err)
	}
	sched.Start()

	<-ctx.Done()
	return sched.Shutdown()
}
