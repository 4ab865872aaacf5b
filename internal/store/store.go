// Package store defines the persistence gateway for draft sessions, their
// fearless history and finished game results.
package store

import (
	"context"

	"github.com/DoyleJ11/lol-draft-series/internal/engine"
)

// Store persists sessions. Implementations are safe for concurrent use.
//
// Used champions are add-only: once AddUsedChampion or SaveSession records a
// champion against a session side it stays there until the session is
// deleted, and GetSession always reflects it.
type Store interface {
	GetSession(ctx context.Context, id string) (engine.Session, error)
	// SaveSession upserts s and returns the stored value.
	SaveSession(ctx context.Context, s engine.Session) (engine.Session, error)
	ListSessions(ctx context.Context) ([]engine.Session, error)
	DeleteSession(ctx context.Context, id string) error

	// GetUsedChampionsInSeries returns the de-duplicated union of both sides'
	// used champions, or nothing for an unknown session.
	GetUsedChampionsInSeries(ctx context.Context, sessionID string) ([]engine.Champion, error)
	AddUsedChampion(ctx context.Context, sessionID string, side engine.Side, champion engine.Champion) error

	// RecordGameResult is idempotent per result id.
	RecordGameResult(ctx context.Context, result engine.GameResult) error
	ListGameResults(ctx context.Context, sessionID string) ([]engine.GameResult, error)

	Close() error
}

var _ engine.SeriesHistory = (Store)(nil)

// MergeUsed appends the champions from extra that list does not already
// hold, keeping list's order.
func MergeUsed(list, extra []engine.Champion) []engine.Champion {
	seen := make(map[int]bool, len(list))
	out := make([]engine.Champion, 0, len(list)+len(extra))
	for _, c := range list {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	for _, c := range extra {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	return out
}
