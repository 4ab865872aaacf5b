// Package memory is an in-process Store, used by default and in tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/DoyleJ11/lol-draft-series/internal/engine"
	"github.com/DoyleJ11/lol-draft-series/internal/store"
)

// Storage is an in-memory implementation of store.Store
type Storage struct {
	mu sync.RWMutex

	sessions map[string]engine.Session
	results  map[string]map[string]engine.GameResult
}

func New() *Storage {
	return &Storage{
		sessions: make(map[string]engine.Session),
		results:  make(map[string]map[string]engine.GameResult),
	}
}

var _ store.Store = (*Storage)(nil)

func (s *Storage) GetSession(ctx context.Context, id string) (engine.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return engine.Session{}, engine.ErrSessionNotFound
	}
	return sess.Clone(), nil
}

func (s *Storage) SaveSession(ctx context.Context, sess engine.Session) (engine.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := sess.Clone()
	if prev, ok := s.sessions[sess.ID]; ok {
		next.Teams.Blue.UsedChampions = store.MergeUsed(next.Teams.Blue.UsedChampions, prev.Teams.Blue.UsedChampions)
		next.Teams.Red.UsedChampions = store.MergeUsed(next.Teams.Red.UsedChampions, prev.Teams.Red.UsedChampions)
	}
	s.sessions[sess.ID] = next
	return next.Clone(), nil
}

func (s *Storage) ListSessions(ctx context.Context) ([]engine.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]engine.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Storage) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *Storage) GetUsedChampionsInSeries(ctx context.Context, sessionID string) ([]engine.Champion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	return sess.UsedChampions(), nil
}

func (s *Storage) AddUsedChampion(ctx context.Context, sessionID string, side engine.Side, champion engine.Champion) error {
	if !side.Valid() {
		return engine.ErrInvalidSide
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return engine.ErrSessionNotFound
	}
	sess = sess.Clone()
	team := sess.Teams.Get(side)
	team.UsedChampions = store.MergeUsed(team.UsedChampions, []engine.Champion{champion})
	s.sessions[sessionID] = sess
	return nil
}

func (s *Storage) RecordGameResult(ctx context.Context, result engine.GameResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bySession, ok := s.results[result.SessionID]
	if !ok {
		bySession = make(map[string]engine.GameResult)
		s.results[result.SessionID] = bySession
	}
	bySession[result.ID] = result
	return nil
}

func (s *Storage) ListGameResults(ctx context.Context, sessionID string) ([]engine.GameResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]engine.GameResult, 0, len(s.results[sessionID]))
	for _, r := range s.results[sessionID] {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GameNumber < out[j].GameNumber })
	return out, nil
}

func (s *Storage) Close() error { return nil }
