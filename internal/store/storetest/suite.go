// Package storetest is a behavioural suite every store.Store implementation
// runs in its own tests.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/DoyleJ11/lol-draft-series/internal/engine"
	"github.com/DoyleJ11/lol-draft-series/internal/store"
	"github.com/DoyleJ11/lol-draft-series/internal/timer"
)

type Suite struct {
	suite.Suite
	// New returns a fresh, empty store for each test.
	New func(t *testing.T) store.Store

	store store.Store
	eng   *engine.Engine
	ctx   context.Context
}

func (s *Suite) SetupTest() {
	s.store = s.New(s.T())
	s.eng = engine.New(nil, nil, timer.Default())
	s.ctx = context.Background()
}

func (s *Suite) TearDownTest() {
	if s.store != nil {
		s.NoError(s.store.Close())
	}
}

func (s *Suite) newSession(cfg engine.Config) engine.Session {
	sess, err := s.eng.NewSession(cfg, engine.KindWeb)
	s.Require().NoError(err)
	return sess
}

func (s *Suite) TestGetSessionNotFound() {
	_, err := s.store.GetSession(s.ctx, "nonexistent")
	s.ErrorIs(err, engine.ErrSessionNotFound)
}

func (s *Suite) TestSaveAndGetSession() {
	sess := s.newSession(engine.Config{SeriesType: engine.SeriesBO3, IsFearlessDraft: true, BlueTeamName: "T1"})
	sess.Status = engine.StatusDrafting
	sess.TurnNumber = 7
	sess.Timer = timer.Start(27*time.Second, sess.CreatedAt)
	sess.Teams.Red.Bans = []engine.Champion{{ID: 266, Name: "Aatrox"}}

	saved, err := s.store.SaveSession(s.ctx, sess)
	s.Require().NoError(err)
	s.Equal(sess.ID, saved.ID)

	got, err := s.store.GetSession(s.ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(sess.ID, got.ID)
	s.Equal(engine.StatusDrafting, got.Status)
	s.Equal(engine.PhasePick1, got.Phase())
	s.Equal(7, got.TurnNumber)
	s.Equal(sess.JoinSecret, got.JoinSecret)
	s.Equal(sess.Config, got.Config)
	s.Equal("T1", got.Teams.Blue.Name)
	s.Equal(sess.Teams.Red.Bans, got.Teams.Red.Bans)
	s.Equal(int64(27000), got.Timer.RemainingMs)
	s.True(got.Timer.IsActive)
	s.WithinDuration(sess.CreatedAt, got.CreatedAt, time.Second)
}

func (s *Suite) TestSaveSessionOverwrites() {
	sess := s.newSession(engine.Config{})
	_, err := s.store.SaveSession(s.ctx, sess)
	s.Require().NoError(err)

	sess.Status = engine.StatusLobby
	sess.Teams.Blue.IsReady = true
	_, err = s.store.SaveSession(s.ctx, sess)
	s.Require().NoError(err)

	got, err := s.store.GetSession(s.ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(engine.StatusLobby, got.Status)
	s.True(got.Teams.Blue.IsReady)
}

func (s *Suite) TestAddUsedChampionSurvivesStaleSave() {
	sess := s.newSession(engine.Config{IsFearlessDraft: true})
	_, err := s.store.SaveSession(s.ctx, sess)
	s.Require().NoError(err)

	s.Require().NoError(s.store.AddUsedChampion(s.ctx, sess.ID, engine.SideBlue, engine.Champion{ID: 5, Name: "Xin Zhao"}))
	s.Require().NoError(s.store.AddUsedChampion(s.ctx, sess.ID, engine.SideBlue, engine.Champion{ID: 5, Name: "Xin Zhao"}))
	s.Require().NoError(s.store.AddUsedChampion(s.ctx, sess.ID, engine.SideRed, engine.Champion{ID: 5, Name: "Xin Zhao"}))

	// sess predates the additions; saving it must not drop them.
	sess.Teams.Red.UsedChampions = []engine.Champion{{ID: 7, Name: "LeBlanc"}}
	saved, err := s.store.SaveSession(s.ctx, sess)
	s.Require().NoError(err)
	s.Len(saved.Teams.Blue.UsedChampions, 1)

	got, err := s.store.GetSession(s.ctx, sess.ID)
	s.Require().NoError(err)
	s.Len(got.Teams.Blue.UsedChampions, 1)
	s.Equal(5, got.Teams.Blue.UsedChampions[0].ID)
	s.ElementsMatch([]int{5, 7}, championIDs(got.Teams.Red.UsedChampions))

	used, err := s.store.GetUsedChampionsInSeries(s.ctx, sess.ID)
	s.Require().NoError(err)
	s.ElementsMatch([]int{5, 7}, championIDs(used))
}

func (s *Suite) TestAddUsedChampionRejections() {
	err := s.store.AddUsedChampion(s.ctx, "nonexistent", engine.SideBlue, engine.Champion{ID: 1})
	s.ErrorIs(err, engine.ErrSessionNotFound)

	sess := s.newSession(engine.Config{})
	_, err = s.store.SaveSession(s.ctx, sess)
	s.Require().NoError(err)
	err = s.store.AddUsedChampion(s.ctx, sess.ID, "green", engine.Champion{ID: 1})
	s.ErrorIs(err, engine.ErrInvalidSide)
}

func (s *Suite) TestUsedChampionsUnknownSession() {
	used, err := s.store.GetUsedChampionsInSeries(s.ctx, "nonexistent")
	s.Require().NoError(err)
	s.Empty(used)
}

func (s *Suite) TestListAndDeleteSessions() {
	a := s.newSession(engine.Config{})
	b := s.newSession(engine.Config{})
	b.CreatedAt = a.CreatedAt.Add(time.Minute)
	for _, sess := range []engine.Session{b, a} {
		_, err := s.store.SaveSession(s.ctx, sess)
		s.Require().NoError(err)
	}
	s.Require().NoError(s.store.AddUsedChampion(s.ctx, a.ID, engine.SideRed, engine.Champion{ID: 9}))

	list, err := s.store.ListSessions(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(a.ID, list[0].ID)
	s.Equal(b.ID, list[1].ID)
	s.Equal([]int{9}, championIDs(list[0].Teams.Red.UsedChampions))

	s.Require().NoError(s.store.DeleteSession(s.ctx, a.ID))
	_, err = s.store.GetSession(s.ctx, a.ID)
	s.ErrorIs(err, engine.ErrSessionNotFound)

	list, err = s.store.ListSessions(s.ctx)
	s.Require().NoError(err)
	s.Len(list, 1)

	s.NoError(s.store.DeleteSession(s.ctx, "nonexistent"))
}

func (s *Suite) TestRecordGameResultIsIdempotent() {
	sess := s.newSession(engine.Config{SeriesType: engine.SeriesBO3})
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	game2 := engine.GameResult{
		ID: engine.ResultID(sess.ID, 2), SessionID: sess.ID, GameNumber: 2, Patch: "14.24", CompletedAt: now,
		BlueTeam: engine.TeamResult{TeamName: "Blue Team", Won: true, Picks: []engine.RolePick{{ChampionID: 1, Role: engine.RoleTop}}},
	}
	game1 := engine.GameResult{ID: engine.ResultID(sess.ID, 1), SessionID: sess.ID, GameNumber: 1, CompletedAt: now}

	s.Require().NoError(s.store.RecordGameResult(s.ctx, game2))
	s.Require().NoError(s.store.RecordGameResult(s.ctx, game1))
	game2.DurationSeconds = 1800
	s.Require().NoError(s.store.RecordGameResult(s.ctx, game2))

	results, err := s.store.ListGameResults(s.ctx, sess.ID)
	s.Require().NoError(err)
	s.Require().Len(results, 2)
	s.Equal(1, results[0].GameNumber)
	s.Equal(2, results[1].GameNumber)
	s.Equal(1800, results[1].DurationSeconds)
	s.Equal(engine.RoleTop, results[1].BlueTeam.Picks[0].Role)
	s.True(results[1].BlueTeam.Won)

	other, err := s.store.ListGameResults(s.ctx, "other")
	s.Require().NoError(err)
	s.Empty(other)
}

func championIDs(list []engine.Champion) []int {
	ids := make([]int, 0, len(list))
	for _, c := range list {
		ids = append(ids, c.ID)
	}
	return ids
}
