package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/lol-draft-series/internal/timer"
)

type testCatalog struct{}

func (testCatalog) ChampionByID(id int) (Champion, bool) {
	if id <= 0 || id >= 1000 {
		return Champion{}, false
	}
	return Champion{ID: id, Key: fmt.Sprint(id), Name: fmt.Sprintf("Champion %d", id)}, true
}

func (testCatalog) Champions() []Champion {
	out := make([]Champion, 0, 30)
	for i := 1; i <= 30; i++ {
		c, _ := testCatalog{}.ChampionByID(i)
		out = append(out, c)
	}
	return out
}

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine() *Engine {
	return New(testCatalog{}, nil, timer.Default(), WithClock(func() time.Time { return testNow }))
}

func newTestSession(t *testing.T, e *Engine, cfg Config) Session {
	t.Helper()
	s, err := e.NewSession(cfg, KindWeb)
	require.NoError(t, err)
	return s
}

func startedSession(t *testing.T, e *Engine, cfg Config) Session {
	t.Helper()
	s := newTestSession(t, e, cfg)
	s, _, err := e.StartGame(s)
	require.NoError(t, err)
	return s
}

// act performs whatever the current turn owes with championID.
func act(e *Engine, s Session, championID int) (Session, []Event, error) {
	step, ok := s.CurrentTurn()
	if !ok {
		return s, nil, ErrInvalidTurn
	}
	if step.Action == ActionBan {
		return e.BanChampion(context.Background(), s, championID, step.Team)
	}
	return e.PickChampion(context.Background(), s, championID, step.Team)
}

// playDraft runs the draft to completion, choosing champion(turn) each turn.
func playDraft(t *testing.T, e *Engine, s Session, champion func(turn int) int) Session {
	t.Helper()
	for s.TurnNumber < TotalTurns() {
		var err error
		turn := s.TurnNumber
		s, _, err = act(e, s, champion(turn))
		require.NoError(t, err, "turn %d", turn)
	}
	return s
}

func TestNewSession_Defaults(t *testing.T) {
	e := newTestEngine()
	s := newTestSession(t, e, Config{SeriesType: SeriesBO3, IsFearlessDraft: true, RedTeamName: "Golden Guardians"})

	assert.Equal(t, StatusConfig, s.Status)
	assert.Equal(t, PhaseConfig, s.Phase())
	assert.Equal(t, 3, s.Config.TotalGames)
	assert.Equal(t, 1, s.Config.CurrentGame)
	assert.Equal(t, "14.24", s.Config.PatchName)
	assert.Equal(t, "Blue Team", s.Teams.Blue.Name)
	assert.Equal(t, "BLU", s.Teams.Blue.Prefix)
	assert.Equal(t, "GOL", s.Teams.Red.Prefix)
	assert.Len(t, s.JoinSecret, 6)
	assert.NotEmpty(t, s.ID)
	assert.NotEqual(t, s.Teams.Blue.ID, s.Teams.Red.ID)
	assert.False(t, s.Teams.Blue.IsReady)
	assert.False(t, s.Teams.Red.IsReady)
}

func TestNewSession_SeriesTotals(t *testing.T) {
	cases := []struct {
		series SeriesType
		want   int
	}{
		{SeriesBO1, 1},
		{SeriesBO3, 3},
		{SeriesBO5, 5},
		{"BO7", 1},
		{"", 1},
	}
	e := newTestEngine()
	for _, tc := range cases {
		t.Run(string(tc.series), func(t *testing.T) {
			s := newTestSession(t, e, Config{SeriesType: tc.series})
			if s.Config.TotalGames != tc.want {
				t.Fatalf("totalGames: got %d, want %d", s.Config.TotalGames, tc.want)
			}
		})
	}
}

func TestSetTeamReady_BothReadyStartsGame(t *testing.T) {
	e := newTestEngine()
	s := newTestSession(t, e, Config{})

	s, events, err := e.SetTeamReady(s, SideBlue, true)
	require.NoError(t, err)
	assert.Equal(t, StatusLobby, s.Status)
	assert.False(t, s.BothTeamsReady)
	assert.False(t, ContainsEvent(events, EvtGameStarted))

	s, events, err = e.SetTeamReady(s, SideRed, true)
	require.NoError(t, err)
	assert.True(t, s.BothTeamsReady)
	assert.True(t, ContainsEvent(events, EvtGameStarted))
	assert.Equal(t, PhaseBan1, s.Phase())
	assert.Equal(t, SideBlue, s.CurrentTeam())
	assert.Equal(t, 0, s.TurnNumber)
	assert.True(t, s.Timer.IsActive)
	assert.Equal(t, timer.Default().Ban.Milliseconds(), s.Timer.RemainingMs)
	require.NotNil(t, s.GameStartedAt)
}

func TestSetTeamReady_UnreadyReturnsToConfig(t *testing.T) {
	e := newTestEngine()
	s := newTestSession(t, e, Config{})

	s, _, err := e.SetTeamReady(s, SideRed, true)
	require.NoError(t, err)
	s, _, err = e.SetTeamReady(s, SideRed, false)
	require.NoError(t, err)
	assert.Equal(t, StatusConfig, s.Status)
	assert.False(t, s.TeamReadiness.Red)
}

func TestSetTeamReady_Rejections(t *testing.T) {
	e := newTestEngine()
	s := startedSession(t, e, Config{})

	_, _, err := e.SetTeamReady(s, SideBlue, false)
	if !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("want ErrWrongPhase, got %v", err)
	}
	_, _, err = e.SetTeamReady(s, "green", true)
	if !errors.Is(err, ErrInvalidSide) {
		t.Fatalf("want ErrInvalidSide, got %v", err)
	}
}

func TestTurnOrder_RejectsOutOfOrderAction(t *testing.T) {
	e := newTestEngine()
	s := startedSession(t, e, Config{})
	ctx := context.Background()

	cases := []struct {
		name   string
		action Action
		side   Side
	}{
		{name: "red bans on blue turn", action: ActionBan, side: SideRed},
		{name: "blue picks on ban turn", action: ActionPick, side: SideBlue},
		{name: "red picks on blue ban turn", action: ActionPick, side: SideRed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var (
				next   Session
				events []Event
				err    error
			)
			if tc.action == ActionBan {
				next, events, err = e.BanChampion(ctx, s, 6, tc.side)
			} else {
				next, events, err = e.PickChampion(ctx, s, 6, tc.side)
			}
			if !errors.Is(err, ErrInvalidTurn) {
				t.Fatalf("want ErrInvalidTurn, got %v", err)
			}
			assert.True(t, IsRejection(err))
			assert.Nil(t, events)
			assert.Equal(t, s, next)
			assert.Equal(t, 0, next.TurnNumber)
			assert.Empty(t, next.Teams.Blue.Bans)
			assert.Empty(t, next.Teams.Red.Bans)
		})
	}
}

func TestBan_NotDraftingIsInvalidTurn(t *testing.T) {
	e := newTestEngine()
	s := newTestSession(t, e, Config{})

	_, _, err := e.BanChampion(context.Background(), s, 1, SideBlue)
	assert.ErrorIs(t, err, ErrInvalidTurn)
}

func TestLockIn_UnknownChampion(t *testing.T) {
	e := newTestEngine()
	s := startedSession(t, e, Config{})

	next, _, err := e.BanChampion(context.Background(), s, 5000, SideBlue)
	assert.ErrorIs(t, err, ErrUnknownChampion)
	assert.Equal(t, 0, next.TurnNumber)
}

func TestLockIn_DoesNotMutateInput(t *testing.T) {
	e := newTestEngine()
	s := startedSession(t, e, Config{IsFearlessDraft: true})
	for i := 0; i < 6; i++ {
		var err error
		s, _, err = act(e, s, i+1)
		require.NoError(t, err)
	}
	before := s.Clone()

	next, _, err := e.PickChampion(context.Background(), s, 42, SideBlue)
	require.NoError(t, err)

	assert.Equal(t, before, s)
	assert.Empty(t, s.Teams.Blue.Picks)
	assert.Empty(t, s.Teams.Blue.UsedChampions)
	require.Len(t, next.Teams.Blue.Picks, 1)
	assert.Equal(t, 42, next.Teams.Blue.Picks[0].ID)
	assert.Equal(t, 42, next.Teams.Blue.UsedChampions[0].ID)
}

func TestRejectsDuplicateChampion(t *testing.T) {
	e := newTestEngine()
	s := startedSession(t, e, Config{})
	s, _, err := e.BanChampion(context.Background(), s, 266, SideBlue)
	require.NoError(t, err)

	_, _, err = e.BanChampion(context.Background(), s, 266, SideRed)
	if err == nil || !errors.Is(err, ErrChampionUnavailable) {
		t.Fatalf("want ErrChampionUnavailable, got %v", err)
	}
}

// While turnNumber < 20 the derived phase and team match the table, and
// no champion appears twice across both teams.
func TestFullDraft_PhaseTracksSequencer(t *testing.T) {
	e := newTestEngine()
	s := startedSession(t, e, Config{})

	for s.TurnNumber < TotalTurns() {
		step, ok := CurrentTurn(s.TurnNumber)
		require.True(t, ok)
		require.Equal(t, step.Phase, s.Phase())
		require.Equal(t, step.Team, s.CurrentTeam())

		var err error
		s, _, err = act(e, s, s.TurnNumber+10)
		require.NoError(t, err)
	}

	assert.Equal(t, PhaseFinalization, s.Phase())
	assert.Len(t, s.Teams.Blue.Picks, PicksPerTeam)
	assert.Len(t, s.Teams.Red.Picks, PicksPerTeam)
	assert.Len(t, s.Teams.Blue.Bans, 5)
	assert.Len(t, s.Teams.Red.Bans, 5)

	seen := map[int]bool{}
	for _, list := range [][]Champion{s.Teams.Blue.Bans, s.Teams.Red.Bans, s.Teams.Blue.Picks, s.Teams.Red.Picks} {
		for _, c := range list {
			require.False(t, seen[c.ID], "champion %d used twice", c.ID)
			seen[c.ID] = true
		}
	}
}

func TestDraft_PhaseProgression(t *testing.T) {
	e := newTestEngine()
	s := startedSession(t, e, Config{SeriesType: SeriesBO3, IsFearlessDraft: true})
	ctx := context.Background()

	sides := []Side{SideBlue, SideRed, SideBlue, SideRed, SideBlue, SideRed}
	for i, side := range sides {
		var err error
		s, _, err = e.BanChampion(ctx, s, 100+i, side)
		require.NoError(t, err)
	}
	assert.Equal(t, PhasePick1, s.Phase())
	assert.Equal(t, SideBlue, s.CurrentTeam())

	picks := []Side{SideBlue, SideRed, SideRed, SideBlue, SideBlue, SideRed}
	for i, side := range picks {
		var err error
		s, _, err = e.PickChampion(ctx, s, 200+i, side)
		require.NoError(t, err)
	}
	assert.Equal(t, PhaseBan2, s.Phase())
	assert.Equal(t, SideRed, s.CurrentTeam())
	assert.Equal(t, timer.Default().Ban.Milliseconds(), s.Timer.RemainingMs)

	var events []Event
	for i := 0; i < 8; i++ {
		var err error
		s, events, err = act(e, s, 300+i)
		require.NoError(t, err)
	}
	assert.Equal(t, PhaseFinalization, s.Phase())
	assert.Equal(t, 20, s.TurnNumber)
	assert.True(t, ContainsEvent(events, EvtDraftFinalized))
	assert.True(t, s.Timer.IsActive)
	assert.Equal(t, timer.Default().Finalization.Milliseconds(), s.Timer.TotalMs)

	// No turn actions are accepted during finalization.
	_, _, err := e.PickChampion(ctx, s, 999, SideBlue)
	assert.ErrorIs(t, err, ErrInvalidTurn)
}

func TestLockIn_WrongActionAndTakenChampion(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()
	s := startedSession(t, e, Config{})

	_, _, err := e.PickChampion(ctx, s, 50, SideBlue)
	assert.ErrorIs(t, err, ErrInvalidTurn)

	// Reach ban phase 2 with red having picked champions 207, 208 and 211.
	s = playDraftUntil(t, e, s, 12, func(turn int) int { return 200 + turn })
	require.Equal(t, PhaseBan2, s.Phase())
	require.Equal(t, SideRed, s.CurrentTeam())

	next, events, err := e.BanChampion(ctx, s, 206, SideRed) // blue's first pick
	assert.ErrorIs(t, err, ErrChampionUnavailable)
	assert.Nil(t, events)
	assert.Equal(t, s, next)
}

func playDraftUntil(t *testing.T, e *Engine, s Session, until int, champion func(turn int) int) Session {
	t.Helper()
	for s.TurnNumber < until {
		var err error
		turn := s.TurnNumber
		s, _, err = act(e, s, champion(turn))
		require.NoError(t, err, "turn %d", turn)
	}
	return s
}

func TestUpdateConfig(t *testing.T) {
	e := newTestEngine()
	s := newTestSession(t, e, Config{})

	bo5 := SeriesBO5
	fearless := true
	name := "T1"
	prefix := ""
	s, events, err := e.UpdateConfig(s, ConfigPatch{
		SeriesType:      &bo5,
		IsFearlessDraft: &fearless,
		BlueTeamName:    &name,
		BlueTeamPrefix:  &prefix,
		RedCoach:        &Coach{Name: "kkOma"},
	})
	require.NoError(t, err)
	assert.True(t, ContainsEvent(events, EvtConfigUpdated))
	assert.Equal(t, 5, s.Config.TotalGames)
	assert.True(t, s.Config.IsFearlessDraft)
	assert.Equal(t, "T1", s.Teams.Blue.Name)
	assert.Equal(t, "T1", s.Teams.Blue.Prefix)
	require.NotNil(t, s.Teams.Red.Coach)
	assert.Equal(t, "kkOma", s.Teams.Red.Coach.Name)

	bogus := SeriesType("BO2")
	_, _, err = e.UpdateConfig(s, ConfigPatch{SeriesType: &bogus})
	assert.ErrorIs(t, err, ErrWrongPhase)

	started, _, err := e.StartGame(s)
	require.NoError(t, err)
	_, _, err = e.UpdateConfig(started, ConfigPatch{BlueTeamName: &name})
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestApply_Dispatch(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()
	s := newTestSession(t, e, Config{})

	s, _, err := e.Apply(ctx, s, Command{Type: CmdStartGame})
	require.NoError(t, err)
	s, events, err := e.Apply(ctx, s, Command{Type: CmdBanChampion, Team: SideBlue, ChampionID: 1})
	require.NoError(t, err)
	assert.True(t, ContainsEvent(events, EvtChampionBanned))
	assert.Equal(t, 1, s.TurnNumber)

	s, _, err = e.Apply(ctx, s, Command{Type: CmdSetConnected, Team: SideRed, Connected: true})
	require.NoError(t, err)
	assert.True(t, s.ConnectedTeams.Red)

	_, _, err = e.Apply(ctx, s, Command{Type: "Hover"})
	assert.ErrorIs(t, err, ErrUnsupportedCommand)
}

func TestTickTimer_NeverAdvancesTurn(t *testing.T) {
	e := New(testCatalog{}, nil, timer.Durations{
		Ban: 3 * time.Second, Pick: 3 * time.Second, Finalization: 5 * time.Second,
		Interval: time.Second, OvertimeTicks: 2,
	}, WithClock(func() time.Time { return testNow }))
	s := startedSession(t, e, Config{})

	var results []timer.Result
	for i := 0; i < 8; i++ {
		var res timer.Result
		s, res = e.TickTimer(s)
		results = append(results, res)
	}
	assert.Equal(t, []timer.Result{
		timer.Ticked, timer.Ticked, timer.Ticked, timer.Expired,
		timer.Ticked, timer.Ticked, timer.Exhausted, timer.Idle,
	}, results)
	assert.Equal(t, 0, s.TurnNumber)
	assert.Equal(t, PhaseBan1, s.Phase())
	assert.False(t, s.Timer.IsActive)
	assert.Equal(t, int64(-2000), s.Timer.RemainingMs)

	s, _, err := e.BanChampion(context.Background(), s, 7, SideBlue)
	require.NoError(t, err)
	assert.True(t, s.Timer.IsActive)
	assert.Equal(t, int64(3000), s.Timer.RemainingMs)
	assert.False(t, s.Timer.Overtime)
}
