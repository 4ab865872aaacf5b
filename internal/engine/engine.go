package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/DoyleJ11/lol-draft-series/internal/timer"
)

var (
	ErrInvalidTurn         = errors.New("invalid turn")
	ErrChampionUnavailable = errors.New("champion unavailable")
	ErrIncompleteRoster    = errors.New("incomplete roster")
	ErrSessionNotFound     = errors.New("session not found")
	ErrUnknownChampion     = errors.New("unknown champion")
	ErrWrongPhase          = errors.New("not allowed in current phase")
	ErrSeriesCompleted     = errors.New("series already completed")
	ErrInvalidSide         = errors.New("invalid side")
	ErrUnsupportedCommand  = errors.New("unsupported command")
)

var rejections = []error{
	ErrInvalidTurn,
	ErrChampionUnavailable,
	ErrIncompleteRoster,
	ErrSessionNotFound,
	ErrUnknownChampion,
	ErrWrongPhase,
	ErrSeriesCompleted,
	ErrInvalidSide,
	ErrUnsupportedCommand,
}

// IsRejection reports whether err is a plain rule failure, as opposed to an
// infrastructure error. Rejected commands never change the session.
func IsRejection(err error) bool {
	for _, r := range rejections {
		if errors.Is(err, r) {
			return true
		}
	}
	return false
}

type CommandType string

const (
	CmdSetReady     CommandType = "SetReady"
	CmdStartGame    CommandType = "StartGame"
	CmdBanChampion  CommandType = "BanChampion"
	CmdLockPick     CommandType = "LockPick"
	CmdCompleteGame CommandType = "CompleteGame"
	CmdUpdateConfig CommandType = "UpdateConfig"
	CmdSetConnected CommandType = "SetConnected"
)

type Command struct {
	Type       CommandType
	Team       Side
	ChampionID int
	Ready      bool
	Connected  bool
	Winner     Side
	Completion CompleteOptions
	Config     ConfigPatch
}

type EventType string

const (
	EvtTeamReady        EventType = "TeamReady"
	EvtConnection       EventType = "ConnectionChanged"
	EvtGameStarted      EventType = "GameStarted"
	EvtChampionBanned   EventType = "ChampionBanned"
	EvtChampionPicked   EventType = "ChampionPicked"
	EvtTurnAdvanced     EventType = "TurnAdvanced"
	EvtTimerStarted     EventType = "TimerStarted"
	EvtDraftFinalized   EventType = "DraftFinalized"
	EvtGameCompleted    EventType = "GameCompleted"
	EvtSeriesCompleted  EventType = "SeriesCompleted"
	EvtNextGameReady    EventType = "NextGameReady"
	EvtConfigUpdated    EventType = "ConfigUpdated"
	EvtChampionFearless EventType = "ChampionMarkedUsed"
)

type Event struct {
	Type       EventType
	Team       Side
	ChampionID int
	Turn       int
	Result     *GameResult
}

// ChampionCatalog is the read-only champion reference data.
type ChampionCatalog interface {
	ChampionByID(id int) (Champion, bool)
	Champions() []Champion
}

type Option func(*Engine)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// Engine is the session state machine. It holds only collaborators; every
// operation takes a Session value and returns the next one.
type Engine struct {
	catalog   ChampionCatalog
	history   SeriesHistory
	durations timer.Durations
	now       func() time.Time
}

func New(catalog ChampionCatalog, history SeriesHistory, durations timer.Durations, opts ...Option) *Engine {
	e := &Engine{
		catalog:   catalog,
		history:   history,
		durations: durations,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Durations() timer.Durations { return e.durations }

func (e *Engine) Catalog() ChampionCatalog { return e.catalog }

func (e *Engine) History() SeriesHistory { return e.history }

func (e *Engine) Now() time.Time { return e.now() }

// NewSession builds a fresh session in the config phase with a one-time
// join secret.
func (e *Engine) NewSession(cfg Config, kind Kind) (Session, error) {
	secret, err := generateJoinSecret()
	if err != nil {
		return Session{}, fmt.Errorf("generate join secret: %w", err)
	}
	if kind == "" {
		kind = KindWeb
	}
	cfg = normalizeConfig(cfg)
	now := e.now()

	s := Session{
		ID:   uuid.NewString(),
		Kind: kind,
		Teams: Teams{
			Blue: newTeam(SideBlue, cfg.BlueTeamName, "Blue Team", cfg.BlueTeamPrefix, cfg.BlueCoach, cfg.BlueTeamID),
			Red:  newTeam(SideRed, cfg.RedTeamName, "Red Team", cfg.RedTeamPrefix, cfg.RedCoach, cfg.RedTeamID),
		},
		Status:       StatusConfig,
		Config:       cfg,
		GameHistory:  []GameSummary{},
		JoinSecret:   secret,
		CreatedAt:    now,
		LastActivity: now,
	}
	return s, nil
}

// Apply dispatches cmd to the matching operation.
func (e *Engine) Apply(ctx context.Context, s Session, cmd Command) (Session, []Event, error) {
	switch cmd.Type {
	case CmdSetReady:
		return e.SetTeamReady(s, cmd.Team, cmd.Ready)
	case CmdStartGame:
		return e.StartGame(s)
	case CmdBanChampion:
		return e.BanChampion(ctx, s, cmd.ChampionID, cmd.Team)
	case CmdLockPick:
		return e.PickChampion(ctx, s, cmd.ChampionID, cmd.Team)
	case CmdCompleteGame:
		next, result, events, err := e.CompleteGame(s, cmd.Winner, cmd.Completion)
		if err != nil {
			return s, nil, err
		}
		for i := range events {
			if events[i].Type == EvtGameCompleted {
				events[i].Result = &result
			}
		}
		return next, events, nil
	case CmdUpdateConfig:
		return e.UpdateConfig(s, cmd.Config)
	case CmdSetConnected:
		return e.SetConnected(s, cmd.Team, cmd.Connected)
	default:
		return s, nil, ErrUnsupportedCommand
	}
}

func (e *Engine) SetTeamReady(s Session, side Side, ready bool) (Session, []Event, error) {
	if !side.Valid() {
		return s, nil, ErrInvalidSide
	}
	if s.Status != StatusConfig && s.Status != StatusLobby {
		return s, nil, ErrWrongPhase
	}

	next := s.Clone()
	next.Teams.Get(side).IsReady = ready
	next.TeamReadiness.Set(side, ready)
	next.BothTeamsReady = next.Teams.Blue.IsReady && next.Teams.Red.IsReady
	next.LastActivity = e.now()
	events := []Event{{Type: EvtTeamReady, Team: side}}

	if next.BothTeamsReady {
		started, startEvents, err := e.StartGame(next)
		if err != nil {
			return s, nil, err
		}
		return started, append(events, startEvents...), nil
	}

	if next.Teams.Blue.IsReady || next.Teams.Red.IsReady {
		next.Status = StatusLobby
	} else {
		next.Status = StatusConfig
	}
	return next, events, nil
}

func (e *Engine) StartGame(s Session) (Session, []Event, error) {
	if s.Status != StatusConfig && s.Status != StatusLobby {
		return s, nil, ErrWrongPhase
	}
	now := e.now()
	next := s.Clone()
	next.Status = StatusDrafting
	next.TurnNumber = 0
	next.GameStartedAt = &now
	next.LastActivity = now
	next.Timer = e.countdownFor(next, now)

	return next, []Event{
		{Type: EvtGameStarted},
		{Type: EvtTimerStarted, Turn: next.TurnNumber},
	}, nil
}

func (e *Engine) BanChampion(ctx context.Context, s Session, championID int, side Side) (Session, []Event, error) {
	return e.lockIn(ctx, s, championID, side, ActionBan)
}

func (e *Engine) PickChampion(ctx context.Context, s Session, championID int, side Side) (Session, []Event, error) {
	return e.lockIn(ctx, s, championID, side, ActionPick)
}

func (e *Engine) lockIn(ctx context.Context, s Session, championID int, side Side, action Action) (Session, []Event, error) {
	if !side.Valid() {
		return s, nil, ErrInvalidSide
	}

	// Turn must match BOTH team & action
	step, ok := s.CurrentTurn()
	if !ok || step.Team != side || step.Action != action {
		return s, nil, ErrInvalidTurn
	}

	available, err := IsChampionAvailable(ctx, s, championID, e.history)
	if err != nil {
		return s, nil, fmt.Errorf("check champion %d: %w", championID, err)
	}
	if !available {
		return s, nil, ErrChampionUnavailable
	}

	champion, ok := e.catalog.ChampionByID(championID)
	if !ok {
		return s, nil, ErrUnknownChampion
	}

	now := e.now()
	next := s.Clone()
	team := next.Teams.Get(side)

	var events []Event
	if action == ActionBan {
		team.Bans = append(team.Bans, champion)
		events = append(events, Event{Type: EvtChampionBanned, Team: side, ChampionID: championID, Turn: s.TurnNumber})
	} else {
		team.Picks = append(team.Picks, champion)
		if next.Config.IsFearlessDraft && !containsChampion(team.UsedChampions, championID) {
			team.UsedChampions = append(team.UsedChampions, champion)
		}
		events = append(events, Event{Type: EvtChampionPicked, Team: side, ChampionID: championID, Turn: s.TurnNumber})
	}

	next.TurnNumber++
	next.LastActivity = now
	events = append(events, Event{Type: EvtTurnAdvanced, Turn: next.TurnNumber})

	if next.TurnNumber >= TotalTurns() {
		events = append(events, Event{Type: EvtDraftFinalized, Turn: next.TurnNumber})
	}
	next.Timer = e.countdownFor(next, now)
	events = append(events, Event{Type: EvtTimerStarted, Turn: next.TurnNumber})

	return next, events, nil
}

// ConfigPatch carries optional config changes; nil fields are left alone.
type ConfigPatch struct {
	SeriesType      *SeriesType
	IsFearlessDraft *bool
	PatchName       *string
	BlueTeamName    *string
	RedTeamName     *string
	BlueTeamPrefix  *string
	RedTeamPrefix   *string
	BlueCoach       *Coach
	RedCoach        *Coach
	BlueTeamID      *string
	RedTeamID       *string
	TournamentID    *string
	TournamentName  *string
}

// UpdateConfig edits series settings before a game starts. Series shape and
// the fearless flag are frozen once the first game has been played.
func (e *Engine) UpdateConfig(s Session, p ConfigPatch) (Session, []Event, error) {
	if s.Status != StatusConfig && s.Status != StatusLobby {
		return s, nil, ErrWrongPhase
	}
	seriesStarted := len(s.GameHistory) > 0
	if seriesStarted && (p.SeriesType != nil || p.IsFearlessDraft != nil) {
		return s, nil, ErrWrongPhase
	}
	if p.SeriesType != nil && p.SeriesType.TotalGames() == 0 {
		return s, nil, fmt.Errorf("%w: unknown series type %q", ErrWrongPhase, *p.SeriesType)
	}

	next := s.Clone()
	c := &next.Config
	if p.SeriesType != nil {
		c.SeriesType = *p.SeriesType
		c.TotalGames = p.SeriesType.TotalGames()
	}
	if p.IsFearlessDraft != nil {
		c.IsFearlessDraft = *p.IsFearlessDraft
	}
	if p.PatchName != nil && *p.PatchName != "" {
		c.PatchName = *p.PatchName
	}
	if p.TournamentID != nil {
		c.TournamentID = *p.TournamentID
	}
	if p.TournamentName != nil {
		c.TournamentName = *p.TournamentName
	}
	applyTeamPatch(&next.Teams.Blue, &c.BlueTeamName, &c.BlueTeamPrefix, &c.BlueCoach, &c.BlueTeamID,
		p.BlueTeamName, p.BlueTeamPrefix, p.BlueCoach, p.BlueTeamID)
	applyTeamPatch(&next.Teams.Red, &c.RedTeamName, &c.RedTeamPrefix, &c.RedCoach, &c.RedTeamID,
		p.RedTeamName, p.RedTeamPrefix, p.RedCoach, p.RedTeamID)

	next.LastActivity = e.now()
	return next, []Event{{Type: EvtConfigUpdated}}, nil
}

func applyTeamPatch(t *Team, name, prefix *string, coach **Coach, teamID *string,
	pName, pPrefix *string, pCoach *Coach, pTeamID *string) {
	if pName != nil && *pName != "" {
		*name = *pName
		t.Name = *pName
		if *prefix == "" {
			t.Prefix = defaultPrefix(t.Name)
		}
	}
	if pPrefix != nil {
		*prefix = *pPrefix
		t.Prefix = *pPrefix
		if t.Prefix == "" {
			t.Prefix = defaultPrefix(t.Name)
		}
	}
	if pCoach != nil {
		*coach = cloneCoach(pCoach)
		t.Coach = cloneCoach(pCoach)
	}
	if pTeamID != nil {
		*teamID = *pTeamID
		t.Logo = *pTeamID
	}
}

// SetConnected records whether a side currently has a live connection.
func (e *Engine) SetConnected(s Session, side Side, connected bool) (Session, []Event, error) {
	if !side.Valid() {
		return s, nil, ErrInvalidSide
	}
	if s.ConnectedTeams.Get(side) == connected {
		return s, nil, nil
	}
	next := s.Clone()
	next.ConnectedTeams.Set(side, connected)
	next.LastActivity = e.now()
	return next, []Event{{Type: EvtConnection, Team: side}}, nil
}

// countdownFor picks the countdown owed by s at its current turn.
func (e *Engine) countdownFor(s Session, now time.Time) timer.Countdown {
	if s.Status != StatusDrafting {
		return s.Timer.Stop()
	}
	step, ok := CurrentTurn(s.TurnNumber)
	switch {
	case !ok:
		return timer.Start(e.durations.Finalization, now)
	case step.Action == ActionPick:
		return timer.Start(e.durations.Pick, now)
	default:
		return timer.Start(e.durations.Ban, now)
	}
}

// TickTimer advances the session countdown by one interval. It never moves
// the draft forward.
func (e *Engine) TickTimer(s Session) (Session, timer.Result) {
	c, res := e.durations.Tick(s.Timer)
	if res == timer.Idle {
		return s, res
	}
	next := s.Clone()
	next.Timer = c
	next.LastActivity = e.now()
	return next, res
}
