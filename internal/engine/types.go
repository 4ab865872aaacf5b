package engine

import (
	"slices"
	"time"

	"github.com/DoyleJ11/lol-draft-series/internal/timer"
)

type Side string

const (
	SideBlue Side = "blue"
	SideRed  Side = "red"
)

func (s Side) Valid() bool { return s == SideBlue || s == SideRed }

func ParseSide(v string) (Side, bool) {
	switch v {
	case "blue":
		return SideBlue, true
	case "red":
		return SideRed, true
	default:
		return "", false
	}
}

type Action string

const (
	ActionBan  Action = "ban"
	ActionPick Action = "pick"
)

type Phase string

const (
	PhaseConfig       Phase = "config"
	PhaseLobby        Phase = "lobby"
	PhaseBan1         Phase = "ban1"
	PhasePick1        Phase = "pick1"
	PhaseBan2         Phase = "ban2"
	PhasePick2        Phase = "pick2"
	PhaseFinalization Phase = "finalization"
	PhaseCompleted    Phase = "completed"
)

// Status is the persisted part of the lifecycle. Draft phases are derived
// from TurnNumber while drafting.
type Status string

const (
	StatusConfig    Status = "config"
	StatusLobby     Status = "lobby"
	StatusDrafting  Status = "drafting"
	StatusCompleted Status = "completed"
)

type SeriesType string

const (
	SeriesBO1 SeriesType = "BO1"
	SeriesBO3 SeriesType = "BO3"
	SeriesBO5 SeriesType = "BO5"
)

// TotalGames returns the series length, or 0 for an unknown type.
func (t SeriesType) TotalGames() int {
	switch t {
	case SeriesBO1:
		return 1
	case SeriesBO3:
		return 3
	case SeriesBO5:
		return 5
	default:
		return 0
	}
}

type Kind string

const (
	KindWeb        Kind = "web"
	KindStatic     Kind = "static"
	KindLCU        Kind = "lcu"
	KindTournament Kind = "tournament"
)

type Champion struct {
	ID    int    `json:"id"`
	Key   string `json:"key,omitempty"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

type Coach struct {
	Name string `json:"name"`
	ID   string `json:"id,omitempty"`
}

// Team is one side of a session. Bans and Picks belong to the current game;
// UsedChampions accumulates fearless picks across the series.
type Team struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Side          Side       `json:"side"`
	Prefix        string     `json:"prefix,omitempty"`
	Bans          []Champion `json:"bans"`
	Picks         []Champion `json:"picks"`
	IsReady       bool       `json:"isReady"`
	Coach         *Coach     `json:"coach,omitempty"`
	UsedChampions []Champion `json:"usedChampions"`
	Logo          string     `json:"logo,omitempty"`
}

type Teams struct {
	Blue Team `json:"blue"`
	Red  Team `json:"red"`
}

// Get returns a pointer into t for side. It panics on an invalid side, so
// callers validate first.
func (t *Teams) Get(side Side) *Team {
	switch side {
	case SideBlue:
		return &t.Blue
	case SideRed:
		return &t.Red
	}
	panic("engine: invalid side " + string(side))
}

type Config struct {
	SeriesType      SeriesType `json:"seriesType"`
	CurrentGame     int        `json:"currentGame"`
	TotalGames      int        `json:"totalGames"`
	IsFearlessDraft bool       `json:"isFearlessDraft"`
	PatchName       string     `json:"patchName"`
	BlueTeamName    string     `json:"blueTeamName,omitempty"`
	RedTeamName     string     `json:"redTeamName,omitempty"`
	BlueTeamPrefix  string     `json:"blueTeamPrefix,omitempty"`
	RedTeamPrefix   string     `json:"redTeamPrefix,omitempty"`
	BlueCoach       *Coach     `json:"blueCoach,omitempty"`
	RedCoach        *Coach     `json:"redCoach,omitempty"`
	BlueTeamID      string     `json:"blueTeamId,omitempty"`
	RedTeamID       string     `json:"redTeamId,omitempty"`
	TournamentID    string     `json:"tournamentId,omitempty"`
	TournamentName  string     `json:"tournamentName,omitempty"`
}

// RequiredWins is the number of game wins that decides the series.
func (c Config) RequiredWins() int { return (c.TotalGames + 1) / 2 }

type SeriesScore struct {
	Blue int `json:"blue"`
	Red  int `json:"red"`
}

func (s SeriesScore) Get(side Side) int {
	if side == SideRed {
		return s.Red
	}
	return s.Blue
}

func (s *SeriesScore) inc(side Side) {
	if side == SideRed {
		s.Red++
		return
	}
	s.Blue++
}

// SideFlags is a per-side boolean such as readiness or connection state.
type SideFlags struct {
	Blue bool `json:"blue"`
	Red  bool `json:"red"`
}

func (f SideFlags) Get(side Side) bool {
	if side == SideRed {
		return f.Red
	}
	return f.Blue
}

func (f *SideFlags) Set(side Side, v bool) {
	if side == SideRed {
		f.Red = v
		return
	}
	f.Blue = v
}

type GameSummary struct {
	GameNumber  int       `json:"gameNumber"`
	Winner      Side      `json:"winner"`
	ResultID    string    `json:"resultId"`
	CompletedAt time.Time `json:"completedAt"`
}

// Session is the persisted draft series. It is treated as a value: engine
// operations return a new Session and never modify their input.
type Session struct {
	ID             string          `json:"id"`
	Kind           Kind            `json:"type"`
	Teams          Teams           `json:"teams"`
	Status         Status          `json:"status"`
	TurnNumber     int             `json:"turnNumber"`
	Timer          timer.Countdown `json:"timer"`
	BothTeamsReady bool            `json:"bothTeamsReady"`
	Config         Config          `json:"config"`
	SeriesScore    SeriesScore     `json:"seriesScore"`
	GameHistory    []GameSummary   `json:"gameHistory"`
	JoinSecret     string          `json:"joinSecret"`
	TeamReadiness  SideFlags       `json:"teamReadiness"`
	ConnectedTeams SideFlags       `json:"connectedTeams"`
	CreatedAt      time.Time       `json:"createdAt"`
	LastActivity   time.Time       `json:"lastActivity"`
	GameStartedAt  *time.Time      `json:"gameStartedAt,omitempty"`
}

// Phase derives the externally visible phase from Status and TurnNumber.
func (s Session) Phase() Phase {
	return DerivePhase(s.Status, s.TurnNumber)
}

// CurrentTurn is the step owed right now, if the session is drafting.
func (s Session) CurrentTurn() (TurnStep, bool) {
	if s.Status != StatusDrafting {
		return TurnStep{}, false
	}
	return CurrentTurn(s.TurnNumber)
}

// CurrentTeam is the side on the clock; blue when no turn is owed.
func (s Session) CurrentTeam() Side {
	if step, ok := s.CurrentTurn(); ok {
		return step.Team
	}
	return SideBlue
}

// Clone returns a deep copy so the result can be modified freely.
func (s Session) Clone() Session {
	out := s
	out.Teams.Blue = cloneTeam(s.Teams.Blue)
	out.Teams.Red = cloneTeam(s.Teams.Red)
	out.Config.BlueCoach = cloneCoach(s.Config.BlueCoach)
	out.Config.RedCoach = cloneCoach(s.Config.RedCoach)
	out.GameHistory = slices.Clone(s.GameHistory)
	out.GameStartedAt = cloneTime(s.GameStartedAt)
	out.Timer.StartedAt = cloneTime(s.Timer.StartedAt)
	return out
}

// UsedChampions is the de-duplicated union of both teams' fearless history.
func (s Session) UsedChampions() []Champion {
	seen := make(map[int]bool)
	var out []Champion
	for _, c := range append(append([]Champion(nil), s.Teams.Blue.UsedChampions...), s.Teams.Red.UsedChampions...) {
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	return out
}
