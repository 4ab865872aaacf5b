package engine

import (
	"time"

	"github.com/DoyleJ11/lol-draft-series/internal/timer"
)

// GameState is the read projection sent to clients. It leaves out the join
// secret.
type GameState struct {
	SessionID      string          `json:"sessionId"`
	Kind           Kind            `json:"type"`
	Teams          Teams           `json:"teams"`
	Phase          Phase           `json:"phase"`
	CurrentTeam    Side            `json:"currentTeam"`
	CurrentTurn    *TurnStep       `json:"currentTurn"`
	TurnNumber     int             `json:"turnNumber"`
	TotalTurns     int             `json:"totalTurns"`
	Timer          timer.Countdown `json:"timer"`
	BothTeamsReady bool            `json:"bothTeamsReady"`
	TeamReadiness  SideFlags       `json:"teamReadiness"`
	ConnectedTeams SideFlags       `json:"connectedTeams"`
	Config         Config          `json:"config"`
	SeriesScore    SeriesScore     `json:"seriesScore"`
	GameHistory    []GameSummary   `json:"gameHistory"`
	LastActivity   time.Time       `json:"lastActivity"`
}

func View(s Session) GameState {
	s = s.Clone()
	var current *TurnStep
	if step, ok := s.CurrentTurn(); ok {
		current = &step
	}
	return GameState{
		SessionID:      s.ID,
		Kind:           s.Kind,
		Teams:          s.Teams,
		Phase:          s.Phase(),
		CurrentTeam:    s.CurrentTeam(),
		CurrentTurn:    current,
		TurnNumber:     s.TurnNumber,
		TotalTurns:     TotalTurns(),
		Timer:          s.Timer,
		BothTeamsReady: s.BothTeamsReady,
		TeamReadiness:  s.TeamReadiness,
		ConnectedTeams: s.ConnectedTeams,
		Config:         s.Config,
		SeriesScore:    s.SeriesScore,
		GameHistory:    s.GameHistory,
		LastActivity:   s.LastActivity,
	}
}
