package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleTop     Role = "TOP"
	RoleJungle  Role = "JUNGLE"
	RoleMid     Role = "MID"
	RoleBottom  Role = "BOTTOM"
	RoleSupport Role = "SUPPORT"
)

// RoleOrder assigns lanes to picks by slot.
var RoleOrder = [PicksPerTeam]Role{RoleTop, RoleJungle, RoleMid, RoleBottom, RoleSupport}

type RolePick struct {
	ChampionID int  `json:"championId"`
	Role       Role `json:"role"`
}

type TeamResult struct {
	TeamID   string     `json:"teamId"`
	TeamName string     `json:"teamName"`
	Won      bool       `json:"won"`
	Picks    []RolePick `json:"picks"`
	Bans     []int      `json:"bans"`
}

// GameResult is the immutable record of one finished game.
type GameResult struct {
	ID              string     `json:"id"`
	SessionID       string     `json:"sessionId"`
	TournamentID    string     `json:"tournamentId,omitempty"`
	GameNumber      int        `json:"gameNumber"`
	Patch           string     `json:"patch"`
	DurationSeconds int        `json:"gameDuration"`
	CompletedAt     time.Time  `json:"completedAt"`
	BlueTeam        TeamResult `json:"blueTeam"`
	RedTeam         TeamResult `json:"redTeam"`
}

type CompleteOptions struct {
	TournamentID string
	// Duration overrides the measured game length when non-zero.
	Duration time.Duration
}

// CompleteGame closes the current game with winner and either finishes the
// series or resets the session for the next game. Fearless history and the
// series score carry over; bans, picks and the turn counter do not.
func (e *Engine) CompleteGame(s Session, winner Side, opts CompleteOptions) (Session, GameResult, []Event, error) {
	if !winner.Valid() {
		return s, GameResult{}, nil, ErrInvalidSide
	}
	if s.Status == StatusCompleted {
		return s, GameResult{}, nil, ErrSeriesCompleted
	}
	if len(s.Teams.Blue.Picks) != PicksPerTeam || len(s.Teams.Red.Picks) != PicksPerTeam {
		return s, GameResult{}, nil, ErrIncompleteRoster
	}

	now := e.now()
	result := buildResult(s, winner, opts, now)

	next := s.Clone()
	next.Timer = next.Timer.Stop()
	next.LastActivity = now
	next.GameHistory = append(next.GameHistory, GameSummary{
		GameNumber:  s.Config.CurrentGame,
		Winner:      winner,
		ResultID:    result.ID,
		CompletedAt: now,
	})
	events := []Event{{Type: EvtGameCompleted, Team: winner, Turn: s.TurnNumber}}

	if next.Config.SeriesType == SeriesBO1 {
		next.Status = StatusCompleted
		return next, result, append(events, Event{Type: EvtSeriesCompleted, Team: winner}), nil
	}

	next.SeriesScore.inc(winner)
	if next.SeriesScore.Get(winner) >= next.Config.RequiredWins() {
		next.Status = StatusCompleted
		return next, result, append(events, Event{Type: EvtSeriesCompleted, Team: winner}), nil
	}

	next.Config.CurrentGame++
	resetForNextGame(&next)
	return next, result, append(events, Event{Type: EvtNextGameReady}), nil
}

// resetForNextGame clears per-game draft state in place.
func resetForNextGame(s *Session) {
	for _, side := range []Side{SideBlue, SideRed} {
		t := s.Teams.Get(side)
		t.Bans = []Champion{}
		t.Picks = []Champion{}
		t.IsReady = false
	}
	s.Status = StatusConfig
	s.TurnNumber = 0
	s.BothTeamsReady = false
	s.TeamReadiness = SideFlags{}
	s.Timer.RemainingMs = 0
	s.Timer.TotalMs = 0
	s.Timer.IsActive = false
	s.Timer.Overtime = false
	s.Timer.StartedAt = nil
	s.GameStartedAt = nil
}

func buildResult(s Session, winner Side, opts CompleteOptions, now time.Time) GameResult {
	duration := opts.Duration
	if duration == 0 && s.GameStartedAt != nil {
		duration = now.Sub(*s.GameStartedAt)
	}
	tournamentID := opts.TournamentID
	if tournamentID == "" {
		tournamentID = s.Config.TournamentID
	}
	return GameResult{
		ID:              ResultID(s.ID, s.Config.CurrentGame),
		SessionID:       s.ID,
		TournamentID:    tournamentID,
		GameNumber:      s.Config.CurrentGame,
		Patch:           s.Config.PatchName,
		DurationSeconds: int(duration.Seconds()),
		CompletedAt:     now,
		BlueTeam:        teamResult(s.Teams.Blue, winner == SideBlue),
		RedTeam:         teamResult(s.Teams.Red, winner == SideRed),
	}
}

func teamResult(t Team, won bool) TeamResult {
	picks := make([]RolePick, 0, len(t.Picks))
	for i, c := range t.Picks {
		picks = append(picks, RolePick{ChampionID: c.ID, Role: RoleOrder[i]})
	}
	bans := make([]int, 0, len(t.Bans))
	for _, c := range t.Bans {
		bans = append(bans, c.ID)
	}
	return TeamResult{
		TeamID:   t.ID,
		TeamName: t.Name,
		Won:      won,
		Picks:    picks,
		Bans:     bans,
	}
}

// ResultID is stable per (session, game) so recording a result twice
// overwrites rather than duplicates.
func ResultID(sessionID string, game int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("draft:%s/game/%d", sessionID, game))).String()
}
