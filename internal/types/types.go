// Package types holds the JSON shapes exchanged with clients over HTTP and
// the websocket.
package types

import "github.com/DoyleJ11/lol-draft-series/internal/engine"

const (
	MsgStateSnapshot = "StateSnapshot"
	MsgError         = "Error"

	MsgReady        = "Ready"
	MsgBanChampion  = "BanChampion"
	MsgPickChampion = "PickChampion"
)

// ClientMessage is sent by a websocket client. Team defaults to the side the
// connection joined as.
type ClientMessage struct {
	Type       string `json:"type"`
	Team       string `json:"team,omitempty"`
	ChampionID int    `json:"championId,omitempty"`
	Ready      *bool  `json:"ready,omitempty"`
}

type ServerMessage struct {
	Type    string            `json:"type"` // "StateSnapshot" | "Error"
	Version int               `json:"version,omitempty"`
	State   *engine.GameState `json:"state,omitempty"`
	Error   string            `json:"error,omitempty"`
}

type CreateSessionRequest struct {
	Type            engine.Kind       `json:"type,omitempty"`
	SeriesType      engine.SeriesType `json:"seriesType,omitempty"`
	IsFearlessDraft bool              `json:"isFearlessDraft"`
	PatchName       string            `json:"patchName,omitempty"`
	BlueTeamName    string            `json:"blueTeamName,omitempty"`
	RedTeamName     string            `json:"redTeamName,omitempty"`
	BlueTeamPrefix  string            `json:"blueTeamPrefix,omitempty"`
	RedTeamPrefix   string            `json:"redTeamPrefix,omitempty"`
	BlueCoach       *engine.Coach     `json:"blueCoach,omitempty"`
	RedCoach        *engine.Coach     `json:"redCoach,omitempty"`
	BlueTeamID      string            `json:"blueTeamId,omitempty"`
	RedTeamID       string            `json:"redTeamId,omitempty"`
	TournamentID    string            `json:"tournamentId,omitempty"`
	TournamentName  string            `json:"tournamentName,omitempty"`
}

func (r CreateSessionRequest) Config() engine.Config {
	return engine.Config{
		SeriesType:      r.SeriesType,
		IsFearlessDraft: r.IsFearlessDraft,
		PatchName:       r.PatchName,
		BlueTeamName:    r.BlueTeamName,
		RedTeamName:     r.RedTeamName,
		BlueTeamPrefix:  r.BlueTeamPrefix,
		RedTeamPrefix:   r.RedTeamPrefix,
		BlueCoach:       r.BlueCoach,
		RedCoach:        r.RedCoach,
		BlueTeamID:      r.BlueTeamID,
		RedTeamID:       r.RedTeamID,
		TournamentID:    r.TournamentID,
		TournamentName:  r.TournamentName,
	}
}

// CreateSessionResponse is the only response that carries the join secret.
type CreateSessionResponse struct {
	SessionID  string           `json:"sessionId"`
	JoinSecret string           `json:"joinSecret"`
	State      engine.GameState `json:"state"`
}

// ConfigPatchRequest mirrors engine.ConfigPatch; absent fields are left alone.
type ConfigPatchRequest struct {
	SeriesType      *engine.SeriesType `json:"seriesType,omitempty"`
	IsFearlessDraft *bool              `json:"isFearlessDraft,omitempty"`
	PatchName       *string            `json:"patchName,omitempty"`
	BlueTeamName    *string            `json:"blueTeamName,omitempty"`
	RedTeamName     *string            `json:"redTeamName,omitempty"`
	BlueTeamPrefix  *string            `json:"blueTeamPrefix,omitempty"`
	RedTeamPrefix   *string            `json:"redTeamPrefix,omitempty"`
	BlueCoach       *engine.Coach      `json:"blueCoach,omitempty"`
	RedCoach        *engine.Coach      `json:"redCoach,omitempty"`
	BlueTeamID      *string            `json:"blueTeamId,omitempty"`
	RedTeamID       *string            `json:"redTeamId,omitempty"`
	TournamentID    *string            `json:"tournamentId,omitempty"`
	TournamentName  *string            `json:"tournamentName,omitempty"`
}

type ReadyRequest struct {
	Team  engine.Side `json:"team"`
	Ready bool        `json:"ready"`
}

// ChampionRequest is the body of ban, pick and used-champion calls.
type ChampionRequest struct {
	Team       engine.Side `json:"team"`
	ChampionID int         `json:"championId"`
}

type CompleteRequest struct {
	Winner          engine.Side `json:"winner"`
	TournamentID    string      `json:"tournamentId,omitempty"`
	DurationSeconds int         `json:"gameDuration,omitempty"`
}

type CompleteResponse struct {
	Result *engine.GameResult `json:"result,omitempty"`
	State  engine.GameState   `json:"state"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
