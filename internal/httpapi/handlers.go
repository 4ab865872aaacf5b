package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DoyleJ11/lol-draft-series/internal/engine"
	"github.com/DoyleJ11/lol-draft-series/internal/hub"
	"github.com/DoyleJ11/lol-draft-series/internal/lobby"
	"github.com/DoyleJ11/lol-draft-series/internal/logging"
	"github.com/DoyleJ11/lol-draft-series/internal/store"
	"github.com/DoyleJ11/lol-draft-series/internal/types"
)

const maxBodyBytes = 64 << 10

var errBadBody = errors.New("invalid request body")

type Deps struct {
	Engine *engine.Engine
	Store  store.Store
	Hub    *hub.Hub
	Logger *zap.Logger
	// OriginPatterns is passed to the websocket handshake.
	OriginPatterns []string
}

func (d Deps) log() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// CreateSession persists a new session and starts its lobby. The join
// secret is only ever returned here.
func CreateSession(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.CreateSessionRequest
		if err := decode(w, r, &req); err != nil {
			writeError(w, d.log(), err)
			return
		}
		if req.SeriesType != "" && req.SeriesType.TotalGames() == 0 {
			writeJSON(w, http.StatusBadRequest, types.ErrorResponse{Error: "unknown series type"})
			return
		}

		s, err := d.Engine.NewSession(req.Config(), req.Type)
		if err != nil {
			writeError(w, d.log(), err)
			return
		}
		s, err = d.Store.SaveSession(r.Context(), s)
		if err != nil {
			writeError(w, d.log(), err)
			return
		}
		if _, err := d.Hub.Add(r.Context(), s); err != nil {
			writeError(w, d.log(), err)
			return
		}

		d.log().Info("session created", logging.Session(s.ID),
			zap.String("series", string(s.Config.SeriesType)),
			zap.Bool("fearless", s.Config.IsFearlessDraft))
		writeJSON(w, http.StatusCreated, types.CreateSessionResponse{
			SessionID:  s.ID,
			JoinSecret: s.JoinSecret,
			State:      engine.View(s),
		})
	}
}

func ListSessions(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions, err := d.Store.ListSessions(r.Context())
		if err != nil {
			writeError(w, d.log(), err)
			return
		}
		out := make([]engine.GameState, 0, len(sessions))
		for _, s := range sessions {
			out = append(out, engine.View(s))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func GetSession(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := currentSession(r.Context(), d, chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, d.log(), err)
			return
		}
		writeJSON(w, http.StatusOK, engine.View(s))
	}
}

func UpdateConfig(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ConfigPatchRequest
		if err := decode(w, r, &req); err != nil {
			writeError(w, d.log(), err)
			return
		}
		runCommand(w, r, d, engine.Command{Type: engine.CmdUpdateConfig, Config: engine.ConfigPatch(req)})
	}
}

func SetReady(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ReadyRequest
		if err := decode(w, r, &req); err != nil {
			writeError(w, d.log(), err)
			return
		}
		runCommand(w, r, d, engine.Command{Type: engine.CmdSetReady, Team: req.Team, Ready: req.Ready})
	}
}

func BanChampion(d Deps) http.HandlerFunc {
	return champCommand(d, engine.CmdBanChampion)
}

func PickChampion(d Deps) http.HandlerFunc {
	return champCommand(d, engine.CmdLockPick)
}

func champCommand(d Deps, typ engine.CommandType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ChampionRequest
		if err := decode(w, r, &req); err != nil {
			writeError(w, d.log(), err)
			return
		}
		runCommand(w, r, d, engine.Command{Type: typ, Team: req.Team, ChampionID: req.ChampionID})
	}
}

func CompleteGame(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.CompleteRequest
		if err := decode(w, r, &req); err != nil {
			writeError(w, d.log(), err)
			return
		}
		lb, err := d.Hub.Ensure(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, d.log(), err)
			return
		}
		res := lb.Do(r.Context(), engine.Command{
			Type:   engine.CmdCompleteGame,
			Winner: req.Winner,
			Completion: engine.CompleteOptions{
				TournamentID: req.TournamentID,
				Duration:     time.Duration(req.DurationSeconds) * time.Second,
			},
		})
		if res.Err != nil {
			writeError(w, d.log(), res.Err)
			return
		}
		out := types.CompleteResponse{State: res.State}
		for _, ev := range res.Events {
			if ev.Type == engine.EvtGameCompleted {
				out.Result = ev.Result
			}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// MarkUsed seeds a team's fearless history.
func MarkUsed(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ChampionRequest
		if err := decode(w, r, &req); err != nil {
			writeError(w, d.log(), err)
			return
		}
		lb, err := d.Hub.Ensure(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, d.log(), err)
			return
		}
		res := lb.MarkChampionUsed(r.Context(), req.Team, req.ChampionID)
		if res.Err != nil {
			writeError(w, d.log(), res.Err)
			return
		}
		writeJSON(w, http.StatusOK, res.State)
	}
}

// AvailableChampions lists what can still be banned or picked in the
// session's current game.
func AvailableChampions(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := currentSession(r.Context(), d, chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, d.log(), err)
			return
		}
		champs, err := engine.AvailableChampions(r.Context(), s, d.Engine.Catalog(), d.Engine.History())
		if err != nil {
			writeError(w, d.log(), err)
			return
		}
		writeJSON(w, http.StatusOK, champs)
	}
}

func GameResults(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if _, err := d.Store.GetSession(r.Context(), id); err != nil {
			writeError(w, d.log(), err)
			return
		}
		results, err := d.Store.ListGameResults(r.Context(), id)
		if err != nil {
			writeError(w, d.log(), err)
			return
		}
		if results == nil {
			results = []engine.GameResult{}
		}
		writeJSON(w, http.StatusOK, results)
	}
}

func Champions(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Engine.Catalog().Champions())
	}
}

// PickBanOrder returns the fixed draft order.
func PickBanOrder(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, engine.GameOrder)
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// currentSession prefers the live lobby's copy, which may be ahead of the
// store by a few unpersisted ticks.
func currentSession(ctx context.Context, d Deps, id string) (engine.Session, error) {
	lb, err := d.Hub.Get(ctx, id)
	if err != nil {
		return engine.Session{}, err
	}
	if lb != nil {
		v, err := lb.State(ctx)
		if err == nil {
			return v.Session, nil
		}
		if !errors.Is(err, lobby.ErrClosed) {
			return engine.Session{}, err
		}
	}
	return d.Store.GetSession(ctx, id)
}

func runCommand(w http.ResponseWriter, r *http.Request, d Deps, cmd engine.Command) {
	lb, err := d.Hub.Ensure(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, d.log(), err)
		return
	}
	res := lb.Do(r.Context(), cmd)
	if res.Err != nil {
		writeError(w, d.log(), res.Err)
		return
	}
	writeJSON(w, http.StatusOK, res.State)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errBadBody
	}
	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadBody), errors.Is(err, engine.ErrUnsupportedCommand):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrInvalidTurn),
		errors.Is(err, engine.ErrWrongPhase),
		errors.Is(err, engine.ErrSeriesCompleted):
		return http.StatusConflict
	case errors.Is(err, engine.ErrChampionUnavailable),
		errors.Is(err, engine.ErrUnknownChampion),
		errors.Is(err, engine.ErrIncompleteRoster),
		errors.Is(err, engine.ErrInvalidSide):
		return http.StatusUnprocessableEntity
	case errors.Is(err, lobby.ErrClosed), errors.Is(err, hub.ErrHubClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Error("request failed", zap.Error(err))
		msg = "internal error"
	}
	writeJSON(w, status, types.ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
