// Package ws streams lobby snapshots to websocket clients and turns their
// messages into draft commands.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/DoyleJ11/lol-draft-series/internal/engine"
	"github.com/DoyleJ11/lol-draft-series/internal/hub"
	"github.com/DoyleJ11/lol-draft-series/internal/lobby"
	"github.com/DoyleJ11/lol-draft-series/internal/logging"
	"github.com/DoyleJ11/lol-draft-series/internal/types"
)

const (
	writeTimeout = 3 * time.Second
	outboxSize   = 8
)

var (
	errUnknownMessage = errors.New("unknown message type")
	errTeamMismatch   = errors.New("team does not match connection")
)

// Handler serves GET /ws?session=<id>&team=<side>. Without a team the
// connection is a spectator; it receives snapshots but presence is not
// tracked.
func Handler(h *hub.Hub, log *zap.Logger, originPatterns ...string) http.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("session")
		if sessionID == "" {
			http.Error(w, "missing session", http.StatusBadRequest)
			return
		}
		var team engine.Side
		if raw := r.URL.Query().Get("team"); raw != "" {
			side, ok := engine.ParseSide(raw)
			if !ok {
				http.Error(w, "invalid team", http.StatusBadRequest)
				return
			}
			team = side
		}

		lb, err := h.Ensure(r.Context(), sessionID)
		if errors.Is(err, engine.ErrSessionNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		if err != nil {
			log.Error("load lobby", logging.Session(sessionID), zap.Error(err))
			http.Error(w, "failed to load session", http.StatusInternalServerError)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: originPatterns})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		c := &client{
			id:   uuid.NewString(),
			team: team,
			conn: conn,
			lb:   lb,
			log:  log.With(logging.Session(sessionID), zap.String("team", string(team))),
		}
		c.serve(r.Context())
	}
}

type client struct {
	id   string
	team engine.Side
	conn *websocket.Conn
	lb   *lobby.Lobby
	log  *zap.Logger
}

func (c *client) serve(ctx context.Context) {
	out := make(chan lobby.Snapshot, outboxSize)
	select {
	case c.lb.Inbox() <- lobby.Join{ClientID: c.id, Outbox: out}:
	case <-c.lb.Done():
		c.conn.Close(websocket.StatusGoingAway, "session closed")
		return
	}
	defer c.leave()

	if c.team != "" {
		c.setConnected(ctx, true)
		defer c.setConnected(context.Background(), false)
	}

	// Writer goroutine
	writeCtx, writeCancel := context.WithCancel(ctx)
	defer writeCancel()
	go c.writeSnapshots(writeCtx, out)

	// Reader loop
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				c.log.Debug("websocket read ended", zap.Error(err))
			}
			return
		}

		var cm types.ClientMessage
		if err := json.Unmarshal(data, &cm); err != nil {
			c.writeError(ctx, errors.New("bad json"))
			continue
		}
		cmd, err := toEngineCommand(cm, c.team)
		if err != nil {
			c.writeError(ctx, err)
			continue
		}
		if res := c.lb.Do(ctx, cmd); res.Err != nil {
			c.writeError(ctx, res.Err)
		}
	}
}

func (c *client) writeSnapshots(ctx context.Context, out <-chan lobby.Snapshot) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-out:
			if !ok {
				// The lobby closed our outbox: it shut down or we fell behind.
				c.conn.Close(websocket.StatusGoingAway, "snapshot stream ended")
				return
			}
			msg := types.ServerMessage{Type: types.MsgStateSnapshot, Version: snap.Version, State: &snap.State}
			if err := c.write(ctx, msg); err != nil {
				c.log.Debug("write snapshot", zap.Error(err))
				return
			}
		}
	}
}

func (c *client) write(ctx context.Context, msg types.ServerMessage) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, c.conn, msg)
}

func (c *client) writeError(ctx context.Context, err error) {
	_ = c.write(ctx, types.ServerMessage{Type: types.MsgError, Error: err.Error()})
}

func (c *client) setConnected(ctx context.Context, connected bool) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	res := c.lb.Do(ctx, engine.Command{Type: engine.CmdSetConnected, Team: c.team, Connected: connected})
	if res.Err != nil && !errors.Is(res.Err, lobby.ErrClosed) {
		c.log.Warn("update connection state", zap.Bool("connected", connected), zap.Error(res.Err))
	}
}

func (c *client) leave() {
	select {
	case c.lb.Inbox() <- lobby.Leave{ClientID: c.id}:
	case <-c.lb.Done():
	}
}

// toEngineCommand maps a client message to a command. Team falls back to the
// side the connection joined as and may not contradict it.
func toEngineCommand(m types.ClientMessage, joined engine.Side) (engine.Command, error) {
	team := joined
	if m.Team != "" {
		side, ok := engine.ParseSide(m.Team)
		if !ok {
			return engine.Command{}, engine.ErrInvalidSide
		}
		if joined != "" && side != joined {
			return engine.Command{}, errTeamMismatch
		}
		team = side
	}
	if team == "" {
		return engine.Command{}, engine.ErrInvalidSide
	}

	switch m.Type {
	case types.MsgReady:
		ready := true
		if m.Ready != nil {
			ready = *m.Ready
		}
		return engine.Command{Type: engine.CmdSetReady, Team: team, Ready: ready}, nil
	case types.MsgBanChampion:
		return engine.Command{Type: engine.CmdBanChampion, Team: team, ChampionID: m.ChampionID}, nil
	case types.MsgPickChampion:
		return engine.Command{Type: engine.CmdLockPick, Team: team, ChampionID: m.ChampionID}, nil
	default:
		return engine.Command{}, fmt.Errorf("%w: %q", errUnknownMessage, m.Type)
	}
}
