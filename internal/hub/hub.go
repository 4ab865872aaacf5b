// Package hub owns the map of live lobbies, one per session id.
package hub

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/DoyleJ11/lol-draft-series/internal/engine"
	"github.com/DoyleJ11/lol-draft-series/internal/lobby"
)

var ErrHubClosed = errors.New("hub closed")

type HubMsg interface{ isHubMsg() }

// CreateLobby starts a lobby for Session unless one already runs for its id,
// in which case the running lobby is returned.
type CreateLobby struct {
	Session engine.Session
	Reply   chan *lobby.Lobby
}

type GetLobby struct {
	ID    string
	Reply chan *lobby.Lobby
}

type RemoveLobby struct {
	ID    string
	Reply chan bool
}

type ListLobbies struct {
	Reply chan []string
}

type ShutdownHub struct {
	Done chan struct{}
}

func (CreateLobby) isHubMsg() {}
func (GetLobby) isHubMsg()    {}
func (RemoveLobby) isHubMsg() {}
func (ListLobbies) isHubMsg() {}
func (ShutdownHub) isHubMsg() {}

type Hub struct {
	inbox   chan HubMsg
	lobbies map[string]*lobby.Lobby
	deps    lobby.Deps
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewHub(parent context.Context, deps lobby.Deps) *Hub {
	ctx, cancel := context.WithCancel(parent)
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	h := &Hub{
		inbox:   make(chan HubMsg, 64),
		lobbies: make(map[string]*lobby.Lobby),
		deps:    deps,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	defer close(h.done)
	for {
		select {
		case <-h.ctx.Done():
			h.shutdownLobbies()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateLobby:
				if lb := h.lobbies[msg.Session.ID]; lb != nil {
					msg.Reply <- lb
					break
				}
				lb := lobby.NewLobby(h.ctx, h.deps, msg.Session)
				h.lobbies[msg.Session.ID] = lb
				h.log.Debug("lobby started", zap.String("session_id", msg.Session.ID))
				msg.Reply <- lb

			case GetLobby:
				msg.Reply <- h.lobbies[msg.ID] // May be nil

			case RemoveLobby:
				lb, ok := h.lobbies[msg.ID]
				if ok {
					stopLobby(lb)
					delete(h.lobbies, msg.ID)
				}
				if msg.Reply != nil {
					msg.Reply <- ok
				}

			case ListLobbies:
				ids := make([]string, 0, len(h.lobbies))
				for id := range h.lobbies {
					ids = append(ids, id)
				}
				msg.Reply <- ids

			case ShutdownHub:
				h.shutdownLobbies()
				h.cancel()
				close(msg.Done)
				return
			}
		}
	}
}

func (h *Hub) shutdownLobbies() {
	for _, lb := range h.lobbies {
		stopLobby(lb)
	}
	clear(h.lobbies)
}

func stopLobby(lb *lobby.Lobby) {
	select {
	case lb.Inbox() <- lobby.Shutdown{}:
	case <-lb.Done():
	}
}

func (h *Hub) send(ctx context.Context, msg HubMsg) error {
	select {
	case h.inbox <- msg:
		return nil
	case <-h.done:
		return ErrHubClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func await[T any](ctx context.Context, h *Hub, reply chan T) (T, error) {
	var zero T
	select {
	case v := <-reply:
		return v, nil
	case <-h.done:
		return zero, ErrHubClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Add starts (or returns) the lobby for a persisted session.
func (h *Hub) Add(ctx context.Context, s engine.Session) (*lobby.Lobby, error) {
	reply := make(chan *lobby.Lobby, 1)
	if err := h.send(ctx, CreateLobby{Session: s, Reply: reply}); err != nil {
		return nil, err
	}
	return await(ctx, h, reply)
}

// Get returns the running lobby for id, or nil.
func (h *Hub) Get(ctx context.Context, id string) (*lobby.Lobby, error) {
	reply := make(chan *lobby.Lobby, 1)
	if err := h.send(ctx, GetLobby{ID: id, Reply: reply}); err != nil {
		return nil, err
	}
	return await(ctx, h, reply)
}

// Ensure returns the running lobby for id, loading the session from the
// store and starting a lobby when none is running. The store read happens
// outside the hub loop.
func (h *Hub) Ensure(ctx context.Context, id string) (*lobby.Lobby, error) {
	lb, err := h.Get(ctx, id)
	if err != nil || lb != nil {
		return lb, err
	}
	s, err := h.deps.Store.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	return h.Add(ctx, s)
}

// Remove stops the lobby for id. It reports whether one was running.
func (h *Hub) Remove(ctx context.Context, id string) (bool, error) {
	reply := make(chan bool, 1)
	if err := h.send(ctx, RemoveLobby{ID: id, Reply: reply}); err != nil {
		return false, err
	}
	return await(ctx, h, reply)
}

func (h *Hub) List(ctx context.Context) ([]string, error) {
	reply := make(chan []string, 1)
	if err := h.send(ctx, ListLobbies{Reply: reply}); err != nil {
		return nil, err
	}
	return await(ctx, h, reply)
}

// Shutdown stops every lobby and the hub itself.
func (h *Hub) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	if err := h.send(ctx, ShutdownHub{Done: done}); err != nil {
		if errors.Is(err, ErrHubClosed) {
			return nil
		}
		return err
	}
	select {
	case <-done:
		return nil
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
