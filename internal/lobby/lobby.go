// Package lobby runs one goroutine per draft session. That goroutine is the
// only writer of the session; commands, timer ticks, joins and reads all go
// through its inbox.
package lobby

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/DoyleJ11/lol-draft-series/internal/engine"
	"github.com/DoyleJ11/lol-draft-series/internal/logging"
	"github.com/DoyleJ11/lol-draft-series/internal/store"
	"github.com/DoyleJ11/lol-draft-series/internal/timer"
)

// ErrClosed is returned for requests sent to a lobby that has shut down.
var ErrClosed = errors.New("lobby closed")

const storeTimeout = 5 * time.Second

type Msg interface{ isLobbyMsg() }

// Result answers a FromClient or MarkUsed request.
type Result struct {
	State  engine.GameState
	Events []engine.Event
	Err    error
}

type FromClient struct {
	Cmd engine.Command
	// Reply is optional; it must be buffered.
	Reply chan Result
}

func (FromClient) isLobbyMsg() {}

// MarkUsed records a champion in the fearless history outside of a draft,
// for example to seed a series that started elsewhere.
type MarkUsed struct {
	Side       engine.Side
	ChampionID int
	Reply      chan Result
}

func (MarkUsed) isLobbyMsg() {}

type Join struct {
	ClientID string
	Outbox   chan Snapshot // where this client wants to receive snapshots
}

func (Join) isLobbyMsg() {}

type Leave struct{ ClientID string }

func (Leave) isLobbyMsg() {}

type Shutdown struct{}

func (Shutdown) isLobbyMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isLobbyMsg() {}

// tick is sent by the countdown's AfterFunc. Ticks from an older
// generation are dropped.
type tick struct{ gen uint64 }

func (tick) isLobbyMsg() {}

type Snapshot struct {
	Version int
	State   engine.GameState
}

type View struct {
	Version    int
	NumClients int
	State      engine.GameState
	Session    engine.Session
}

type Deps struct {
	Engine *engine.Engine
	Store  store.Store
	Logger *zap.Logger
	// Clock schedules countdown ticks. Nil means the real clock.
	Clock clockwork.Clock
}

type Lobby struct {
	id      string
	inbox   chan Msg
	session engine.Session
	version int
	clients map[string]chan Snapshot

	engine *engine.Engine
	store  store.Store
	log    *zap.Logger

	clock    clockwork.Clock
	timerGen uint64
	timer    clockwork.Timer

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewLobby starts the actor for an already persisted session. A running
// countdown in initial resumes immediately.
func NewLobby(parent context.Context, deps Deps, initial engine.Session) *Lobby {
	ctx, cancel := context.WithCancel(parent)
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	l := &Lobby{
		id:      initial.ID,
		inbox:   make(chan Msg, 64),
		session: initial,
		clients: make(map[string]chan Snapshot),
		engine:  deps.Engine,
		store:   deps.Store,
		log:     log.With(logging.Session(initial.ID)),
		clock:   clock,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	if initial.Timer.IsActive {
		l.armTimer()
	}

	go l.loop()
	return l
}

func (l *Lobby) ID() string { return l.id }

// Inbox lets the hub and transports send messages.
func (l *Lobby) Inbox() chan<- Msg { return l.inbox }

// Done is closed once the actor has stopped.
func (l *Lobby) Done() <-chan struct{} { return l.done }

// Do sends cmd and waits for its result.
func (l *Lobby) Do(ctx context.Context, cmd engine.Command) Result {
	reply := make(chan Result, 1)
	return l.request(ctx, FromClient{Cmd: cmd, Reply: reply}, reply)
}

// MarkChampionUsed adds championID to side's fearless history.
func (l *Lobby) MarkChampionUsed(ctx context.Context, side engine.Side, championID int) Result {
	reply := make(chan Result, 1)
	return l.request(ctx, MarkUsed{Side: side, ChampionID: championID, Reply: reply}, reply)
}

func (l *Lobby) request(ctx context.Context, msg Msg, reply chan Result) Result {
	select {
	case l.inbox <- msg:
	case <-l.done:
		return Result{Err: ErrClosed}
	case <-ctx.Done():
		return Result{Err: ctx.Err()}
	}
	select {
	case r := <-reply:
		return r
	case <-l.done:
		return Result{Err: ErrClosed}
	case <-ctx.Done():
		return Result{Err: ctx.Err()}
	}
}

// State returns the current view.
func (l *Lobby) State(ctx context.Context) (View, error) {
	reply := make(chan View, 1)
	select {
	case l.inbox <- GetState{Reply: reply}:
	case <-l.done:
		return View{}, ErrClosed
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
	select {
	case v := <-reply:
		return v, nil
	case <-l.done:
		return View{}, ErrClosed
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
}

func (l *Lobby) loop() {
	defer close(l.done)
	for {
		select {
		case <-l.ctx.Done():
			l.shutdown()
			return

		case m := <-l.inbox:
			switch msg := m.(type) {
			case Join:
				// Register client + send current snapshot immediately
				l.clients[msg.ClientID] = msg.Outbox
				l.send(msg.ClientID, msg.Outbox, l.snapshot())

			case Leave:
				delete(l.clients, msg.ClientID)

			case FromClient:
				reply(msg.Reply, l.handleCommand(msg.Cmd))

			case MarkUsed:
				reply(msg.Reply, l.handleMarkUsed(msg.Side, msg.ChampionID))

			case tick:
				l.handleTick(msg.gen)

			case GetState:
				msg.Reply <- View{
					Version:    l.version,
					NumClients: len(l.clients),
					State:      engine.View(l.session),
					Session:    l.session.Clone(),
				}

			case Shutdown:
				l.shutdown()
				return
			}
		}
	}
}

func reply(ch chan Result, r Result) {
	if ch != nil {
		ch <- r
	}
}

func (l *Lobby) handleCommand(cmd engine.Command) Result {
	ctx, cancel := context.WithTimeout(l.ctx, storeTimeout)
	defer cancel()

	next, events, err := l.engine.Apply(ctx, l.session, cmd)
	if err != nil {
		if !engine.IsRejection(err) {
			l.log.Error("apply command", zap.String("command", string(cmd.Type)), zap.Error(err))
		}
		return Result{State: engine.View(l.session), Err: err}
	}
	if len(events) == 0 {
		return Result{State: engine.View(l.session)}
	}

	for _, ev := range events {
		if ev.Type == engine.EvtGameCompleted && ev.Result != nil {
			if err := l.store.RecordGameResult(ctx, *ev.Result); err != nil {
				l.log.Error("record game result", zap.Int("game", ev.Result.GameNumber), zap.Error(err))
				return Result{State: engine.View(l.session), Err: err}
			}
		}
	}

	saved, err := l.store.SaveSession(ctx, next)
	if err != nil {
		l.log.Error("save session", zap.String("command", string(cmd.Type)), zap.Error(err))
		return Result{State: engine.View(l.session), Err: err}
	}

	l.adopt(saved)
	switch {
	case engine.ContainsEvent(events, engine.EvtTimerStarted):
		l.armTimer()
	case !l.session.Timer.IsActive:
		l.disarmTimer()
	}
	l.log.Debug("command applied",
		zap.String("command", string(cmd.Type)),
		zap.String("phase", string(l.session.Phase())),
		zap.Int("turn", l.session.TurnNumber))
	return Result{State: engine.View(l.session), Events: events}
}

func (l *Lobby) handleMarkUsed(side engine.Side, championID int) Result {
	if !side.Valid() {
		return Result{State: engine.View(l.session), Err: engine.ErrInvalidSide}
	}
	champion, ok := l.engine.Catalog().ChampionByID(championID)
	if !ok {
		return Result{State: engine.View(l.session), Err: engine.ErrUnknownChampion}
	}

	ctx, cancel := context.WithTimeout(l.ctx, storeTimeout)
	defer cancel()
	if err := l.store.AddUsedChampion(ctx, l.id, side, champion); err != nil {
		return Result{State: engine.View(l.session), Err: err}
	}
	reloaded, err := l.store.GetSession(ctx, l.id)
	if err != nil {
		return Result{State: engine.View(l.session), Err: err}
	}
	// The store is authoritative for history only; keep live fields such as
	// the countdown from memory.
	next := l.session.Clone()
	next.Teams.Blue.UsedChampions = reloaded.Teams.Blue.UsedChampions
	next.Teams.Red.UsedChampions = reloaded.Teams.Red.UsedChampions
	l.adopt(next)
	return Result{
		State:  engine.View(l.session),
		Events: []engine.Event{{Type: engine.EvtChampionFearless, Team: side, ChampionID: championID}},
	}
}

func (l *Lobby) handleTick(gen uint64) {
	if gen != l.timerGen {
		return // stale
	}
	next, res := l.engine.TickTimer(l.session)
	if res == timer.Idle {
		return
	}

	ctx, cancel := context.WithTimeout(l.ctx, storeTimeout)
	defer cancel()
	if _, err := l.store.SaveSession(ctx, next); err != nil {
		l.log.Warn("persist timer tick", zap.Stringer("result", res), zap.Error(err))
	}
	l.adopt(next)

	switch res {
	case timer.Expired:
		l.log.Info("turn timer expired, overtime started", zap.Int("turn", next.TurnNumber))
	case timer.Exhausted:
		l.log.Info("overtime exhausted, waiting for action", zap.Int("turn", next.TurnNumber))
	}
	if next.Timer.IsActive {
		l.schedule(gen)
	}
}

// adopt makes next the current session and broadcasts it.
func (l *Lobby) adopt(next engine.Session) {
	l.session = next
	l.version++
	l.broadcast(l.snapshot())
}

func (l *Lobby) snapshot() Snapshot {
	return Snapshot{Version: l.version, State: engine.View(l.session)}
}

// armTimer starts a new tick generation, invalidating any pending tick.
func (l *Lobby) armTimer() {
	l.disarmTimer()
	l.timerGen++
	l.schedule(l.timerGen)
}

// disarmTimer cancels the scheduled tick. Bumping the generation also
// invalidates a tick that already fired and sits in the inbox.
func (l *Lobby) disarmTimer() {
	if l.timer == nil {
		return
	}
	l.timer.Stop()
	l.timer = nil
	l.timerGen++
}

func (l *Lobby) schedule(gen uint64) {
	if l.timer != nil {
		l.timer.Stop()
	}
	interval := l.engine.Durations().Interval
	l.timer = l.clock.AfterFunc(interval, func() {
		select {
		case l.inbox <- tick{gen: gen}:
		case <-l.ctx.Done():
		}
	})
}

func (l *Lobby) shutdown() {
	l.disarmTimer()
	for id, ch := range l.clients {
		close(ch) // Tell client no more snapshots
		delete(l.clients, id)
	}
	l.cancel()
}

func (l *Lobby) send(id string, ch chan Snapshot, snap Snapshot) {
	select {
	case ch <- snap:
		//ok
	default:
		// Client is slow/full - drop them.
		close(ch)
		delete(l.clients, id)
	}
}

func (l *Lobby) broadcast(snap Snapshot) {
	for id, ch := range l.clients {
		l.send(id, ch, snap)
	}
}
