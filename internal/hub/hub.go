package hub

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/hotseat/internal/game"
	"github.com/DoyleJ11/hotseat/internal/lobby"
)

var ErrHubClosed = errors.New("hub closed")

// Hub owns every lobby. All game state is touched only from loop, so each
// event runs to completion before the next one starts.
type Hub struct {
	inbox  chan HubMsg
	store  *game.Store
	rooms  map[string]*lobby.Room
	timers map[string]*time.Timer
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(parent context.Context, store *game.Store, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		store:  store,
		rooms:  make(map[string]*lobby.Room),
		timers: make(map[string]*time.Timer),
		log:    log.Named("hub"),
		ctx:    ctx,
		cancel: cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Done is closed once the hub has stopped.
func (h *Hub) Done() <-chan struct{} { return h.ctx.Done() }

// Request sends the message built around a fresh reply channel and waits for
// the answer.
func Request[T any](ctx context.Context, h *Hub, build func(reply chan T) HubMsg) (T, error) {
	var zero T
	reply := make(chan T, 1)
	select {
	case h.inbox <- build(reply):
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-h.ctx.Done():
		return zero, ErrHubClosed
	}
	select {
	case v := <-reply:
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-h.ctx.Done():
		return zero, ErrHubClosed
	}
}

// Send posts a message that expects no reply.
func (h *Hub) Send(ctx context.Context, msg HubMsg) error {
	select {
	case h.inbox <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-h.ctx.Done():
		return ErrHubClosed
	}
}

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			h.handle(m)
		}
	}
}

func (h *Hub) handle(m HubMsg) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("handler panicked", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()

	switch msg := m.(type) {
	case CreateLobby:
		err := h.store.CreateLobby(msg.Name, msg.Host)
		if err == nil {
			h.rooms[msg.Name] = lobby.NewRoom(h.ctx, msg.Name)
			h.log.Info("lobby created", zap.String("lobby", msg.Name), zap.String("host", msg.Host.ID))
		}
		msg.Reply <- err

	case JoinLobby:
		players, events, err := h.store.Join(msg.Name, msg.Player)
		h.dispatch(events)
		msg.Reply <- PlayersResult{Players: players, Err: err}

	case UpdatePlayer:
		p, events, err := h.store.UpdatePlayer(msg.Name, msg.Player)
		h.dispatch(events)
		msg.Reply <- PlayerResult{Player: p, Err: err}

	case GetPlayers:
		msg.Reply <- h.store.Players(msg.Name)

	case StartGame:
		settings, events, err := h.store.StartGame(msg.Name, msg.Requester)
		h.dispatch(events)
		switch {
		case err == nil:
		case errors.Is(err, game.ErrInconsistentPairs):
			h.log.Error("hotseat pairing inconsistent", zap.String("lobby", msg.Name), zap.Error(err))
			err = nil
		default:
			h.log.Debug("start game rejected", zap.String("lobby", msg.Name), zap.Error(err))
		}
		if err == nil {
			h.log.Info("game started", zap.String("lobby", msg.Name), zap.Int("rounds", settings.Rounds))
		}
		msg.Reply <- StartResult{OK: err == nil, Settings: settings}

	case ReturnQuestions:
		qs, err := h.store.ReturnQuestions(msg.Name, msg.Questions)
		msg.Reply <- QuestionsResult{Questions: qs, Err: err}

	case AnswerQuestion:
		msg.Reply <- h.store.AnswerQuestion(msg.Name, msg.PlayerID, msg.Index, msg.Answer, msg.Round)

	case RequestAnswer:
		answers, events, err := h.store.RequestAnswer(msg.Name, msg.Index, msg.Round)
		h.dispatch(events)
		msg.Reply <- AnswersResult{Answers: answers, Err: err}

	case RoundEnd:
		events, err := h.store.RoundEnd(msg.Name, msg.Round)
		h.dispatch(events)
		msg.Reply <- err

	case ContinueGame:
		events, err := h.store.ContinueGame(msg.Name, msg.Requester)
		if err == nil {
			if l, gerr := h.store.Get(msg.Name); gerr == nil {
				h.schedule(msg.Name, l.Round, l.Settings.RoundDelay)
			}
			// The StartRound itself goes out when the timer fires.
			events = nil
		}
		h.dispatch(events)
		msg.Reply <- err

	case beginRound:
		delete(h.timers, msg.Name)
		ev, err := h.store.RoundStart(msg.Name, msg.Round)
		if err != nil {
			h.log.Debug("delayed round start dropped", zap.String("lobby", msg.Name), zap.Int("round", msg.Round), zap.Error(err))
			break
		}
		h.dispatch([]game.Event{ev})

	case NoAnswer:
		msg.Reply <- h.store.NoAnswer()

	case ClaimSocket:
		ok := h.store.ClaimSocket(msg.Name, msg.PlayerID, msg.Address, msg.NewID)
		if ok {
			h.log.Info("player reconnected", zap.String("lobby", msg.Name), zap.String("from", msg.PlayerID), zap.String("to", msg.NewID))
			if room := h.rooms[msg.Name]; room != nil {
				room.Inbox() <- lobby.Leave{ClientID: msg.PlayerID}
			}
		}
		msg.Reply <- ok

	case Disconnect:
		events := h.store.Disconnect(msg.Name, msg.PlayerID, msg.Address)
		h.dispatch(events)

	case PlayerActive:
		msg.Reply <- h.store.PlayerActive(msg.Name, msg.PlayerID)

	case Snapshot:
		msg.Reply <- h.store.Snapshot()

	case Attach:
		room := h.rooms[msg.Name]
		if room != nil {
			room.Inbox() <- lobby.Join{ClientID: msg.ClientID, Outbox: msg.Outbox}
		}
		msg.Reply <- room != nil

	case Detach:
		if room := h.rooms[msg.Name]; room != nil {
			room.Inbox() <- lobby.Leave{ClientID: msg.ClientID}
		}

	case RemoveLobby:
		h.store.DeleteLobby(msg.Name)
		h.closeRoom(msg.Name)

	case ShutdownHub:
		h.cancel()
	}
}

// dispatch hands outbound events to the lobby rooms.
func (h *Hub) dispatch(events []game.Event) {
	for _, ev := range events {
		room := h.rooms[ev.Lobby]
		if room == nil {
			continue
		}
		room.Inbox() <- lobby.Broadcast{Event: ev}

		if ev.Type == game.EvtKickAll {
			h.log.Info("lobby closed", zap.String("lobby", ev.Lobby))
			h.closeRoom(ev.Lobby)
		}
	}
}

func (h *Hub) closeRoom(name string) {
	h.cancelTimer(name)
	if room := h.rooms[name]; room != nil {
		room.Inbox() <- lobby.Shutdown{}
		delete(h.rooms, name)
	}
}

// schedule arms the delayed start of a round. The effect is posted back to
// the loop, which checks the lobby still expects that round.
func (h *Hub) schedule(name string, round int, delay time.Duration) {
	h.cancelTimer(name)
	h.timers[name] = time.AfterFunc(delay, func() {
		select {
		case h.inbox <- beginRound{Name: name, Round: round}:
		case <-h.ctx.Done():
		}
	})
}

func (h *Hub) cancelTimer(name string) {
	if t := h.timers[name]; t != nil {
		t.Stop()
		delete(h.timers, name)
	}
}

func (h *Hub) shutdown() {
	for name := range h.timers {
		h.cancelTimer(name)
	}
	// Rooms run on child contexts of the hub and stop on their own.
	clear(h.rooms)
	h.log.Info("hub stopped")
}
