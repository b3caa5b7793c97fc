package lobby

import (
	"context"

	"github.com/DoyleJ11/hotseat/internal/game"
)

type Msg interface{ isRoomMsg() }

type Join struct {
	ClientID string
	Outbox   chan game.Event // where this client wants to receive broadcasts
}

func (Join) isRoomMsg() {}

type Leave struct{ ClientID string }

func (Leave) isRoomMsg() {}

type Broadcast struct {
	Event game.Event
}

func (Broadcast) isRoomMsg() {}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isRoomMsg() {}

type View struct {
	Name       string
	Sent       int
	NumClients int
}

// Room is the transport side of a lobby: the set of sockets that receive
// its broadcasts. Game state lives in game.Store, not here.
type Room struct {
	name    string
	inbox   chan Msg
	sent    int
	clients map[string]chan game.Event
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewRoom(parent context.Context, name string) *Room {
	ctx, cancel := context.WithCancel(parent)

	r := &Room{
		name:    name,
		inbox:   make(chan Msg, 64),
		clients: make(map[string]chan game.Event),
		ctx:     ctx,
		cancel:  cancel,
	}

	go r.loop()
	return r
}

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				if old, ok := r.clients[msg.ClientID]; ok && old != msg.Outbox {
					close(old)
				}
				r.clients[msg.ClientID] = msg.Outbox

			case Leave:
				if ch, ok := r.clients[msg.ClientID]; ok {
					close(ch)
					delete(r.clients, msg.ClientID)
				}

			case Broadcast:
				r.sent++
				r.broadcast(msg.Event)

			case GetState:
				msg.Reply <- View{
					Name:       r.name,
					Sent:       r.sent,
					NumClients: len(r.clients),
				}

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) shutdown() {
	for id, ch := range r.clients {
		close(ch) // Tell client no more events
		delete(r.clients, id)
	}
	r.cancel()
}

func (r *Room) broadcast(ev game.Event) {
	for id, ch := range r.clients {
		select {
		case ch <- ev:
			//ok
		default:
			// Client is slow/full - drop them. They can reconnect and claim their seat.
			close(ch)
			delete(r.clients, id)
		}
	}
}

// Inbox is how the hub talks to the room.
func (r *Room) Inbox() chan<- Msg { return r.inbox }

func (r *Room) Name() string { return r.name }
