package hub

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/hotseat/internal/game"
)

func newTestHub(t *testing.T, roundDelay time.Duration) *Hub {
	t.Helper()
	settings := game.DefaultSettings()
	settings.Rounds = 2
	settings.RoundDelay = roundDelay
	store := game.NewStore(settings, rand.New(rand.NewPCG(3, 5)))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewHub(ctx, store, nil)
}

func ask[T any](t *testing.T, h *Hub, build func(reply chan T) HubMsg) T {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	v, err := Request(ctx, h, build)
	require.NoError(t, err)
	return v
}

// readyLobby creates "pub1" hosted by "h" with guests a, b, c, and attaches
// an outbox for the host.
func readyLobby(t *testing.T, h *Hub) chan game.Event {
	t.Helper()
	err := ask(t, h, func(r chan error) HubMsg {
		return CreateLobby{Name: "pub1", Host: game.Player{ID: "h", Name: "Host"}, Reply: r}
	})
	require.NoError(t, err)

	out := make(chan game.Event, 16)
	attached := ask(t, h, func(r chan bool) HubMsg {
		return Attach{Name: "pub1", ClientID: "h", Outbox: out, Reply: r}
	})
	require.True(t, attached)

	for _, id := range []string{"a", "b", "c"} {
		res := ask(t, h, func(r chan PlayersResult) HubMsg {
			return JoinLobby{Name: "pub1", Player: game.Player{ID: id, Name: id}, Reply: r}
		})
		require.NoError(t, res.Err)
		drain(t, out, game.EvtUpdatePlayers)
	}
	return out
}

func drain(t *testing.T, ch <-chan game.Event, want game.EventType) game.Event {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "outbox closed while waiting for %s", want)
		require.Equal(t, want, ev.Type)
		return ev
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for %s", want)
		return game.Event{}
	}
}

func TestHub_CreateTwiceFails(t *testing.T) {
	h := newTestHub(t, 0)
	readyLobby(t, h)

	err := ask(t, h, func(r chan error) HubMsg {
		return CreateLobby{Name: "pub1", Host: game.Player{ID: "x", Name: "X"}, Reply: r}
	})
	require.ErrorIs(t, err, game.ErrLobbyExists)

	players := ask(t, h, func(r chan []game.Player) HubMsg { return GetPlayers{Name: "pub1", Reply: r} })
	require.Len(t, players, 4)
	assert.Equal(t, "h", players[0].ID)
}

func TestHub_StartGameBroadcastsRound(t *testing.T) {
	h := newTestHub(t, 0)
	out := readyLobby(t, h)

	res := ask(t, h, func(r chan StartResult) HubMsg { return StartGame{Name: "pub1", Requester: "a", Reply: r} })
	assert.False(t, res.OK)

	res = ask(t, h, func(r chan StartResult) HubMsg { return StartGame{Name: "pub1", Requester: "h", Reply: r} })
	require.True(t, res.OK)
	assert.Equal(t, 2, res.Settings.Rounds)

	ev := drain(t, out, game.EvtStartRound)
	assert.Equal(t, 1, ev.Round)
	assert.NotEqual(t, ev.Hotseat[0].ID, ev.Hotseat[1].ID)
}

func TestHub_ContinueGameStartsRoundAfterDelay(t *testing.T) {
	h := newTestHub(t, 20*time.Millisecond)
	out := readyLobby(t, h)

	ask(t, h, func(r chan StartResult) HubMsg { return StartGame{Name: "pub1", Requester: "h", Reply: r} })
	drain(t, out, game.EvtStartRound)

	err := ask(t, h, func(r chan error) HubMsg { return RoundEnd{Name: "pub1", Round: 1, Reply: r} })
	require.NoError(t, err)
	drain(t, out, game.EvtUpdatePlayers)

	err = ask(t, h, func(r chan error) HubMsg { return ContinueGame{Name: "pub1", Requester: "h", Reply: r} })
	require.NoError(t, err)

	ev := drain(t, out, game.EvtStartRound)
	assert.Equal(t, 2, ev.Round)
}

func TestHub_DelayedRoundDroppedWhenLobbyGone(t *testing.T) {
	h := newTestHub(t, 50*time.Millisecond)
	out := readyLobby(t, h)

	ask(t, h, func(r chan StartResult) HubMsg { return StartGame{Name: "pub1", Requester: "h", Reply: r} })
	drain(t, out, game.EvtStartRound)
	ask(t, h, func(r chan error) HubMsg { return RoundEnd{Name: "pub1", Round: 1, Reply: r} })
	drain(t, out, game.EvtUpdatePlayers)
	ask(t, h, func(r chan error) HubMsg { return ContinueGame{Name: "pub1", Requester: "h", Reply: r} })

	require.NoError(t, h.Send(context.Background(), RemoveLobby{Name: "pub1"}))

	select {
	case ev, ok := <-out:
		if ok {
			t.Fatalf("expected no event after lobby removal, got %+v", ev)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("expected outbox to close")
	}

	snap := ask(t, h, func(r chan map[string]game.Lobby) HubMsg { return Snapshot{Reply: r} })
	assert.Empty(t, snap)
}

func TestHub_HostDisconnectKicksEveryone(t *testing.T) {
	h := newTestHub(t, 0)
	out := readyLobby(t, h)

	require.NoError(t, h.Send(context.Background(), Disconnect{Name: "pub1", PlayerID: "h", Address: "10.0.0.1"}))

	ev := drain(t, out, game.EvtKickAll)
	assert.Equal(t, "pub1", ev.Lobby)

	select {
	case _, ok := <-out:
		require.False(t, ok)
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("expected outbox to close after kick")
	}

	attached := ask(t, h, func(r chan bool) HubMsg {
		return Attach{Name: "pub1", ClientID: "a", Outbox: make(chan game.Event, 1), Reply: r}
	})
	assert.False(t, attached)
}

func TestHub_ReconnectFlow(t *testing.T) {
	h := newTestHub(t, 0)
	out := readyLobby(t, h)

	require.NoError(t, h.Send(context.Background(), Disconnect{Name: "pub1", PlayerID: "b", Address: "10.0.0.2"}))
	drain(t, out, game.EvtUpdatePlayers)

	active := ask(t, h, func(r chan bool) HubMsg { return PlayerActive{Name: "pub1", PlayerID: "b", Reply: r} })
	assert.False(t, active)

	ok := ask(t, h, func(r chan bool) HubMsg {
		return ClaimSocket{Name: "pub1", PlayerID: "b", Address: "10.0.0.3", NewID: "b2", Reply: r}
	})
	assert.False(t, ok)

	ok = ask(t, h, func(r chan bool) HubMsg {
		return ClaimSocket{Name: "pub1", PlayerID: "b", Address: "10.0.0.2", NewID: "b2", Reply: r}
	})
	assert.True(t, ok)

	active = ask(t, h, func(r chan bool) HubMsg { return PlayerActive{Name: "pub1", PlayerID: "b2", Reply: r} })
	assert.True(t, active)
}

func TestHub_RequestAfterShutdown(t *testing.T) {
	h := newTestHub(t, 0)
	require.NoError(t, h.Send(context.Background(), ShutdownHub{}))
	<-h.Done()

	_, err := Request(context.Background(), h, func(r chan string) HubMsg { return NoAnswer{Reply: r} })
	require.ErrorIs(t, err, ErrHubClosed)
}
