package ws

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DoyleJ11/hotseat/internal/game"
	"github.com/DoyleJ11/hotseat/internal/hub"
	"github.com/DoyleJ11/hotseat/pkg/types"
)

type tokenSet map[string]bool

func (ts tokenSet) Authenticate(token string) bool { return ts[token] }

func TestDecode(t *testing.T) {
	zero := 0
	cases := []struct {
		name    string
		in      types.ClientMessage
		want    request
		wantErr error
	}{
		{
			name: "create",
			in:   types.ClientMessage{Ref: "1", Type: types.EvtLobbyCreate, Lobby: " pub1 ", Player: &types.Player{Name: " Host "}},
			want: createReq{base: base{Ref: "1"}, Lobby: "pub1", Name: "Host"},
		},
		{
			name:    "create without player",
			in:      types.ClientMessage{Type: types.EvtLobbyCreate, Lobby: "pub1"},
			wantErr: ErrMissingField,
		},
		{
			name:    "answer without index",
			in:      types.ClientMessage{Type: types.EvtAnswerQuestion, Lobby: "pub1", Answer: "2", Round: 1},
			wantErr: ErrMissingField,
		},
		{
			name:    "blank answer",
			in:      types.ClientMessage{Type: types.EvtAnswerQuestion, QuestionIndex: &zero, Answer: "  ", Round: 1},
			wantErr: ErrMissingField,
		},
		{
			name: "answer",
			in:   types.ClientMessage{Type: types.EvtAnswerQuestion, QuestionIndex: &zero, Answer: " 2 ", Round: 1},
			want: answerReq{Index: 0, Answer: "2", Round: 1},
		},
		{
			name:    "round end needs a round",
			in:      types.ClientMessage{Type: types.EvtRoundEnd},
			wantErr: ErrMissingField,
		},
		{
			name:    "claim needs the old id",
			in:      types.ClientMessage{Type: types.EvtClaimSocket, Lobby: "pub1"},
			wantErr: ErrMissingField,
		},
		{
			name:    "unknown",
			in:      types.ClientMessage{Type: "dance"},
			wantErr: ErrUnknownType,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := decode(tc.in)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParse_BadJSON(t *testing.T) {
	_, err := parse([]byte("{nope"))
	require.ErrorIs(t, err, ErrBadJSON)
}

func TestDecode_TooManyQuestions(t *testing.T) {
	qs := make([]string, maxQuestions+1)
	_, err := decode(types.ClientMessage{Type: types.EvtReturnQuestions, Questions: qs})
	require.Error(t, err)
}

func TestFromEvent(t *testing.T) {
	ev := game.Event{
		Type:          game.EvtStartRound,
		Lobby:         "pub1",
		Round:         2,
		Hotseat:       [2]game.Player{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}},
		QuestionCount: 3,
		Timings:       game.Timings{TimeToWrite: 2 * time.Second},
	}
	msg := FromEvent(ev)
	assert.Equal(t, types.MsgStartRound, msg.Type)
	assert.Equal(t, 2, msg.Round)
	require.Len(t, msg.Hotseat, 2)
	assert.Equal(t, "b", msg.Hotseat[1].ID)
	assert.Equal(t, int64(2000), msg.Timings.TimeToWrite)

	kick := FromEvent(game.Event{Type: game.EvtKickAll, Lobby: "pub1", Message: "bye"})
	assert.Equal(t, types.MsgKicked, kick.Type)
}

type client struct {
	t    *testing.T
	conn *websocket.Conn
	id   string
}

func dial(t *testing.T, srv *httptest.Server, token string) *client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() })

	c := &client{t: t, conn: conn}
	welcome := c.until(types.MsgWelcome)
	c.id = welcome.Data.(map[string]any)["id"].(string)
	return c
}

func (c *client) send(msg types.ClientMessage) {
	c.t.Helper()
	payload, err := json.Marshal(msg)
	require.NoError(c.t, err)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(c.t, c.conn.Write(ctx, websocket.MessageText, payload))
}

// until reads frames, skipping others, until one of the given type arrives.
func (c *client) until(msgType string) types.ServerMessage {
	c.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for {
		_, data, err := c.conn.Read(ctx)
		require.NoError(c.t, err, "waiting for %s", msgType)
		var msg types.ServerMessage
		require.NoError(c.t, json.Unmarshal(data, &msg))
		if msg.Type == msgType {
			return msg
		}
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	settings := game.DefaultSettings()
	h := hub.NewHub(ctx, game.NewStore(settings, rand.New(rand.NewPCG(9, 9))), zap.NewNop())

	mux := http.NewServeMux()
	mux.Handle("/ws", Handler(h, tokenSet{"good": true}, zap.NewNop(), Options{}))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHandler_RejectsBadToken(t *testing.T) {
	srv := newTestServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=bad"
	_, resp, err := websocket.Dial(ctx, url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandler_LobbyToFirstRound(t *testing.T) {
	srv := newTestServer(t)

	host := dial(t, srv, "good")
	host.send(types.ClientMessage{Ref: "c1", Type: types.EvtLobbyCreate, Lobby: "pub1", Player: &types.Player{Name: "H"}})
	reply := host.until(types.MsgReply)
	assert.Equal(t, "c1", reply.Ref)
	require.True(t, *reply.OK)

	for _, name := range []string{"A", "B", "C"} {
		guest := dial(t, srv, "good")
		guest.send(types.ClientMessage{Ref: "j", Type: types.EvtLobbyJoin, Lobby: "pub1", Player: &types.Player{Name: name}})
		reply := guest.until(types.MsgReply)
		require.True(t, *reply.OK, reply.Error)
		host.until(types.MsgUpdatePlayers)
	}

	dup := dial(t, srv, "good")
	dup.send(types.ClientMessage{Type: types.EvtLobbyJoin, Lobby: "pub1", Player: &types.Player{Name: "A"}})
	reply = dup.until(types.MsgReply)
	assert.False(t, *reply.OK)

	host.send(types.ClientMessage{Ref: "s", Type: types.EvtStartGame, Lobby: "pub1"})
	start := host.until(types.MsgStartRound)
	assert.Equal(t, 1, start.Round)
	require.Len(t, start.Hotseat, 2)
	assert.NotNil(t, start.Timings)
}
