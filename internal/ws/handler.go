package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/hotseat/internal/game"
	"github.com/DoyleJ11/hotseat/internal/hub"
	"github.com/DoyleJ11/hotseat/pkg/types"
)

const (
	writeTimeout = 3 * time.Second
	idleTimeout  = 5 * time.Minute
)

// Authenticator decides whether a socket may connect at all.
type Authenticator interface {
	Authenticate(token string) bool
}

type Options struct {
	// OriginPatterns loosens the same-origin check, e.g. "localhost:*" in dev.
	OriginPatterns []string
}

func Handler(h *hub.Hub, authn Authenticator, log *zap.Logger, opts Options) http.HandlerFunc {
	log = log.Named("ws")
	return func(w http.ResponseWriter, r *http.Request) {
		if !authn.Authenticate(tokenFrom(r)) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: opts.OriginPatterns,
		})
		if err != nil {
			log.Debug("accept failed", zap.Error(err))
			return
		}
		defer conn.CloseNow()

		s := &session{
			id:   uuid.NewString(),
			addr: remoteHost(r),
			conn: conn,
			hub:  h,
		}
		s.log = log.With(zap.String("conn", s.id), zap.String("addr", s.addr))
		s.run(r.Context())
	}
}

func tokenFrom(r *http.Request) string {
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

// remoteHost is the address a reconnecting player has to present again.
func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type session struct {
	id    string
	addr  string
	conn  *websocket.Conn
	hub   *hub.Hub
	log   *zap.Logger
	lobby string
}

func (s *session) run(ctx context.Context) {
	s.log.Debug("connected")
	s.write(ctx, types.ServerMessage{Type: types.MsgWelcome, Data: map[string]string{"id": s.id}})
	defer s.leave()

	for {
		readCtx, cancel := context.WithTimeout(ctx, idleTimeout)
		_, data, err := s.conn.Read(readCtx)
		cancel()
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				s.log.Debug("closed by client")
			default:
				s.log.Debug("read ended", zap.Error(err))
			}
			return
		}

		req, err := parse(data)
		if err != nil {
			s.write(ctx, types.ServerMessage{Type: types.MsgError, Error: err.Error()})
			continue
		}

		s.write(ctx, s.handle(ctx, req))
	}
}

// leave tells the hub the socket is gone. The request context is already
// cancelled here, so use a short one of our own.
func (s *session) leave() {
	if s.lobby == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = s.hub.Send(ctx, hub.Detach{Name: s.lobby, ClientID: s.id})
	_ = s.hub.Send(ctx, hub.Disconnect{Name: s.lobby, PlayerID: s.id, Address: s.addr})
	s.log.Debug("left lobby", zap.String("lobby", s.lobby))
}

func (s *session) handle(ctx context.Context, req request) types.ServerMessage {
	ref := req.reference()
	msg, err := s.dispatch(ctx, req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, hub.ErrHubClosed) {
			return types.ReplyError(ref, "server unavailable")
		}
		return types.ReplyError(ref, err.Error())
	}
	msg.Ref = ref
	return msg
}

// dispatch runs one request against the hub. Game-level rejections are
// folded into a neutral reply (false or an empty list); only transport
// problems come back as errors.
func (s *session) dispatch(ctx context.Context, req request) (types.ServerMessage, error) {
	switch r := req.(type) {
	case createReq:
		if s.lobby != "" {
			return types.ReplyError("", "already in a lobby"), nil
		}
		err, herr := hub.Request(ctx, s.hub, func(reply chan error) hub.HubMsg {
			return hub.CreateLobby{Name: r.Lobby, Host: game.Player{ID: s.id, Name: r.Name}, Reply: reply}
		})
		if herr != nil {
			return types.ServerMessage{}, herr
		}
		if err != nil {
			return types.ReplyError("", err.Error()), nil
		}
		s.attach(ctx, r.Lobby)
		return types.Reply("", true, nil), nil

	case joinReq:
		if s.lobby != "" {
			return types.ReplyError("", "already in a lobby"), nil
		}
		res, herr := hub.Request(ctx, s.hub, func(reply chan hub.PlayersResult) hub.HubMsg {
			return hub.JoinLobby{Name: r.Lobby, Player: game.Player{ID: s.id, Name: r.Name}, Reply: reply}
		})
		if herr != nil {
			return types.ServerMessage{}, herr
		}
		if res.Err != nil {
			msg := types.Reply("", false, []types.Player{})
			msg.Error = res.Err.Error()
			return msg, nil
		}
		s.attach(ctx, r.Lobby)
		return types.Reply("", true, toWirePlayers(res.Players)), nil

	case updatePlayerReq:
		lobby, ok := s.own(r.Lobby)
		if !ok {
			return notInLobby(), nil
		}
		res, herr := hub.Request(ctx, s.hub, func(reply chan hub.PlayerResult) hub.HubMsg {
			return hub.UpdatePlayer{Name: lobby, Player: game.Player{ID: s.id, Name: r.Name}, Reply: reply}
		})
		if herr != nil {
			return types.ServerMessage{}, herr
		}
		if res.Err != nil {
			return types.ReplyError("", res.Err.Error()), nil
		}
		return types.Reply("", true, toWirePlayer(res.Player)), nil

	case getPlayersReq:
		lobby := r.Lobby
		if lobby == "" {
			lobby = s.lobby
		}
		players, herr := hub.Request(ctx, s.hub, func(reply chan []game.Player) hub.HubMsg {
			return hub.GetPlayers{Name: lobby, Reply: reply}
		})
		if herr != nil {
			return types.ServerMessage{}, herr
		}
		return types.Reply("", true, toWirePlayers(players)), nil

	case startGameReq:
		lobby, ok := s.own(r.Lobby)
		if !ok {
			return notInLobby(), nil
		}
		res, herr := hub.Request(ctx, s.hub, func(reply chan hub.StartResult) hub.HubMsg {
			return hub.StartGame{Name: lobby, Requester: s.id, Reply: reply}
		})
		if herr != nil {
			return types.ServerMessage{}, herr
		}
		if !res.OK {
			return types.Reply("", false, nil), nil
		}
		return types.Reply("", true, toWireSettings(res.Settings)), nil

	case returnQuestionsReq:
		lobby, ok := s.own(r.Lobby)
		if !ok {
			return notInLobby(), nil
		}
		qs := make([]game.Question, 0, len(r.Questions))
		for _, text := range r.Questions {
			qs = append(qs, game.Question{Text: text, Author: s.id})
		}
		res, herr := hub.Request(ctx, s.hub, func(reply chan hub.QuestionsResult) hub.HubMsg {
			return hub.ReturnQuestions{Name: lobby, Questions: qs, Reply: reply}
		})
		if herr != nil {
			return types.ServerMessage{}, herr
		}
		if res.Err != nil {
			return types.Reply("", false, []types.Question{}), nil
		}
		return types.Reply("", true, toWireQuestions(res.Questions)), nil

	case answerReq:
		lobby, ok := s.own(r.Lobby)
		if !ok {
			return notInLobby(), nil
		}
		err, herr := hub.Request(ctx, s.hub, func(reply chan error) hub.HubMsg {
			return hub.AnswerQuestion{Name: lobby, PlayerID: s.id, Index: r.Index, Answer: r.Answer, Round: r.Round, Reply: reply}
		})
		if herr != nil {
			return types.ServerMessage{}, herr
		}
		return types.Reply("", err == nil, nil), nil

	case requestAnswerReq:
		lobby, ok := s.own(r.Lobby)
		if !ok {
			return notInLobby(), nil
		}
		res, herr := hub.Request(ctx, s.hub, func(reply chan hub.AnswersResult) hub.HubMsg {
			return hub.RequestAnswer{Name: lobby, Index: r.Index, Round: r.Round, Reply: reply}
		})
		if herr != nil {
			return types.ServerMessage{}, herr
		}
		if res.Err != nil {
			return types.Reply("", false, []string{}), nil
		}
		return types.Reply("", true, res.Answers), nil

	case roundEndReq:
		lobby, ok := s.own(r.Lobby)
		if !ok {
			return notInLobby(), nil
		}
		err, herr := hub.Request(ctx, s.hub, func(reply chan error) hub.HubMsg {
			return hub.RoundEnd{Name: lobby, Round: r.Round, Reply: reply}
		})
		if herr != nil {
			return types.ServerMessage{}, herr
		}
		return types.Reply("", err == nil, nil), nil

	case continueReq:
		lobby, ok := s.own(r.Lobby)
		if !ok {
			return notInLobby(), nil
		}
		err, herr := hub.Request(ctx, s.hub, func(reply chan error) hub.HubMsg {
			return hub.ContinueGame{Name: lobby, Requester: s.id, Reply: reply}
		})
		if herr != nil {
			return types.ServerMessage{}, herr
		}
		return types.Reply("", err == nil, nil), nil

	case noAnswerReq:
		text, herr := hub.Request(ctx, s.hub, func(reply chan string) hub.HubMsg {
			return hub.NoAnswer{Reply: reply}
		})
		if herr != nil {
			return types.ServerMessage{}, herr
		}
		return types.Reply("", true, text), nil

	case claimReq:
		if s.lobby != "" {
			return types.Reply("", false, nil), nil
		}
		ok, herr := hub.Request(ctx, s.hub, func(reply chan bool) hub.HubMsg {
			return hub.ClaimSocket{Name: r.Lobby, PlayerID: r.PlayerID, Address: s.addr, NewID: s.id, Reply: reply}
		})
		if herr != nil {
			return types.ServerMessage{}, herr
		}
		if ok {
			s.attach(ctx, r.Lobby)
		}
		return types.Reply("", ok, nil), nil
	}

	return types.ServerMessage{}, ErrUnknownType
}

// own resolves the lobby a request targets; a socket may only drive the
// lobby it is a member of.
func (s *session) own(lobby string) (string, bool) {
	if s.lobby == "" {
		return "", false
	}
	if lobby != "" && lobby != s.lobby {
		return "", false
	}
	return s.lobby, true
}

func notInLobby() types.ServerMessage {
	return types.ReplyError("", "not in that lobby")
}

// attach subscribes this socket to the lobby's broadcasts and starts the
// writer that forwards them.
func (s *session) attach(ctx context.Context, lobby string) {
	out := make(chan game.Event, 16)
	ok, err := hub.Request(ctx, s.hub, func(reply chan bool) hub.HubMsg {
		return hub.Attach{Name: lobby, ClientID: s.id, Outbox: out, Reply: reply}
	})
	if err != nil || !ok {
		s.log.Warn("attach failed", zap.String("lobby", lobby), zap.Error(err))
		return
	}
	s.lobby = lobby
	go s.pump(ctx, out)
}

// pump forwards broadcasts until the room closes the outbox, which happens
// on kick-all, on a slow-client drop and on leave. The socket goes with it.
func (s *session) pump(ctx context.Context, out <-chan game.Event) {
	for ev := range out {
		s.write(ctx, FromEvent(ev))
	}
	_ = s.conn.Close(websocket.StatusNormalClosure, "lobby closed")
}

func (s *session) write(ctx context.Context, msg types.ServerMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		s.log.Error("marshal failed", zap.Error(err))
		return
	}
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := s.conn.Write(wctx, websocket.MessageText, payload); err != nil {
		s.log.Debug("write failed", zap.Error(err))
	}
}
