package types

// Client -> Server
//
// Every frame is a ClientMessage. "ref" is chosen by the client and echoed
// back on the matching reply.
//
// lobbyCreate:        lobby, player{name}
// lobbyJoin:          lobby, player{name}
// updateSinglePlayer: lobby, player{name}
// getPlayers:         lobby
// startGame:          lobby
// returnQuestions:    lobby, questions[]
// answerQuestion:     lobby, questionIndex, answer, round
// requestAnswer:      lobby, questionIndex, round
// roundEnd:           lobby, round
// continueGame:       lobby
// noAnswer:           (none)
// claimSocket:        lobby, playerId (the id held before the reconnect)
//
// The sender's own player id is always the connection id, never taken from
// the payload.
const (
	EvtLobbyCreate        = "lobbyCreate"
	EvtLobbyJoin          = "lobbyJoin"
	EvtUpdateSinglePlayer = "updateSinglePlayer"
	EvtGetPlayers         = "getPlayers"
	EvtStartGame          = "startGame"
	EvtReturnQuestions    = "returnQuestions"
	EvtAnswerQuestion     = "answerQuestion"
	EvtRequestAnswer      = "requestAnswer"
	EvtRoundEnd           = "roundEnd"
	EvtContinueGame       = "continueGame"
	EvtNoAnswer           = "noAnswer"
	EvtClaimSocket        = "claimSocket"
)

// Server -> Client
//
// welcome:       data{id}  sent once after the upgrade
// reply:         ref, ok, data | error
// message:       lobby, message
// startRound:    lobby, round, hotseat[2], questionCount, timings
// updatePlayers: lobby, players
// gameOver:      lobby, players (highest score first)
// kicked:        lobby, message; the socket is closed afterwards
// error:         error (unreadable frame)
const (
	MsgWelcome       = "welcome"
	MsgReply         = "reply"
	MsgMessage       = "message"
	MsgStartRound    = "startRound"
	MsgUpdatePlayers = "updatePlayers"
	MsgGameOver      = "gameOver"
	MsgKicked        = "kicked"
	MsgError         = "error"
)

type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

type Question struct {
	Text    string   `json:"text"`
	Author  string   `json:"author"`
	Answers []string `json:"answers"`
}

// Timings are in milliseconds.
type Timings struct {
	TimeToWrite   int64 `json:"timeToWrite"`
	TimeToAnswer  int64 `json:"timeToAnswer"`
	QuestionDelay int64 `json:"questionDelay"`
}

type Settings struct {
	Rounds        int     `json:"rounds"`
	QuestionCount int     `json:"questionCount"`
	Points        int     `json:"points"`
	Timings       Timings `json:"timings"`
}

type ClientMessage struct {
	Ref           string   `json:"ref,omitempty"`
	Type          string   `json:"type"`
	Lobby         string   `json:"lobby,omitempty"`
	Player        *Player  `json:"player,omitempty"`
	PlayerID      string   `json:"playerId,omitempty"`
	Questions     []string `json:"questions,omitempty"`
	QuestionIndex *int     `json:"questionIndex,omitempty"`
	Answer        string   `json:"answer,omitempty"`
	Round         int      `json:"round,omitempty"`
}

type ServerMessage struct {
	Type          string   `json:"type"`
	Ref           string   `json:"ref,omitempty"`
	OK            *bool    `json:"ok,omitempty"`
	Data          any      `json:"data,omitempty"`
	Error         string   `json:"error,omitempty"`
	Lobby         string   `json:"lobby,omitempty"`
	Message       string   `json:"message,omitempty"`
	Round         int      `json:"round,omitempty"`
	Hotseat       []Player `json:"hotseat,omitempty"`
	QuestionCount int      `json:"questionCount,omitempty"`
	Timings       *Timings `json:"timings,omitempty"`
	Players       []Player `json:"players,omitempty"`
}

func Reply(ref string, ok bool, data any) ServerMessage {
	return ServerMessage{Type: MsgReply, Ref: ref, OK: &ok, Data: data}
}

func ReplyError(ref string, err string) ServerMessage {
	ok := false
	return ServerMessage{Type: MsgReply, Ref: ref, OK: &ok, Error: err}
}
