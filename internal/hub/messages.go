package hub

import (
	"github.com/DoyleJ11/hotseat/internal/game"
)

type HubMsg interface{ isHubMsg() }

type CreateLobby struct {
	Name  string
	Host  game.Player
	Reply chan error
}

type JoinLobby struct {
	Name   string
	Player game.Player
	Reply  chan PlayersResult
}

type UpdatePlayer struct {
	Name   string
	Player game.Player
	Reply  chan PlayerResult
}

type GetPlayers struct {
	Name  string
	Reply chan []game.Player
}

type StartGame struct {
	Name      string
	Requester string
	Reply     chan StartResult
}

type ReturnQuestions struct {
	Name      string
	Questions []game.Question
	Reply     chan QuestionsResult
}

type AnswerQuestion struct {
	Name     string
	PlayerID string
	Index    int
	Answer   string
	Round    int
	Reply    chan error
}

type RequestAnswer struct {
	Name  string
	Index int
	Round int
	Reply chan AnswersResult
}

type RoundEnd struct {
	Name  string
	Round int
	Reply chan error
}

type ContinueGame struct {
	Name      string
	Requester string
	Reply     chan error
}

type NoAnswer struct {
	Reply chan string
}

type ClaimSocket struct {
	Name     string
	PlayerID string
	Address  string
	NewID    string
	Reply    chan bool
}

type Disconnect struct {
	Name     string
	PlayerID string
	Address  string
}

type PlayerActive struct {
	Name     string
	PlayerID string
	Reply    chan bool
}

type Snapshot struct {
	Reply chan map[string]game.Lobby
}

// Attach subscribes a socket to a lobby's broadcasts.
type Attach struct {
	Name     string
	ClientID string
	Outbox   chan game.Event
	Reply    chan bool
}

type Detach struct {
	Name     string
	ClientID string
}

type RemoveLobby struct {
	Name string
}

type ShutdownHub struct{}

// beginRound is posted by the round-delay timer.
type beginRound struct {
	Name  string
	Round int
}

type PlayersResult struct {
	Players []game.Player
	Err     error
}

type PlayerResult struct {
	Player game.Player
	Err    error
}

type StartResult struct {
	OK       bool
	Settings game.Settings
}

type QuestionsResult struct {
	Questions []game.Question
	Err       error
}

type AnswersResult struct {
	Answers []string
	Err     error
}

func (CreateLobby) isHubMsg()     {}
func (JoinLobby) isHubMsg()       {}
func (UpdatePlayer) isHubMsg()    {}
func (GetPlayers) isHubMsg()      {}
func (StartGame) isHubMsg()       {}
func (ReturnQuestions) isHubMsg() {}
func (AnswerQuestion) isHubMsg()  {}
func (RequestAnswer) isHubMsg()   {}
func (RoundEnd) isHubMsg()        {}
func (ContinueGame) isHubMsg()    {}
func (NoAnswer) isHubMsg()        {}
func (ClaimSocket) isHubMsg()     {}
func (Disconnect) isHubMsg()      {}
func (PlayerActive) isHubMsg()    {}
func (Snapshot) isHubMsg()        {}
func (Attach) isHubMsg()          {}
func (Detach) isHubMsg()          {}
func (RemoveLobby) isHubMsg()     {}
func (ShutdownHub) isHubMsg()     {}
func (beginRound) isHubMsg()      {}
