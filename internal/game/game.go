package game

import (
	"errors"
	"time"
)

var ErrLobbyExists = errors.New("lobby already exists")
var ErrLobbyNotFound = errors.New("lobby not found")
var ErrLobbyNotJoinable = errors.New("lobby is not joinable")
var ErrDuplicateName = errors.New("player name already taken")
var ErrPlayerNotFound = errors.New("player not found")
var ErrNotHost = errors.New("only the host can do that")
var ErrNotEnoughPlayers = errors.New("not enough players")
var ErrPendingDisconnects = errors.New("players still pending reconnection")
var ErrWrongPhase = errors.New("action not allowed in this phase")
var ErrStaleRound = errors.New("stale round")
var ErrQuestionNotFound = errors.New("question not found")
var ErrInconsistentPairs = errors.New("hotseat pairing produced fewer pairs than rounds")
var ErrInvalidRequest = errors.New("invalid request")

// MinPlayers is the smallest roster a game can start with.
const MinPlayers = 3

type Phase string

const (
	PhaseLobby     Phase = "lobby"
	PhaseWriting   Phase = "writing"
	PhaseAnswering Phase = "answering"
	PhaseRoundEnd  Phase = "round_end"
	PhaseGameEnd   Phase = "game_end"
)

type Settings struct {
	Rounds        int           `json:"rounds"`
	QuestionCount int           `json:"questionCount"`
	TimeToWrite   time.Duration `json:"timeToWrite"`
	TimeToAnswer  time.Duration `json:"timeToAnswer"`
	QuestionDelay time.Duration `json:"questionDelay"`
	RoundDelay    time.Duration `json:"roundDelay"`
	Points        int           `json:"points"`
}

func DefaultSettings() Settings {
	return Settings{
		Rounds:        3,
		QuestionCount: 3,
		TimeToWrite:   60 * time.Second,
		TimeToAnswer:  20 * time.Second,
		QuestionDelay: 5 * time.Second,
		RoundDelay:    3 * time.Second,
		Points:        10,
	}
}

type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
	Seat  int    `json:"seat"`
}

type Question struct {
	Text     string   `json:"text"`
	Author   string   `json:"author"`
	Answers  []string `json:"answers"`
	Resolved bool     `json:"resolved"`
}

// Pair holds the roster seats on stage for one round.
type Pair [2]int

type Lobby struct {
	Name      string            `json:"name"`
	Players   []Player          `json:"players"`
	Round     int               `json:"round"`
	Questions []Question        `json:"questions"`
	Hotseats  []Pair            `json:"hotseats"`
	Ready     bool              `json:"ready"`
	Unclaimed map[string]string `json:"unclaimed"`
	Phase     Phase             `json:"phase"`
	Settings  Settings          `json:"settings"`
}

func newLobby(name string, host Player, settings Settings) *Lobby {
	host.Score = 0
	host.Seat = 0
	return &Lobby{
		Name:      name,
		Players:   []Player{host},
		Round:     0,
		Questions: []Question{},
		Hotseats:  []Pair{},
		Ready:     true,
		Unclaimed: map[string]string{},
		Phase:     PhaseLobby,
		Settings:  settings,
	}
}

// Host returns the lobby owner, the first player on the roster.
func (l *Lobby) Host() (Player, bool) {
	if len(l.Players) == 0 {
		return Player{}, false
	}
	return l.Players[0], true
}

func (l *Lobby) isHost(playerID string) bool {
	host, ok := l.Host()
	return ok && host.ID == playerID
}

func (l *Lobby) indexOf(playerID string) int {
	for i, p := range l.Players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

// CurrentPair returns the hotseat pair for the given 1-based round.
func (l *Lobby) CurrentPair(round int) (Pair, bool) {
	if round < 1 || round > len(l.Hotseats) {
		return Pair{}, false
	}
	return l.Hotseats[round-1], true
}

func (l *Lobby) pairPlayers(p Pair) [2]Player {
	var out [2]Player
	for i, seat := range p {
		if seat >= 0 && seat < len(l.Players) {
			out[i] = l.Players[seat]
		}
	}
	return out
}

// Clone returns a deep copy safe to hand outside the owning goroutine.
func (l *Lobby) Clone() Lobby {
	c := *l
	c.Players = append([]Player{}, l.Players...)
	c.Hotseats = append([]Pair{}, l.Hotseats...)
	c.Questions = make([]Question, len(l.Questions))
	for i, q := range l.Questions {
		q.Answers = append([]string{}, q.Answers...)
		c.Questions[i] = q
	}
	c.Unclaimed = make(map[string]string, len(l.Unclaimed))
	for k, v := range l.Unclaimed {
		c.Unclaimed[k] = v
	}
	return c
}
