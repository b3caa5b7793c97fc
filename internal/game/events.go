package game

import "time"

type EventType string

/*
	CreateLobby    -> (none)
	Join           -> EvtUpdatePlayers
	StartGame      -> EvtStartRound | EvtMessage (+ EvtUpdatePlayers when unclaimed slots are purged)
	RequestAnswer  -> EvtUpdatePlayers
	RoundEnd       -> EvtUpdatePlayers | EvtGameOver
	ContinueGame   -> EvtStartRound (delivered after the round delay)
	Disconnect     -> EvtKickAll (host) | EvtUpdatePlayers
*/

const (
	EvtMessage       EventType = "Message"
	EvtStartRound    EventType = "StartRound"
	EvtUpdatePlayers EventType = "UpdatePlayers"
	EvtKickAll       EventType = "KickAll"
	EvtGameOver      EventType = "GameOver"
)

// Timings are the per-round clocks handed to clients with a StartRound.
type Timings struct {
	TimeToWrite   time.Duration `json:"timeToWrite"`
	TimeToAnswer  time.Duration `json:"timeToAnswer"`
	QuestionDelay time.Duration `json:"questionDelay"`
}

// Event is an outbound instruction for the transport, scoped to one lobby.
type Event struct {
	Type          EventType
	Lobby         string
	Message       string
	Round         int
	Hotseat       [2]Player
	QuestionCount int
	Timings       Timings
	Players       []Player
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}

func messageEvent(lobby, text string) Event {
	return Event{Type: EvtMessage, Lobby: lobby, Message: text}
}

func playersEvent(l *Lobby) Event {
	return Event{Type: EvtUpdatePlayers, Lobby: l.Name, Players: append([]Player{}, l.Players...)}
}

func startRoundEvent(l *Lobby) Event {
	pair, _ := l.CurrentPair(l.Round)
	return Event{
		Type:          EvtStartRound,
		Lobby:         l.Name,
		Round:         l.Round,
		Hotseat:       l.pairPlayers(pair),
		QuestionCount: l.Settings.QuestionCount,
		Timings: Timings{
			TimeToWrite:   l.Settings.TimeToWrite,
			TimeToAnswer:  l.Settings.TimeToAnswer,
			QuestionDelay: l.Settings.QuestionDelay,
		},
	}
}
