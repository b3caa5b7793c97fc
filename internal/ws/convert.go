package ws

import (
	"time"

	"github.com/DoyleJ11/hotseat/internal/game"
	"github.com/DoyleJ11/hotseat/pkg/types"
)

func toWirePlayer(p game.Player) types.Player {
	return types.Player{ID: p.ID, Name: p.Name, Score: p.Score}
}

func toWirePlayers(ps []game.Player) []types.Player {
	out := make([]types.Player, 0, len(ps))
	for _, p := range ps {
		out = append(out, toWirePlayer(p))
	}
	return out
}

func toWireQuestions(qs []game.Question) []types.Question {
	out := make([]types.Question, 0, len(qs))
	for _, q := range qs {
		out = append(out, types.Question{Text: q.Text, Author: q.Author, Answers: q.Answers})
	}
	return out
}

func ms(d time.Duration) int64 { return d.Milliseconds() }

func toWireSettings(s game.Settings) types.Settings {
	return types.Settings{
		Rounds:        s.Rounds,
		QuestionCount: s.QuestionCount,
		Points:        s.Points,
		Timings: types.Timings{
			TimeToWrite:   ms(s.TimeToWrite),
			TimeToAnswer:  ms(s.TimeToAnswer),
			QuestionDelay: ms(s.QuestionDelay),
		},
	}
}

// FromEvent renders an outbound game event as the frame clients receive.
func FromEvent(ev game.Event) types.ServerMessage {
	switch ev.Type {
	case game.EvtStartRound:
		return types.ServerMessage{
			Type:          types.MsgStartRound,
			Lobby:         ev.Lobby,
			Round:         ev.Round,
			Hotseat:       []types.Player{toWirePlayer(ev.Hotseat[0]), toWirePlayer(ev.Hotseat[1])},
			QuestionCount: ev.QuestionCount,
			Timings: &types.Timings{
				TimeToWrite:   ms(ev.Timings.TimeToWrite),
				TimeToAnswer:  ms(ev.Timings.TimeToAnswer),
				QuestionDelay: ms(ev.Timings.QuestionDelay),
			},
		}
	case game.EvtUpdatePlayers:
		return types.ServerMessage{Type: types.MsgUpdatePlayers, Lobby: ev.Lobby, Players: toWirePlayers(ev.Players)}
	case game.EvtGameOver:
		return types.ServerMessage{Type: types.MsgGameOver, Lobby: ev.Lobby, Players: toWirePlayers(ev.Players)}
	case game.EvtKickAll:
		return types.ServerMessage{Type: types.MsgKicked, Lobby: ev.Lobby, Message: ev.Message}
	default:
		return types.ServerMessage{Type: types.MsgMessage, Lobby: ev.Lobby, Message: ev.Message}
	}
}
