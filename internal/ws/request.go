package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/DoyleJ11/hotseat/pkg/types"
)

var ErrBadJSON = errors.New("bad json")
var ErrUnknownType = errors.New("unknown type")
var ErrMissingField = errors.New("missing field")

// maxQuestions caps a single returnQuestions batch.
const maxQuestions = 20

// request is a decoded, validated client frame.
type request interface{ reference() string }

type base struct{ Ref string }

func (b base) reference() string { return b.Ref }

type createReq struct {
	base
	Lobby string
	Name  string
}

type joinReq struct {
	base
	Lobby string
	Name  string
}

type updatePlayerReq struct {
	base
	Lobby string
	Name  string
}

type getPlayersReq struct {
	base
	Lobby string
}

type startGameReq struct {
	base
	Lobby string
}

type returnQuestionsReq struct {
	base
	Lobby     string
	Questions []string
}

type answerReq struct {
	base
	Lobby  string
	Index  int
	Answer string
	Round  int
}

type requestAnswerReq struct {
	base
	Lobby string
	Index int
	Round int
}

type roundEndReq struct {
	base
	Lobby string
	Round int
}

type continueReq struct {
	base
	Lobby string
}

type noAnswerReq struct {
	base
}

type claimReq struct {
	base
	Lobby    string
	PlayerID string
}

func parse(data []byte) (request, error) {
	var cm types.ClientMessage
	if err := json.Unmarshal(data, &cm); err != nil {
		return nil, ErrBadJSON
	}
	return decode(cm)
}

// decode turns a loosely typed frame into one request type per event,
// rejecting anything the game would have to second-guess.
func decode(cm types.ClientMessage) (request, error) {
	b := base{Ref: cm.Ref}
	lobby := strings.TrimSpace(cm.Lobby)

	name := ""
	if cm.Player != nil {
		name = strings.TrimSpace(cm.Player.Name)
	}

	switch cm.Type {
	case types.EvtLobbyCreate:
		if lobby == "" || name == "" {
			return nil, missing("lobby and player.name")
		}
		return createReq{base: b, Lobby: lobby, Name: name}, nil

	case types.EvtLobbyJoin:
		if lobby == "" || name == "" {
			return nil, missing("lobby and player.name")
		}
		return joinReq{base: b, Lobby: lobby, Name: name}, nil

	case types.EvtUpdateSinglePlayer:
		if cm.Player == nil {
			return nil, missing("player")
		}
		return updatePlayerReq{base: b, Lobby: lobby, Name: name}, nil

	case types.EvtGetPlayers:
		return getPlayersReq{base: b, Lobby: lobby}, nil

	case types.EvtStartGame:
		return startGameReq{base: b, Lobby: lobby}, nil

	case types.EvtReturnQuestions:
		if len(cm.Questions) == 0 {
			return nil, missing("questions")
		}
		if len(cm.Questions) > maxQuestions {
			return nil, fmt.Errorf("too many questions: %d > %d", len(cm.Questions), maxQuestions)
		}
		return returnQuestionsReq{base: b, Lobby: lobby, Questions: cm.Questions}, nil

	case types.EvtAnswerQuestion:
		if cm.QuestionIndex == nil || cm.Round < 1 {
			return nil, missing("questionIndex and round")
		}
		answer := strings.TrimSpace(cm.Answer)
		if answer == "" {
			return nil, missing("answer")
		}
		return answerReq{base: b, Lobby: lobby, Index: *cm.QuestionIndex, Answer: answer, Round: cm.Round}, nil

	case types.EvtRequestAnswer:
		if cm.QuestionIndex == nil || cm.Round < 1 {
			return nil, missing("questionIndex and round")
		}
		return requestAnswerReq{base: b, Lobby: lobby, Index: *cm.QuestionIndex, Round: cm.Round}, nil

	case types.EvtRoundEnd:
		if cm.Round < 1 {
			return nil, missing("round")
		}
		return roundEndReq{base: b, Lobby: lobby, Round: cm.Round}, nil

	case types.EvtContinueGame:
		return continueReq{base: b, Lobby: lobby}, nil

	case types.EvtNoAnswer:
		return noAnswerReq{base: b}, nil

	case types.EvtClaimSocket:
		if lobby == "" || cm.PlayerID == "" {
			return nil, missing("lobby and playerId")
		}
		return claimReq{base: b, Lobby: lobby, PlayerID: cm.PlayerID}, nil

	default:
		return nil, ErrUnknownType
	}
}

func missing(field string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, field)
}
