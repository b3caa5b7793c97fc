package game

import (
	"cmp"
	"errors"
	"slices"
	"strings"
)

// StartGame begins round one. Only the host may start, with more than two
// players and no seats waiting on a reconnect; waiting seats are purged and
// the host has to try again.
//
// An ErrInconsistentPairs error is a warning: the game has started with
// whatever pairs the engine produced and the caller should only log it.
func (s *Store) StartGame(name, requester string) (Settings, []Event, error) {
	l, err := s.Get(name)
	if err != nil {
		return Settings{}, nil, err
	}
	if !l.isHost(requester) {
		return Settings{}, nil, ErrNotHost
	}
	if l.Phase != PhaseLobby || l.Round != 0 {
		return Settings{}, nil, ErrWrongPhase
	}

	if len(l.Unclaimed) > 0 {
		l.purgeUnclaimed()
		events := []Event{
			messageEvent(name, "Some players left the lobby, please start the game again"),
			playersEvent(l),
		}
		return Settings{}, events, ErrPendingDisconnects
	}

	if len(l.Players) < MinPlayers {
		return Settings{}, []Event{messageEvent(name, "Not enough players to start game")}, ErrNotEnoughPlayers
	}

	pairs, pairErr := Pairs(s.rng, len(l.Players), l.Settings.Rounds)
	if pairErr != nil && !errors.Is(pairErr, ErrInconsistentPairs) {
		return Settings{}, nil, pairErr
	}

	for i := range l.Players {
		l.Players[i].Seat = i
	}
	l.Hotseats = pairs
	l.Round = 1
	l.Ready = false
	l.Questions = []Question{}
	l.Phase = PhaseWriting

	return l.Settings, []Event{startRoundEvent(l)}, pairErr
}

// ReturnQuestions appends one writer's questions, shuffled among themselves.
func (s *Store) ReturnQuestions(name string, questions []Question) ([]Question, error) {
	l, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	if l.Phase != PhaseWriting && l.Phase != PhaseAnswering {
		return nil, ErrWrongPhase
	}

	batch := make([]Question, 0, len(questions))
	for _, q := range questions {
		text := strings.TrimSpace(q.Text)
		if text == "" {
			continue
		}
		batch = append(batch, Question{Text: text, Author: q.Author, Answers: []string{}})
	}
	// Earlier questions keep their index; clients address them by it.
	s.rng.Shuffle(len(batch), func(i, j int) {
		batch[i], batch[j] = batch[j], batch[i]
	})
	l.Questions = append(l.Questions, batch...)
	l.Phase = PhaseAnswering

	return l.Clone().Questions, nil
}

func (l *Lobby) question(index, round int) (*Question, error) {
	if round != l.Round {
		return nil, ErrStaleRound
	}
	if l.Phase != PhaseAnswering {
		return nil, ErrWrongPhase
	}
	if index < 0 || index >= len(l.Questions) {
		return nil, ErrQuestionNotFound
	}
	return &l.Questions[index], nil
}

// hotseatPosition is 0 or 1 for the players on stage this round, -1 otherwise.
func (l *Lobby) hotseatPosition(playerID string) int {
	pair, ok := l.CurrentPair(l.Round)
	if !ok {
		return -1
	}
	for pos, seat := range pair {
		if seat < len(l.Players) && l.Players[seat].ID == playerID {
			return pos
		}
	}
	return -1
}

// AnswerQuestion records a hotseat player's answer. Anyone else is ignored.
func (s *Store) AnswerQuestion(name, playerID string, index int, answer string, round int) error {
	l, err := s.Get(name)
	if err != nil {
		return err
	}
	q, err := l.question(index, round)
	if err != nil {
		return err
	}
	pos := l.hotseatPosition(playerID)
	if pos < 0 || q.Resolved {
		return nil
	}

	for len(q.Answers) < len(Pair{}) {
		q.Answers = append(q.Answers, "")
	}
	q.Answers[pos] = strings.TrimSpace(answer)
	return nil
}

// RequestAnswer returns the hotseat answers for a question, scoring it the
// first time it is asked for: matching answers pay both hotseat players,
// anything else pays the author.
func (s *Store) RequestAnswer(name string, index, round int) ([]string, []Event, error) {
	l, err := s.Get(name)
	if err != nil {
		return nil, nil, err
	}
	q, err := l.question(index, round)
	if err != nil {
		return nil, nil, err
	}

	var events []Event
	if !q.Resolved {
		points := l.Settings.Points
		if matched(q.Answers) {
			pair, _ := l.CurrentPair(l.Round)
			for _, seat := range pair {
				if seat < len(l.Players) {
					l.Players[seat].Score += points
				}
			}
		} else {
			l.addPoints(q.Author, points)
		}
		q.Resolved = true
		events = append(events, playersEvent(l))
	}

	return append([]string{}, q.Answers...), events, nil
}

func matched(answers []string) bool {
	return len(answers) == 2 && answers[0] != "" && answers[0] == answers[1]
}

// RoundEnd closes the given round. Before the last round the lobby waits
// for the host to continue; after it the game is over.
func (s *Store) RoundEnd(name string, round int) ([]Event, error) {
	l, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	if round != l.Round {
		return nil, ErrStaleRound
	}
	if l.Phase != PhaseWriting && l.Phase != PhaseAnswering {
		return nil, ErrWrongPhase
	}

	l.Questions = []Question{}
	if l.Round < l.Settings.Rounds {
		l.Round++
		l.Ready = true
		l.Phase = PhaseRoundEnd
		return []Event{playersEvent(l)}, nil
	}

	l.Phase = PhaseGameEnd
	return []Event{{Type: EvtGameOver, Lobby: name, Players: standings(l.Players)}}, nil
}

func standings(players []Player) []Player {
	out := append([]Player{}, players...)
	slices.SortStableFunc(out, func(a, b Player) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return out
}

// ContinueGame is the host's go-ahead for the next round.
func (s *Store) ContinueGame(name, requester string) ([]Event, error) {
	l, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	if !l.isHost(requester) {
		return nil, ErrNotHost
	}
	if !l.Ready || l.Phase != PhaseRoundEnd || len(l.Questions) > 0 || l.Round > l.Settings.Rounds {
		return nil, ErrWrongPhase
	}

	l.Ready = false
	l.Phase = PhaseWriting
	return []Event{startRoundEvent(l)}, nil
}

// RoundStart rebuilds the StartRound event for a delayed start, failing if
// the lobby has moved on (or gone) since it was scheduled.
func (s *Store) RoundStart(name string, round int) (Event, error) {
	l, err := s.Get(name)
	if err != nil {
		return Event{}, err
	}
	if l.Round != round {
		return Event{}, ErrStaleRound
	}
	if l.Phase != PhaseWriting {
		return Event{}, ErrWrongPhase
	}
	return startRoundEvent(l), nil
}
