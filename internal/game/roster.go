package game

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

func normalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// nameKey is the comparison key for player names, so "Zoë" and "ZOË" collide.
func nameKey(name string) string {
	return cases.Fold().String(normalizeName(name))
}

func (l *Lobby) hasName(name, exceptID string) bool {
	key := nameKey(name)
	for _, p := range l.Players {
		if p.ID != exceptID && nameKey(p.Name) == key {
			return true
		}
	}
	return false
}

func (l *Lobby) joinable() bool {
	return l.Round == 0 && l.Ready
}

// removePlayer compacts the roster, never leaving holes behind.
func (l *Lobby) removePlayer(playerID string) bool {
	i := l.indexOf(playerID)
	if i < 0 {
		return false
	}
	l.Players = append(l.Players[:i], l.Players[i+1:]...)
	return true
}

func (s *Store) Join(name string, player Player) ([]Player, []Event, error) {
	l, err := s.Get(name)
	if err != nil {
		return nil, nil, err
	}
	player.Name = normalizeName(player.Name)
	if player.Name == "" || player.ID == "" {
		return nil, nil, ErrInvalidRequest
	}
	if !l.joinable() {
		return nil, nil, ErrLobbyNotJoinable
	}
	if l.hasName(player.Name, "") || l.indexOf(player.ID) >= 0 {
		return nil, nil, ErrDuplicateName
	}

	player.Score = 0
	player.Seat = len(l.Players)
	l.Players = append(l.Players, player)

	return append([]Player{}, l.Players...), []Event{playersEvent(l)}, nil
}

// UpdatePlayer replaces the stored record with the same id. The score is
// reset to zero on every update; see DESIGN.md before changing that.
func (s *Store) UpdatePlayer(name string, player Player) (Player, []Event, error) {
	l, err := s.Get(name)
	if err != nil {
		return Player{}, nil, err
	}
	i := l.indexOf(player.ID)
	if i < 0 {
		return Player{}, nil, ErrPlayerNotFound
	}
	player.Name = normalizeName(player.Name)
	if player.Name == "" {
		player.Name = l.Players[i].Name
	}
	if l.hasName(player.Name, player.ID) {
		return Player{}, nil, ErrDuplicateName
	}

	player.Score = 0
	player.Seat = l.Players[i].Seat
	l.Players[i] = player
	return player, []Event{playersEvent(l)}, nil
}

// Players returns a copy of the roster, or nil for an unknown lobby.
func (s *Store) Players(name string) []Player {
	l, err := s.Get(name)
	if err != nil {
		return nil
	}
	return append([]Player{}, l.Players...)
}

// PlayerActive reports whether the player is on the roster and connected.
func (s *Store) PlayerActive(name, playerID string) bool {
	l, err := s.Get(name)
	if err != nil {
		return false
	}
	if l.indexOf(playerID) < 0 {
		return false
	}
	_, unclaimed := l.Unclaimed[playerID]
	return !unclaimed
}

// Disconnect handles a dropped connection. Losing the host ends the lobby;
// anyone else is parked as unclaimed so a reconnect can reclaim the seat.
func (s *Store) Disconnect(name, playerID, address string) []Event {
	l, err := s.Get(name)
	if err != nil {
		return nil
	}
	i := l.indexOf(playerID)
	if i < 0 {
		return nil
	}
	if i == 0 {
		s.DeleteLobby(name)
		return []Event{{Type: EvtKickAll, Lobby: name, Message: "The host has left the game"}}
	}

	l.Unclaimed[playerID] = address
	return []Event{playersEvent(l)}
}

// ClaimSocket moves an unclaimed player onto a new connection id when the
// caller presents the same network address the player disconnected from.
func (s *Store) ClaimSocket(name, playerID, address, newID string) bool {
	l, err := s.Get(name)
	if err != nil {
		return false
	}
	last, ok := l.Unclaimed[playerID]
	if !ok || last != address || newID == "" {
		return false
	}
	i := l.indexOf(playerID)
	if i < 0 {
		delete(l.Unclaimed, playerID)
		return false
	}
	if newID != playerID && l.indexOf(newID) >= 0 {
		return false
	}

	l.Players[i].ID = newID
	for qi := range l.Questions {
		if l.Questions[qi].Author == playerID {
			l.Questions[qi].Author = newID
		}
	}
	delete(l.Unclaimed, playerID)
	return true
}

// purgeUnclaimed drops every unclaimed player from the roster.
func (l *Lobby) purgeUnclaimed() int {
	n := 0
	for id := range l.Unclaimed {
		if l.removePlayer(id) {
			n++
		}
		delete(l.Unclaimed, id)
	}
	for i := range l.Players {
		l.Players[i].Seat = i
	}
	return n
}
