package game

import (
	"math/rand/v2"
	"strings"
)

// Store is the keyed collection of every live lobby. It holds no lock: the
// owner (the hub loop) must call it from a single goroutine.
type Store struct {
	lobbies  map[string]*Lobby
	settings Settings
	rng      *rand.Rand
}

func NewStore(settings Settings, rng *rand.Rand) *Store {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Store{
		lobbies:  make(map[string]*Lobby),
		settings: settings,
		rng:      rng,
	}
}

func (s *Store) Settings() Settings { return s.settings }

// CreateLobby keys the lobby by name exactly as given. Names with
// surrounding whitespace are rejected so every lookup uses the same key.
func (s *Store) CreateLobby(name string, host Player) error {
	host.Name = normalizeName(host.Name)
	if name == "" || name != strings.TrimSpace(name) || host.Name == "" || host.ID == "" {
		return ErrInvalidRequest
	}
	if _, exists := s.lobbies[name]; exists {
		return ErrLobbyExists
	}
	s.lobbies[name] = newLobby(name, host, s.settings)
	return nil
}

func (s *Store) DeleteLobby(name string) {
	delete(s.lobbies, name)
}

func (s *Store) Get(name string) (*Lobby, error) {
	l, ok := s.lobbies[name]
	if !ok {
		return nil, ErrLobbyNotFound
	}
	return l, nil
}

func (s *Store) Exists(name string) bool {
	_, ok := s.lobbies[name]
	return ok
}

func (s *Store) Len() int { return len(s.lobbies) }

// Snapshot deep-copies every lobby, keyed by name.
func (s *Store) Snapshot() map[string]Lobby {
	out := make(map[string]Lobby, len(s.lobbies))
	for name, l := range s.lobbies {
		out[name] = l.Clone()
	}
	return out
}
