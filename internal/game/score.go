package game

// AddPoints credits a player. Unknown lobbies and players are ignored since
// late events often reference someone who has just disconnected.
func (s *Store) AddPoints(name, playerID string, amount int) {
	l, err := s.Get(name)
	if err != nil {
		return
	}
	l.addPoints(playerID, amount)
}

func (l *Lobby) addPoints(playerID string, amount int) {
	if i := l.indexOf(playerID); i >= 0 {
		l.Players[i].Score += amount
	}
}

var fillers = []string{
	"Nobody had anything to say. Everybody drinks!",
	"Silence... the hotseat drinks twice.",
	"No answers? Waterfall, starting with the host.",
	"Too slow! Last person to touch their nose drinks.",
	"Blank minds all round. Take a sip and move on.",
	"The audience is speechless. Hotseat, finish your drink.",
}

// NoAnswer picks the filler prompt shown when a question got no answers.
func (s *Store) NoAnswer() string {
	return fillers[s.rng.IntN(len(fillers))]
}
