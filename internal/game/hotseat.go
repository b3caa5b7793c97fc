package game

import (
	"fmt"
	"math/rand/v2"
)

// Pairs draws the hotseat pair for every round up front.
//
// While the rounds fit inside a single shuffle the pairs are disjoint.
// Otherwise whole shuffles of the seat list are concatenated until every
// round has a pair, so players repeat but never sit opposite themselves.
// With an odd roster the last seat of each shuffle sits that shuffle out.
func Pairs(rng *rand.Rand, players, rounds int) ([]Pair, error) {
	if players < 2 || rounds < 1 {
		return nil, fmt.Errorf("%w: %d players, %d rounds", ErrInvalidRequest, players, rounds)
	}

	perShuffle := players / 2
	shuffles := 1
	if rounds >= perShuffle {
		shuffles = max(ceilDiv(players, rounds), ceilDiv(rounds, perShuffle))
	}

	pairs := make([]Pair, 0, shuffles*perShuffle)
	for range shuffles {
		seats := rng.Perm(players)
		for i := 0; i+1 < len(seats); i += 2 {
			pairs = append(pairs, Pair{seats[i], seats[i+1]})
		}
	}

	if len(pairs) < rounds {
		return pairs, fmt.Errorf("%w: got %d, want %d", ErrInconsistentPairs, len(pairs), rounds)
	}
	return pairs[:rounds], nil
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
