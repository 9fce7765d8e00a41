package core

import (
	"math/rand/v2"
	"testing"
)

// mockRandSource provides a deterministic sequence of draws for testing
type mockRandSource struct {
	sequence []float64
	index    int
}

func (m *mockRandSource) Float64() float64 {
	if m.index >= len(m.sequence) {
		return 0
	}
	val := m.sequence[m.index]
	m.index++
	return val
}

func seededSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func uniformSubmission(team string, weight float64, items ...string) TeamSubmission {
	sub := TeamSubmission{Team: team}
	for _, item := range items {
		sub.Bids = append(sub.Bids, RawBid{Item: item, Weight: weight})
	}
	return sub
}

// randomSubmissions builds n teams bidding random weights on random subsets of
// a shared item pool. Weights are drawn from a small integer range so exact
// ties are common.
func randomSubmissions(t *testing.T, r *rand.Rand, teams, items int) []TeamSubmission {
	t.Helper()
	pool := make([]string, items)
	for i := range pool {
		pool[i] = "player_" + string(rune('a'+i%26)) + string(rune('a'+i/26))
	}

	submissions := make([]TeamSubmission, teams)
	for i := range submissions {
		submissions[i].Team = "team_" + string(rune('A'+i))
		for _, item := range pool {
			if r.IntN(3) == 0 {
				continue
			}
			submissions[i].Bids = append(submissions[i].Bids, RawBid{Item: item, Weight: float64(1 + r.IntN(4))})
		}
		if len(submissions[i].Bids) == 0 {
			submissions[i].Bids = []RawBid{{Item: pool[0], Weight: 1}}
		}
	}
	return submissions
}
