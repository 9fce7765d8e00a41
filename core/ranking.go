package core

import (
	"sort"

	"lukechampine.com/frand"
)

// RandSource provides random draws for tie-breaking.
// This interface enables dependency injection for deterministic testing;
// *math/rand/v2.Rand satisfies it.
type RandSource interface {
	// Float64 returns a random number in [0.0, 1.0).
	Float64() float64
}

// frandSource draws from a cryptographically seeded generator for production use
type frandSource struct {
	rng *frand.RNG
}

func (s frandSource) Float64() float64 {
	return s.rng.Float64()
}

// NewRandSource returns a freshly seeded random source. Each call yields an
// independent source so concurrent runs never share generator state.
func NewRandSource() RandSource {
	return frandSource{rng: frand.New()}
}

// AssignDraws gives every entry an independent draw from randSource. A nil
// randSource is replaced by a fresh NewRandSource.
func AssignDraws(entries []BidEntry, randSource RandSource) {
	if randSource == nil {
		randSource = NewRandSource()
	}
	for i := range entries {
		entries[i].Draw = randSource.Float64()
	}
}

// SortLedger orders entries by settlement priority: amount descending, then draw
// descending. Exact float ties on both keys keep no particular order.
func SortLedger(entries []BidEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return SettlesBefore(entries[i], entries[j])
	})
}

// SettlesBefore reports whether a has strictly higher settlement priority than b.
func SettlesBefore(a, b BidEntry) bool {
	if a.Amount != b.Amount {
		return a.Amount > b.Amount
	}
	return a.Draw > b.Draw
}
