package core

// ClearBids resolves entries, which must already be in settlement order, in a
// single greedy pass. Each item goes to its highest-priority bidder whose team
// has not yet reached maxWinsPerTeam; awards are never revisited.
//
// The input is read-only. Resolutions are recorded in a fresh award map keyed by
// item and projected onto a new Ledger, so the returned ledger is the only place
// Won flags are written.
func ClearBids(sorted []BidEntry, maxWinsPerTeam int) Ledger {
	awards := make(map[string]string, len(sorted))
	winCounts := make(map[string]int)

	for _, entry := range sorted {
		// Skip if the item has already been awarded
		if _, taken := awards[entry.Item]; taken {
			continue
		}
		// Skip if the team is at its cap
		if winCounts[entry.Team] >= maxWinsPerTeam {
			continue
		}

		awards[entry.Item] = entry.Team
		winCounts[entry.Team]++
	}

	ledger := make(Ledger, len(sorted))
	for i, entry := range sorted {
		ledger[i] = entry
		winner, awarded := awards[entry.Item]
		ledger[i].Won = awarded && winner == entry.Team
	}

	return ledger
}
