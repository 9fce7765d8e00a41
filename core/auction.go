package core

// Simulate executes one sealed-bid clearing run: normalize → draw → order → clear → summarize.
//
// Parameters:
//   - submissions: One submission per team; team names must be unique
//   - params: Budget each team is rescaled to and the per-team acquisition cap
//   - randSource: Source of tie-break draws (nil uses a freshly seeded source)
//
// Returns:
//   - AuctionResult with the sorted items won by every team (empty lists included)
//   - Ledger of every bid entry in settlement order, annotated with its outcome
//   - InvalidSubmissionError, DuplicateBidError or ErrInvalidParams on bad input;
//     all input is validated before any clearing happens
//
// Processing flow:
//  1. Validate parameters and every submission
//  2. Normalize each team's weights to the budget
//  3. Flatten into one pool and give every entry a fresh tie-break draw
//  4. Sort by amount descending, then draw descending
//  5. Clear greedily in a single pass under the per-team cap
//  6. Summarize won items per team
func Simulate(submissions []TeamSubmission, params Params, randSource RandSource) (*AuctionResult, Ledger, error) {
	// Step 1: Fail fast on any invalid input
	if err := ValidateParams(params); err != nil {
		return nil, nil, err
	}
	if err := ValidateSubmissions(submissions); err != nil {
		return nil, nil, err
	}

	// Step 2: Normalize per team
	pool := make([]BidEntry, 0, countBids(submissions))
	for _, sub := range submissions {
		entries, err := NormalizeSubmission(sub, params.Budget)
		if err != nil {
			return nil, nil, err
		}
		// Step 3: Flatten
		pool = append(pool, entries...)
	}
	AssignDraws(pool, randSource)

	// Step 4: Settlement order
	SortLedger(pool)

	// Step 5: Greedy clearing
	ledger := ClearBids(pool, params.MaxWinsPerTeam)

	// Step 6: Per-team summary
	return Summarize(TeamNames(submissions), ledger), ledger, nil
}

func countBids(submissions []TeamSubmission) int {
	n := 0
	for _, sub := range submissions {
		n += len(sub.Bids)
	}
	return n
}
