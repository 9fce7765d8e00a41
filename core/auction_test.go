package core

import (
	"errors"
	"math"
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
)

func TestSimulate_BasicFlow(t *testing.T) {
	// Each team puts twice the weight on a different half of the roster
	submissions := []TeamSubmission{
		{Team: "Team 1", Bids: []RawBid{
			{Item: "Pedro Severino", Weight: 2},
			{Item: "Ryan Buchter", Weight: 2},
			{Item: "Akeel Morris", Weight: 2},
			{Item: "Lee Gronkiewicz", Weight: 1},
			{Item: "Chris McGuiness", Weight: 1},
			{Item: "Drew Meyer", Weight: 1},
		}},
		{Team: "Team 2", Bids: []RawBid{
			{Item: "Pedro Severino", Weight: 1},
			{Item: "Ryan Buchter", Weight: 1},
			{Item: "Akeel Morris", Weight: 1},
			{Item: "Lee Gronkiewicz", Weight: 2},
			{Item: "Chris McGuiness", Weight: 2},
			{Item: "Drew Meyer", Weight: 2},
		}},
	}

	result, ledger, err := Simulate(submissions, DefaultParams(), seededSource(7))
	assert.Nil(t, err)

	check.Equal(t, 2, len(result.Teams))
	check.Equal(t, "Team 1", result.Teams[0].Team)
	check.Equal(t, []string{"Akeel Morris", "Pedro Severino", "Ryan Buchter"}, result.Teams[0].ItemsWon)
	check.Equal(t, "Team 2", result.Teams[1].Team)
	check.Equal(t, []string{"Chris McGuiness", "Drew Meyer", "Lee Gronkiewicz"}, result.Teams[1].ItemsWon)

	check.Equal(t, 12, len(ledger))
	for i, entry := range ledger {
		// Every 2-weight bid (44.44) settles before every 1-weight bid (22.22)
		check.Equal(t, i < 6, entry.Won)
	}
}

func TestSimulate_TieOnEveryItem(t *testing.T) {
	submissions := []TeamSubmission{
		uniformSubmission("team_a", 2, "p1", "p2", "p3"),
		uniformSubmission("team_b", 1, "p1", "p2", "p3"),
	}
	params := Params{Budget: 200, MaxWinsPerTeam: 3}

	winsA := 0
	for seed := uint64(0); seed < 50; seed++ {
		result, ledger, err := Simulate(submissions, params, seededSource(seed))
		assert.Nil(t, err)

		for _, entry := range ledger {
			check.True(t, math.Abs(entry.Amount-66.6667) < 1e-4)
		}
		check.Equal(t, 3, result.TotalWins())
		check.Equal(t, 3, len(result.ItemsWonBy("team_a"))+len(result.ItemsWonBy("team_b")))
		assertExclusive(t, result)
		winsA += len(result.ItemsWonBy("team_a"))
	}

	// Draws decide, so over many runs both teams win some ties
	check.True(t, winsA > 0)
	check.True(t, winsA < 150)
}

func TestSimulate_SingleItemSingleTeam(t *testing.T) {
	submissions := []TeamSubmission{
		{Team: "team_a", Bids: []RawBid{{Item: "p1", Weight: 5}}},
	}

	result, ledger, err := Simulate(submissions, Params{Budget: 200, MaxWinsPerTeam: 3}, nil)
	assert.Nil(t, err)

	assert.Equal(t, 1, len(ledger))
	check.Equal(t, 200.0, ledger[0].Amount)
	check.True(t, ledger[0].Won)
	check.Equal(t, []string{"p1"}, result.ItemsWonBy("team_a"))
}

func TestSimulate_AllZeroWeights(t *testing.T) {
	submissions := []TeamSubmission{
		uniformSubmission("team_a", 1, "p1"),
		uniformSubmission("team_b", 0, "p1", "p2"),
	}

	result, ledger, err := Simulate(submissions, DefaultParams(), nil)

	var invalid *InvalidSubmissionError
	check.True(t, errors.As(err, &invalid))
	check.True(t, result == nil)
	check.Equal(t, 0, len(ledger))
}

func TestSimulate_DuplicateBid(t *testing.T) {
	submissions := []TeamSubmission{
		{Team: "team_a", Bids: []RawBid{{Item: "p1", Weight: 1}, {Item: "p1", Weight: 1}}},
	}

	_, _, err := Simulate(submissions, DefaultParams(), nil)

	var dup *DuplicateBidError
	check.True(t, errors.As(err, &dup))
}

func TestSimulate_InvalidParams(t *testing.T) {
	submissions := []TeamSubmission{uniformSubmission("team_a", 1, "p1")}

	_, _, err := Simulate(submissions, Params{Budget: 200, MaxWinsPerTeam: -1}, nil)
	check.True(t, errors.Is(err, ErrInvalidParams))
}

func TestSimulate_TeamWithoutWinsStillListed(t *testing.T) {
	submissions := []TeamSubmission{
		uniformSubmission("team_a", 1, "p1"),
		uniformSubmission("team_b", 1, "p2"),
		{Team: "team_c"},
	}

	result, _, err := Simulate(submissions, Params{Budget: 200, MaxWinsPerTeam: 0}, nil)
	assert.Nil(t, err)

	assert.Equal(t, 3, len(result.Teams))
	for _, tr := range result.Teams {
		check.NotNil(t, tr.ItemsWon)
		check.Equal(t, 0, len(tr.ItemsWon))
	}
}

func TestSimulate_NoSubmissions(t *testing.T) {
	result, ledger, err := Simulate(nil, DefaultParams(), nil)
	assert.Nil(t, err)

	check.Equal(t, 0, len(result.Teams))
	check.Equal(t, 0, len(ledger))
}

func TestSimulate_PreservesSubmissions(t *testing.T) {
	submissions := []TeamSubmission{
		{Team: "team_a", Bids: []RawBid{{Item: "p1", Weight: 3}, {Item: "p2", Weight: 1}}},
	}

	_, _, err := Simulate(submissions, DefaultParams(), nil)
	assert.Nil(t, err)

	check.Equal(t, 3.0, submissions[0].Bids[0].Weight)
	check.Equal(t, 1.0, submissions[0].Bids[1].Weight)
}

func TestSimulate_RandomRounds(t *testing.T) {
	for seed := uint64(1); seed <= 40; seed++ {
		r := seededSource(seed)
		submissions := randomSubmissions(t, r, 2+r.IntN(5), 3+r.IntN(20))
		params := Params{Budget: 200, MaxWinsPerTeam: r.IntN(5)}

		result, ledger, err := Simulate(submissions, params, r)
		assert.Nil(t, err)

		// Normalization: each team's amounts sum to the budget
		for team, total := range TeamTotals(ledger) {
			if math.Abs(total-params.Budget) >= 1e-6 {
				t.Errorf("seed %d: team %s total %v, want %v", seed, team, total, params.Budget)
			}
		}

		// Cap
		for _, tr := range result.Teams {
			check.True(t, len(tr.ItemsWon) <= params.MaxWinsPerTeam)
		}

		// Exclusivity
		assertExclusive(t, result)

		// Conservation
		distinctItems := make(map[string]bool)
		for _, entry := range ledger {
			distinctItems[entry.Item] = true
		}
		check.True(t, result.TotalWins() <= len(distinctItems))
		check.True(t, result.TotalWins() <= params.MaxWinsPerTeam*len(submissions))

		// Ledger is in settlement order
		for i := 1; i < len(ledger); i++ {
			check.False(t, SettlesBefore(ledger[i], ledger[i-1]))
		}

		assertMonotonicSettlement(t, ledger, params.MaxWinsPerTeam)

		// Re-summarizing the ledger reproduces the result
		check.Equal(t, result, Summarize(TeamNames(submissions), ledger))
	}
}

func assertExclusive(t *testing.T, result *AuctionResult) {
	t.Helper()
	owners := make(map[string]string)
	for _, tr := range result.Teams {
		for _, item := range tr.ItemsWon {
			if owner, ok := owners[item]; ok {
				t.Errorf("item %s won by both %s and %s", item, owner, tr.Team)
			}
			owners[item] = tr.Team
		}
	}
}

// assertMonotonicSettlement checks that whenever an entry wins an item, every
// higher-priority entry on that item belonged to a team already at its cap.
func assertMonotonicSettlement(t *testing.T, ledger Ledger, maxWins int) {
	t.Helper()
	winsBefore := make([]map[string]int, len(ledger))
	running := make(map[string]int)
	for i, entry := range ledger {
		snapshot := make(map[string]int, len(running))
		for team, n := range running {
			snapshot[team] = n
		}
		winsBefore[i] = snapshot
		if entry.Won {
			running[entry.Team]++
		}
	}

	for j, winner := range ledger {
		if !winner.Won {
			continue
		}
		for i := 0; i < j; i++ {
			higher := ledger[i]
			if higher.Item != winner.Item {
				continue
			}
			if winsBefore[i][higher.Team] < maxWins {
				t.Errorf("entry %d (%s/%s) passed over for lower-priority entry %d", i, higher.Team, higher.Item, j)
			}
		}
	}
}
