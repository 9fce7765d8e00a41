package core

import (
	"testing"

	"github.com/peterldowns/testy/check"
)

func TestSummarize_SortsItemsAndKeepsTeamOrder(t *testing.T) {
	ledger := Ledger{
		{Item: "zeta", Team: "team_b", Amount: 90, Won: true},
		{Item: "alpha", Team: "team_b", Amount: 80, Won: true},
		{Item: "mid", Team: "team_a", Amount: 70, Won: true},
		{Item: "alpha", Team: "team_a", Amount: 60, Won: false},
	}

	result := Summarize([]string{"team_b", "team_a", "team_c"}, ledger)

	check.Equal(t, &AuctionResult{Teams: []TeamResult{
		{Team: "team_b", ItemsWon: []string{"alpha", "zeta"}},
		{Team: "team_a", ItemsWon: []string{"mid"}},
		{Team: "team_c", ItemsWon: []string{}},
	}}, result)
}

func TestSummarize_Idempotent(t *testing.T) {
	ledger := Ledger{
		{Item: "p2", Team: "team_a", Amount: 100, Draw: 0.3, Won: true},
		{Item: "p1", Team: "team_b", Amount: 100, Draw: 0.2, Won: true},
		{Item: "p1", Team: "team_a", Amount: 100, Draw: 0.1, Won: true},
	}
	teams := []string{"team_a", "team_b"}

	first := Summarize(teams, ledger)
	for range 5 {
		check.Equal(t, first, Summarize(teams, ledger))
	}
	check.Equal(t, []string{"p1", "p2"}, first.ItemsWonBy("team_a"))
}

func TestSummarize_WinnerMissingFromTeams(t *testing.T) {
	ledger := Ledger{
		{Item: "p1", Team: "team_z", Won: true},
		{Item: "p2", Team: "team_y", Won: true},
	}

	result := Summarize([]string{"team_a"}, ledger)

	check.Equal(t, 3, len(result.Teams))
	check.Equal(t, "team_a", result.Teams[0].Team)
	check.Equal(t, "team_y", result.Teams[1].Team)
	check.Equal(t, "team_z", result.Teams[2].Team)
}

func TestAuctionResult_Accessors(t *testing.T) {
	var nilResult *AuctionResult
	check.Equal(t, 0, nilResult.TotalWins())
	check.True(t, nilResult.ItemsWonBy("team_a") == nil)

	result := &AuctionResult{Teams: []TeamResult{
		{Team: "team_a", ItemsWon: []string{"p1", "p2"}},
		{Team: "team_b", ItemsWon: []string{"p3"}},
	}}
	check.Equal(t, 3, result.TotalWins())
	check.Equal(t, []string{"p3"}, result.ItemsWonBy("team_b"))
	check.True(t, result.ItemsWonBy("team_c") == nil)
}

func TestTeamNames(t *testing.T) {
	submissions := []TeamSubmission{{Team: "b"}, {Team: "a"}}
	check.Equal(t, []string{"b", "a"}, TeamNames(submissions))
}
