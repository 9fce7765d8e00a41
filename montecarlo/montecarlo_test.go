package montecarlo

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"github.com/cloudx-io/draftauction/core"
)

func tiedSubmissions() []core.TeamSubmission {
	return []core.TeamSubmission{
		{Team: "team_a", Bids: []core.RawBid{{Item: "p1", Weight: 2}, {Item: "p2", Weight: 2}, {Item: "p3", Weight: 2}}},
		{Team: "team_b", Bids: []core.RawBid{{Item: "p1", Weight: 1}, {Item: "p2", Weight: 1}, {Item: "p3", Weight: 1}}},
	}
}

func TestRun_TiedTeamsSplitItems(t *testing.T) {
	seed := uint64(42)
	report, err := Run(context.Background(), tiedSubmissions(), core.DefaultParams(), Options{
		Iterations: 400,
		Workers:    4,
		Seed:       &seed,
	})
	assert.Nil(t, err)

	check.Equal(t, 400, report.Iterations)
	check.Equal(t, DefaultConfidence, report.Confidence)
	assert.Equal(t, 2, len(report.Teams))
	check.Equal(t, "team_a", report.Teams[0].Team)
	check.Equal(t, "team_b", report.Teams[1].Team)

	a := report.Team("team_a")
	b := report.Team("team_b")
	assert.NotNil(t, a)
	assert.NotNil(t, b)

	// Every item is always won by exactly one of the two teams
	check.True(t, math.Abs(a.MeanWins+b.MeanWins-3) < 1e-9)
	for i := range a.ItemWinRates {
		check.Equal(t, a.ItemWinRates[i].Item, b.ItemWinRates[i].Item)
		check.True(t, math.Abs(a.ItemWinRates[i].WinRate+b.ItemWinRates[i].WinRate-1) < 1e-9)
		// Fair coin per item: comfortably inside (0.35, 0.65) at 400 iterations
		check.True(t, a.ItemWinRates[i].WinRate > 0.35 && a.ItemWinRates[i].WinRate < 0.65)
	}

	check.True(t, a.StdevWins > 0)
	check.True(t, a.ConfidenceHalfWidth > 0)
	check.Equal(t, 0, a.MinWins)
	check.Equal(t, 3, a.MaxWins)
}

func TestRun_SeedIsReproducible(t *testing.T) {
	seed := uint64(7)
	opts := Options{Iterations: 50, Workers: 3, Seed: &seed}

	first, err := Run(context.Background(), tiedSubmissions(), core.DefaultParams(), opts)
	assert.Nil(t, err)

	opts.Workers = 1
	second, err := Run(context.Background(), tiedSubmissions(), core.DefaultParams(), opts)
	assert.Nil(t, err)

	check.Equal(t, first, second)
}

func TestRun_DeterministicOutcome(t *testing.T) {
	submissions := []core.TeamSubmission{
		{Team: "team_a", Bids: []core.RawBid{{Item: "p1", Weight: 3}, {Item: "p2", Weight: 1}}},
		{Team: "team_b", Bids: []core.RawBid{{Item: "p1", Weight: 1}, {Item: "p2", Weight: 3}}},
	}

	report, err := Run(context.Background(), submissions, core.DefaultParams(), Options{Iterations: 20})
	assert.Nil(t, err)

	a := report.Team("team_a")
	check.Equal(t, 1.0, a.MeanWins) // p1 at 150; team_b outbids on p2
	check.Equal(t, 0.0, a.StdevWins)
	check.Equal(t, 0.0, a.ConfidenceHalfWidth)
	check.Equal(t, []ItemWinRate{{Item: "p1", WinRate: 1}, {Item: "p2", WinRate: 0}}, a.ItemWinRates)
}

func TestRun_SingleIteration(t *testing.T) {
	report, err := Run(context.Background(), tiedSubmissions(), core.DefaultParams(), Options{Iterations: 1})
	assert.Nil(t, err)

	for _, team := range report.Teams {
		check.Equal(t, 0.0, team.StdevWins)
		check.Equal(t, team.MinWins, team.MaxWins)
	}
}

func TestRun_Errors(t *testing.T) {
	_, err := Run(context.Background(), tiedSubmissions(), core.DefaultParams(), Options{Iterations: 0})
	check.True(t, errors.Is(err, ErrNoIterations))

	_, err = Run(context.Background(), tiedSubmissions(), core.Params{Budget: -1}, Options{Iterations: 5})
	check.True(t, errors.Is(err, core.ErrInvalidParams))

	invalid := []core.TeamSubmission{{Team: "team_a", Bids: []core.RawBid{{Item: "p1", Weight: 0}}}}
	_, err = Run(context.Background(), invalid, core.DefaultParams(), Options{Iterations: 5})
	var submissionErr *core.InvalidSubmissionError
	check.True(t, errors.As(err, &submissionErr))
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := Run(ctx, tiedSubmissions(), core.DefaultParams(), Options{Iterations: 100})
	check.True(t, errors.Is(err, context.Canceled))
	check.True(t, report == nil)
}

func TestZVal(t *testing.T) {
	check.True(t, math.Abs(ZVal(95)-1.959964) < 1e-5)
	check.True(t, math.Abs(ZVal(99)-2.575829) < 1e-5)
}
