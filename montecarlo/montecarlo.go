// Package montecarlo repeats sealed-bid clearing runs with independent
// tie-break draws to measure how much of an outcome is decided by chance.
package montecarlo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"slices"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
	"lukechampine.com/frand"

	"github.com/cloudx-io/draftauction/core"
)

// DefaultConfidence is the two-tailed confidence level, in percent, of the
// reported interval around mean wins.
const DefaultConfidence = 95.0

// ErrNoIterations is returned when a study is asked to run zero iterations.
var ErrNoIterations = errors.New("iterations must be positive")

// Options controls a repetition study.
type Options struct {
	Iterations int
	// Workers bounds concurrent iterations; 0 means runtime.NumCPU().
	Workers int
	// Seed makes every draw reproducible when set. Iteration i is seeded with
	// (Seed, i) so results do not depend on scheduling.
	Seed *uint64
	// Confidence in percent; 0 means DefaultConfidence.
	Confidence float64
}

// ItemWinRate is the fraction of iterations in which a team won an item.
type ItemWinRate struct {
	Item    string  `json:"item"`
	WinRate float64 `json:"win_rate"`
}

// TeamStats summarizes one team across all iterations.
type TeamStats struct {
	Team      string  `json:"team"`
	MeanWins  float64 `json:"mean_wins"`
	StdevWins float64 `json:"stdev_wins"`
	// ConfidenceHalfWidth is the half-width of the confidence interval around MeanWins.
	ConfidenceHalfWidth float64       `json:"confidence_half_width"`
	MinWins             int           `json:"min_wins"`
	MaxWins             int           `json:"max_wins"`
	ItemWinRates        []ItemWinRate `json:"item_win_rates"`
}

// Report is the aggregated outcome of a study. Teams are in submission order and
// each team's items are sorted.
type Report struct {
	Iterations int         `json:"iterations"`
	Params     core.Params `json:"params"`
	Confidence float64     `json:"confidence"`
	Teams      []TeamStats `json:"teams"`
}

// Team returns the stats for team, or nil if it is not part of the report.
func (r *Report) Team(team string) *TeamStats {
	for i := range r.Teams {
		if r.Teams[i].Team == team {
			return &r.Teams[i]
		}
	}
	return nil
}

// Run clears the same submissions opts.Iterations times, each with its own random
// source, and aggregates the results. Input is validated once up front; a
// cancelled ctx stops the study and returns the context error.
func Run(ctx context.Context, submissions []core.TeamSubmission, params core.Params, opts Options) (*Report, error) {
	if opts.Iterations <= 0 {
		return nil, ErrNoIterations
	}
	if err := core.ValidateParams(params); err != nil {
		return nil, err
	}
	if err := core.ValidateSubmissions(submissions); err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	confidence := opts.Confidence
	if confidence <= 0 || confidence >= 100 {
		confidence = DefaultConfidence
	}

	log.Debug().Msgf("montecarlo: %d iterations over %d teams with %d workers", opts.Iterations, len(submissions), workers)

	results := make([]*core.AuctionResult, opts.Iterations)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range opts.Iterations {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, _, err := core.Simulate(submissions, params, iterationSource(opts.Seed, i))
			if err != nil {
				return fmt.Errorf("iteration %d: %w", i, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return aggregate(submissions, params, confidence, results), nil
}

// iterationSource returns the independent random source of iteration i
func iterationSource(seed *uint64, i int) *rand.Rand {
	if seed != nil {
		return rand.New(rand.NewPCG(*seed, uint64(i)))
	}
	return rand.New(rand.NewPCG(frand.Uint64n(math.MaxUint64), frand.Uint64n(math.MaxUint64)))
}

func aggregate(submissions []core.TeamSubmission, params core.Params, confidence float64, results []*core.AuctionResult) *Report {
	n := len(results)
	z := ZVal(confidence)

	report := &Report{
		Iterations: n,
		Params:     params,
		Confidence: confidence,
		Teams:      make([]TeamStats, 0, len(submissions)),
	}

	for _, sub := range submissions {
		samples := make([]float64, n)
		itemCounts := make(map[string]int, len(sub.Bids))
		minWins, maxWins := math.MaxInt, 0

		for i, result := range results {
			won := result.ItemsWonBy(sub.Team)
			samples[i] = float64(len(won))
			minWins = min(minWins, len(won))
			maxWins = max(maxWins, len(won))
			for _, item := range won {
				itemCounts[item]++
			}
		}

		mean, stdev := stat.MeanStdDev(samples, nil)
		if n < 2 {
			stdev = 0
		}

		items := make([]string, 0, len(sub.Bids))
		for _, bid := range sub.Bids {
			items = append(items, bid.Item)
		}
		slices.Sort(items)

		rates := make([]ItemWinRate, len(items))
		for i, item := range items {
			rates[i] = ItemWinRate{Item: item, WinRate: float64(itemCounts[item]) / float64(n)}
		}

		report.Teams = append(report.Teams, TeamStats{
			Team:                sub.Team,
			MeanWins:            mean,
			StdevWins:           stdev,
			ConfidenceHalfWidth: z * stdev / math.Sqrt(float64(n)),
			MinWins:             minWins,
			MaxWins:             maxWins,
			ItemWinRates:        rates,
		})
	}

	return report
}
