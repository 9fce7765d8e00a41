package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/cloudx-io/draftauction/auctionapi"
	"github.com/cloudx-io/draftauction/core"
	"github.com/cloudx-io/draftauction/montecarlo"
	"github.com/cloudx-io/draftauction/store"
)

// RunArchive persists successful simulations. *store.Store satisfies it.
type RunArchive interface {
	SaveRun(ctx context.Context, run *store.Run) error
}

// ProcessSimulation clears one sealed-bid round and returns the results table,
// the full ledger, its hash and a compact snapshot. A nil archive skips
// persistence; an archive failure is logged and does not fail the response.
func ProcessSimulation(ctx context.Context, req auctionapi.SimulationRequest, archive RunArchive) auctionapi.SimulationResponse {
	startTime := time.Now()
	log.Info().Msgf("Processing simulation %s with %d submissions", req.AuctionID, len(req.Submissions))

	params := req.Params()
	submissions := auctionapi.ToCoreSubmissions(req.Submissions)

	result, ledger, err := core.Simulate(submissions, params, nil)
	if err != nil {
		log.Info().Msgf("Rejected simulation %s: %v", req.AuctionID, err)
		return auctionapi.SimulationResponse{
			Type:           auctionapi.TypeSimulationResponse,
			Success:        false,
			Message:        fmt.Sprintf("Invalid simulation request: %v", err),
			ProcessingTime: time.Since(startTime).Milliseconds(),
		}
	}

	snapshot, err := auctionapi.EncodeLedgerSnapshot(ledger)
	if err != nil {
		log.Error().Msgf("Failed to encode ledger snapshot: %v", err)
		return auctionapi.SimulationResponse{
			Type:           auctionapi.TypeSimulationResponse,
			Success:        false,
			Message:        fmt.Sprintf("Simulation processing failed: %v", err),
			ProcessingTime: time.Since(startTime).Milliseconds(),
		}
	}

	run := &store.Run{
		ID:         uuid.New(),
		AuctionID:  req.AuctionID,
		Params:     params,
		Teams:      core.TeamNames(submissions),
		Ledger:     ledger,
		LedgerHash: core.ComputeLedgerHash(ledger),
		CreatedAt:  startTime,
	}
	if archive != nil {
		if err := archive.SaveRun(ctx, run); err != nil {
			log.Error().Msgf("Failed to archive run %s: %v", run.ID, err)
		}
	}

	processingTime := time.Since(startTime).Milliseconds()
	log.Info().Msgf("Simulation complete: run=%s, entries=%d, awarded=%d, processing=%dms",
		run.ID, len(ledger), result.TotalWins(), processingTime)

	return auctionapi.SimulationResponse{
		Type:           auctionapi.TypeSimulationResponse,
		Success:        true,
		Message:        fmt.Sprintf("Cleared %d bids from %d teams", len(ledger), len(submissions)),
		RunID:          run.ID.String(),
		Params:         &params,
		Results:        auctionapi.FromCoreResult(result),
		Ledger:         auctionapi.FromCoreLedger(ledger),
		LedgerHash:     run.LedgerHash,
		LedgerSnapshot: snapshot,
		ProcessingTime: processingTime,
	}
}

// ProcessMonteCarlo repeats a clearing round req.Iterations times and returns
// per-team win statistics. Iterations above maxIterations are rejected.
func ProcessMonteCarlo(ctx context.Context, req auctionapi.MonteCarloRequest, maxWorkers, maxIterations int) auctionapi.MonteCarloResponse {
	startTime := time.Now()
	log.Info().Msgf("Processing Monte Carlo study %s: %d iterations over %d submissions",
		req.AuctionID, req.Iterations, len(req.Submissions))

	if req.Iterations > maxIterations {
		return auctionapi.MonteCarloResponse{
			Type:           auctionapi.TypeMonteCarloResponse,
			Success:        false,
			Message:        fmt.Sprintf("Iterations %d exceed the server limit of %d", req.Iterations, maxIterations),
			ProcessingTime: time.Since(startTime).Milliseconds(),
		}
	}

	report, err := montecarlo.Run(ctx, auctionapi.ToCoreSubmissions(req.Submissions), req.Params(), montecarlo.Options{
		Iterations: req.Iterations,
		Workers:    maxWorkers,
		Seed:       req.Seed,
	})
	processingTime := time.Since(startTime).Milliseconds()
	if err != nil {
		log.Info().Msgf("Rejected Monte Carlo study %s: %v", req.AuctionID, err)
		return auctionapi.MonteCarloResponse{
			Type:           auctionapi.TypeMonteCarloResponse,
			Success:        false,
			Message:        fmt.Sprintf("Invalid Monte Carlo request: %v", err),
			ProcessingTime: processingTime,
		}
	}

	log.Info().Msgf("Monte Carlo study complete: %d iterations, %d teams, processing=%dms",
		report.Iterations, len(report.Teams), processingTime)

	return auctionapi.MonteCarloResponse{
		Type:           auctionapi.TypeMonteCarloResponse,
		Success:        true,
		Message:        fmt.Sprintf("Ran %d iterations", report.Iterations),
		Report:         report,
		ProcessingTime: processingTime,
	}
}
