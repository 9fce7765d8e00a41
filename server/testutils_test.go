package main

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cloudx-io/draftauction/auctionapi"
	"github.com/cloudx-io/draftauction/store"
)

// recordingArchive keeps saved runs in memory
type recordingArchive struct {
	mu   sync.Mutex
	runs []*store.Run
	err  error
}

func (a *recordingArchive) SaveRun(_ context.Context, run *store.Run) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.runs = append(a.runs, run)
	return nil
}

var errArchiveDown = errors.New("archive down")

func testConfig() Config {
	return Config{
		Network:         NetworkTCP,
		Addr:            "127.0.0.1:0",
		MaxWorkers:      4,
		ReadTimeout:     5 * time.Second,
		MaxIterations:   1000,
		MaxRequestBytes: 1 << 20,
	}
}

func createTestSimulationRequest(t *testing.T) auctionapi.SimulationRequest {
	t.Helper()
	return auctionapi.SimulationRequest{
		Type:      auctionapi.TypeSimulationRequest,
		AuctionID: "test_draft",
		Submissions: []auctionapi.Submission{
			{TeamName: "Team 1", Bids: []auctionapi.BidLine{
				{Name: "Pedro Severino", Amount: 4},
				{Name: "Ryan Buchter", Amount: 1},
			}},
			{TeamName: "Team 2", Bids: []auctionapi.BidLine{
				{Name: "Pedro Severino", Amount: 1},
				{Name: "Akeel Morris", Amount: 1},
			}},
		},
		Timestamp: time.Now(),
	}
}
