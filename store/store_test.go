package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"github.com/cloudx-io/draftauction/core"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	assert.Nil(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleRun() *Run {
	ledger := core.Ledger{
		{Item: "Pedro Severino", Team: "Team 1", Amount: 44.44444444444444, Draw: 0.8123456789, Won: true},
		{Item: "Ryan Buchter", Team: "Team 2", Amount: 40, Draw: 0.25, Won: true},
		{Item: "Pedro Severino", Team: "Team 2", Amount: 20, Draw: 0.5, Won: false},
	}
	return &Run{
		AuctionID: "draft-2026",
		Params:    core.DefaultParams(),
		Teams:     []string{"Team 1", "Team 2", "Team 3"},
		Ledger:    ledger,
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSaveAndLoadRun(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	run := sampleRun()
	assert.Nil(t, s.SaveRun(ctx, run))
	check.True(t, run.ID != uuid.Nil)
	check.Equal(t, core.ComputeLedgerHash(run.Ledger), run.LedgerHash)

	loaded, err := s.LoadRun(ctx, run.ID)
	assert.Nil(t, err)
	check.Equal(t, run, loaded)

	check.Equal(t, &core.AuctionResult{Teams: []core.TeamResult{
		{Team: "Team 1", ItemsWon: []string{"Pedro Severino"}},
		{Team: "Team 2", ItemsWon: []string{"Ryan Buchter"}},
		{Team: "Team 3", ItemsWon: []string{}},
	}}, loaded.Result())
	check.Equal(t, loaded.LedgerHash, core.ComputeLedgerHash(loaded.Ledger))
}

func TestSaveRun_KeepsProvidedIDAndHash(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	run := sampleRun()
	run.ID = uuid.MustParse("9b2f8f3e-3f0c-4d59-8f0e-2a4a1c1b7e10")
	run.LedgerHash = "published-hash"
	assert.Nil(t, s.SaveRun(ctx, run))

	loaded, err := s.LoadRun(ctx, run.ID)
	assert.Nil(t, err)
	check.Equal(t, "published-hash", loaded.LedgerHash)

	err = s.SaveRun(ctx, run)
	check.True(t, errors.Is(err, ErrRunExists))
}

func TestSaveRun_EmptyLedger(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	run := &Run{Params: core.DefaultParams(), Teams: []string{"Team 1"}}
	assert.Nil(t, s.SaveRun(ctx, run))

	loaded, err := s.LoadRun(ctx, run.ID)
	assert.Nil(t, err)
	check.Equal(t, 0, len(loaded.Ledger))
	check.Equal(t, []string{"Team 1"}, loaded.Teams)
	check.Equal(t, 0, loaded.Result().TotalWins())
}

func TestLoadRun_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.LoadRun(context.Background(), uuid.New())
	check.True(t, errors.Is(err, ErrRunNotFound))
}

func TestListRuns(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	older := sampleRun()
	newer := sampleRun()
	newer.AuctionID = "draft-2027"
	newer.CreatedAt = older.CreatedAt.Add(time.Hour)
	assert.Nil(t, s.SaveRun(ctx, older))
	assert.Nil(t, s.SaveRun(ctx, newer))

	summaries, err := s.ListRuns(ctx, 10)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(summaries))
	check.Equal(t, newer.ID, summaries[0].ID)
	check.Equal(t, "draft-2027", summaries[0].AuctionID)
	check.Equal(t, 3, summaries[0].TeamCount)
	check.Equal(t, 3, summaries[0].EntryCount)
	check.Equal(t, core.DefaultParams(), summaries[0].Params)
	check.Equal(t, older.ID, summaries[1].ID)

	limited, err := s.ListRuns(ctx, 1)
	assert.Nil(t, err)
	check.Equal(t, 1, len(limited))

	_, err = s.ListRuns(ctx, 0)
	check.NotNil(t, err)
}

func TestOpen_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")

	s, err := Open(path)
	assert.Nil(t, err)
	run := sampleRun()
	assert.Nil(t, s.SaveRun(ctx, run))
	assert.Nil(t, s.Close())

	// Migrations already applied must not run again
	reopened, err := Open(path)
	assert.Nil(t, err)
	defer reopened.Close()

	loaded, err := reopened.LoadRun(ctx, run.ID)
	assert.Nil(t, err)
	check.Equal(t, run.LedgerHash, loaded.LedgerHash)
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("  ")
	check.NotNil(t, err)
}

func TestNilStore(t *testing.T) {
	var s *Store
	check.Nil(t, s.Close())
	_, err := s.LoadRun(context.Background(), uuid.New())
	check.NotNil(t, err)
}
