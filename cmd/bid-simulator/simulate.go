package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cloudx-io/draftauction/auctionapi"
	"github.com/cloudx-io/draftauction/core"
	"github.com/cloudx-io/draftauction/ledgerio"
	"github.com/cloudx-io/draftauction/store"
)

type simulateOptions struct {
	inputs    submissionFlags
	auctionID string
	results   string
	ledger    string
	workbook  string
	snapshot  string
}

func newSimulateCmd(v *viper.Viper) *cobra.Command {
	opts := &simulateOptions{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Clear one sealed-bid round",
		Long: `Clear one sealed-bid round and print the players each team won.

Optionally writes the results table, the full bidding ledger, an xlsx
workbook with both, and a compact ledger snapshot. With --archive the run is
also stored and can be shown later by its run ID.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSettings(v)
			if err != nil {
				return err
			}
			return runSimulate(cmd.Context(), cmd.OutOrStdout(), s, opts)
		},
	}

	opts.inputs.register(cmd)
	cmd.Flags().StringVar(&opts.auctionID, "auction-id", "", "label stored with the archived run")
	cmd.Flags().StringVarP(&opts.results, "results", "r", "", "write the results table CSV to this path")
	cmd.Flags().StringVarP(&opts.ledger, "ledger", "l", "", "write the bidding ledger CSV to this path")
	cmd.Flags().StringVar(&opts.workbook, "workbook", "", "write an xlsx workbook with Results and Bidding sheets")
	cmd.Flags().StringVar(&opts.snapshot, "snapshot", "", "write the ledger snapshot to this path")
	return cmd
}

func runSimulate(ctx context.Context, out io.Writer, s settings, opts *simulateOptions) error {
	submissions, err := opts.inputs.load()
	if err != nil {
		return err
	}
	log.Debug().Msgf("Loaded %d submissions", len(submissions))

	result, ledger, err := core.Simulate(submissions, s.Params, nil)
	if err != nil {
		return err
	}

	run := &store.Run{
		ID:         uuid.New(),
		AuctionID:  opts.auctionID,
		Params:     s.Params,
		Teams:      core.TeamNames(submissions),
		Ledger:     ledger,
		LedgerHash: core.ComputeLedgerHash(ledger),
	}

	if err := writeSimulationOutputs(result, ledger, opts); err != nil {
		return err
	}

	if s.Archive != "" {
		if err := archiveRun(ctx, s.Archive, run); err != nil {
			return err
		}
		log.Info().Msgf("Archived run %s to %s", run.ID, s.Archive)
	}

	printResults(out, result)
	fmt.Fprintf(out, "\nRun ID:      %s\n", run.ID)
	fmt.Fprintf(out, "Ledger hash: %s\n", run.LedgerHash)
	return nil
}

func writeSimulationOutputs(result *core.AuctionResult, ledger core.Ledger, opts *simulateOptions) error {
	if opts.results != "" {
		if err := createFile(opts.results, func(f *os.File) error { return ledgerio.WriteResultsCSV(f, result) }); err != nil {
			return err
		}
	}
	if opts.ledger != "" {
		if err := createFile(opts.ledger, func(f *os.File) error { return ledgerio.WriteLedgerCSV(f, ledger) }); err != nil {
			return err
		}
	}
	if opts.workbook != "" {
		if err := createFile(opts.workbook, func(f *os.File) error { return ledgerio.WriteWorkbook(f, result, ledger) }); err != nil {
			return err
		}
	}
	if opts.snapshot != "" {
		snapshot, err := auctionapi.EncodeLedgerSnapshot(ledger)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.snapshot, []byte(snapshot.String()+"\n"), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func archiveRun(ctx context.Context, path string, run *store.Run) error {
	runStore, err := store.Open(path)
	if err != nil {
		return err
	}
	defer runStore.Close()
	return runStore.SaveRun(ctx, run)
}

func printResults(out io.Writer, result *core.AuctionResult) {
	fmt.Fprintln(out, "RESULTS")
	fmt.Fprintln(out, strings.Repeat("─", 50))
	for _, tr := range result.Teams {
		players := "(none)"
		if len(tr.ItemsWon) > 0 {
			players = strings.Join(tr.ItemsWon, ledgerio.PlayersWonSeparator)
		}
		fmt.Fprintf(out, "%-20s %s\n", tr.Team, players)
	}
}
