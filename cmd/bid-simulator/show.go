package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cloudx-io/draftauction/core"
	"github.com/cloudx-io/draftauction/ledgerio"
	"github.com/cloudx-io/draftauction/store"
)

type showOptions struct {
	ledger string
	limit  int
}

func newShowCmd(v *viper.Viper) *cobra.Command {
	opts := &showOptions{}
	cmd := &cobra.Command{
		Use:   "show [RUN_ID]",
		Short: "Show archived runs",
		Long: `Without arguments, list the most recent archived runs. With a run ID, print
that run's parameters, ledger hash and results, recomputed from the stored ledger.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(v)
			if err != nil {
				return err
			}
			if s.Archive == "" {
				return errors.New("no archive configured (use --archive or BIDSIM_ARCHIVE)")
			}
			if len(args) == 0 {
				return runList(cmd.Context(), cmd.OutOrStdout(), s.Archive, opts.limit)
			}
			return runShow(cmd.Context(), cmd.OutOrStdout(), s.Archive, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ledger, "ledger", "l", "", "write the archived ledger CSV to this path")
	cmd.Flags().IntVar(&opts.limit, "limit", 20, "number of runs to list")
	return cmd
}

func runShow(ctx context.Context, out io.Writer, archivePath, rawID string, opts *showOptions) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid run ID %q: %w", rawID, err)
	}

	runStore, err := store.Open(archivePath)
	if err != nil {
		return err
	}
	defer runStore.Close()

	run, err := runStore.LoadRun(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Run ID:      %s\n", run.ID)
	if run.AuctionID != "" {
		fmt.Fprintf(out, "Auction:     %s\n", run.AuctionID)
	}
	fmt.Fprintf(out, "Created:     %s\n", run.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "Budget:      %.2f\n", run.Params.Budget)
	fmt.Fprintf(out, "Max wins:    %d\n", run.Params.MaxWinsPerTeam)
	fmt.Fprintf(out, "Ledger hash: %s\n", run.LedgerHash)
	if computed := core.ComputeLedgerHash(run.Ledger); computed != run.LedgerHash {
		fmt.Fprintf(out, "WARNING: stored ledger hashes to %s\n", computed)
	}
	fmt.Fprintln(out)
	printResults(out, run.Result())

	if opts.ledger != "" {
		return createFile(opts.ledger, func(f *os.File) error { return ledgerio.WriteLedgerCSV(f, run.Ledger) })
	}
	return nil
}

func runList(ctx context.Context, out io.Writer, archivePath string, limit int) error {
	runStore, err := store.Open(archivePath)
	if err != nil {
		return err
	}
	defer runStore.Close()

	summaries, err := runStore.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Fprintln(out, "No archived runs")
		return nil
	}
	for _, summary := range summaries {
		fmt.Fprintf(out, "%s  %s  %-16s %d teams, %d bids\n",
			summary.ID, summary.CreatedAt.Format("2006-01-02 15:04:05"), summary.AuctionID, summary.TeamCount, summary.EntryCount)
	}
	return nil
}
