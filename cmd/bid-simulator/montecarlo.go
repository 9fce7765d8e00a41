package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cloudx-io/draftauction/montecarlo"
)

type monteCarloOptions struct {
	inputs     submissionFlags
	iterations int
	workers    int
	seed       uint64
	seedSet    bool
	confidence float64
	json       bool
}

func newMonteCarloCmd(v *viper.Viper) *cobra.Command {
	opts := &monteCarloOptions{}
	cmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "Repeat a round many times and report win statistics",
		Long: `Repeat the same sealed-bid round with fresh tie-break draws and report,
per team, the mean and spread of players won and how often each player was won.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSettings(v)
			if err != nil {
				return err
			}
			opts.seedSet = cmd.Flags().Changed("seed")
			return runMonteCarlo(cmd.Context(), cmd.OutOrStdout(), s, opts)
		},
	}

	opts.inputs.register(cmd)
	cmd.Flags().IntVarP(&opts.iterations, "iterations", "n", 1000, "number of repeated rounds")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "concurrent rounds (0 = number of CPUs)")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "seed for reproducible draws")
	cmd.Flags().Float64Var(&opts.confidence, "confidence", montecarlo.DefaultConfidence, "confidence level in percent for the interval on mean wins")
	cmd.Flags().BoolVar(&opts.json, "json", false, "output the report as JSON")
	return cmd
}

func runMonteCarlo(ctx context.Context, out io.Writer, s settings, opts *monteCarloOptions) error {
	submissions, err := opts.inputs.load()
	if err != nil {
		return err
	}

	mcOpts := montecarlo.Options{
		Iterations: opts.iterations,
		Workers:    opts.workers,
		Confidence: opts.confidence,
	}
	if opts.seedSet {
		seed := opts.seed
		mcOpts.Seed = &seed
	}

	report, err := montecarlo.Run(ctx, submissions, s.Params, mcOpts)
	if err != nil {
		return err
	}

	if opts.json {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	printReport(out, report)
	return nil
}

func printReport(out io.Writer, report *montecarlo.Report) {
	fmt.Fprintf(out, "MONTE CARLO (%d iterations, budget %.2f, max %d wins)\n",
		report.Iterations, report.Params.Budget, report.Params.MaxWinsPerTeam)
	fmt.Fprintln(out, strings.Repeat("─", 50))
	for _, team := range report.Teams {
		fmt.Fprintf(out, "%s\n", team.Team)
		fmt.Fprintf(out, "  Wins: %.3f ± %.3f (%.0f%% CI), stdev %.3f, range %d-%d\n",
			team.MeanWins, team.ConfidenceHalfWidth, report.Confidence, team.StdevWins, team.MinWins, team.MaxWins)
		for _, rate := range team.ItemWinRates {
			fmt.Fprintf(out, "    %-24s %5.1f%%\n", rate.Item, rate.WinRate*100)
		}
	}
}
