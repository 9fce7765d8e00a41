package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloudx-io/draftauction/auctionapi"
	"github.com/cloudx-io/draftauction/core"
	"github.com/cloudx-io/draftauction/ledgerio"
	"github.com/cloudx-io/draftauction/validation"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run parses args, validates the ledger and returns the process exit code:
// 0 valid, 1 invalid, 2 invalid input or runtime error.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("ledger-validator", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		ledgerPath   = fs.String("ledger", "", "Ledger CSV (Bid Amount($), Team Name, Player Name, Rand, Won?)")
		snapshot     = fs.String("snapshot", "", "Ledger snapshot (file path or inline base64url string)")
		resultsPath  = fs.String("results", "", "Results table as CSV or .xlsx workbook (optional)")
		budget       = fs.Float64("budget", core.DefaultBudget, "Budget every team was normalized to")
		maxWins      = fs.Int("max-wins", core.DefaultMaxWinsPerTeam, "Maximum items per team")
		ledgerHash   = fs.String("ledger-hash", "", "Published ledger hash (optional)")
		outputFormat = fs.String("format", "text", "Output format: text or json")
		help         = fs.Bool("help", false, "Show usage information")
	)

	if err := fs.Parse(args); err != nil {
		return 2
	}

	// Show help
	if *help {
		showUsage(stdout)
		return 0
	}

	// Exactly one ledger source is required
	if (*ledgerPath == "") == (*snapshot == "") {
		showUsage(stderr)
		fmt.Fprintf(stderr, "\nError: exactly one of --ledger or --snapshot is required\n")
		return 2
	}

	ledger, err := readLedger(*ledgerPath, *snapshot)
	if err != nil {
		fmt.Fprintf(stderr, "Error reading ledger: %v\n", err)
		return 2
	}

	var results *core.AuctionResult
	if *resultsPath != "" {
		results, err = readResults(*resultsPath)
		if err != nil {
			fmt.Fprintf(stderr, "Error reading results: %v\n", err)
			return 2
		}
	}

	// Validate using library
	result, err := validation.ValidateLedger(&validation.LedgerValidationInput{
		Ledger:     ledger,
		Params:     core.Params{Budget: *budget, MaxWinsPerTeam: *maxWins},
		Results:    results,
		LedgerHash: strings.TrimSpace(*ledgerHash),
	})
	if err != nil {
		fmt.Fprintf(stderr, "Validation error: %v\n", err)
		return 2
	}

	// Output results
	if *outputFormat == "json" {
		if err := outputJSON(stdout, result); err != nil {
			fmt.Fprintf(stderr, "Error marshaling JSON: %v\n", err)
			return 2
		}
	} else {
		outputText(stdout, result)
	}

	// Exit with appropriate code
	if !result.IsValid() {
		return 1
	}
	return 0
}

func showUsage(w io.Writer) {
	fmt.Fprintln(w, "Draft Auction Ledger Validator")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Audits a published bidding ledger: normalization, per-team cap, exclusive awards,")
	fmt.Fprintln(w, "settlement order and a greedy replay of every outcome.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  ledger-validator (--ledger <csv> | --snapshot <snapshot>) [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ledger Source (one required):")
	fmt.Fprintln(w, "  --ledger <path>                   Bidding ledger CSV")
	fmt.Fprintln(w, "  --snapshot <path|string>          Ledger snapshot from a simulation response")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Optional Flags:")
	fmt.Fprintln(w, "  --results <path>                  Results table (.csv or .xlsx) to check against the ledger")
	fmt.Fprintln(w, "  --budget <amount>                 Normalization budget (default: 200)")
	fmt.Fprintln(w, "  --max-wins <n>                    Maximum items per team (default: 3)")
	fmt.Fprintln(w, "  --ledger-hash <hex>               Published SHA-256 ledger hash")
	fmt.Fprintln(w, "  --format <text|json>              Output format (default: text)")
	fmt.Fprintln(w, "  --help                            Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  ledger-validator --ledger bidding.csv --results results.csv")
	fmt.Fprintln(w, "  ledger-validator --snapshot run.snapshot --ledger-hash 3f1c... --format json")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit Codes:")
	fmt.Fprintln(w, "  0 - Validation passed")
	fmt.Fprintln(w, "  1 - Validation failed")
	fmt.Fprintln(w, "  2 - Invalid input or runtime error")
}

func readLedger(ledgerPath, snapshot string) (core.Ledger, error) {
	if ledgerPath != "" {
		f, err := os.Open(ledgerPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ledgerio.ReadLedgerCSV(f)
	}

	// Try reading the snapshot as a file first
	if data, err := os.ReadFile(snapshot); err == nil {
		snapshot = string(data)
	}
	return auctionapi.LedgerSnapshot(strings.TrimSpace(snapshot)).Decode()
}

func readResults(path string) (*core.AuctionResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ledgerio.ReadWorkbookResults(f)
	}
	return ledgerio.ReadResultsCSV(f)
}

func outputText(w io.Writer, result *validation.LedgerValidationResult) {
	fmt.Fprintln(w, "Draft Auction Ledger Validator")
	fmt.Fprintln(w, "==============================")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Summary:")
	fmt.Fprintf(w, "  Normalization Valid:     %v\n", result.NormalizationValid)
	fmt.Fprintf(w, "  Cap Valid:               %v\n", result.CapValid)
	fmt.Fprintf(w, "  Exclusivity Valid:       %v\n", result.ExclusivityValid)
	fmt.Fprintf(w, "  Order Valid:             %v\n", result.OrderValid)
	fmt.Fprintf(w, "  Replay Valid:            %v\n", result.ReplayValid)
	fmt.Fprintf(w, "  Results Valid:           %v\n", result.ResultsValid)
	fmt.Fprintf(w, "  Hash Valid:              %v\n", result.HashValid)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Details:")
	for _, detail := range result.ValidationDetails {
		fmt.Fprintf(w, "  - %s\n", detail)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "==============================")
	if result.IsValid() {
		fmt.Fprintln(w, "VALIDATION: ✓ PASSED")
		fmt.Fprintln(w, "Exit Code: 0")
	} else {
		fmt.Fprintln(w, "VALIDATION: ✗ FAILED")
		fmt.Fprintln(w, "Exit Code: 1")
	}
}

func outputJSON(w io.Writer, result *validation.LedgerValidationResult) error {
	output := map[string]any{
		"valid":               result.IsValid(),
		"normalization_valid": result.NormalizationValid,
		"cap_valid":           result.CapValid,
		"exclusivity_valid":   result.ExclusivityValid,
		"order_valid":         result.OrderValid,
		"replay_valid":        result.ReplayValid,
		"results_valid":       result.ResultsValid,
		"hash_valid":          result.HashValid,
		"details":             result.ValidationDetails,
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(data))
	return nil
}
