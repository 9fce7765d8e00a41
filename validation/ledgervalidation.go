// Package validation audits a published clearing ledger without access to the
// random source that produced it.
package validation

import (
	"errors"
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/cloudx-io/draftauction/core"
)

// ValidateLedger audits a published ledger and verifies:
// - Every team's amounts sum to the budget
// - No team won more than the cap
// - No item has more than one winner
// - Entries are in settlement order
// - Replaying the greedy clearing reproduces every won flag
// - The results table matches the ledger (when supplied)
// - The ledger hash matches (when supplied)
//
// Returns:
//   - LedgerValidationResult with detailed results (call result.IsValid() to check overall status)
//   - error if validation cannot be performed (nil input or invalid params)
func ValidateLedger(input *LedgerValidationInput) (*LedgerValidationResult, error) {
	if input == nil {
		return nil, errors.New("validation input is required")
	}
	if err := core.ValidateParams(input.Params); err != nil {
		return nil, err
	}

	result := &LedgerValidationResult{}
	result.NormalizationValid = validateNormalization(input, result)
	result.CapValid = validateCap(input, result)
	result.ExclusivityValid = validateExclusivity(input, result)
	result.OrderValid = validateOrder(input, result)
	result.ReplayValid = validateReplay(input, result)
	result.ResultsValid = validateResults(input, result)
	result.HashValid = validateHash(input, result)

	return result, nil
}

func validateNormalization(input *LedgerValidationInput, result *LedgerValidationResult) bool {
	totals := core.TeamTotals(input.Ledger)
	valid := true

	teams := lo.Keys(totals)
	slices.Sort(teams)
	for _, team := range teams {
		if !core.AmountsEqual(totals[team], input.Params.Budget) {
			result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Normalization mismatch: %s bids total %.6f, budget is %.6f", team, totals[team], input.Params.Budget))
			valid = false
		}
	}
	for i, entry := range input.Ledger {
		if entry.Amount < 0 {
			result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Normalization mismatch: entry %d (%s, %s) has negative amount %.6f", i, entry.Team, entry.Item, entry.Amount))
			valid = false
		}
	}

	if valid {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Normalization validation passed: %d teams sum to %.6f", len(teams), input.Params.Budget))
	}
	return valid
}

func validateCap(input *LedgerValidationInput, result *LedgerValidationResult) bool {
	wins := lo.CountValuesBy(
		lo.Filter(input.Ledger, func(entry core.BidEntry, _ int) bool { return entry.Won }),
		func(entry core.BidEntry) string { return entry.Team },
	)
	valid := true

	teams := lo.Keys(wins)
	slices.Sort(teams)
	for _, team := range teams {
		if wins[team] > input.Params.MaxWinsPerTeam {
			result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Cap exceeded: %s won %d items, cap is %d", team, wins[team], input.Params.MaxWinsPerTeam))
			valid = false
		}
	}

	if valid {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Cap validation passed: no team won more than %d items", input.Params.MaxWinsPerTeam))
	}
	return valid
}

func validateExclusivity(input *LedgerValidationInput, result *LedgerValidationResult) bool {
	winners := make(map[string]string)
	valid := true

	for _, entry := range input.Ledger {
		if !entry.Won {
			continue
		}
		if previous, ok := winners[entry.Item]; ok {
			result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Exclusivity violated: %s won by both %s and %s", entry.Item, previous, entry.Team))
			valid = false
			continue
		}
		winners[entry.Item] = entry.Team
	}

	if valid {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Exclusivity validation passed: %d items awarded once each", len(winners)))
	}
	return valid
}

func validateOrder(input *LedgerValidationInput, result *LedgerValidationResult) bool {
	for i := 1; i < len(input.Ledger); i++ {
		if core.SettlesBefore(input.Ledger[i], input.Ledger[i-1]) {
			result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Settlement order violated at entry %d: (%.6f, %.6f) ranks above (%.6f, %.6f)",
				i, input.Ledger[i].Amount, input.Ledger[i].Draw, input.Ledger[i-1].Amount, input.Ledger[i-1].Draw))
			return false
		}
	}

	result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Order validation passed: %d entries sorted by amount then draw", len(input.Ledger)))
	return true
}

func validateReplay(input *LedgerValidationInput, result *LedgerValidationResult) bool {
	replayed := core.ClearBids(input.Ledger, input.Params.MaxWinsPerTeam)
	valid := true

	for i := range replayed {
		if replayed[i].Won != input.Ledger[i].Won {
			result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Replay mismatch at entry %d (%s, %s): ledger has won=%v, replay gives won=%v",
				i, input.Ledger[i].Team, input.Ledger[i].Item, input.Ledger[i].Won, replayed[i].Won))
			valid = false
		}
	}

	if valid {
		result.ValidationDetails = append(result.ValidationDetails, "Replay validation passed: greedy clearing reproduces every outcome")
	}
	return valid
}

func validateResults(input *LedgerValidationInput, result *LedgerValidationResult) bool {
	if input.Results == nil {
		result.ValidationDetails = append(result.ValidationDetails, "Results validation skipped: no results table supplied")
		return true
	}

	teams := lo.Map(input.Results.Teams, func(tr core.TeamResult, _ int) string { return tr.Team })
	expected := core.Summarize(teams, input.Ledger)
	valid := true

	if len(expected.Teams) != len(input.Results.Teams) {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Results mismatch: ledger has winners for %d teams missing from the results table", len(expected.Teams)-len(input.Results.Teams)))
		valid = false
	}
	for i, tr := range input.Results.Teams {
		items := slices.Clone(tr.ItemsWon)
		slices.Sort(items)
		if !slices.Equal(items, expected.Teams[i].ItemsWon) {
			result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Results mismatch for %s: table has %v, ledger gives %v", tr.Team, tr.ItemsWon, expected.Teams[i].ItemsWon))
			valid = false
		}
	}

	if valid {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Results validation passed: %d teams match the ledger", len(input.Results.Teams)))
	}
	return valid
}

func validateHash(input *LedgerValidationInput, result *LedgerValidationResult) bool {
	if input.LedgerHash == "" {
		result.ValidationDetails = append(result.ValidationDetails, "Hash validation skipped: no ledger hash supplied")
		return true
	}

	computedHash := core.ComputeLedgerHash(input.Ledger)
	if computedHash == input.LedgerHash {
		result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Ledger hash validation passed: %s", computedHash))
		return true
	}

	result.ValidationDetails = append(result.ValidationDetails, fmt.Sprintf("Ledger hash mismatch: computed %s, expected %s", computedHash, input.LedgerHash))
	return false
}
