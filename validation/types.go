package validation

import (
	"github.com/cloudx-io/draftauction/core"
)

// LedgerValidationInput contains everything needed to audit a published ledger
type LedgerValidationInput struct {
	Ledger     core.Ledger         // Entries in published settlement order
	Params     core.Params         // Budget and cap the run claims to have used
	Results    *core.AuctionResult // nil = skip the results table check
	LedgerHash string              // "" = skip the hash check
}

// LedgerValidationResult contains the outcome of every ledger check
type LedgerValidationResult struct {
	NormalizationValid bool
	CapValid           bool
	ExclusivityValid   bool
	OrderValid         bool
	ReplayValid        bool
	ResultsValid       bool
	HashValid          bool
	ValidationDetails  []string
}

// IsValid returns true if all ledger checks passed
func (r *LedgerValidationResult) IsValid() bool {
	return r.NormalizationValid &&
		r.CapValid &&
		r.ExclusivityValid &&
		r.OrderValid &&
		r.ReplayValid &&
		r.ResultsValid &&
		r.HashValid
}
