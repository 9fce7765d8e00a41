package core

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ValidateParams checks the configuration of a clearing run.
func ValidateParams(params Params) error {
	if math.IsNaN(params.Budget) || math.IsInf(params.Budget, 0) || params.Budget <= 0 {
		return fmt.Errorf("%w: budget must be positive, got %v", ErrInvalidParams, params.Budget)
	}
	if params.MaxWinsPerTeam < 0 {
		return fmt.Errorf("%w: max wins per team must be non-negative, got %d", ErrInvalidParams, params.MaxWinsPerTeam)
	}
	return nil
}

// ValidateSubmissions checks every submission before any clearing starts.
// Team names must be non-empty and unique, item identifiers non-empty and
// unique within a team, weights finite and non-negative, and each team's total
// weight positive. A submission without any bids is valid.
func ValidateSubmissions(submissions []TeamSubmission) error {
	seenTeams := make(map[string]bool, len(submissions))

	for _, sub := range submissions {
		if strings.TrimSpace(sub.Team) == "" {
			return &InvalidSubmissionError{Team: sub.Team, Reason: "team name is empty"}
		}
		if seenTeams[sub.Team] {
			return &InvalidSubmissionError{Team: sub.Team, Reason: "team submitted more than once"}
		}
		seenTeams[sub.Team] = true

		if err := validateSubmission(sub); err != nil {
			return err
		}
	}

	return nil
}

func validateSubmission(sub TeamSubmission) error {
	if len(sub.Bids) == 0 {
		return nil
	}

	seenItems := make(map[string]bool, len(sub.Bids))

	for _, bid := range sub.Bids {
		if bid.Item == "" {
			return &InvalidSubmissionError{Team: sub.Team, Reason: "item identifier is empty"}
		}
		if seenItems[bid.Item] {
			return &DuplicateBidError{Team: sub.Team, Item: bid.Item}
		}
		seenItems[bid.Item] = true

		if math.IsNaN(bid.Weight) || math.IsInf(bid.Weight, 0) {
			return &InvalidSubmissionError{Team: sub.Team, Reason: fmt.Sprintf("weight for %q is not a finite number", bid.Item)}
		}
		if bid.Weight < 0 {
			return &InvalidSubmissionError{Team: sub.Team, Reason: fmt.Sprintf("weight for %q is negative (%v)", bid.Item, bid.Weight)}
		}
	}

	// Summed in decimal so large finite weights cannot overflow the total
	if total := totalWeight(sub.Bids); !total.IsPositive() {
		return &InvalidSubmissionError{Team: sub.Team, Reason: fmt.Sprintf("total weight must be positive, got %s", total)}
	}

	return nil
}

// NormalizeSubmission rescales a team's weights so they sum to budget and returns
// one unresolved BidEntry per bid, in submission order. Draws are left at zero.
func NormalizeSubmission(sub TeamSubmission, budget float64) ([]BidEntry, error) {
	if err := ValidateParams(Params{Budget: budget}); err != nil {
		return nil, err
	}
	if err := validateSubmission(sub); err != nil {
		return nil, err
	}

	entries := make([]BidEntry, len(sub.Bids))
	if len(sub.Bids) == 0 {
		return entries, nil
	}

	// Use decimal arithmetic so proportional submissions normalize to identical amounts
	totalDecimal := totalWeight(sub.Bids)
	budgetDecimal := decimal.NewFromFloat(budget)

	for i, bid := range sub.Bids {
		amountDecimal := divSignificant(decimal.NewFromFloat(bid.Weight).Mul(budgetDecimal), totalDecimal)

		amount, _ := amountDecimal.Float64()
		entries[i] = BidEntry{
			Item:   bid.Item,
			Team:   sub.Team,
			Amount: amount,
		}
	}

	return entries, nil
}

// amountSignificantDigits exceeds float64 precision so the final Float64
// conversion is the only rounding that matters.
const amountSignificantDigits = 24

func totalWeight(bids []RawBid) decimal.Decimal {
	total := decimal.Zero
	for _, bid := range bids {
		total = total.Add(decimal.NewFromFloat(bid.Weight))
	}
	return total
}

// divSignificant divides keeping amountSignificantDigits significant digits
// whatever the magnitude of the quotient. A fixed number of decimal places
// would round tiny amounts to zero and turn distinct bids into ties.
func divSignificant(numerator, denominator decimal.Decimal) decimal.Decimal {
	magnitude := int32(numerator.NumDigits()) + numerator.Exponent() -
		int32(denominator.NumDigits()) - denominator.Exponent()
	places := max(amountSignificantDigits-magnitude, int32(decimal.DivisionPrecision))
	return numerator.DivRound(denominator, places)
}
