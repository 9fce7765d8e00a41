package core

import (
	"errors"
	"fmt"
)

// ErrInvalidParams is returned when the budget is not a positive finite number
// or the acquisition cap is negative.
var ErrInvalidParams = errors.New("invalid auction parameters")

// InvalidSubmissionError reports a submission that cannot be normalized.
type InvalidSubmissionError struct {
	Team   string
	Reason string
}

func (e *InvalidSubmissionError) Error() string {
	return fmt.Sprintf("invalid submission for team %q: %s", e.Team, e.Reason)
}

// DuplicateBidError reports a team bidding more than once on the same item.
type DuplicateBidError struct {
	Team string
	Item string
}

func (e *DuplicateBidError) Error() string {
	return fmt.Sprintf("team %q bid more than once on item %q", e.Team, e.Item)
}
