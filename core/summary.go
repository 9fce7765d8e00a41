package core

import (
	"slices"

	"github.com/samber/lo"
)

// Summarize projects a resolved ledger onto one TeamResult per team, in the given
// team order. Won items are sorted ascending so the result does not depend on
// resolution order. Winners missing from teams are appended in name order.
func Summarize(teams []string, ledger Ledger) *AuctionResult {
	wonByTeam := lo.GroupBy(
		lo.Filter(ledger, func(entry BidEntry, _ int) bool { return entry.Won }),
		func(entry BidEntry) string { return entry.Team },
	)

	order := slices.Clone(teams)
	extra := lo.Without(lo.Keys(wonByTeam), teams...)
	slices.Sort(extra)
	order = append(order, extra...)

	result := &AuctionResult{
		Teams: make([]TeamResult, 0, len(order)),
	}
	for _, team := range order {
		items := lo.Map(wonByTeam[team], func(entry BidEntry, _ int) string { return entry.Item })
		slices.Sort(items)
		result.Teams = append(result.Teams, TeamResult{
			Team:     team,
			ItemsWon: items,
		})
	}

	return result
}

// TeamNames returns the team identifiers of submissions in submission order.
func TeamNames(submissions []TeamSubmission) []string {
	return lo.Map(submissions, func(sub TeamSubmission, _ int) string { return sub.Team })
}
