package core

// DefaultBudget is the total every team's bids are rescaled to.
const DefaultBudget = 200.0

// DefaultMaxWinsPerTeam is the acquisition cap used when none is configured.
const DefaultMaxWinsPerTeam = 3

// RawBid is one line of a team submission before normalization.
type RawBid struct {
	Item   string  `json:"item"`
	Weight float64 `json:"weight"`
}

// TeamSubmission is one team's full list of bids for a single auction round.
// Weights are relative; only their proportions matter after normalization.
type TeamSubmission struct {
	Team string   `json:"team"`
	Bids []RawBid `json:"bids"`
}

// BidEntry is the atomic unit of clearing: one (team, item) pair with its
// normalized amount, tie-break draw and resolved outcome.
type BidEntry struct {
	Item   string  `json:"item" cbor:"1,keyasint"`
	Team   string  `json:"team" cbor:"2,keyasint"`
	Amount float64 `json:"amount" cbor:"3,keyasint"`
	Draw   float64 `json:"draw" cbor:"4,keyasint"`
	Won    bool    `json:"won" cbor:"5,keyasint"`
}

// Ledger is the complete set of bid entries of one run, in settlement order.
type Ledger []BidEntry

// TeamResult lists the items one team won, sorted ascending.
type TeamResult struct {
	Team     string   `json:"team"`
	ItemsWon []string `json:"items_won"`
}

// AuctionResult contains one TeamResult per submitted team, in submission order.
// Teams that won nothing are present with an empty list.
type AuctionResult struct {
	Teams []TeamResult `json:"teams"`
}

// ItemsWonBy returns the items won by team, or nil if the team is unknown.
func (r *AuctionResult) ItemsWonBy(team string) []string {
	if r == nil {
		return nil
	}
	for _, tr := range r.Teams {
		if tr.Team == team {
			return tr.ItemsWon
		}
	}
	return nil
}

// TotalWins returns the number of items awarded across all teams.
func (r *AuctionResult) TotalWins() int {
	if r == nil {
		return 0
	}
	total := 0
	for _, tr := range r.Teams {
		total += len(tr.ItemsWon)
	}
	return total
}

// Params is the configuration surface of a clearing run.
type Params struct {
	// Budget is the total amount each team's bids are rescaled to
	Budget float64 `json:"budget"`

	// MaxWinsPerTeam is the maximum number of items one team may win
	MaxWinsPerTeam int `json:"max_wins_per_team"`
}

// DefaultParams returns the parameters of the reference draft: a 200 budget and
// at most three wins per team.
func DefaultParams() Params {
	return Params{
		Budget:         DefaultBudget,
		MaxWinsPerTeam: DefaultMaxWinsPerTeam,
	}
}
