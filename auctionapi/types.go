package auctionapi

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"fmt"
	"io"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/cloudx-io/draftauction/core"
	"github.com/cloudx-io/draftauction/montecarlo"
)

// Request and response type discriminators
const (
	TypePing               = "ping"
	TypePong               = "pong"
	TypeError              = "error"
	TypeSimulationRequest  = "simulation_request"
	TypeSimulationResponse = "simulation_response"
	TypeMonteCarloRequest  = "montecarlo_request"
	TypeMonteCarloResponse = "montecarlo_response"
)

// BidLine is one (player, weight) row of a submission on the wire
type BidLine struct {
	Name   string  `json:"name"`
	Amount float64 `json:"bid_amount"` // raw weight; rescaled to the budget by the engine
}

// Submission is one team's sealed bids as sent by a client
type Submission struct {
	TeamName string    `json:"team_name"`
	Bids     []BidLine `json:"bids"`
}

// SimulationRequest asks the server to clear one sealed-bid round
type SimulationRequest struct {
	Type           string       `json:"type"`
	AuctionID      string       `json:"auction_id"`
	Budget         float64      `json:"budget,omitempty"`            // 0 = core.DefaultBudget
	MaxWinsPerTeam *int         `json:"max_wins_per_team,omitempty"` // nil = core.DefaultMaxWinsPerTeam
	Submissions    []Submission `json:"submissions"`
	Timestamp      time.Time    `json:"timestamp"`
}

// TeamResultRow is one row of the results table
type TeamResultRow struct {
	TeamName   string   `json:"team_name"`
	PlayersWon []string `json:"players_won"`
}

// LedgerRow is one row of the bidding ledger, in settlement order
type LedgerRow struct {
	BidAmount  float64 `json:"bid_amount"`
	TeamName   string  `json:"team_name"`
	PlayerName string  `json:"player_name"`
	Rand       float64 `json:"rand"`
	Won        bool    `json:"won"`
}

// SimulationResponse is the outcome of a SimulationRequest
type SimulationResponse struct {
	Type           string          `json:"type"`
	Success        bool            `json:"success"`
	Message        string          `json:"message"`
	RunID          string          `json:"run_id,omitempty"`
	Params         *core.Params    `json:"params,omitempty"`
	Results        []TeamResultRow `json:"results,omitempty"`
	Ledger         []LedgerRow     `json:"ledger,omitempty"`
	LedgerHash     string          `json:"ledger_hash,omitempty"`
	LedgerSnapshot LedgerSnapshot  `json:"ledger_snapshot,omitempty"`
	ProcessingTime int64           `json:"processing_time_ms"`
}

// MonteCarloRequest asks the server to repeat a clearing run many times
type MonteCarloRequest struct {
	Type           string       `json:"type"`
	AuctionID      string       `json:"auction_id"`
	Budget         float64      `json:"budget,omitempty"`
	MaxWinsPerTeam *int         `json:"max_wins_per_team,omitempty"`
	Submissions    []Submission `json:"submissions"`
	Iterations     int          `json:"iterations"`
	Seed           *uint64      `json:"seed,omitempty"` // Optional: fixes all draws for a reproducible study
	Timestamp      time.Time    `json:"timestamp"`
}

// MonteCarloResponse is the outcome of a MonteCarloRequest
type MonteCarloResponse struct {
	Type           string             `json:"type"`
	Success        bool               `json:"success"`
	Message        string             `json:"message"`
	Report         *montecarlo.Report `json:"report,omitempty"`
	ProcessingTime int64              `json:"processing_time_ms"`
}

// ErrorResponse is returned for malformed or unknown requests
type ErrorResponse struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// PongResponse answers a ping
type PongResponse struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// Params resolves the request's auction parameters, filling in defaults for omitted fields
func (r *SimulationRequest) Params() core.Params {
	return resolveParams(r.Budget, r.MaxWinsPerTeam)
}

// Params resolves the request's auction parameters, filling in defaults for omitted fields
func (r *MonteCarloRequest) Params() core.Params {
	return resolveParams(r.Budget, r.MaxWinsPerTeam)
}

func resolveParams(budget float64, maxWins *int) core.Params {
	params := core.DefaultParams()
	if budget != 0 {
		params.Budget = budget
	}
	if maxWins != nil {
		params.MaxWinsPerTeam = *maxWins
	}
	return params
}

// ToCoreSubmissions converts wire submissions to engine submissions, preserving order
func ToCoreSubmissions(submissions []Submission) []core.TeamSubmission {
	result := make([]core.TeamSubmission, len(submissions))
	for i, sub := range submissions {
		bids := make([]core.RawBid, len(sub.Bids))
		for j, line := range sub.Bids {
			bids[j] = core.RawBid{Item: line.Name, Weight: line.Amount}
		}
		result[i] = core.TeamSubmission{Team: sub.TeamName, Bids: bids}
	}
	return result
}

// FromCoreSubmissions converts engine submissions to their wire form
func FromCoreSubmissions(submissions []core.TeamSubmission) []Submission {
	result := make([]Submission, len(submissions))
	for i, sub := range submissions {
		lines := make([]BidLine, len(sub.Bids))
		for j, bid := range sub.Bids {
			lines[j] = BidLine{Name: bid.Item, Amount: bid.Weight}
		}
		result[i] = Submission{TeamName: sub.Team, Bids: lines}
	}
	return result
}

// FromCoreResult converts an auction result into results table rows
func FromCoreResult(result *core.AuctionResult) []TeamResultRow {
	if result == nil {
		return nil
	}
	rows := make([]TeamResultRow, len(result.Teams))
	for i, tr := range result.Teams {
		rows[i] = TeamResultRow{TeamName: tr.Team, PlayersWon: tr.ItemsWon}
	}
	return rows
}

// FromCoreLedger converts a resolved ledger into ledger table rows
func FromCoreLedger(ledger core.Ledger) []LedgerRow {
	rows := make([]LedgerRow, len(ledger))
	for i, entry := range ledger {
		rows[i] = LedgerRow{
			BidAmount:  entry.Amount,
			TeamName:   entry.Team,
			PlayerName: entry.Item,
			Rand:       entry.Draw,
			Won:        entry.Won,
		}
	}
	return rows
}

// ToCoreLedger converts ledger table rows back into a ledger
func ToCoreLedger(rows []LedgerRow) core.Ledger {
	ledger := make(core.Ledger, len(rows))
	for i, row := range rows {
		ledger[i] = core.BidEntry{
			Item:   row.PlayerName,
			Team:   row.TeamName,
			Amount: row.BidAmount,
			Draw:   row.Rand,
			Won:    row.Won,
		}
	}
	return ledger
}

// LedgerSnapshot is a ledger encoded as CBOR, gzip-compressed and URL-safe base64 encoded
// (no padding), suitable for query parameters and compact JSON fields
type LedgerSnapshot string

// String returns the snapshot as a plain string
func (s LedgerSnapshot) String() string {
	return string(s)
}

// EncodeLedgerSnapshot encodes ledger as a LedgerSnapshot
func EncodeLedgerSnapshot(ledger core.Ledger) (LedgerSnapshot, error) {
	cborBytes, err := cbor.Marshal(ledger)
	if err != nil {
		return "", fmt.Errorf("failed to encode ledger as CBOR: %w", err)
	}

	var buf bytes.Buffer
	gzipWriter := gzip.NewWriter(&buf)
	if _, err := gzipWriter.Write(cborBytes); err != nil {
		return "", fmt.Errorf("failed to compress ledger: %w", err)
	}
	if err := gzipWriter.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize ledger compression: %w", err)
	}

	return LedgerSnapshot(base64.RawURLEncoding.EncodeToString(buf.Bytes())), nil
}

// Decode reverses EncodeLedgerSnapshot
func (s LedgerSnapshot) Decode() (core.Ledger, error) {
	compressed, err := base64.RawURLEncoding.DecodeString(string(s))
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshot base64: %w", err)
	}

	gzipReader, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot gzip stream: %w", err)
	}
	defer gzipReader.Close()

	cborBytes, err := io.ReadAll(gzipReader)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress snapshot: %w", err)
	}

	var ledger core.Ledger
	if err := cbor.Unmarshal(cborBytes, &ledger); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot CBOR: %w", err)
	}
	return ledger, nil
}
