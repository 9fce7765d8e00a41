// Package ledgerio reads team submissions and writes auction results and
// ledgers in the tabular layouts used by draft organizers.
package ledgerio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cloudx-io/draftauction/core"
)

// Column headers
const (
	ColumnTeamName   = "Team Name"
	ColumnName       = "Name"
	ColumnBidAmount  = "Bid Amount($)"
	ColumnPlayerName = "Player Name"
	ColumnRand       = "Rand"
	ColumnWon        = "Won?"
	ColumnPlayersWon = "Players Won"
)

// PlayersWonSeparator joins won items in the results table
const PlayersWonSeparator = "; "

var (
	// ErrMissingColumn is returned when a required header is absent.
	ErrMissingColumn = errors.New("missing required column")
	// ErrSeparatorInName is returned when a won item contains PlayersWonSeparator
	// and so could not be split back out of the Players Won cell.
	ErrSeparatorInName = errors.New("item name contains players won separator")
)

// ReadSubmissionCSV reads one team's submission. The file needs a Name and a
// Bid Amount($) column; other columns, such as forecast values, are ignored.
func ReadSubmissionCSV(r io.Reader, team string) (core.TeamSubmission, error) {
	records, columns, err := readTable(r, ColumnName, ColumnBidAmount)
	if err != nil {
		return core.TeamSubmission{}, fmt.Errorf("read submission for %s: %w", team, err)
	}

	sub := core.TeamSubmission{Team: team, Bids: make([]core.RawBid, 0, len(records))}
	for i, record := range records {
		weight, err := parseFloat(record[columns[ColumnBidAmount]])
		if err != nil {
			return core.TeamSubmission{}, fmt.Errorf("read submission for %s: row %d: %w", team, i+2, err)
		}
		sub.Bids = append(sub.Bids, core.RawBid{
			Item:   strings.TrimSpace(record[columns[ColumnName]]),
			Weight: weight,
		})
	}
	return sub, nil
}

// ReadSubmissionsCSV reads all submissions from one long-format file with
// Team Name, Name and Bid Amount($) columns. Teams are returned in order of
// first appearance.
func ReadSubmissionsCSV(r io.Reader) ([]core.TeamSubmission, error) {
	records, columns, err := readTable(r, ColumnTeamName, ColumnName, ColumnBidAmount)
	if err != nil {
		return nil, fmt.Errorf("read submissions: %w", err)
	}

	index := make(map[string]int)
	submissions := make([]core.TeamSubmission, 0)
	for i, record := range records {
		team := strings.TrimSpace(record[columns[ColumnTeamName]])
		weight, err := parseFloat(record[columns[ColumnBidAmount]])
		if err != nil {
			return nil, fmt.Errorf("read submissions: row %d: %w", i+2, err)
		}

		pos, ok := index[team]
		if !ok {
			pos = len(submissions)
			index[team] = pos
			submissions = append(submissions, core.TeamSubmission{Team: team})
		}
		submissions[pos].Bids = append(submissions[pos].Bids, core.RawBid{
			Item:   strings.TrimSpace(record[columns[ColumnName]]),
			Weight: weight,
		})
	}
	return submissions, nil
}

// WriteResultsCSV writes one row per team with its won players joined by PlayersWonSeparator.
func WriteResultsCSV(w io.Writer, result *core.AuctionResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{ColumnTeamName, ColumnPlayersWon}); err != nil {
		return fmt.Errorf("write results header: %w", err)
	}
	for _, tr := range result.Teams {
		players, err := joinPlayers(tr)
		if err != nil {
			return err
		}
		if err := cw.Write([]string{tr.Team, players}); err != nil {
			return fmt.Errorf("write results row for %s: %w", tr.Team, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadResultsCSV reads a table written by WriteResultsCSV.
func ReadResultsCSV(r io.Reader) (*core.AuctionResult, error) {
	records, columns, err := readTable(r, ColumnTeamName, ColumnPlayersWon)
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}

	result := &core.AuctionResult{Teams: make([]core.TeamResult, 0, len(records))}
	for _, record := range records {
		items := []string{}
		if joined := strings.TrimSpace(record[columns[ColumnPlayersWon]]); joined != "" {
			items = strings.Split(joined, PlayersWonSeparator)
		}
		result.Teams = append(result.Teams, core.TeamResult{
			Team:     record[columns[ColumnTeamName]],
			ItemsWon: items,
		})
	}
	return result, nil
}

// WriteLedgerCSV writes every bid entry in ledger order. Amounts and draws are
// written at full precision so the ledger hash survives a round trip.
func WriteLedgerCSV(w io.Writer, ledger core.Ledger) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ledgerHeader()); err != nil {
		return fmt.Errorf("write ledger header: %w", err)
	}
	for i, entry := range ledger {
		if err := cw.Write(ledgerRecord(entry)); err != nil {
			return fmt.Errorf("write ledger row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadLedgerCSV reads a table written by WriteLedgerCSV, preserving row order.
func ReadLedgerCSV(r io.Reader) (core.Ledger, error) {
	records, columns, err := readTable(r, ledgerHeader()...)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	ledger := make(core.Ledger, 0, len(records))
	for i, record := range records {
		amount, err := parseFloat(record[columns[ColumnBidAmount]])
		if err != nil {
			return nil, fmt.Errorf("read ledger: row %d: %w", i+2, err)
		}
		draw, err := parseFloat(record[columns[ColumnRand]])
		if err != nil {
			return nil, fmt.Errorf("read ledger: row %d: %w", i+2, err)
		}
		won, err := parseBool(record[columns[ColumnWon]])
		if err != nil {
			return nil, fmt.Errorf("read ledger: row %d: %w", i+2, err)
		}
		ledger = append(ledger, core.BidEntry{
			Item:   record[columns[ColumnPlayerName]],
			Team:   record[columns[ColumnTeamName]],
			Amount: amount,
			Draw:   draw,
			Won:    won,
		})
	}
	return ledger, nil
}

// joinPlayers builds the Players Won cell, refusing names that would not split back apart.
func joinPlayers(tr core.TeamResult) (string, error) {
	for _, item := range tr.ItemsWon {
		if strings.Contains(item, PlayersWonSeparator) {
			return "", fmt.Errorf("write results row for %s: %w: %q", tr.Team, ErrSeparatorInName, item)
		}
	}
	return strings.Join(tr.ItemsWon, PlayersWonSeparator), nil
}

func ledgerHeader() []string {
	return []string{ColumnBidAmount, ColumnTeamName, ColumnPlayerName, ColumnRand, ColumnWon}
}

func ledgerRecord(entry core.BidEntry) []string {
	return []string{
		strconv.FormatFloat(entry.Amount, 'f', -1, 64),
		entry.Team,
		entry.Item,
		strconv.FormatFloat(entry.Draw, 'f', -1, 64),
		formatBool(entry.Won),
	}
}

// readTable reads a CSV with a header row and returns the data rows plus the
// index of each required column.
func readTable(r io.Reader, required ...string) ([][]string, map[string]int, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("%w: empty file", ErrMissingColumn)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		// Tolerate a UTF-8 byte order mark written by spreadsheet tools
		name = strings.TrimPrefix(strings.TrimSpace(name), "\ufeff")
		columns[name] = i
	}
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			return nil, nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read rows: %w", err)
	}
	return records, columns, nil
}

func parseFloat(value string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", value)
	}
	return v, nil
}

func formatBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

func parseBool(value string) (bool, error) {
	v, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false, fmt.Errorf("invalid boolean %q", value)
	}
	return v, nil
}
