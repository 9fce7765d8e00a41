package ledgerio

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/cloudx-io/draftauction/core"
)

// Sheet names of the exported workbook
const (
	SheetResults = "Results"
	SheetBidding = "Bidding"
)

// WriteWorkbook writes an xlsx workbook with a Results sheet (one row per team)
// and a Bidding sheet (the full ledger in settlement order).
func WriteWorkbook(w io.Writer, result *core.AuctionResult, ledger core.Ledger) error {
	f := excelize.NewFile()
	defer f.Close()

	// Replace the default sheet with the results sheet
	if err := f.SetSheetName(f.GetSheetName(0), SheetResults); err != nil {
		return fmt.Errorf("rename results sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetBidding); err != nil {
		return fmt.Errorf("create bidding sheet: %w", err)
	}

	if err := setRow(f, SheetResults, 1, []any{ColumnTeamName, ColumnPlayersWon}); err != nil {
		return err
	}
	for i, tr := range result.Teams {
		players, err := joinPlayers(tr)
		if err != nil {
			return err
		}
		if err := setRow(f, SheetResults, i+2, []any{tr.Team, players}); err != nil {
			return err
		}
	}

	if err := setRow(f, SheetBidding, 1, []any{ColumnBidAmount, ColumnTeamName, ColumnPlayerName, ColumnRand, ColumnWon}); err != nil {
		return err
	}
	for i, entry := range ledger {
		if err := setRow(f, SheetBidding, i+2, []any{entry.Amount, entry.Team, entry.Item, entry.Draw, entry.Won}); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// ReadWorkbookResults reads the Results sheet of a workbook written by WriteWorkbook.
func ReadWorkbookResults(r io.Reader) (*core.AuctionResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetResults)
	if err != nil {
		return nil, fmt.Errorf("read %s sheet: %w", SheetResults, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s sheet is empty", ErrMissingColumn, SheetResults)
	}

	result := &core.AuctionResult{Teams: make([]core.TeamResult, 0, len(rows)-1)}
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		items := []string{}
		// GetRows drops trailing empty cells, so a team without wins has one column
		if len(row) > 1 && row[1] != "" {
			items = strings.Split(row[1], PlayersWonSeparator)
		}
		result.Teams = append(result.Teams, core.TeamResult{Team: row[0], ItemsWon: items})
	}
	return result, nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("resolve cell for row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
