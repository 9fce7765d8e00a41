package core

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// ComputeLedgerHash computes the audit digest of a resolved ledger.
// This is used by the CLI and server (to publish hashes) and by validation (to verify them).
//
// Formula: SHA256(row_1 + "\n" + row_2 + ...)
// where row = sprintf("%q", item) + "|" + sprintf("%q", team) + "|" + sprintf("%.6f", amount) + "|" + sprintf("%.6f", draw) + "|" + won
//
// Item and team are quoted so separators inside names cannot shift field boundaries.
// Rows are hashed in ledger order, so a reordered ledger has a different digest.
// Amounts and draws are formatted to exactly 6 decimal places so that a ledger
// read back from CSV hashes the same as the one that was written.
func ComputeLedgerHash(ledger Ledger) string {
	rows := make([]string, len(ledger))
	for i, entry := range ledger {
		rows[i] = fmt.Sprintf("%q|%q|%.6f|%.6f|%t", entry.Item, entry.Team, entry.Amount, entry.Draw, entry.Won)
	}
	hash := sha256.Sum256([]byte(strings.Join(rows, "\n")))
	return fmt.Sprintf("%x", hash)
}
