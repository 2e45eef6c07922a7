// Package swidtag encodes and decodes the [SWID:<id>-<hash>] marker that
// links a budget-ledger transaction to the Splitwise expense revision it
// mirrors. The marker is embedded verbatim in free-text memo fields.
package swidtag

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"

	"github.com/rs/zerolog"
)

var tagPattern = regexp.MustCompile(`\[SWID:(\d+)-(\w+)\]`)

// Tag is one decoded marker.
type Tag struct {
	Raw  string // the full "[SWID:...]" match
	ID   int64  // source expense ID
	Hash string // truncated change hash
}

// Hash returns the change hash for an expense revision: the first 4 hex
// characters of an MD5 digest of the exact updated-at string. Collision
// tolerant, not cryptographic; it only has to distinguish revisions of the
// same expense.
func Hash(updatedAt string) string {
	sum := md5.Sum([]byte(updatedAt))
	return hex.EncodeToString(sum[:])[:4]
}

// Encode builds the memo marker for an expense revision.
func Encode(id int64, updatedAt string) string {
	return fmt.Sprintf("[SWID:%d-%s]", id, Hash(updatedAt))
}

// Decode scans text for the first marker. ok is false when no marker is
// present; arbitrary text never causes an error.
func Decode(text string) (Tag, bool) {
	m := tagPattern.FindStringSubmatch(text)
	if m == nil {
		return Tag{}, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		// \d+ only matches digits, so this is an overflow of the ID field.
		return Tag{}, false
	}
	return Tag{Raw: m[0], ID: id, Hash: m[2]}, true
}

// NeedsUpdate reports whether a mirrored transaction must be rewritten for a
// source revision: true exactly when both sides carry a marker with the same
// ID and the source's current change hash differs from the transaction's.
// Missing markers or an ID mismatch are logged and yield false.
func NeedsUpdate(log zerolog.Logger, expenseTag, expenseUpdatedTime, transactionMemo string) bool {
	expTag, ok := Decode(expenseTag)
	if !ok {
		log.Warn().Str("tag", expenseTag).Msg("No SWID found in Splitwise expense")
		return false
	}
	txnTag, ok := Decode(transactionMemo)
	if !ok {
		log.Warn().Str("memo", transactionMemo).Msg("No SWID found in YNAB transaction")
		return false
	}
	if txnTag.ID != expTag.ID {
		log.Error().Int64("ynab_swid", txnTag.ID).Int64("expense_swid", expTag.ID).Msg("SWID mismatch")
		return false
	}
	if expenseUpdatedTime == "" {
		log.Warn().Int64("expense_swid", expTag.ID).Msg("No updated time found in Splitwise expense")
		return false
	}
	return Hash(expenseUpdatedTime) != txnTag.Hash
}
