package mirror

import (
	"github.com/carden/splitsync/internal/swidtag"
	"github.com/carden/splitsync/internal/ynab"
)

// DedupIndex maps source expense IDs to the most recently known mirror
// transaction. It is built once per pass from the ledger's tagged
// transactions (scheduled ones included) and mutated in memory as new
// payloads are synthesized, so repeated revisions within one batch collapse.
// Discarded at end of pass.
type DedupIndex struct {
	byID map[int64]ynab.Transaction
}

// NewDedupIndex creates an empty index.
func NewDedupIndex() *DedupIndex {
	return &DedupIndex{byID: make(map[int64]ynab.Transaction)}
}

// Add registers a transaction under its memo tag's source ID. Untagged
// transactions are ignored.
func (x *DedupIndex) Add(t ynab.Transaction) {
	if t.Memo == "" {
		return
	}
	if tag, ok := swidtag.Decode(t.Memo); ok {
		x.byID[tag.ID] = t
	}
}

// Lookup returns the indexed transaction for a source ID.
func (x *DedupIndex) Lookup(sourceID int64) (ynab.Transaction, bool) {
	t, ok := x.byID[sourceID]
	return t, ok
}

// Len returns the number of indexed source IDs.
func (x *DedupIndex) Len() int {
	return len(x.byID)
}
