package common

import (
	"github.com/google/uuid"
)

// NewLoadID generates a unique identifier for one ingestion run, used as
// the ledger key under which its LoadSummary and malformed-line records
// are stored. Format: load_<uuid>
func NewLoadID() string {
	return "load_" + uuid.New().String()
}
