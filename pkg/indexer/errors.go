package indexer

import (
	"errors"
	"fmt"
)

// ErrInconsistent marks a state inconsistency between the chain's event log
// and the indexed database. An event sequence that cannot be applied under the
// invariants means either a bug or corrupted state; the process must stop
// rather than commit a wrong materialization.
var ErrInconsistent = errors.New("inconsistent indexed state")

func inconsistentf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInconsistent, fmt.Sprintf(format, args...))
}
