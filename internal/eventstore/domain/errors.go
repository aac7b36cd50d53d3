package domain

import (
	"errors"
	"fmt"
)

// ErrNoEvents is returned when an append is attempted with an empty batch.
var ErrNoEvents = errors.New("eventstore: no events to append")

// ConcurrencyError reports an optimistic append rejected because the stream
// moved past the expected version. Callers must reload the aggregate and
// retry the whole command; state is never merged manually.
type ConcurrencyError struct {
	AggregateID string
	Expected    int64
	Actual      int64
}

func (e *ConcurrencyError) Error() string {
	return fmt.Sprintf("eventstore: concurrency conflict on %s: expected version %d, stream at %d",
		e.AggregateID, e.Expected, e.Actual)
}

// IsConcurrencyError reports whether err is (or wraps) a ConcurrencyError.
func IsConcurrencyError(err error) bool {
	var conflict *ConcurrencyError
	return errors.As(err, &conflict)
}
