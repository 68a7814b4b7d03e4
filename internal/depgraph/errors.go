package depgraph

import "fmt"

// InvalidQueryError reports an unknown query type or an out-of-range depth.
// It is surfaced immediately; correcting the input is the caller's job.
type InvalidQueryError struct {
	Query  string
	Reason string
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("invalid query %q: %s", e.Query, e.Reason)
}
