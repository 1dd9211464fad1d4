package chain

import "fmt"

// StepError reports the chain step that failed, either while building the
// chain or while invoking it. Index is zero-based.
type StepError struct {
	Chain string
	Index int
	Total int
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("chain %q: step %d of %d: %v", e.Chain, e.Index+1, e.Total, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
