package runner

import (
	"context"
	"time"
)

// OutputUnavailable is the sentinel an executor returns when it cannot
// produce a real output for an input. The evaluation service decides what
// to do with it.
const OutputUnavailable = "Output not available"

// Executor runs source text against a single test input and returns the
// produced output. Execution is synchronous from the caller's view; an
// implementation may be arbitrarily slow internally, so it takes a
// context.
type Executor interface {
	Execute(ctx context.Context, language, code, input string) (string, error)
}

// MockExecutor is a stand-in for a real interpreter: a fixed input to
// output lookup table with optional simulated latency. Inputs outside the
// table yield OutputUnavailable. Language and code are accepted but not
// interpreted.
type MockExecutor struct {
	latency time.Duration
	outputs map[string]string
}

// NewMockExecutor creates a mock executor with the built-in lookup table
func NewMockExecutor(latency time.Duration) *MockExecutor {
	return &MockExecutor{
		latency: latency,
		outputs: knownOutputs,
	}
}

// Execute looks the input up in the table after the configured latency
func (e *MockExecutor) Execute(ctx context.Context, language, code, input string) (string, error) {
	if e.latency > 0 {
		select {
		case <-time.After(e.latency):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if output, ok := e.outputs[input]; ok {
		return output, nil
	}
	return OutputUnavailable, nil
}

// knownOutputs maps test inputs to their correct outputs for the built-in
// catalog.
var knownOutputs = map[string]string{
	"[2,7,11,15], 9":             "[0,1]",
	"[3,2,4], 6":                 "[1,2]",
	"[3,3], 6":                   "[0,1]",
	"123":                        "321",
	"-123":                       "-321",
	"120":                        "21",
	"121":                        "true",
	"-121":                       "false",
	"10":                         "false",
	`["flower","flow","flight"]`: `"fl"`,
	`["dog","racecar","car"]`:    `""`,
	"[1,2,4], [1,3,4]":           "[1,1,2,3,4,4]",
	"[], []":                     "[]",
	"[], [0]":                    "[0]",
	"[1,3], [2]":                 "2.00000",
	"[1,2], [3,4]":               "2.50000",
}
