package conformance

import (
	"bytes"
	"fmt"
	"strings"

	"quill/builtins"
	"quill/interp"
	"quill/parser"
	"quill/value"
)

// Result is the outcome of running a single Case.
type Result struct {
	Case   LoadedCase
	Passed bool
	Got    string
	Error  error
}

// Run parses and executes c.Source against a fresh Machine (so cases
// never share heap or environment state) and checks the outcome
// against c.Expect or c.ExpectError.
func Run(c Case) Result {
	expr, err := parser.Parse(c.Source)
	if err != nil {
		return checkOutcome(c, "", err)
	}

	var stdout bytes.Buffer
	dispatcher := builtins.New(strings.NewReader(""), &stdout)
	m := interp.New(expr, dispatcher, c.GCInterval)

	if err := m.Execute(); err != nil {
		return checkOutcome(c, "", err)
	}
	return checkOutcome(c, value.Render(m.Result()), nil)
}

func checkOutcome(c Case, got string, err error) Result {
	lc := LoadedCase{Case: c}
	if c.ExpectError != "" {
		if err == nil {
			return Result{Case: lc, Passed: false, Got: got, Error: fmt.Errorf("expected an error containing %q, got value %q", c.ExpectError, got)}
		}
		if !strings.Contains(err.Error(), c.ExpectError) {
			return Result{Case: lc, Passed: false, Error: fmt.Errorf("expected error containing %q, got %q", c.ExpectError, err.Error())}
		}
		return Result{Case: lc, Passed: true, Got: err.Error()}
	}
	if err != nil {
		return Result{Case: lc, Passed: false, Error: fmt.Errorf("unexpected error: %w", err)}
	}
	if got != c.Expect {
		return Result{Case: lc, Passed: false, Got: got, Error: fmt.Errorf("expected %q, got %q", c.Expect, got)}
	}
	return Result{Case: lc, Passed: true, Got: got}
}

// RunAll runs every loaded case independently.
func RunAll(cases []LoadedCase) []Result {
	results := make([]Result, len(cases))
	for i, lc := range cases {
		r := Run(lc.Case)
		r.Case = lc
		results[i] = r
	}
	return results
}

// Stats summarizes a batch of Results.
type Stats struct {
	Total  int
	Passed int
	Failed int
}

func ComputeStats(results []Result) Stats {
	s := Stats{Total: len(results)}
	for _, r := range results {
		if r.Passed {
			s.Passed++
		} else {
			s.Failed++
		}
	}
	return s
}

func (s Stats) String() string {
	return fmt.Sprintf("%d passed, %d failed (%d total)", s.Passed, s.Failed, s.Total)
}
