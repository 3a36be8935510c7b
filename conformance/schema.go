// Package conformance loads and runs the YAML-fixture end-to-end
// scenarios from spec.md §8 against a fresh interp.Machine per case.
// Grounded on the teacher's conformance/schema.go TestSuite/TestCase
// shape, narrowed from MOO's permission/setup/teardown-laden case
// format (there is no persistent database or permission model here)
// down to a bare source-in, rendered-value-out comparison, since
// Quill programs are self-contained expressions with no ambient state.
package conformance

// Suite is one YAML fixture file: a named group of Cases.
type Suite struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Cases       []Case `yaml:"cases"`
}

// Case is a single scenario: Quill source plus its expected outcome.
// Exactly one of Expect / ExpectError should be set.
type Case struct {
	Name string `yaml:"name"`
	// Source is the Quill program text to parse and run.
	Source string `yaml:"source"`
	// Expect is the rendered final value the program must produce.
	Expect string `yaml:"expect,omitempty"`
	// ExpectError, if set, is a substring that must appear in the
	// rendered diagnostic raised while lexing, parsing, or running
	// Source.
	ExpectError string `yaml:"expect_error,omitempty"`
	// GCInterval overrides the default collection cadence, to exercise
	// GC-invariance scenarios (spec.md §8 scenario 5) at a cadence
	// small enough to trigger mid-program.
	GCInterval int `yaml:"gc_interval,omitempty"`
}
