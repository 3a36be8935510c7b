package conformance

import "testing"

func TestConformance(t *testing.T) {
	cases, err := LoadAll(TestDir)
	if err != nil {
		t.Fatalf("failed to load fixtures: %v", err)
	}
	if len(cases) == 0 {
		t.Fatal("no conformance cases loaded")
	}

	results := RunAll(cases)
	stats := ComputeStats(results)

	byFile := make(map[string][]Result)
	for _, r := range results {
		byFile[r.Case.File] = append(byFile[r.Case.File], r)
	}

	for file, group := range byFile {
		t.Run(file, func(t *testing.T) {
			for _, r := range group {
				t.Run(r.Case.Case.Name, func(t *testing.T) {
					if !r.Passed {
						t.Errorf("%v", r.Error)
					}
				})
			}
		})
	}

	t.Logf("conformance: %s", stats)
}
