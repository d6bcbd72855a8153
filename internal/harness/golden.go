package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/mwhitfield/gantry/internal/model"
	"github.com/mwhitfield/gantry/internal/project"
)

// goldenSnapshot is the shape written to golden files: the commit
// trace and final schedule of one scenario run, canonically
// serialized.
type goldenSnapshot struct {
	Scenario string                 `json:"scenario"`
	Revision int64                  `json:"revision"`
	Commits  []CommitTrace          `json:"commits,omitempty"`
	Schedule []project.ScheduleData `json:"schedule,omitempty"`
}

// RunWithGolden executes a scenario, fails the test on any step or
// assertion divergence, and compares the canonical snapshot against
// testdata/golden/<name>.golden.
//
// Regenerate golden files with:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		t.Fatalf("running scenario %s: %v", scenario.Name, err)
	}
	if !result.Pass {
		for _, msg := range result.Errors {
			t.Error(msg)
		}
		return
	}
	AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an already-obtained result against the named
// golden file.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	data, err := model.MarshalCanonical(goldenSnapshot{
		Scenario: name,
		Revision: result.Revision,
		Commits:  result.Commits,
		Schedule: result.Schedule,
	})
	if err != nil {
		t.Fatalf("serializing snapshot: %v", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
}
