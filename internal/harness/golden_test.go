package harness

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestGolden_Scenarios runs every scenario under testdata/scenarios
// and compares the canonical snapshot against its golden file. Add a
// YAML file and run with -update to grow the suite.
func TestGolden_Scenarios(t *testing.T) {
	entries, err := os.ReadDir(filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)

	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		t.Run(strings.TrimSuffix(entry.Name(), ".yaml"), func(t *testing.T) {
			s, err := LoadScenario(filepath.Join("testdata", "scenarios", entry.Name()))
			require.NoError(t, err)
			RunWithGolden(t, s)
		})
	}
}
