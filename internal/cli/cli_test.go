package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhitfield/gantry/internal/store"
)

const sampleDefinition = `
project: {
	startDate: "2024-01-01T00:00:00Z"
	calendar:  "office"
}

calendar: office: {
	name: "Office"
	unspecifiedNonWorking: true
	intervals: [
		{rule: "every mon,tue,wed,thu,fri at 09:00-17:00", working: true},
	]
}

event: dig: {
	name:     "dig foundation"
	duration: "8h"
}
event: pour: {
	name:     "pour concrete"
	duration: "16h"
}

dependency: d1: {from: "dig", to: "pour", lag: "2h"}
`

func writeDefinition(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "project.cue"), []byte(src), 0o644))
	return dir
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// decodeResponse parses the JSON envelope, with Data left as raw JSON
// for per-test decoding.
func decodeResponse(t *testing.T, out string) (string, json.RawMessage, *CLIError) {
	t.Helper()
	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
		Error  *CLIError       `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	return resp.Status, resp.Data, resp.Error
}

func TestValidate_Success(t *testing.T) {
	dir := writeDefinition(t, sampleDefinition)

	out, _, err := runCLI(t, "validate", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "OK: 2 event(s), 1 dependency(ies), 1 calendar(s)")
}

func TestValidate_SuccessJSON(t *testing.T) {
	dir := writeDefinition(t, sampleDefinition)

	out, _, err := runCLI(t, "--format", "json", "validate", dir)
	require.NoError(t, err)

	status, data, _ := decodeResponse(t, out)
	assert.Equal(t, "ok", status)

	var result ValidationResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.True(t, result.Valid)
	assert.Equal(t, 1, result.FileCount)
}

func TestValidate_ReportsDefects(t *testing.T) {
	dir := writeDefinition(t, `
event: a: {duration: "soon"}
dependency: d: {from: "a", to: "ghost"}
`)

	out, _, err := runCLI(t, "validate", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, `unknown event "ghost"`)
	assert.Contains(t, out, "validation error(s)")
}

func TestValidate_MissingDirectory(t *testing.T) {
	out, _, err := runCLI(t, "validate", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeNotFound)
}

func TestValidate_EmptyDirectory(t *testing.T) {
	out, _, err := runCLI(t, "validate", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeNoFiles)
}

func TestPlan_PrintsSchedule(t *testing.T) {
	dir := writeDefinition(t, sampleDefinition)

	out, _, err := runCLI(t, "plan", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "EVENT")
	assert.Contains(t, out, "dig")
	assert.Contains(t, out, "pour")
}

func TestPlan_JSON(t *testing.T) {
	dir := writeDefinition(t, sampleDefinition)

	out, _, err := runCLI(t, "--format", "json", "plan", dir)
	require.NoError(t, err)

	status, data, _ := decodeResponse(t, out)
	assert.Equal(t, "ok", status)

	var payload struct {
		Revision int64 `json:"revision"`
		Schedule []struct {
			Event     string `json:"event"`
			StartDate string `json:"startDate"`
		} `json:"schedule"`
	}
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Len(t, payload.Schedule, 2)
	assert.NotEmpty(t, payload.Schedule[0].StartDate)
}

func TestPlan_RejectsCycle(t *testing.T) {
	dir := writeDefinition(t, `
event: a: {duration: "1h"}
event: b: {duration: "1h"}
dependency: d1: {from: "a", to: "b"}
dependency: d2: {from: "b", to: "a"}
`)

	out, _, err := runCLI(t, "plan", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, ErrCodeCyclic)
}

func TestRun_PersistsSnapshot(t *testing.T) {
	dir := writeDefinition(t, sampleDefinition)
	dbPath := filepath.Join(t.TempDir(), "plan.db")

	out, _, err := runCLI(t, "run", dir, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Saved 2 event(s)")

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	data, rev, err := st.LoadProject(t.Context())
	require.NoError(t, err)
	assert.Len(t, data.Events, 2)
	assert.Len(t, data.Dependencies, 1)
	assert.Equal(t, int64(1), rev)
}

func TestTrace_ExplainsPlacement(t *testing.T) {
	dir := writeDefinition(t, sampleDefinition)

	out, _, err := runCLI(t, "trace", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "dig (auto)")
	assert.Contains(t, out, "pour (auto)")
	assert.Contains(t, out, "after dig (finish-to-start lag 2h0m0s)")
}

func TestTrace_JSON(t *testing.T) {
	dir := writeDefinition(t, sampleDefinition)

	out, _, err := runCLI(t, "--format", "json", "trace", dir)
	require.NoError(t, err)

	status, data, _ := decodeResponse(t, out)
	assert.Equal(t, "ok", status)

	var payload struct {
		Trace []EventTrace `json:"trace"`
	}
	require.NoError(t, json.Unmarshal(data, &payload))
	require.Len(t, payload.Trace, 2)
	assert.Equal(t, "pour", payload.Trace[1].Event)
	require.Len(t, payload.Trace[1].Predecessors, 1)
	assert.Equal(t, "dig", payload.Trace[1].Predecessors[0].From)
}

func TestRoot_RejectsUnknownFormat(t *testing.T) {
	_, _, err := runCLI(t, "--format", "xml", "validate", ".")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "boom")))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
}
