package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEditable_Matrix(t *testing.T) {
	auto := &EventRecord{ID: "a"}
	manual := &EventRecord{ID: "m", ManuallyScheduled: true}

	tests := []struct {
		field      string
		wantAuto   bool
		wantManual bool
	}{
		{FieldStartDate, false, true},
		{FieldEndDate, false, true},
		{FieldDuration, true, false},
		{FieldConstraintType, true, true},
		{FieldConstraintDate, true, true},
		{FieldManuallyScheduled, true, true},
		{FieldCalendar, true, true},
		{FieldEarlyStartDate, false, false},
		{FieldEarlyEndDate, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			got := IsEditable(auto, tt.field)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantAuto, *got, "automatic")

			got = IsEditable(manual, tt.field)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantManual, *got, "manual")
		})
	}
}

func TestIsEditable_UnknownFieldIsNil(t *testing.T) {
	rec := &EventRecord{ID: "a"}
	assert.Nil(t, IsEditable(rec, "priority"))
	assert.Nil(t, IsEditable(rec, ""))
}

func TestEventFields_CoverTheSchema(t *testing.T) {
	// Declaration order is a public contract; every field resolves
	// through the index.
	seen := map[string]bool{}
	for _, f := range EventFields {
		desc, ok := LookupEventField(f.Name)
		require.True(t, ok)
		assert.Equal(t, f.Kind, desc.Kind)
		assert.False(t, seen[f.Name], "duplicate descriptor %s", f.Name)
		seen[f.Name] = true
	}
	assert.Equal(t, FieldStartDate, EventFields[0].Name)

	// Derived fields declare their inputs in authoritative terms.
	early, ok := LookupEventField(FieldEarlyStartDate)
	require.True(t, ok)
	assert.Equal(t, Derived, early.Kind)
	assert.Contains(t, early.Inputs, FieldDuration)
}
