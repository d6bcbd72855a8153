package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_Primitives(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", "hello", `"hello"`},
		{"int", 42, "42"},
		{"int64", int64(-7), "-7"},
		{"bool true", true, "true"},
		{"bool false", false, "false"},
		{"empty array", []any{}, "[]"},
		{"empty object", map[string]any{}, "{}"},
		{"nested", map[string]any{"a": []any{1, "x"}}, `{"a":[1,"x"]}`},
		{"integral json number", json.Number("123"), "123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestMarshalCanonical_SortsKeysByUTF16(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{"b": 2, "a": 1, "c": 3})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":2,"c":3}`, string(got))

	// U+10000 encodes as a surrogate pair starting at 0xD800, which
	// sorts before U+FF61 in UTF-16 but after it in UTF-8 bytes.
	got, err = MarshalCanonical(map[string]any{"｡": 1, "\U00010000": 2})
	require.NoError(t, err)
	assert.Equal(t, "{\"\U00010000\":2,\"｡\":1}", string(got))
}

func TestMarshalCanonical_NormalizesNFC(t *testing.T) {
	// e + combining acute normalizes to the precomposed form.
	got, err := MarshalCanonical("é")
	require.NoError(t, err)
	assert.Equal(t, "\"é\"", string(got))
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	got, err := MarshalCanonical("<a>&</a>")
	require.NoError(t, err)
	assert.Equal(t, `"<a>&</a>"`, string(got))
}

func TestMarshalCanonical_RejectsFloatsAndNulls(t *testing.T) {
	cases := []any{
		nil,
		3.14,
		float32(1),
		json.Number("3.14"),
		map[string]any{"x": nil},
		map[string]any{"x": 1.5},
		[]any{1, nil},
	}
	for _, in := range cases {
		_, err := MarshalCanonical(in)
		assert.Error(t, err, "input %v", in)
	}
}

func TestMarshalCanonical_TaggedStruct(t *testing.T) {
	type row struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
		Empty string `json:"empty,omitempty"`
	}
	got, err := MarshalCanonical(row{Name: "a", Count: 2})
	require.NoError(t, err)
	assert.Equal(t, `{"count":2,"name":"a"}`, string(got))

	// Struct fields that survive the json round trip still obey the
	// no-floats rule.
	type bad struct {
		Ratio float64 `json:"ratio"`
	}
	_, err = MarshalCanonical(bad{Ratio: 0.5})
	assert.Error(t, err)
}

func TestMarshalCanonical_Deterministic(t *testing.T) {
	in := map[string]any{
		"schedules":    []any{map[string]any{"event": "a", "start": "2024-01-01T00:00:00Z"}},
		"dependencies": []any{},
		"revision":     int64(4),
	}
	first, err := MarshalCanonical(in)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := MarshalCanonical(in)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}
