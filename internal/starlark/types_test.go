package starlark

import (
	"math"
	"testing"
	"time"

	"github.com/leapstack-labs/leapxfer/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	starlarktime "go.starlark.net/lib/time"
	"go.starlark.net/starlark"
)

func TestToStarlark(t *testing.T) {
	tests := []struct {
		name    string
		input   core.Value
		wantStr string
		wantErr bool
	}{
		{
			name:    "string",
			input:   "hello",
			wantStr: `"hello"`,
		},
		{
			name:    "int",
			input:   42,
			wantStr: "42",
		},
		{
			name:    "int64",
			input:   int64(123456789),
			wantStr: "123456789",
		},
		{
			name:    "float64",
			input:   3.14,
			wantStr: "3.14",
		},
		{
			name:    "bool true",
			input:   true,
			wantStr: "True",
		},
		{
			name:    "nil",
			input:   nil,
			wantStr: "None",
		},
		{
			name:    "bytes",
			input:   []byte("ab"),
			wantStr: `b"ab"`,
		},
		{
			name:    "unsupported",
			input:   []string{"a"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToStarlark(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStr, got.String())
		})
	}
}

func TestToStarlark_Time(t *testing.T) {
	ts := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	got, err := ToStarlark(ts)
	require.NoError(t, err)

	st, ok := got.(starlarktime.Time)
	require.True(t, ok, "expected time.Time, got %T", got)
	assert.True(t, ts.Equal(time.Time(st)))
}

func TestFromStarlark(t *testing.T) {
	tests := []struct {
		name    string
		input   starlark.Value
		want    core.Value
		wantErr bool
	}{
		{"none", starlark.None, nil, false},
		{"string", starlark.String("x"), "x", false},
		{"bytes", starlark.Bytes("y"), "y", false},
		{"int", starlark.MakeInt(7), int64(7), false},
		{"float", starlark.Float(1.5), 1.5, false},
		{"bool", starlark.False, false, false},
		{"list", starlark.NewList(nil), nil, true},
		{"huge int", starlark.MakeInt64(math.MaxInt64).Add(starlark.MakeInt(1)), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromStarlark(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for _, v := range []core.Value{nil, "a", int64(-3), 2.25, true} {
		sv, err := ToStarlark(v)
		require.NoError(t, err)
		back, err := FromStarlark(sv)
		require.NoError(t, err)
		assert.Equal(t, v, back)
	}
}

func TestTruth(t *testing.T) {
	assert.False(t, Truth(nil))
	assert.False(t, Truth(int64(0)))
	assert.False(t, Truth(""))
	assert.False(t, Truth(0.0))
	assert.True(t, Truth(math.NaN()))
	assert.True(t, Truth(int64(2)))
	assert.True(t, Truth("x"))
}
