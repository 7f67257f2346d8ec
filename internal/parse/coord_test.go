package parse

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinateCommaDecimal(t *testing.T) {
	got := Coordinate("40,416775")
	require.NotNil(t, got)
	assert.InDelta(t, 40.416775, *got, 1e-9)
}

func TestCoordinateMissingSeparator(t *testing.T) {
	got := Coordinate("4041677")
	require.NotNil(t, got)
	assert.InDelta(t, 40.41677, *got, 1e-9)

	got = Coordinate("-3703790")
	require.NotNil(t, got)
	assert.InDelta(t, -3.703790, *got, 1e-9)
}

func TestCoordinateTrailingComma(t *testing.T) {
	got := Coordinate("4,")
	require.NotNil(t, got)
	assert.InDelta(t, 4.0, *got, 1e-9)
}

func TestCoordinatePlausibleInteger(t *testing.T) {
	// Small integers are genuine degree values, not truncated ones.
	got := Coordinate("40")
	require.NotNil(t, got)
	assert.InDelta(t, 40.0, *got, 1e-9)
}

func TestCoordinateDirect(t *testing.T) {
	got := Coordinate("-3.703790")
	require.NotNil(t, got)
	assert.InDelta(t, -3.703790, *got, 1e-9)
}

func TestCoordinateDuplicatedSeparators(t *testing.T) {
	got := Coordinate("40.123.45")
	require.NotNil(t, got)
	assert.InDelta(t, 40.12345, *got, 1e-9)
}

func TestCoordinateUnparsable(t *testing.T) {
	for _, in := range []string{"-", "", "None", "nan", "ab"} {
		assert.Nil(t, Coordinate(in), "input %q", in)
	}
}

func TestCoordinateIdempotent(t *testing.T) {
	inputs := []string{"40,416775", "4041677", "-3.703790", "40.123.45"}
	for _, in := range inputs {
		first := Coordinate(in)
		require.NotNil(t, first)
		again := Coordinate(fmt.Sprintf("%g", *first))
		require.NotNil(t, again)
		assert.Equal(t, *first, *again, "re-normalizing %q changed the value", in)
	}
}
