package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseIntListParsesCommaSeparatedValues(t *testing.T) {
	got, err := parseIntList("2,3,3")
	require.NoError(t, err)
	require.Equal(t, []int{2, 3, 3}, got)
}

func TestParseIntListTrimsWhitespaceAndSkipsEmpty(t *testing.T) {
	got, err := parseIntList(" 2, 3,,4 ")
	require.NoError(t, err)
	require.Equal(t, []int{2, 3, 4}, got)
}

func TestParseIntListInvalidIntegerErrors(t *testing.T) {
	_, err := parseIntList("2,x,4")
	require.Error(t, err)
}

func TestParseIntListEmptyStringYieldsEmptySlice(t *testing.T) {
	got, err := parseIntList("")
	require.NoError(t, err)
	require.Empty(t, got)
}
