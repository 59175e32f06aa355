package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBytes(t *testing.T) {
	got, err := parseBytes([]string{"0xA5", "3c", "0X01", "ff"})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xA5, 0x3C, 0x01, 0xFF}, got)

	_, err = parseBytes(nil)
	assert.Error(t, err)
	_, err = parseBytes([]string{"100"})
	assert.Error(t, err)
	_, err = parseBytes([]string{"zz"})
	assert.Error(t, err)
}

func TestParseCount(t *testing.T) {
	n, err := parseCount(nil, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = parseCount([]string{"40"}, 1)
	require.NoError(t, err)
	assert.Equal(t, 40, n)

	_, err = parseCount([]string{"-3"}, 1)
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	for arg, want := range map[string]bool{"0": false, "low": false, "1": true, "high": true} {
		got, err := parseLevel([]string{arg})
		require.NoError(t, err)
		assert.Equal(t, want, got, arg)
	}

	_, err := parseLevel([]string{"2"})
	assert.Error(t, err)
	_, err = parseLevel(nil)
	assert.Error(t, err)
}
