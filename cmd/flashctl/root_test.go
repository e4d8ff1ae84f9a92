package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRange(t *testing.T) {
	addr, length, err := parseRange("0x10000+0x1000")
	require.NoError(t, err)
	assert.Equal(t, uint32(0x10000), addr)
	assert.Equal(t, uint32(0x1000), length)

	_, _, err = parseRange("decimal")
	assert.Error(t, err)

	_, _, err = parseRange("notanumber+0x1000")
	assert.Error(t, err)
}

func TestParseUint32(t *testing.T) {
	v, err := parseUint32("0xFF")
	require.NoError(t, err)
	assert.Equal(t, uint32(0xFF), v)

	v, err = parseUint32("128")
	require.NoError(t, err)
	assert.Equal(t, uint32(128), v)

	_, err = parseUint32("nope")
	assert.Error(t, err)
}
