package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCounts(t *testing.T) {
	counts, err := parseCounts("1, 5,25")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 5, 25}, counts)

	_, err = parseCounts("1,x")
	assert.Error(t, err)
	_, err = parseCounts("0")
	assert.Error(t, err)
}
