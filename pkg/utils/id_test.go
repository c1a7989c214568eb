package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateIDIsUniqueAndTimestamped(t *testing.T) {
	a := GenerateID()
	b := GenerateID()

	assert.Len(t, a, 24)
	assert.NotEqual(t, a, b)

	created, err := GetTimeFromID(a)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), created, 2*time.Second)
}

func TestIsOlderThan(t *testing.T) {
	// 0x5f5e1000 is 2020-09-13.
	old := "5f5e1000" + "0000000000000000"

	assert.True(t, IsOlderThan(old, 24*time.Hour))
	assert.False(t, IsOlderThan(GenerateID(), time.Hour))
	assert.False(t, IsOlderThan("zz", time.Hour), "undecodable ids are kept")
}

func TestShortID(t *testing.T) {
	assert.Len(t, ShortID(), 4)
}
