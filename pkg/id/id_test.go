package id

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSortsByCreation(t *testing.T) {
	t.Parallel()

	prev := New()
	for i := 0; i < 100; i++ {
		next := New()
		assert.Len(t, next, 26)
		assert.Less(t, prev, next)
		prev = next
	}
}

func TestTime(t *testing.T) {
	t.Parallel()

	before := time.Now().Add(-time.Second)
	ts, err := Time(New())
	require.NoError(t, err)
	assert.WithinDuration(t, before, ts, 5*time.Second)

	_, err = Time("not-a-ulid")
	assert.Error(t, err)
}
