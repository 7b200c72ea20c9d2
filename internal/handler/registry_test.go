package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRegistryReusesSessions(t *testing.T) {
	r := NewRegistry(0)
	a := r.Get("a")
	assert.Equal(t, "a", a.ID)
	assert.Same(t, a, r.Get("a"))
	assert.NotSame(t, a, r.Get("b"))
	assert.Equal(t, 2, r.Len())
}

func TestRegistryPrunesIdle(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	r := NewRegistry(time.Hour)
	r.now = func() time.Time { return now }

	old := r.Get("old")
	now = now.Add(2 * time.Hour)
	r.Get("fresh")

	assert.Equal(t, 1, r.Len())
	assert.NotSame(t, old, r.Get("old"))
}
