package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunID(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}

func TestConfigHashStable(t *testing.T) {
	a, err := ConfigHash(map[string]int{"p": 50, "q": 50})
	require.NoError(t, err)
	b, err := ConfigHash(map[string]int{"q": 50, "p": 50})
	require.NoError(t, err)
	c, err := ConfigHash(map[string]int{"p": 10})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 16)

	_, err = ConfigHash(make(chan int))
	assert.Error(t, err)
}
