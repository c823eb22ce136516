package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewUser_DefaultState(t *testing.T) {
	u := NewUser(1, 10)
	require.Equal(t, StateMainMenu, u.State)
	require.Equal(t, int64(1), u.ID)
	require.Equal(t, int64(10), u.ChatID)
}

func TestUser_ThresholdOr(t *testing.T) {
	u := NewUser(1, 10)
	require.Equal(t, 0.25, u.ThresholdOr(0.25))

	u.Threshold = 0.6
	require.Equal(t, 0.6, u.ThresholdOr(0.25))

	u.Threshold = 1.5
	require.Equal(t, 0.25, u.ThresholdOr(0.25))
}
