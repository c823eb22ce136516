package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"derma-vision/internal/domain/entity"
	"derma-vision/internal/infrastructure/storage"
)

func TestUserService_BeginCheckAndCancel(t *testing.T) {
	repo := storage.NewMemoryUserRepository()
	svc := NewUserService(repo)
	ctx := context.Background()

	user, err := svc.BeginCheck(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingPhoto, user.State)

	user, err = svc.StartProcessing(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateProcessing, user.State)

	user, err = svc.Cancel(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, user.State)
}

func TestUserService_SetState(t *testing.T) {
	repo := storage.NewMemoryUserRepository()
	svc := NewUserService(repo)
	ctx := context.Background()

	user, err := svc.SetState(ctx, 2, 20, entity.StateAwaitingPhoto)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingPhoto, user.State)

	stored, err := svc.Get(ctx, 2, 20)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingPhoto, stored.State)
}

func TestUserService_SetThreshold(t *testing.T) {
	repo := storage.NewMemoryUserRepository()
	svc := NewUserService(repo)
	ctx := context.Background()

	user, err := svc.SetThreshold(ctx, 3, 30, 0.4)
	require.NoError(t, err)
	require.Equal(t, 0.4, user.ThresholdOr(DefaultConfidenceThreshold))

	user, err = svc.SetThreshold(ctx, 3, 30, 0)
	require.NoError(t, err)
	require.Equal(t, DefaultConfidenceThreshold, user.ThresholdOr(DefaultConfidenceThreshold))

	_, err = svc.SetThreshold(ctx, 3, 30, 1.2)
	require.ErrorIs(t, err, entity.ErrInvalidThreshold)
}
