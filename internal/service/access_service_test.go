package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ulk-sapr/equipment-api/internal/models"
	appErrors "github.com/ulk-sapr/equipment-api/pkg/errors"
)

func TestAccessServiceGrantIsIdempotent(t *testing.T) {
	store := newFakeStore()
	student := store.addStudent("Boris", "B")
	svc := newServices(store, false)

	require.NoError(t, svc.access.Set(context.Background(), student, 1, true))
	require.NoError(t, svc.access.Set(context.Background(), student, 1, true))

	count := 0
	for _, a := range store.access {
		if a.User == student && a.Room == 1 {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestAccessServiceRevokeAbsentIsNoop(t *testing.T) {
	store := newFakeStore()
	student := store.addStudent("Boris", "B")
	svc := newServices(store, false)

	require.NoError(t, svc.access.Set(context.Background(), student, 2, false))
	assert.Empty(t, store.access)
	assert.Empty(t, svc.cache.deleted)
}

func TestAccessServiceRevokeRemovesDuplicates(t *testing.T) {
	store := newFakeStore()
	student := store.addStudent("Boris", "B")
	store.access = []models.UserAccess{
		{ID: 1, User: student, Room: 1},
		{ID: 2, User: student, Room: 1},
		{ID: 3, User: student, Room: 2},
	}
	svc := newServices(store, false)

	require.NoError(t, svc.access.Revoke(context.Background(), student, 1))
	require.Len(t, store.access, 1)
	assert.Equal(t, int64(2), store.access[0].Room)
}

func TestAccessServiceHasAccessFlipsAfterGrant(t *testing.T) {
	store := newFakeStore()
	student := store.addStudent("Boris", "B")
	svc := newServices(store, false)
	ctx := context.Background()

	before, err := svc.directory.List(ctx)
	require.NoError(t, err)
	require.Len(t, before, 1)
	assert.False(t, before[0].HasAccess)

	require.NoError(t, svc.access.Grant(ctx, student, 1))

	after, err := svc.directory.List(ctx)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.True(t, after[0].HasAccess)
	assert.Contains(t, svc.cache.deleted, CacheKeyStudents)

	require.NoError(t, svc.access.Revoke(ctx, student, 1))
	revoked, err := svc.directory.List(ctx)
	require.NoError(t, err)
	assert.False(t, revoked[0].HasAccess)
}

func TestAccessServiceGrantErrors(t *testing.T) {
	store := newFakeStore()
	student := store.addStudent("Boris", "B")
	svc := newServices(store, false)
	ctx := context.Background()

	err := svc.access.Grant(ctx, student, 999)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	err = svc.access.Grant(ctx, 0, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	store.writeErr = errors.New("deadlock detected")
	err = svc.access.Grant(ctx, student, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrWriteFailed))

	err = svc.access.Revoke(ctx, student, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrWriteFailed))
}

func TestAccessServiceListRooms(t *testing.T) {
	store := newFakeStore()
	student := store.addStudent("Boris", "B")
	svc := newServices(store, false)

	require.NoError(t, svc.access.Grant(context.Background(), student, 2))
	rooms, err := svc.access.ListRooms(context.Background(), student)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "Lab 102", rooms[0].Name)
}

func TestAccessServiceCheck(t *testing.T) {
	store := newFakeStore()
	student := store.addStudent("Boris", "CARD-1")
	inactive := store.addStudent("Gleb", "CARD-2")
	store.users[inactive].Active = false
	svc := newServices(store, false)
	ctx := context.Background()

	require.NoError(t, svc.access.Grant(ctx, student, 1))
	require.NoError(t, svc.access.Grant(ctx, inactive, 1))

	check, err := svc.access.Check(ctx, "CARD-1", 1)
	require.NoError(t, err)
	assert.True(t, check.Granted)
	assert.Equal(t, student, check.StudentID)

	check, err = svc.access.Check(ctx, "CARD-1", 2)
	require.NoError(t, err)
	assert.False(t, check.Granted)

	check, err = svc.access.Check(ctx, "CARD-2", 1)
	require.NoError(t, err)
	assert.False(t, check.Granted)

	_, err = svc.access.Check(ctx, "UNKNOWN", 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}
