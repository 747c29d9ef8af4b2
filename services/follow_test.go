package services

import (
	"context"
	"testing"

	"platform/models"

	"github.com/stretchr/testify/require"
)

func TestFollowSelf(t *testing.T) {
	setupTestDB(t)
	fs := NewFollowService(NewUserService())
	user := createTestUser(t, "user")

	err := fs.Follow(context.Background(), user.ID, user.ID)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestFollowUnknownUser(t *testing.T) {
	setupTestDB(t)
	fs := NewFollowService(NewUserService())
	user := createTestUser(t, "user")

	err := fs.Follow(context.Background(), user.ID, 99999)
	require.ErrorIs(t, err, ErrNotFound)

	err = fs.Follow(context.Background(), 99999, user.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFollowTwice(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	fs := NewFollowService(NewUserService())
	alice := createTestUser(t, "user")
	bob := createTestUser(t, "user")

	require.NoError(t, fs.Follow(ctx, alice.ID, bob.ID))

	err := fs.Follow(ctx, alice.ID, bob.ID)
	require.ErrorIs(t, err, ErrConflict)

	ok, err := fs.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestUnfollowAbsentEdge(t *testing.T) {
	setupTestDB(t)
	fs := NewFollowService(NewUserService())
	alice := createTestUser(t, "user")
	bob := createTestUser(t, "user")

	err := fs.Unfollow(context.Background(), alice.ID, bob.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRefollowAfterUnfollow(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	fs := NewFollowService(NewUserService())
	alice := createTestUser(t, "user")
	bob := createTestUser(t, "user")

	require.NoError(t, fs.Follow(ctx, alice.ID, bob.ID))
	require.NoError(t, fs.Unfollow(ctx, alice.ID, bob.ID))

	ok, err := fs.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.False(t, ok)

	// Ребро удаляется физически, повторная подписка создает новое
	require.NoError(t, fs.Follow(ctx, alice.ID, bob.ID))
	ok, err = fs.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestFollowDirected(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	fs := NewFollowService(NewUserService())
	alice := createTestUser(t, "user")
	bob := createTestUser(t, "user")

	require.NoError(t, fs.Follow(ctx, alice.ID, bob.ID))

	// Обратного ребра нет
	ok, err := fs.IsFollowing(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	require.False(t, ok)

	// Встречная подписка независима
	require.NoError(t, fs.Follow(ctx, bob.ID, alice.ID))
}

func TestGetFollowingAndFollowers(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	fs := NewFollowService(NewUserService())
	alice := createTestUser(t, "user")
	bob := createTestUser(t, "user")
	carol := createTestUser(t, "user")

	require.NoError(t, fs.Follow(ctx, alice.ID, bob.ID))
	require.NoError(t, fs.Follow(ctx, alice.ID, carol.ID))
	require.NoError(t, fs.Follow(ctx, bob.ID, carol.ID))

	following, err := fs.GetFollowing(ctx, alice.ID, models.PageRequest{})
	require.NoError(t, err)
	require.EqualValues(t, 2, following.Total)
	require.Len(t, following.Users, 2)

	followers, err := fs.GetFollowers(ctx, carol.ID, models.PageRequest{})
	require.NoError(t, err)
	require.EqualValues(t, 2, followers.Total)

	ids := map[int64]bool{}
	for _, u := range followers.Users {
		ids[u.ID] = true
	}
	require.True(t, ids[alice.ID])
	require.True(t, ids[bob.ID])

	_, err = fs.GetFollowing(ctx, 99999, models.PageRequest{})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListFollowerIDs(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	fs := NewFollowService(NewUserService())
	alice := createTestUser(t, "user")
	bob := createTestUser(t, "user")
	carol := createTestUser(t, "user")

	require.NoError(t, fs.Follow(ctx, alice.ID, carol.ID))
	require.NoError(t, fs.Follow(ctx, bob.ID, carol.ID))

	ids, err := fs.ListFollowerIDs(ctx, carol.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []int64{alice.ID, bob.ID}, ids)
}
