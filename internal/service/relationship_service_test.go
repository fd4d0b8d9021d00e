package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/yatube/internal/auth"
	"github.com/d60-Lab/yatube/internal/testutil"
)

func TestFollowIdempotent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := NewRelationshipService(e.follows, e.users, e.gate, 10)
	leo := testutil.User(t, e.db, "leo")
	fan := testutil.User(t, e.db, "fan")

	for i := 0; i < 2; i++ {
		out, err := svc.Follow(ctx, auth.FromUser(fan), "leo", "")
		require.NoError(t, err)
		assert.Equal(t, "/api/v1/profile/leo", out.Redirect)
	}
	n, err := e.follows.CountFollowers(ctx, leo.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	for i := 0; i < 2; i++ {
		_, err := svc.Unfollow(ctx, auth.FromUser(fan), "leo", "")
		require.NoError(t, err)
	}
	n, err = e.follows.CountFollowers(ctx, leo.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFollowSelf(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := NewRelationshipService(e.follows, e.users, e.gate, 10)
	leo := testutil.User(t, e.db, "leo")

	out, err := svc.Follow(ctx, auth.FromUser(leo), "leo", "")
	require.NoError(t, err)
	assert.False(t, out.Performed)
	assert.Equal(t, "/api/v1/profile/leo", out.Redirect)

	ok, err := e.follows.Exists(ctx, leo.ID, leo.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFollowGuards(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := NewRelationshipService(e.follows, e.users, e.gate, 10)
	fan := testutil.User(t, e.db, "fan")
	testutil.User(t, e.db, "leo")

	out, err := svc.Follow(ctx, auth.Anonymous, "leo", "/api/v1/profile/leo/follow")
	require.NoError(t, err)
	assert.False(t, out.Performed)
	assert.Equal(t, "/auth/login/?next=%2Fapi%2Fv1%2Fprofile%2Fleo%2Ffollow", out.Redirect)

	_, err = svc.Follow(ctx, auth.FromUser(fan), "ghost", "")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Unfollow(ctx, auth.FromUser(fan), "ghost", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRelationLists(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := NewRelationshipService(e.follows, e.users, e.gate, 2)
	leo := testutil.User(t, e.db, "leo")
	a := testutil.User(t, e.db, "a")
	b := testutil.User(t, e.db, "b")
	c := testutil.User(t, e.db, "c")
	testutil.Follow(t, e.db, a, leo)
	testutil.Follow(t, e.db, b, leo)
	testutil.Follow(t, e.db, c, leo)
	testutil.Follow(t, e.db, leo, a)

	fans, err := svc.ListFans(ctx, "leo", "")
	require.NoError(t, err)
	assert.Equal(t, 3, fans.Count)
	assert.Equal(t, 2, fans.NumPages)
	assert.Len(t, fans.Items, 2)

	last, err := svc.ListFans(ctx, "leo", "2")
	require.NoError(t, err)
	require.Len(t, last.Items, 1)

	following, err := svc.ListFollowing(ctx, "leo", "")
	require.NoError(t, err)
	require.Len(t, following.Items, 1)
	assert.Equal(t, "a", following.Items[0].Username)

	_, err = svc.ListFans(ctx, "ghost", "")
	assert.ErrorIs(t, err, ErrNotFound)
}
