package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/yatube/internal/model"
)

func TestPostSetOrdering(t *testing.T) {
	db := openTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createUser(t, db, "author")
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	createPost(t, db, author, nil, base, "oldest")
	createPost(t, db, author, nil, base.Add(2*time.Hour), "newest")
	// 同一时刻创建的帖子按 id 倒序
	createPost(t, db, author, nil, base.Add(time.Hour), "tie-first")
	createPost(t, db, author, nil, base.Add(time.Hour), "tie-second")

	all, err := repo.Find(PostFilter{}).All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"newest", "tie-second", "tie-first", "oldest"}, texts(all))

	cnt, err := repo.Find(PostFilter{}).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, cnt)

	window, err := repo.Find(PostFilter{}).Slice(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"tie-second", "tie-first"}, texts(window))
	assert.Equal(t, "author", window[0].Author.Username, "author preloaded")
}

func TestPostSetFilters(t *testing.T) {
	db := openTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	reader := createUser(t, db, "reader")
	cats := createGroup(t, db, "cats")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	createPost(t, db, alice, cats, base, "alice-cats")
	createPost(t, db, alice, nil, base.Add(time.Minute), "alice-plain")
	createPost(t, db, bob, cats, base.Add(2*time.Minute), "bob-cats")

	byGroup, err := repo.Find(PostFilter{GroupID: &cats.ID}).All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob-cats", "alice-cats"}, texts(byGroup))
	require.NotNil(t, byGroup[0].Group)
	assert.Equal(t, "cats", byGroup[0].Group.Slug)

	byAuthor, err := repo.Find(PostFilter{AuthorID: &alice.ID}).All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice-plain", "alice-cats"}, texts(byAuthor))

	followed, err := repo.Find(PostFilter{FollowerID: &reader.ID}).All(ctx)
	require.NoError(t, err)
	assert.Empty(t, followed, "reader follows nobody")

	require.NoError(t, NewFollowRepository(db).Create(ctx, reader.ID, bob.ID))
	followed, err = repo.Find(PostFilter{FollowerID: &reader.ID}).All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob-cats"}, texts(followed))
}

func TestPostUpdateAndGet(t *testing.T) {
	db := openTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := createUser(t, db, "author")
	g := createGroup(t, db, "g")
	p := createPost(t, db, author, nil, time.Now(), "before")

	p.Text = "after"
	p.GroupID = &g.ID
	require.NoError(t, repo.Update(ctx, p))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Text)
	require.NotNil(t, got.Group)
	assert.Equal(t, "g", got.Group.Slug)

	_, err = repo.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &model.Post{ID: 9999, Text: "x"}), ErrNotFound)
}

func TestDeleteGroupNullsPostGroup(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	posts := NewPostRepository(db)
	groups := NewGroupRepository(db)

	author := createUser(t, db, "author")
	g := createGroup(t, db, "doomed")
	p := createPost(t, db, author, g, time.Now(), "survivor")

	require.NoError(t, groups.Delete(ctx, g.ID))

	got, err := posts.GetByID(ctx, p.ID)
	require.NoError(t, err, "post must survive group deletion")
	assert.Nil(t, got.GroupID)
	assert.Nil(t, got.Group)

	_, err = groups.GetBySlug(ctx, "doomed")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, groups.Delete(ctx, g.ID), ErrNotFound)
}

func TestDeletePostCascadesComments(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	posts := NewPostRepository(db)
	comments := NewCommentRepository(db)

	author := createUser(t, db, "author")
	p := createPost(t, db, author, nil, time.Now(), "post")
	require.NoError(t, comments.Create(ctx, &model.Comment{Text: "c1", PostID: p.ID, AuthorID: author.ID}))
	require.NoError(t, comments.Create(ctx, &model.Comment{Text: "c2", PostID: p.ID, AuthorID: author.ID}))

	list, err := comments.ListByPost(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c2", list[0].Text, "newest comment first")
	assert.Equal(t, "author", list[0].Author.Username)

	require.NoError(t, posts.Delete(ctx, p.ID))
	list, err = comments.ListByPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDeleteUserCascades(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	posts := NewPostRepository(db)
	follows := NewFollowRepository(db)

	author := createUser(t, db, "author")
	other := createUser(t, db, "other")
	p := createPost(t, db, author, nil, time.Now(), "mine")
	createPost(t, db, other, nil, time.Now(), "theirs")
	require.NoError(t, NewCommentRepository(db).Create(ctx, &model.Comment{Text: "c", PostID: p.ID, AuthorID: other.ID}))
	require.NoError(t, follows.Create(ctx, other.ID, author.ID))

	require.NoError(t, users.Delete(ctx, author.ID))

	all, err := posts.Find(PostFilter{}).All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"theirs"}, texts(all))
	ok, err := follows.Exists(ctx, other.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = users.GetByUsername(ctx, "author")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCountByAuthor(t *testing.T) {
	db := openTestDB(t)
	author := createUser(t, db, "author")
	for _, text := range numbered("p", 3) {
		createPost(t, db, author, nil, time.Now(), text)
	}
	cnt, err := NewPostRepository(db).CountByAuthor(context.Background(), author.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, cnt)
}
