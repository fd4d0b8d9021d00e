package service

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/yatube/internal/auth"
	"github.com/d60-Lab/yatube/internal/media"
	"github.com/d60-Lab/yatube/internal/pagecache"
	"github.com/d60-Lab/yatube/internal/query"
	"github.com/d60-Lab/yatube/internal/repository"
	"github.com/d60-Lab/yatube/internal/testutil"
)

type env struct {
	db       *gorm.DB
	posts    repository.PostRepository
	groups   repository.GroupRepository
	users    repository.UserRepository
	follows  repository.FollowRepository
	comments repository.CommentRepository
	gate     *auth.Gate
	media    *media.Storage
	mediaDir string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.OpenDB(t)
	dir := t.TempDir()
	return &env{
		db:       db,
		posts:    repository.NewPostRepository(db),
		groups:   repository.NewGroupRepository(db),
		users:    repository.NewUserRepository(db),
		follows:  repository.NewFollowRepository(db),
		comments: repository.NewCommentRepository(db),
		gate:     auth.NewGate("/auth/login/"),
		media:    media.NewStorage(dir),
		mediaDir: dir,
	}
}

func (e *env) feed(cache pagecache.Cache) FeedService {
	return NewFeedService(query.NewComposer(e.posts, e.groups, e.users), e.follows, cache, 10)
}

func (e *env) postService() PostService {
	return NewPostService(e.posts, e.groups, e.comments, e.media, e.gate)
}

var postFilterAll = repository.PostFilter{}

// fakeClock 手动推进的时钟
type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }
