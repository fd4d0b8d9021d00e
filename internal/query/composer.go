// Package query resolves a listing context into an ordered post sequence.
package query

import (
	"context"
	"fmt"

	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/repository"
)

// Kind tags the listing variant.
type Kind int

const (
	KindAll Kind = iota
	KindGroup
	KindAuthor
	KindFollowed
)

func (k Kind) String() string {
	switch k {
	case KindAll:
		return "all"
	case KindGroup:
		return "group"
	case KindAuthor:
		return "author"
	case KindFollowed:
		return "followed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Listing identifies which posts a request wants. Build it with All,
// ByGroup, ByAuthor or ByFollowed; only the field matching Kind is read.
type Listing struct {
	Kind       Kind
	Slug       string
	Username   string
	FollowerID uint
}

func All() Listing                       { return Listing{Kind: KindAll} }
func ByGroup(slug string) Listing        { return Listing{Kind: KindGroup, Slug: slug} }
func ByAuthor(username string) Listing   { return Listing{Kind: KindAuthor, Username: username} }
func ByFollowed(followerID uint) Listing { return Listing{Kind: KindFollowed, FollowerID: followerID} }

// Key is a stable identity for the listing, independent of page number.
func (l Listing) Key() string {
	switch l.Kind {
	case KindGroup:
		return "group:" + l.Slug
	case KindAuthor:
		return "author:" + l.Username
	case KindFollowed:
		return fmt.Sprintf("followed:%d", l.FollowerID)
	default:
		return l.Kind.String()
	}
}

// Result is the composed sequence plus whatever the listing resolved to.
type Result struct {
	Listing Listing
	Posts   repository.PostSet
	Group   *model.Group
	Author  *model.User
}

// Composer is a pure read over the record store.
type Composer struct {
	posts  repository.PostRepository
	groups repository.GroupRepository
	users  repository.UserRepository
}

func NewComposer(posts repository.PostRepository, groups repository.GroupRepository, users repository.UserRepository) *Composer {
	return &Composer{posts: posts, groups: groups, users: users}
}

// Compose fails with repository.ErrNotFound when a group slug or username
// does not resolve. A follower who follows nobody gets an empty sequence.
func (c *Composer) Compose(ctx context.Context, l Listing) (*Result, error) {
	res := &Result{Listing: l}
	switch l.Kind {
	case KindAll:
		res.Posts = c.posts.Find(repository.PostFilter{})
	case KindGroup:
		g, err := c.groups.GetBySlug(ctx, l.Slug)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", l.Slug, err)
		}
		res.Group = g
		res.Posts = c.posts.Find(repository.PostFilter{GroupID: &g.ID})
	case KindAuthor:
		u, err := c.users.GetByUsername(ctx, l.Username)
		if err != nil {
			return nil, fmt.Errorf("author %q: %w", l.Username, err)
		}
		res.Author = u
		res.Posts = c.posts.Find(repository.PostFilter{AuthorID: &u.ID})
	case KindFollowed:
		id := l.FollowerID
		res.Posts = c.posts.Find(repository.PostFilter{FollowerID: &id})
	default:
		return nil, fmt.Errorf("unknown listing kind %v", l.Kind)
	}
	return res, nil
}
