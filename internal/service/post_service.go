package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/d60-Lab/yatube/internal/auth"
	"github.com/d60-Lab/yatube/internal/media"
	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/repository"
	"github.com/d60-Lab/yatube/pkg/logger"
)

// PostForm 已由表单层校验的帖子数据
type PostForm struct {
	Text    string
	GroupID *uint
	Image   *media.Upload
}

// PostDetail 帖子详情页
type PostDetail struct {
	Post       *model.Post      `json:"post"`
	Comments   []*model.Comment `json:"comments"`
	PostsCount int64            `json:"posts_count"`
}

type PostService interface {
	Get(ctx context.Context, id uint) (*model.Post, error)
	Detail(ctx context.Context, id uint) (*PostDetail, error)
	Create(ctx context.Context, actor auth.Identity, form PostForm, next string) (*Outcome, error)
	Edit(ctx context.Context, actor auth.Identity, postID uint, form PostForm, next string) (*Outcome, error)
	AddComment(ctx context.Context, actor auth.Identity, postID uint, text, next string) (*Outcome, error)
}

type postService struct {
	posts    repository.PostRepository
	groups   repository.GroupRepository
	comments repository.CommentRepository
	media    *media.Storage
	gate     *auth.Gate
}

func NewPostService(posts repository.PostRepository, groups repository.GroupRepository, comments repository.CommentRepository, storage *media.Storage, gate *auth.Gate) PostService {
	return &postService{posts: posts, groups: groups, comments: comments, media: storage, gate: gate}
}

func (s *postService) Get(ctx context.Context, id uint) (*model.Post, error) {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("post %d: %w", id, err)
	}
	return p, nil
}

func (s *postService) Detail(ctx context.Context, id uint) (*PostDetail, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	cnt, err := s.posts.CountByAuthor(ctx, p.AuthorID)
	if err != nil {
		return nil, err
	}
	return &PostDetail{Post: p, Comments: comments, PostsCount: cnt}, nil
}

// Create 发帖；图片与记录一起落地，插入失败时删除已保存的图片
func (s *postService) Create(ctx context.Context, actor auth.Identity, form PostForm, next string) (*Outcome, error) {
	if d := s.gate.Check(actor, auth.ActionCreatePost, next); !d.Allowed {
		return redirectTo(d), nil
	}
	if err := s.checkGroup(ctx, form.GroupID); err != nil {
		return nil, err
	}

	post := &model.Post{Text: form.Text, AuthorID: actor.UserID, GroupID: form.GroupID}
	err := s.posts.Transaction(ctx, func(repo repository.PostRepository) error {
		if err := s.attachImage(ctx, post, form.Image); err != nil {
			return err
		}
		return repo.Create(ctx, post)
	})
	if err != nil {
		s.discardImage(post.Image)
		return nil, fmt.Errorf("create post: %w", err)
	}

	logger.Info("post created", zap.Uint("post_id", post.ID), zap.Uint("author_id", actor.UserID), zap.String("excerpt", post.Excerpt()))
	return &Outcome{Performed: true, Redirect: auth.ProfilePath(actor.Username)}, nil
}

// Edit 仅作者可编辑；其他人跳转到只读详情页，不做任何修改
func (s *postService) Edit(ctx context.Context, actor auth.Identity, postID uint, form PostForm, next string) (*Outcome, error) {
	if d := s.gate.Check(actor, auth.ActionEditPost, next); !d.Allowed {
		return redirectTo(d), nil
	}
	post, err := s.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if d := s.gate.CheckEdit(actor, post, next); !d.Allowed {
		logger.Info("edit denied", zap.Uint("post_id", postID), zap.Uint("actor_id", actor.UserID))
		return redirectTo(d), nil
	}
	if err := s.checkGroup(ctx, form.GroupID); err != nil {
		return nil, err
	}

	oldImage := post.Image
	post.Text = form.Text
	post.GroupID = form.GroupID
	if err := s.attachImage(ctx, post, form.Image); err != nil {
		return nil, err
	}
	if err := s.posts.Update(ctx, post); err != nil {
		if post.Image != oldImage {
			s.discardImage(post.Image)
		}
		return nil, fmt.Errorf("update post %d: %w", postID, err)
	}
	if post.Image != oldImage {
		s.discardImage(oldImage)
	}
	return &Outcome{Performed: true, Redirect: auth.PostDetailPath(postID)}, nil
}

// AddComment 空评论不保存，但仍跳回详情页
func (s *postService) AddComment(ctx context.Context, actor auth.Identity, postID uint, text, next string) (*Outcome, error) {
	if d := s.gate.Check(actor, auth.ActionCreateComment, next); !d.Allowed {
		return redirectTo(d), nil
	}
	if _, err := s.Get(ctx, postID); err != nil {
		return nil, err
	}
	out := &Outcome{Redirect: auth.PostDetailPath(postID)}
	if strings.TrimSpace(text) == "" {
		return out, nil
	}
	c := &model.Comment{Text: text, PostID: postID, AuthorID: actor.UserID}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	out.Performed = true
	return out, nil
}

func (s *postService) checkGroup(ctx context.Context, groupID *uint) error {
	if groupID == nil {
		return nil
	}
	if _, err := s.groups.GetByID(ctx, *groupID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrGroupNotFound
		}
		return err
	}
	return nil
}

func (s *postService) attachImage(ctx context.Context, post *model.Post, up *media.Upload) error {
	if up == nil || s.media == nil {
		return nil
	}
	ref, err := s.media.Save(ctx, up)
	if err != nil {
		return err
	}
	post.Image = ref
	return nil
}

func (s *postService) discardImage(ref string) {
	if ref == "" || s.media == nil {
		return
	}
	if err := s.media.Remove(ref); err != nil {
		logger.Warn("failed to remove image", zap.String("image", ref), zap.Error(err))
	}
}
