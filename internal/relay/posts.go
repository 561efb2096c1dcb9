package relay

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thanksrelay/relay/internal/db"
	"github.com/thanksrelay/relay/internal/models"
	"github.com/thanksrelay/relay/pkg/logging"
	"github.com/thanksrelay/relay/pkg/telemetry"
)

// LikeBudget is the per-user like allowance on a single post. Likes past
// the budget are silently dropped, not rejected.
const LikeBudget = 10

// Notifier is told after any post mutation commits, so live feed
// subscribers can be pushed a refreshed result set.
type Notifier interface {
	PostsChanged()
}

// PostInput carries the author-supplied fields of a new post
type PostInput struct {
	Text        string
	Feeling     *string
	Tags        []string
	AuthorID    string
	IsAnonymous bool
}

// PostService implements the post-chain model: creation, counter
// propagation, likes, and chain reconstruction.
type PostService struct {
	db     *gorm.DB
	posts  *db.PostRepository
	notify Notifier
	logger *zap.Logger
}

// NewPostService creates a new post service
func NewPostService(gdb *gorm.DB, posts *db.PostRepository, notify Notifier) *PostService {
	return &PostService{
		db:     gdb,
		posts:  posts,
		notify: notify,
		logger: logging.WithComponent("posts"),
	}
}

// normalizeTags trims whitespace, strips quote characters, and drops
// empty entries so tags stay queryable as plain words.
func normalizeTags(tags []string) models.StringList {
	out := models.StringList{}
	for _, t := range tags {
		t = strings.Trim(strings.TrimSpace(t), `"`)
		if t != "" {
			out = out.Add(t)
		}
	}
	return out
}

// forUpdate locks the selected rows for the duration of the transaction.
// sqlite serializes writers on its own and rejects FOR UPDATE syntax.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// CreateThanks inserts a new root gratitude post with zeroed counters
func (s *PostService) CreateThanks(ctx context.Context, in PostInput) (*models.Post, error) {
	post := &models.Post{
		Type:        models.PostTypeThanks,
		Text:        in.Text,
		Feeling:     in.Feeling,
		Tags:        normalizeTags(in.Tags),
		AuthorID:    in.AuthorID,
		IsAnonymous: in.IsAnonymous,
	}

	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, err
	}

	s.logger.Info("thanks post created",
		zap.String("post_id", post.ID),
		zap.String("author_id", post.AuthorID))

	s.postsChanged()
	return post, nil
}

// CreateNextAction inserts an action chained to parentID. The parent's
// actionCount and, when distinct, the chain root's actionCount each go up
// by one, atomically with the insert. The root therefore accumulates one
// increment per descendant at any depth while intermediate posts only
// count direct children; that asymmetry is intentional and relied on by
// the ranking query.
func (s *PostService) CreateNextAction(ctx context.Context, parentID string, in PostInput) (*models.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, "relay.create_next_action")
	defer span.End()

	var child *models.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var parent models.Post
		if err := forUpdate(tx).Where("id = ?", parentID).First(&parent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrParentNotFound
			}
			return err
		}

		rootID := parent.RootID()
		var root *models.Post
		if rootID != parent.ID {
			root = &models.Post{}
			if err := forUpdate(tx).Where("id = ?", rootID).First(root).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrRootNotFound
				}
				return err
			}
		}

		if err := tx.Model(&parent).
			UpdateColumn("action_count", gorm.Expr("action_count + ?", 1)).Error; err != nil {
			return err
		}
		if root != nil {
			if err := tx.Model(root).
				UpdateColumn("action_count", gorm.Expr("action_count + ?", 1)).Error; err != nil {
				return err
			}
		}

		child = &models.Post{
			Type:           models.PostTypeAction,
			Text:           in.Text,
			Feeling:        in.Feeling,
			Tags:           normalizeTags(in.Tags),
			AuthorID:       in.AuthorID,
			IsAnonymous:    in.IsAnonymous,
			Depth:          parent.Depth + 1,
			ParentPostID:   &parent.ID,
			RootPostID:     &rootID,
			ParentAuthorID: &parent.AuthorID,
		}
		return tx.Create(child).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("next action created",
		zap.String("post_id", child.ID),
		zap.String("parent_id", parentID),
		zap.Int("depth", child.Depth))

	s.postsChanged()
	return child, nil
}

// Like records one like from userID on postID, up to LikeBudget per user.
// At the budget the call is a silent no-op. The total counter and the
// likedBy membership set stay consistent with the per-user map.
func (s *PostService) Like(ctx context.Context, postID, userID string) error {
	ctx, span := telemetry.StartSpan(ctx, "relay.like_post")
	defer span.End()

	liked := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := forUpdate(tx).Where("id = ?", postID).First(&post).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}

		if post.LikesMap == nil {
			post.LikesMap = models.LikeMap{}
		}
		current := post.LikesMap[userID]
		if current >= LikeBudget {
			return nil
		}

		post.LikesMap[userID] = current + 1
		updates := map[string]interface{}{
			"likes_map":  post.LikesMap,
			"like_count": gorm.Expr("like_count + ?", 1),
		}
		if current == 0 {
			updates["liked_by"] = post.LikedBy.Add(userID)
		}
		liked = true
		return tx.Model(&post).Updates(updates).Error
	})
	if err != nil {
		return err
	}

	if liked {
		s.postsChanged()
	}
	return nil
}

// GetByID fetches one post
func (s *PostService) GetByID(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}

// AllPosts fetches every post newest first
func (s *PostService) AllPosts(ctx context.Context) ([]*models.Post, error) {
	return s.posts.GetAll(ctx)
}

// ThanksPosts fetches every root post newest first
func (s *PostService) ThanksPosts(ctx context.Context) ([]*models.Post, error) {
	return s.posts.GetByType(ctx, models.PostTypeThanks)
}

// Children fetches the direct follow-ups of one post, oldest first
func (s *PostService) Children(ctx context.Context, postID string) ([]*models.Post, error) {
	return s.posts.GetChildren(ctx, postID)
}

// Delete removes a post. Counters on relatives are left untouched.
func (s *PostService) Delete(ctx context.Context, id string) error {
	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}
	s.postsChanged()
	return nil
}

func (s *PostService) postsChanged() {
	if s.notify != nil {
		s.notify.PostsChanged()
	}
}
