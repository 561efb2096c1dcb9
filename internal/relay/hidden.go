package relay

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thanksrelay/relay/internal/db"
	"github.com/thanksrelay/relay/internal/models"
	"github.com/thanksrelay/relay/pkg/logging"
)

// HiddenService manages per-user hidden-post entries. Writes are plain
// last-write-wins upserts: only the hiding user ever touches their own
// entries, so no transaction is needed.
type HiddenService struct {
	db     *gorm.DB
	hidden *db.HiddenRepository
	posts  *db.PostRepository
	users  *db.UserRepository
	logger *zap.Logger
}

// NewHiddenService creates a new hidden-post service
func NewHiddenService(gdb *gorm.DB, hidden *db.HiddenRepository, posts *db.PostRepository, users *db.UserRepository) *HiddenService {
	return &HiddenService{
		db:     gdb,
		hidden: hidden,
		posts:  posts,
		users:  users,
		logger: logging.WithComponent("hidden"),
	}
}

// Hide records the post as hidden for the user, snapshotting the post and
// (for non-anonymous posts) its author so hidden entries can be listed
// and filtered later without re-reading the post.
func (s *HiddenService) Hide(ctx context.Context, postID, userID string) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}

	var author *models.AuthorSnapshot
	if !post.IsAnonymous {
		profile, err := s.users.GetByUID(ctx, post.AuthorID)
		if err != nil {
			// Author lookup is best-effort; the snapshot is optional.
			s.logger.Warn("author lookup failed", zap.String("author_id", post.AuthorID), zap.Error(err))
		} else if profile != nil {
			author = &models.AuthorSnapshot{
				DisplayName: profile.DisplayName,
				Email:       profile.Email,
			}
		}
	}

	entry := &models.HiddenPost{
		UserID: userID,
		PostID: postID,
		PostSnapshot: models.PostSnapshot{
			Type:        post.Type,
			Text:        post.Text,
			Feeling:     post.Feeling,
			Tags:        post.Tags,
			AuthorID:    post.AuthorID,
			IsAnonymous: post.IsAnonymous,
			Timestamp:   post.Timestamp,
			Depth:       post.Depth,
		},
		AuthorSnapshot: author,
	}

	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
			UpdateAll: true,
		}).
		Create(entry).Error
}

// Unhide removes the user's hidden entry for the post
func (s *HiddenService) Unhide(ctx context.Context, postID, userID string) error {
	return s.hidden.Delete(ctx, userID, postID)
}

// HiddenIDs returns the ids of every post the user has hidden
func (s *HiddenService) HiddenIDs(ctx context.Context, userID string) ([]string, error) {
	entries, err := s.hidden.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.PostID)
	}
	return ids, nil
}

// HiddenDetails returns the user's hidden entries with their snapshots
func (s *HiddenService) HiddenDetails(ctx context.Context, userID string) ([]*models.HiddenPost, error) {
	return s.hidden.GetByUser(ctx, userID)
}

// IsHidden reports whether the user has hidden the post
func (s *HiddenService) IsHidden(ctx context.Context, postID, userID string) (bool, error) {
	entry, err := s.hidden.Get(ctx, userID, postID)
	if err != nil {
		return false, err
	}
	return entry != nil, nil
}

// HideByTag hides every post carrying the tag. Individual failures skip
// the post rather than aborting the sweep. Returns the number hidden.
func (s *HiddenService) HideByTag(ctx context.Context, userID, tag string) (int, error) {
	var posts []*models.Post
	if err := s.db.WithContext(ctx).
		Where(`tags LIKE ? ESCAPE '\'`, jsonMemberPattern(tag)).
		Find(&posts).Error; err != nil {
		return 0, err
	}

	count := 0
	for _, p := range posts {
		if err := s.Hide(ctx, p.ID, userID); err != nil {
			s.logger.Warn("failed to hide post", zap.String("post_id", p.ID), zap.Error(err))
			continue
		}
		count++
	}
	return count, nil
}

// HideByAuthor hides every post by the author. Hiding your own posts is
// rejected.
func (s *HiddenService) HideByAuthor(ctx context.Context, userID, authorID string) (int, error) {
	if userID == authorID {
		return 0, ErrHideOwnPost
	}

	var posts []*models.Post
	if err := s.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Find(&posts).Error; err != nil {
		return 0, err
	}

	count := 0
	for _, p := range posts {
		if err := s.Hide(ctx, p.ID, userID); err != nil {
			s.logger.Warn("failed to hide post", zap.String("post_id", p.ID), zap.Error(err))
			continue
		}
		count++
	}
	return count, nil
}

// HiddenByTag filters the user's hidden entries by snapshot tag
func (s *HiddenService) HiddenByTag(ctx context.Context, userID, tag string) ([]*models.HiddenPost, error) {
	entries, err := s.hidden.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	matched := make([]*models.HiddenPost, 0)
	for _, e := range entries {
		if e.PostSnapshot.Tags.Contains(tag) {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

// HiddenByAuthor filters the user's hidden entries by snapshot author
func (s *HiddenService) HiddenByAuthor(ctx context.Context, userID, authorID string) ([]*models.HiddenPost, error) {
	entries, err := s.hidden.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	matched := make([]*models.HiddenPost, 0)
	for _, e := range entries {
		if e.PostSnapshot.AuthorID == authorID {
			matched = append(matched, e)
		}
	}
	return matched, nil
}
