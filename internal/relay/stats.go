package relay

import (
	"context"

	"github.com/thanksrelay/relay/internal/models"
)

// ProfileStats are the relay counters shown on a user's page: actions the
// user authored, and actions others chained onto the user's posts.
type ProfileStats struct {
	RelaysGiven    int64 `json:"relaysGiven"`
	RelaysReceived int64 `json:"relaysReceived"`
}

// Stats computes the user's relay counters
func (s *PostService) Stats(ctx context.Context, uid string) (*ProfileStats, error) {
	var given int64
	if err := s.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("author_id = ? AND type = ?", uid, models.PostTypeAction).
		Count(&given).Error; err != nil {
		return nil, err
	}

	// Received excludes self-replies.
	var received int64
	if err := s.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("parent_author_id = ? AND author_id <> ? AND type = ?", uid, uid, models.PostTypeAction).
		Count(&received).Error; err != nil {
		return nil, err
	}

	return &ProfileStats{RelaysGiven: given, RelaysReceived: received}, nil
}

// MyThanksPosts returns the thanks posts the user authored, newest first
func (s *PostService) MyThanksPosts(ctx context.Context, uid string) ([]*models.Post, error) {
	var posts []*models.Post
	err := s.db.WithContext(ctx).
		Where("author_id = ? AND type = ?", uid, models.PostTypeThanks).
		Order("timestamp DESC").
		Find(&posts).Error
	return posts, err
}

// MyActions returns the actions the user chained onto others' posts,
// newest first
func (s *PostService) MyActions(ctx context.Context, uid string) ([]*models.Post, error) {
	var posts []*models.Post
	err := s.db.WithContext(ctx).
		Where("author_id = ? AND type = ?", uid, models.PostTypeAction).
		Order("timestamp DESC").
		Find(&posts).Error
	return posts, err
}

// MyLikedPosts returns every post the user has liked at least once,
// newest first
func (s *PostService) MyLikedPosts(ctx context.Context, uid string) ([]*models.Post, error) {
	var posts []*models.Post
	err := s.db.WithContext(ctx).
		Where(`liked_by LIKE ? ESCAPE '\'`, jsonMemberPattern(uid)).
		Order("timestamp DESC").
		Find(&posts).Error
	return posts, err
}
