package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostType distinguishes root gratitude posts from chained follow-ups
type PostType string

const (
	// PostTypeThanks is a root gratitude post, depth 0
	PostTypeThanks PostType = "thanks"
	// PostTypeAction is a follow-up chained to a parent, depth = parent+1
	PostTypeAction PostType = "action"
)

// Post represents a Thanks or Next Action post
type Post struct {
	ID             string     `gorm:"type:varchar(36);primaryKey;column:id" json:"id"`
	Type           PostType   `gorm:"type:varchar(8);not null;index;column:type" json:"type"`
	Text           string     `gorm:"type:text;not null;column:text" json:"text"`
	Feeling        *string    `gorm:"type:varchar(64);column:feeling" json:"feeling"`
	Tags           StringList `gorm:"type:text;column:tags" json:"tags"`
	AuthorID       string     `gorm:"type:varchar(36);not null;index;column:author_id" json:"authorId"`
	IsAnonymous    bool       `gorm:"not null;default:false;column:is_anonymous" json:"isAnonymous"`
	Timestamp      time.Time  `gorm:"not null;index;autoCreateTime;column:timestamp" json:"timestamp"`
	LikeCount      int        `gorm:"not null;default:0;column:like_count" json:"likeCount"`
	LikesMap       LikeMap    `gorm:"type:text;column:likes_map" json:"likesMap"`
	LikedBy        StringList `gorm:"type:text;column:liked_by" json:"likedBy"`
	ActionCount    int        `gorm:"not null;default:0;column:action_count" json:"actionCount"`
	Depth          int        `gorm:"not null;default:0;column:depth" json:"depth"`
	ParentPostID   *string    `gorm:"type:varchar(36);index;column:parent_post_id" json:"parentPostId"`
	RootPostID     *string    `gorm:"type:varchar(36);index;column:root_post_id" json:"rootPostId"`
	ParentAuthorID *string    `gorm:"type:varchar(36);index;column:parent_author_id" json:"parentAuthorId"`
	SavedAsTasks   StringList `gorm:"type:text;column:saved_as_tasks" json:"savedAsTasks"`
}

// TableName specifies the table name for Post
func (Post) TableName() string {
	return "relay_posts"
}

// BeforeCreate assigns an opaque document id on insert
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Tags == nil {
		p.Tags = StringList{}
	}
	if p.LikesMap == nil {
		p.LikesMap = LikeMap{}
	}
	if p.LikedBy == nil {
		p.LikedBy = StringList{}
	}
	if p.SavedAsTasks == nil {
		p.SavedAsTasks = StringList{}
	}
	return nil
}

// IsRoot reports whether the post is the root of its chain
func (p *Post) IsRoot() bool {
	return p.Type == PostTypeThanks
}

// RootID resolves the chain root id: self for thanks posts, the recorded
// root for actions
func (p *Post) RootID() string {
	if p.IsRoot() || p.RootPostID == nil {
		return p.ID
	}
	return *p.RootPostID
}
