package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// PostSnapshot captures the visible fields of a post at hide time, so
// hidden entries can be filtered without re-reading the post
type PostSnapshot struct {
	Type        PostType   `json:"type"`
	Text        string     `json:"text"`
	Feeling     *string    `json:"feeling"`
	Tags        StringList `json:"tags"`
	AuthorID    string     `json:"authorId"`
	IsAnonymous bool       `json:"isAnonymous"`
	Timestamp   time.Time  `json:"timestamp"`
	Depth       int        `json:"depth"`
}

// Value implements driver.Valuer
func (s PostSnapshot) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (s *PostSnapshot) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = PostSnapshot{}
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into PostSnapshot", value)
	}
}

// AuthorSnapshot captures the author profile at hide time. Nil for
// anonymous posts.
type AuthorSnapshot struct {
	DisplayName string  `json:"displayName"`
	Email       *string `json:"email"`
}

// Value implements driver.Valuer
func (s *AuthorSnapshot) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (s *AuthorSnapshot) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into AuthorSnapshot", value)
	}
}

// HiddenPost is a per-user record of a post the user chose not to see,
// keyed by (user, post). Last write wins; only the hiding user ever
// writes their own entries.
type HiddenPost struct {
	UserID         string          `gorm:"type:varchar(36);primaryKey;column:user_id" json:"userId"`
	PostID         string          `gorm:"type:varchar(36);primaryKey;column:post_id" json:"postId"`
	HiddenAt       time.Time       `gorm:"not null;autoCreateTime;column:hidden_at" json:"hiddenAt"`
	PostSnapshot   PostSnapshot    `gorm:"type:text;column:post_snapshot" json:"postSnapshot"`
	AuthorSnapshot *AuthorSnapshot `gorm:"type:text;column:author_snapshot" json:"authorSnapshot"`
}

// TableName specifies the table name for HiddenPost
func (HiddenPost) TableName() string {
	return "relay_hidden_posts"
}
