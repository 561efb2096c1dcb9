package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskStatus is the lifecycle state of a saved task
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

// Task is a user's personal bookmark of a post, with a denormalized
// snapshot of the post at save time
type Task struct {
	ID                string     `gorm:"type:varchar(36);primaryKey;column:id" json:"id"`
	UserID            string     `gorm:"type:varchar(36);not null;index;uniqueIndex:idx_relay_tasks_user_post;column:user_id" json:"userId"`
	PostID            string     `gorm:"type:varchar(36);not null;uniqueIndex:idx_relay_tasks_user_post;column:post_id" json:"postId"`
	PostType          PostType   `gorm:"type:varchar(8);not null;column:post_type" json:"postType"`
	PostText          string     `gorm:"type:text;not null;column:post_text" json:"postText"`
	PostFeeling       *string    `gorm:"type:varchar(64);column:post_feeling" json:"postFeeling"`
	PostTags          StringList `gorm:"type:text;column:post_tags" json:"postTags"`
	PostAuthorID      string     `gorm:"type:varchar(36);not null;column:post_author_id" json:"postAuthorId"`
	Status            TaskStatus `gorm:"type:varchar(16);not null;default:pending;index;column:status" json:"status"`
	SavedAt           time.Time  `gorm:"not null;autoCreateTime;column:saved_at" json:"savedAt"`
	CompletedAt       *time.Time `gorm:"column:completed_at" json:"completedAt"`
	CompletedActionID *string    `gorm:"type:varchar(36);column:completed_action_id" json:"completedActionId"`
}

// TableName specifies the table name for Task
func (Task) TableName() string {
	return "relay_tasks"
}

// BeforeCreate assigns an opaque document id on insert
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.PostTags == nil {
		t.PostTags = StringList{}
	}
	return nil
}
