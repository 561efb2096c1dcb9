package relay

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/thanksrelay/relay/internal/db"
	"github.com/thanksrelay/relay/internal/models"
	"github.com/thanksrelay/relay/pkg/logging"
	"github.com/thanksrelay/relay/pkg/telemetry"
)

// TaskService manages per-user saved tasks
type TaskService struct {
	db     *gorm.DB
	tasks  *db.TaskRepository
	logger *zap.Logger
}

// NewTaskService creates a new task service
func NewTaskService(gdb *gorm.DB, tasks *db.TaskRepository) *TaskService {
	return &TaskService{
		db:     gdb,
		tasks:  tasks,
		logger: logging.WithComponent("tasks"),
	}
}

// SaveAsTask bookmarks a post for the user. The post's savedAsTasks set
// and the new Task row are written in one transaction; a second save of
// the same post by the same user is rejected.
func (s *TaskService) SaveAsTask(ctx context.Context, postID, userID string) (*models.Task, error) {
	ctx, span := telemetry.StartSpan(ctx, "relay.save_as_task")
	defer span.End()

	var task *models.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := forUpdate(tx).Where("id = ?", postID).First(&post).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}

		if post.SavedAsTasks.Contains(userID) {
			return ErrTaskAlreadySaved
		}

		task = &models.Task{
			UserID:       userID,
			PostID:       post.ID,
			PostType:     post.Type,
			PostText:     post.Text,
			PostFeeling:  post.Feeling,
			PostTags:     post.Tags,
			PostAuthorID: post.AuthorID,
			Status:       models.TaskStatusPending,
		}
		if err := tx.Create(task).Error; err != nil {
			return err
		}

		return tx.Model(&post).
			UpdateColumn("saved_as_tasks", post.SavedAsTasks.Add(userID)).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("task saved",
		zap.String("task_id", task.ID),
		zap.String("post_id", postID),
		zap.String("user_id", userID))

	return task, nil
}

// Complete transitions a pending task to completed, recording the action
// posted to complete it. A task that is absent or owned by another user
// is reported missing either way.
func (s *TaskService) Complete(ctx context.Context, taskID, userID, actionID string) error {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if task == nil || task.UserID != userID {
		return ErrTaskNotFound
	}

	now := time.Now().UTC()
	return s.db.WithContext(ctx).Model(task).Updates(map[string]interface{}{
		"status":              models.TaskStatusCompleted,
		"completed_at":        &now,
		"completed_action_id": &actionID,
	}).Error
}

// Delete removes a task. Tasks are deletable in any status, but only by
// their owner.
func (s *TaskService) Delete(ctx context.Context, taskID, userID string) error {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if task == nil || task.UserID != userID {
		return ErrTaskNotFound
	}
	return s.db.WithContext(ctx).Delete(task).Error
}

// MyTasks returns the user's tasks newest first. status may be "pending",
// "completed", or empty for all.
func (s *TaskService) MyTasks(ctx context.Context, userID string, status models.TaskStatus) ([]*models.Task, error) {
	return s.tasks.GetByUser(ctx, userID, status)
}

// IsSaved reports whether the user already saved the post as a task
func (s *TaskService) IsSaved(ctx context.Context, postID, userID string) (bool, error) {
	return s.tasks.ExistsForPost(ctx, userID, postID)
}
