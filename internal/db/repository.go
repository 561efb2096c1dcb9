package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/thanksrelay/relay/internal/models"
)

// Repository provides database access methods
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Gorm exposes the underlying handle for transactional service code
func (r *Repository) Gorm() *gorm.DB {
	return r.db
}

// UserRepository provides user-related database operations
type UserRepository struct {
	*Repository
}

// NewUserRepository creates a new user repository
func NewUserRepository(repo *Repository) *UserRepository {
	return &UserRepository{Repository: repo}
}

// GetByUID retrieves a user by uid
func (r *UserRepository) GetByUID(ctx context.Context, uid string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("uid = ?", uid).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// PostRepository provides post-related database operations
type PostRepository struct {
	*Repository
}

// NewPostRepository creates a new post repository
func NewPostRepository(repo *Repository) *PostRepository {
	return &PostRepository{Repository: repo}
}

// GetByID retrieves a post by ID
func (r *PostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// GetAll retrieves all posts ordered newest first
func (r *PostRepository) GetAll(ctx context.Context) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.db.WithContext(ctx).
		Order("timestamp DESC").
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// GetByType retrieves all posts of one type ordered newest first
func (r *PostRepository) GetByType(ctx context.Context, t models.PostType) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.db.WithContext(ctx).
		Where("type = ?", t).
		Order("timestamp DESC").
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// GetByRoot retrieves all posts recorded against one chain root
func (r *PostRepository) GetByRoot(ctx context.Context, rootID string) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.db.WithContext(ctx).
		Where("root_post_id = ?", rootID).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// GetChildren retrieves the direct children of a post ordered oldest first
func (r *PostRepository) GetChildren(ctx context.Context, parentID string) ([]*models.Post, error) {
	var posts []*models.Post
	if err := r.db.WithContext(ctx).
		Where("parent_post_id = ?", parentID).
		Order("timestamp ASC").
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// Delete removes a post by ID
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Post{}).Error
}

// TaskRepository provides task-related database operations
type TaskRepository struct {
	*Repository
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(repo *Repository) *TaskRepository {
	return &TaskRepository{Repository: repo}
}

// GetByID retrieves a task by ID
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

// GetByUser retrieves a user's tasks newest first, optionally filtered by status
func (r *TaskRepository) GetByUser(ctx context.Context, userID string, status models.TaskStatus) ([]*models.Task, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var tasks []*models.Task
	if err := q.Order("saved_at DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ExistsForPost reports whether the user already saved the post as a task
func (r *TaskRepository) ExistsForPost(ctx context.Context, userID, postID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// HiddenRepository provides hidden-post database operations
type HiddenRepository struct {
	*Repository
}

// NewHiddenRepository creates a new hidden-post repository
func NewHiddenRepository(repo *Repository) *HiddenRepository {
	return &HiddenRepository{Repository: repo}
}

// Get retrieves a user's hidden entry for one post
func (r *HiddenRepository) Get(ctx context.Context, userID, postID string) (*models.HiddenPost, error) {
	var hidden models.HiddenPost
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		First(&hidden).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &hidden, nil
}

// GetByUser retrieves all of a user's hidden entries
func (r *HiddenRepository) GetByUser(ctx context.Context, userID string) ([]*models.HiddenPost, error) {
	var hidden []*models.HiddenPost
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&hidden).Error; err != nil {
		return nil, err
	}
	return hidden, nil
}

// Delete removes a user's hidden entry for one post
func (r *HiddenRepository) Delete(ctx context.Context, userID, postID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.HiddenPost{}).Error
}
