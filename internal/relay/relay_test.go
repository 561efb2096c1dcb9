package relay

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/thanksrelay/relay/internal/db"
	"github.com/thanksrelay/relay/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	// Each sqlite connection gets its own in-memory database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := gdb.AutoMigrate(&models.User{}, &models.Post{}, &models.Task{}, &models.HiddenPost{}); err != nil {
		t.Fatalf("Failed to migrate test schema: %v", err)
	}
	return gdb
}

func newPostService(t *testing.T) (*PostService, *gorm.DB) {
	t.Helper()
	gdb := newTestDB(t)
	repo := db.NewRepository(gdb)
	return NewPostService(gdb, db.NewPostRepository(repo), nil), gdb
}

func mustCreateThanks(t *testing.T, svc *PostService, author, text string, tags ...string) *models.Post {
	t.Helper()
	post, err := svc.CreateThanks(context.Background(), PostInput{
		Text:     text,
		Tags:     tags,
		AuthorID: author,
	})
	if err != nil {
		t.Fatalf("CreateThanks failed: %v", err)
	}
	// Keep creation timestamps strictly ordered.
	time.Sleep(2 * time.Millisecond)
	return post
}

func mustCreateAction(t *testing.T, svc *PostService, parentID, author, text string) *models.Post {
	t.Helper()
	post, err := svc.CreateNextAction(context.Background(), parentID, PostInput{
		Text:     text,
		AuthorID: author,
	})
	if err != nil {
		t.Fatalf("CreateNextAction failed: %v", err)
	}
	time.Sleep(2 * time.Millisecond)
	return post
}

func reloadPost(t *testing.T, gdb *gorm.DB, id string) *models.Post {
	t.Helper()
	var post models.Post
	if err := gdb.Where("id = ?", id).First(&post).Error; err != nil {
		t.Fatalf("Failed to reload post %s: %v", id, err)
	}
	return &post
}
