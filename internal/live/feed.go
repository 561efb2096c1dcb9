package live

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/thanksrelay/relay/internal/db"
	"github.com/thanksrelay/relay/internal/models"
	"github.com/thanksrelay/relay/pkg/logging"
)

// Message is the frame pushed to subscribers: the full refreshed post
// set, not a delta, on every change.
type Message struct {
	Type string         `json:"type"`
	Data []*models.Post `json:"data"`
}

// Feed republishes the full ordered post set to the hub whenever post
// data changes. It satisfies the post service's Notifier.
type Feed struct {
	hub    *Hub
	posts  *db.PostRepository
	logger *zap.Logger
}

// NewFeed creates a feed publisher bound to the hub
func NewFeed(hub *Hub, posts *db.PostRepository) *Feed {
	return &Feed{
		hub:    hub,
		posts:  posts,
		logger: logging.WithComponent("live-feed"),
	}
}

// PostsChanged reloads the post set and broadcasts it. Called after every
// committed post mutation; runs async so mutations never wait on slow
// subscribers.
func (f *Feed) PostsChanged() {
	go f.publish()
}

func (f *Feed) publish() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	posts, err := f.posts.GetAll(ctx)
	if err != nil {
		f.logger.Error("failed to load posts for feed", zap.Error(err))
		return
	}

	payload, err := json.Marshal(Message{Type: "posts", Data: posts})
	if err != nil {
		f.logger.Error("failed to encode feed message", zap.Error(err))
		return
	}

	f.hub.Broadcast <- payload
}
