package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thanksrelay/relay/internal/relay"
)

// ProfileHandler exposes the authenticated user's page queries
type ProfileHandler struct {
	posts *relay.PostService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(posts *relay.PostService) *ProfileHandler {
	return &ProfileHandler{posts: posts}
}

// Stats handles GET /api/me/stats
func (h *ProfileHandler) Stats(c *gin.Context) {
	stats, err := h.posts.Stats(c.Request.Context(), CurrentUID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Posts handles GET /api/me/posts
func (h *ProfileHandler) Posts(c *gin.Context) {
	posts, err := h.posts.MyThanksPosts(c.Request.Context(), CurrentUID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// Actions handles GET /api/me/actions
func (h *ProfileHandler) Actions(c *gin.Context) {
	posts, err := h.posts.MyActions(c.Request.Context(), CurrentUID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// Liked handles GET /api/me/liked
func (h *ProfileHandler) Liked(c *gin.Context) {
	posts, err := h.posts.MyLikedPosts(c.Request.Context(), CurrentUID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}
