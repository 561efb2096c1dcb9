package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thanksrelay/relay/internal/cache"
	"github.com/thanksrelay/relay/internal/relay"
	"github.com/thanksrelay/relay/pkg/config"
)

// PostHandler exposes post, chain, ranking and search endpoints
type PostHandler struct {
	posts   *relay.PostService
	cache   *cache.Cache
	ranking relay.RankingOptions
}

// NewPostHandler creates a new post handler
func NewPostHandler(posts *relay.PostService, c *cache.Cache, cfg *config.RankingConfig) *PostHandler {
	opts := relay.DefaultRankingOptions()
	if cfg != nil {
		opts = relay.RankingOptions{
			FetchLimit:  cfg.FetchLimit,
			ResultLimit: cfg.ResultLimit,
			CacheTTL:    cfg.CacheTTL,
		}
	}
	return &PostHandler{posts: posts, cache: c, ranking: opts}
}

type postInput struct {
	Text        string   `json:"text" binding:"required,min=1,max=1000"`
	Feeling     *string  `json:"feeling" binding:"omitempty,max=64"`
	Tags        []string `json:"tags" binding:"max=10,dive,max=32"`
	IsAnonymous bool     `json:"isAnonymous"`
}

// CreateThanks handles POST /api/posts
func (h *PostHandler) CreateThanks(c *gin.Context) {
	var in postInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	post, err := h.posts.CreateThanks(c.Request.Context(), relay.PostInput{
		Text:        in.Text,
		Feeling:     in.Feeling,
		Tags:        in.Tags,
		AuthorID:    CurrentUID(c),
		IsAnonymous: in.IsAnonymous,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// CreateAction handles POST /api/posts/:id/actions
func (h *PostHandler) CreateAction(c *gin.Context) {
	var in postInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	post, err := h.posts.CreateNextAction(c.Request.Context(), c.Param("id"), relay.PostInput{
		Text:        in.Text,
		Feeling:     in.Feeling,
		Tags:        in.Tags,
		AuthorID:    CurrentUID(c),
		IsAnonymous: in.IsAnonymous,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// Like handles POST /api/posts/:id/like
func (h *PostHandler) Like(c *gin.Context) {
	if err := h.posts.Like(c.Request.Context(), c.Param("id"), CurrentUID(c)); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": true})
}

// List handles GET /api/posts
func (h *PostHandler) List(c *gin.Context) {
	posts, err := h.posts.AllPosts(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// ListThanks handles GET /api/posts/thanks
func (h *PostHandler) ListThanks(c *gin.Context) {
	posts, err := h.posts.ThanksPosts(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// Get handles GET /api/posts/:id
func (h *PostHandler) Get(c *gin.Context) {
	post, err := h.posts.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// Chain handles GET /api/posts/:id/chain
func (h *PostHandler) Chain(c *gin.Context) {
	chain, err := h.posts.GetPostChain(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, chain)
}

// Children handles GET /api/posts/:id/children
func (h *PostHandler) Children(c *gin.Context) {
	posts, err := h.posts.Children(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// Delete handles DELETE /api/posts/:id
func (h *PostHandler) Delete(c *gin.Context) {
	post, err := h.posts.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if post.AuthorID != CurrentUID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the author can delete a post"})
		return
	}
	if err := h.posts.Delete(c.Request.Context(), post.ID); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// Ranking handles GET /api/ranking?period=daily|weekly|monthly
func (h *PostHandler) Ranking(c *gin.Context) {
	period := c.DefaultQuery("period", relay.PeriodDaily)
	posts, err := h.posts.FetchRanking(c.Request.Context(), period, h.ranking, h.cache)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// Search handles GET /api/search?q=...&type=tag|content
func (h *PostHandler) Search(c *gin.Context) {
	posts, err := h.posts.Search(c.Request.Context(), c.Query("q"), c.DefaultQuery("type", relay.SearchByContent))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}
