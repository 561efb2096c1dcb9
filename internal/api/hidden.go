package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thanksrelay/relay/internal/relay"
)

// HiddenHandler exposes hidden-post endpoints
type HiddenHandler struct {
	hidden *relay.HiddenService
}

// NewHiddenHandler creates a new hidden-post handler
func NewHiddenHandler(hidden *relay.HiddenService) *HiddenHandler {
	return &HiddenHandler{hidden: hidden}
}

// Hide handles PUT /api/posts/:id/hide
func (h *HiddenHandler) Hide(c *gin.Context) {
	if err := h.hidden.Hide(c.Request.Context(), c.Param("id"), CurrentUID(c)); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hidden": true})
}

// Unhide handles DELETE /api/posts/:id/hide
func (h *HiddenHandler) Unhide(c *gin.Context) {
	if err := h.hidden.Unhide(c.Request.Context(), c.Param("id"), CurrentUID(c)); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hidden": false})
}

// List handles GET /api/hidden, with optional ?tag= or ?author= filters
func (h *HiddenHandler) List(c *gin.Context) {
	uid := CurrentUID(c)

	if tag := c.Query("tag"); tag != "" {
		entries, err := h.hidden.HiddenByTag(c.Request.Context(), uid, tag)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, entries)
		return
	}
	if author := c.Query("author"); author != "" {
		entries, err := h.hidden.HiddenByAuthor(c.Request.Context(), uid, author)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, entries)
		return
	}

	entries, err := h.hidden.HiddenDetails(c.Request.Context(), uid)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// ListIDs handles GET /api/hidden/ids
func (h *HiddenHandler) ListIDs(c *gin.Context) {
	ids, err := h.hidden.HiddenIDs(c.Request.Context(), CurrentUID(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ids)
}

type hideByTagInput struct {
	Tag string `json:"tag" binding:"required,max=32"`
}

// HideByTag handles POST /api/hidden/by-tag
func (h *HiddenHandler) HideByTag(c *gin.Context) {
	var in hideByTagInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	count, err := h.hidden.HideByTag(c.Request.Context(), CurrentUID(c), in.Tag)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hidden": count})
}

type hideByAuthorInput struct {
	AuthorID string `json:"authorId" binding:"required"`
}

// HideByAuthor handles POST /api/hidden/by-author
func (h *HiddenHandler) HideByAuthor(c *gin.Context) {
	var in hideByAuthorInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: " + err.Error()})
		return
	}

	count, err := h.hidden.HideByAuthor(c.Request.Context(), CurrentUID(c), in.AuthorID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hidden": count})
}
