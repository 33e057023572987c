package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nhle/todocal/internal/service"
)

func (h *handlers) listTags(c *gin.Context) {
	tags, err := h.Tags.List(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

// createTag rejects a name the user already has before creating.
func (h *handlers) createTag(c *gin.Context) {
	var in service.TagInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	ctx, userID := c.Request.Context(), currentUser(c)

	exists, err := h.Tags.ExistsByName(ctx, userID, strings.TrimSpace(in.Name))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if exists {
		respondError(c, h.Logger, &service.ConflictError{Message: "tag name already exists"})
		return
	}

	tag, err := h.Tags.Create(ctx, userID, in)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

func (h *handlers) updateTag(c *gin.Context) {
	var in service.TagInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	tag, err := h.Tags.Update(c.Request.Context(), currentUser(c), c.Param("id"), in)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *handlers) deleteTag(c *gin.Context) {
	deleted, err := h.Tags.Delete(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
