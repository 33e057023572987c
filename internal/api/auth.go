package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nhle/todocal/internal/service"
)

func (h *handlers) register(c *gin.Context) {
	var in service.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	session, err := h.Users.Register(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (h *handlers) login(c *gin.Context) {
	var in loginRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	session, err := h.Users.Login(c.Request.Context(), in.Username, in.Password)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *handlers) me(c *gin.Context) {
	user, err := h.Users.Me(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *handlers) listNotifications(c *gin.Context) {
	notifications, err := h.Notifications.ListUnreadNotifications(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, notifications)
}

func (h *handlers) markNotificationRead(c *gin.Context) {
	err := h.Notifications.MarkNotificationRead(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
