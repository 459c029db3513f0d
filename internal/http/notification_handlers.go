package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary Notification feed, newest first
// @Tags notifications
// @Produce json
// @Success 200 {array} domain.Notification
// @Router /notifications [get]
func (s *Server) listNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, s.feed.List())
}

// @Summary Unread notifications
// @Tags notifications
// @Produce json
// @Success 200 {array} domain.Notification
// @Router /notifications/unread [get]
func (s *Server) unreadNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, s.feed.Unread())
}

// @Summary Unread notification count
// @Tags notifications
// @Produce json
// @Success 200 {object} map[string]int
// @Router /notifications/unread-count [get]
func (s *Server) unreadCount(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"count": s.feed.UnreadCount()})
}

// @Summary Mark notification as read
// @Tags notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} domain.Notification
// @Failure 404 {object} map[string]string
// @Router /notifications/{id}/read [patch]
func (s *Server) markRead(c *gin.Context) {
	n, err := s.feed.MarkRead(c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

// @Summary Mark all notifications as read
// @Tags notifications
// @Produce json
// @Success 200 {object} map[string]int
// @Router /notifications/read-all [patch]
func (s *Server) markAllRead(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"marked": s.feed.MarkAllRead()})
}

// @Summary Delete notification
// @Tags notifications
// @Param id path string true "Notification ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /notifications/{id} [delete]
func (s *Server) deleteNotification(c *gin.Context) {
	if err := s.feed.Delete(c.Param("id")); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Clear the feed
// @Tags notifications
// @Success 204
// @Router /notifications [delete]
func (s *Server) clearNotifications(c *gin.Context) {
	s.feed.Clear()
	c.Status(http.StatusNoContent)
}
