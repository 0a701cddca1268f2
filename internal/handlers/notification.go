// internal/handlers/notification.go
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/zapcatalog/zapcatalog-backend/internal/config"
	"github.com/zapcatalog/zapcatalog-backend/internal/realtime"
	"github.com/zapcatalog/zapcatalog-backend/internal/services"
	"github.com/zapcatalog/zapcatalog-backend/internal/utils"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
	companyService      *services.CompanyService
	hub                 *realtime.Hub
	cfg                 *config.Config
}

func NewNotificationHandler(notificationService *services.NotificationService, companyService *services.CompanyService, hub *realtime.Hub, cfg *config.Config) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		companyService:      companyService,
		hub:                 hub,
		cfg:                 cfg,
	}
}

// GET /notifications
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	callerID, ok := callerUUID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	company, err := h.companyService.ResolveCompany(callerID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	params := utils.GetPaginationParams(c)

	notifications, total, err := h.notificationService.List(company.ID, callerID, params)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	result := utils.CreatePaginationResult(notifications, total, params)
	utils.PaginatedResponse(c, result)
}

// POST /notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	notificationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	callerID, exists := callerUUID(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	if err := h.notificationService.MarkRead(notificationID, callerID); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Notification acknowledged"})
}

// GET /notifications/stream
//
// Server-sent events. On connect the handler first replays the most recent
// unread notification, then switches to live hub delivery. The replay step
// covers events published while the dashboard was disconnected.
func (h *NotificationHandler) Stream(c *gin.Context) {
	callerID, ok := callerUUID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	company, err := h.companyService.ResolveCompany(callerID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	if h.cfg.Realtime.MaxClients > 0 && h.hub.SessionCount() >= h.cfg.Realtime.MaxClients {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Too many open streams"})
		return
	}

	sessionKey := c.Query("session")
	if sessionKey == "" {
		sessionKey = callerID.String()
	}

	session := h.hub.Subscribe(company.ID, sessionKey)
	defer h.hub.Unsubscribe(session)

	// The server-wide write timeout is a fixed deadline set when the
	// request is read; it would sever the stream before the first
	// heartbeat. Long-lived responses clear it and rely on heartbeats
	// plus the request context to detect dead peers.
	if err := http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{}); err != nil {
		logrus.WithError(err).Warn("Failed to clear stream write deadline")
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.Flush()

	latest, err := h.notificationService.PollLatestUnread(company.ID)
	if err != nil {
		logrus.WithError(err).WithField("company_id", company.ID).
			Warn("Failed to replay latest unread notification")
	} else if latest != nil {
		writeSSE(c, "notification", h.notificationService.EventFor(latest))
	}

	heartbeat := time.Duration(h.cfg.Realtime.HeartbeatSeconds) * time.Second
	if heartbeat <= 0 {
		heartbeat = 25 * time.Second
	}
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	for {
		select {
		case ev, open := <-session.C:
			if !open {
				return
			}
			writeSSE(c, "notification", ev)

		case <-ticker.C:
			fmt.Fprintf(c.Writer, ": heartbeat\n\n")
			c.Writer.Flush()

		case <-c.Request.Context().Done():
			return
		}
	}
}

func writeSSE(c *gin.Context, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, data)
	c.Writer.Flush()
}
