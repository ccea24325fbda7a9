package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/inocenciorjr/medbrave-backend/internal/apierr"
	"github.com/inocenciorjr/medbrave-backend/internal/logger"
	"github.com/inocenciorjr/medbrave-backend/internal/repos"
	"github.com/inocenciorjr/medbrave-backend/internal/services"
)

type ReviewSessionHandler struct {
	log            *logger.Logger
	sessionService services.ReviewSessionService
	syncService    services.PlannerSyncService
}

func NewReviewSessionHandler(log *logger.Logger, sessionService services.ReviewSessionService, syncService services.PlannerSyncService) *ReviewSessionHandler {
	handlerLog := log.With("handler", "ReviewSessionHandler")
	return &ReviewSessionHandler{log: handlerLog, sessionService: sessionService, syncService: syncService}
}

type createSessionRequest struct {
	ContentType string   `json:"content_type"`
	ReviewIDs   []string `json:"review_ids"`
	Date        string   `json:"date"`
}

func (h *ReviewSessionHandler) CreateSession(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid request body"))
		return
	}

	// Sessions are for today or the past; a well-formed future date is
	// rejected while a malformed one falls through to the service's
	// validation.
	if req.Date != "" {
		if parsed, err := time.Parse(time.DateOnly, req.Date); err == nil {
			if parsed.Format(time.DateOnly) > services.Today() {
				RespondError(c, apierr.Validation("cannot create a session for a future date"))
				return
			}
		}
	}

	session, err := h.sessionService.GetOrCreateSessionForDate(c.Request.Context(), userID, req.ContentType, req.Date, req.ReviewIDs)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, session)
}

func (h *ReviewSessionHandler) GetActiveSession(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	contentType := c.Query("contentType")
	if contentType == "" {
		RespondError(c, apierr.Validation("contentType is required"))
		return
	}
	date := c.Query("date")
	if date == "" {
		date = services.Today()
	}

	// A null body with success=true means no session occupies the slot.
	session, err := h.sessionService.GetSessionByDate(c.Request.Context(), userID, contentType, date)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, session)
}

func (h *ReviewSessionHandler) ListSessions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	filter := repos.SessionFilter{
		ContentType: c.Query("contentType"),
		Date:        c.Query("date"),
		Status:      c.Query("status"),
	}
	sessions, err := h.sessionService.ListSessions(c.Request.Context(), userID, filter)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, sessions)
}

func (h *ReviewSessionHandler) GetSession(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	sessionID, ok := parseIDParam(c, "sessionId")
	if !ok {
		return
	}

	session, err := h.sessionService.GetSession(c.Request.Context(), userID, sessionID)
	if err != nil {
		RespondError(c, err)
		return
	}
	if session == nil {
		RespondError(c, apierr.NotFound("review session not found"))
		return
	}
	RespondOK(c, session)
}

type sessionProgressRequest struct {
	CurrentIndex *int `json:"current_index"`
}

func (h *ReviewSessionHandler) UpdateProgress(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	sessionID, ok := parseIDParam(c, "sessionId")
	if !ok {
		return
	}

	var req sessionProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.CurrentIndex == nil {
		RespondError(c, apierr.Validation("current_index is required"))
		return
	}

	session, err := h.sessionService.UpdateProgress(c.Request.Context(), userID, sessionID, *req.CurrentIndex)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, session)
}

type completeItemRequest struct {
	ItemID string `json:"item_id"`
}

func (h *ReviewSessionHandler) CompleteItem(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	sessionID, ok := parseIDParam(c, "sessionId")
	if !ok {
		return
	}

	var req completeItemRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ItemID == "" {
		RespondError(c, apierr.Validation("item_id is required"))
		return
	}

	session, err := h.sessionService.MarkItemCompleted(c.Request.Context(), userID, sessionID, req.ItemID)
	if err != nil {
		RespondError(c, err)
		return
	}

	h.syncService.Enqueue(c.Request.Context(), session.ID)
	RespondOK(c, session)
}

func (h *ReviewSessionHandler) CompleteSession(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	sessionID, ok := parseIDParam(c, "sessionId")
	if !ok {
		return
	}

	session, err := h.sessionService.CompleteSession(c.Request.Context(), userID, sessionID)
	if err != nil {
		RespondError(c, err)
		return
	}

	h.syncService.Enqueue(c.Request.Context(), session.ID)
	RespondOK(c, session)
}

func (h *ReviewSessionHandler) AbandonSession(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	sessionID, ok := parseIDParam(c, "sessionId")
	if !ok {
		return
	}

	session, err := h.sessionService.AbandonSession(c.Request.Context(), userID, sessionID)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, session)
}
