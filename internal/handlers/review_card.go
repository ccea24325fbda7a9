package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/inocenciorjr/medbrave-backend/internal/apierr"
	"github.com/inocenciorjr/medbrave-backend/internal/logger"
	"github.com/inocenciorjr/medbrave-backend/internal/services"
)

type ReviewCardHandler struct {
	log         *logger.Logger
	cardService services.ReviewCardService
}

func NewReviewCardHandler(log *logger.Logger, cardService services.ReviewCardService) *ReviewCardHandler {
	handlerLog := log.With("handler", "ReviewCardHandler")
	return &ReviewCardHandler{log: handlerLog, cardService: cardService}
}

type createCardRequest struct {
	ContentType string `json:"content_type"`
	ContentID   string `json:"content_id"`
	Due         string `json:"due"`
}

func (h *ReviewCardHandler) CreateCard(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req createCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid request body"))
		return
	}

	var due time.Time
	if req.Due != "" {
		parsed, err := time.Parse(time.RFC3339, req.Due)
		if err != nil {
			RespondError(c, apierr.Validation("due must be an RFC 3339 timestamp"))
			return
		}
		due = parsed
	}

	card, err := h.cardService.CreateCard(c.Request.Context(), userID, req.ContentType, req.ContentID, due)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, card)
}

func (h *ReviewCardHandler) ListDue(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	contentType := c.Query("contentType")
	if contentType == "" {
		RespondError(c, apierr.Validation("contentType is required"))
		return
	}

	cards, err := h.cardService.ListDue(c.Request.Context(), userID, contentType, c.Query("date"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, cards)
}
