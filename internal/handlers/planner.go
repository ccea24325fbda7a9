package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/inocenciorjr/medbrave-backend/internal/apierr"
	"github.com/inocenciorjr/medbrave-backend/internal/logger"
	"github.com/inocenciorjr/medbrave-backend/internal/requestdata"
	"github.com/inocenciorjr/medbrave-backend/internal/services"
	"github.com/inocenciorjr/medbrave-backend/internal/types"
)

type PlannerHandler struct {
	log            *logger.Logger
	plannerService services.PlannerService
}

func NewPlannerHandler(log *logger.Logger, plannerService services.PlannerService) *PlannerHandler {
	handlerLog := log.With("handler", "PlannerHandler")
	return &PlannerHandler{log: handlerLog, plannerService: plannerService}
}

// currentUser pulls the authenticated identity the middleware stored on the
// request context.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, apierr.Authentication("unauthorized"))
		return uuid.Nil, false
	}
	return rd.UserID, true
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, apierr.Validation("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

func (h *PlannerHandler) GetEvents(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	events, err := h.plannerService.GetEvents(c.Request.Context(), userID, c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, events)
}

type createEventRequest struct {
	Title             string  `json:"title"`
	Description       string  `json:"description"`
	Date              string  `json:"date"`
	StartHour         int     `json:"start_hour"`
	StartMinute       int     `json:"start_minute"`
	EndHour           int     `json:"end_hour"`
	EndMinute         int     `json:"end_minute"`
	EventType         string  `json:"event_type"`
	ContentType       string  `json:"content_type"`
	TotalCount        int     `json:"total_count"`
	Color             string  `json:"color"`
	Icon              string  `json:"icon"`
	IsRecurring       bool    `json:"is_recurring"`
	RecurrenceDays    []int   `json:"recurrence_days"`
	RecurrenceEndDate *string `json:"recurrence_end_date"`
}

func (h *PlannerHandler) CreateEvent(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.Validation("invalid request body"))
		return
	}

	event := &types.PlannerEvent{
		Title:             req.Title,
		Description:       req.Description,
		Date:              req.Date,
		StartHour:         req.StartHour,
		StartMinute:       req.StartMinute,
		EndHour:           req.EndHour,
		EndMinute:         req.EndMinute,
		EventType:         req.EventType,
		ContentType:       req.ContentType,
		TotalCount:        req.TotalCount,
		Color:             req.Color,
		Icon:              req.Icon,
		IsRecurring:       req.IsRecurring,
		RecurrenceDays:    datatypes.NewJSONSlice(req.RecurrenceDays),
		RecurrenceEndDate: req.RecurrenceEndDate,
	}

	created, err := h.plannerService.CreateEvent(c.Request.Context(), userID, event)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondCreated(c, created)
}

// updatableEventFields is the whitelist of columns a PUT may touch.
var updatableEventFields = map[string]bool{
	"title":               true,
	"description":         true,
	"date":                true,
	"start_hour":          true,
	"start_minute":        true,
	"end_hour":            true,
	"end_minute":          true,
	"status":              true,
	"color":               true,
	"icon":                true,
	"is_recurring":        true,
	"recurrence_days":     true,
	"recurrence_end_date": true,
}

func (h *PlannerHandler) UpdateEvent(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	eventID, ok := parseIDParam(c, "eventId")
	if !ok {
		return
	}

	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, apierr.Validation("invalid request body"))
		return
	}

	patch := make(map[string]interface{}, len(body))
	for key, value := range body {
		if !updatableEventFields[key] {
			continue
		}
		if key == "recurrence_days" {
			days, err := toIntSlice(value)
			if err != nil {
				RespondError(c, apierr.Validation("recurrence_days must be an array of weekday numbers"))
				return
			}
			patch[key] = datatypes.NewJSONSlice(days)
			continue
		}
		patch[key] = value
	}
	if len(patch) == 0 {
		RespondError(c, apierr.Validation("no updatable fields in request body"))
		return
	}

	updated, err := h.plannerService.UpdateEvent(c.Request.Context(), userID, eventID, patch)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, updated)
}

func toIntSlice(value interface{}) ([]int, error) {
	raw, ok := value.([]interface{})
	if !ok {
		return nil, apierr.Validation("expected an array")
	}
	out := make([]int, 0, len(raw))
	for _, item := range raw {
		// encoding/json decodes numbers into float64.
		n, ok := item.(float64)
		if !ok {
			return nil, apierr.Validation("expected a number")
		}
		out = append(out, int(n))
	}
	return out, nil
}

func (h *PlannerHandler) DeleteEvent(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	eventID, ok := parseIDParam(c, "eventId")
	if !ok {
		return
	}

	if err := h.plannerService.DeleteEvent(c.Request.Context(), userID, eventID); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

type progressRequest struct {
	CompletedCount *int `json:"completedCount"`
	TotalCount     *int `json:"totalCount"`
}

func (h *PlannerHandler) UpdateProgress(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	eventID, ok := parseIDParam(c, "eventId")
	if !ok {
		return
	}

	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.CompletedCount == nil || req.TotalCount == nil {
		RespondError(c, apierr.Validation("completedCount and totalCount are required"))
		return
	}
	if *req.CompletedCount < 0 || *req.TotalCount < 0 {
		RespondError(c, apierr.Validation("counts must not be negative"))
		return
	}

	updated, err := h.plannerService.UpdateProgress(c.Request.Context(), userID, eventID, *req.CompletedCount, *req.TotalCount)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, updated)
}

func (h *PlannerHandler) GetEventByDateAndType(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	date := c.Query("date")
	contentType := c.Query("contentType")
	if date == "" || contentType == "" {
		RespondError(c, apierr.Validation("date and contentType are required"))
		return
	}

	event, err := h.plannerService.GetEventByDateAndType(c.Request.Context(), userID, date, contentType)
	if err != nil {
		RespondError(c, err)
		return
	}
	// No match is not an error here; the client probes before creating.
	RespondOK(c, event)
}
