package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inocenciorjr/medbrave-backend/internal/apierr"
	"github.com/inocenciorjr/medbrave-backend/internal/logger"
	"github.com/inocenciorjr/medbrave-backend/internal/recurrence"
	"github.com/inocenciorjr/medbrave-backend/internal/repos"
	"github.com/inocenciorjr/medbrave-backend/internal/types"
)

type PlannerService interface {
	GetEvents(ctx context.Context, userID uuid.UUID, startDate, endDate string) ([]*types.PlannerEvent, error)
	CreateEvent(ctx context.Context, userID uuid.UUID, event *types.PlannerEvent) (*types.PlannerEvent, error)
	UpdateEvent(ctx context.Context, userID, eventID uuid.UUID, patch map[string]interface{}) (*types.PlannerEvent, error)
	DeleteEvent(ctx context.Context, userID, eventID uuid.UUID) error
	UpdateProgress(ctx context.Context, userID, eventID uuid.UUID, completedCount, totalCount int) (*types.PlannerEvent, error)
	GetEventByDateAndType(ctx context.Context, userID uuid.UUID, date, contentType string) (*types.PlannerEvent, error)
}

type plannerService struct {
	db        *gorm.DB
	log       *logger.Logger
	eventRepo repos.PlannerEventRepo
}

func NewPlannerService(db *gorm.DB, log *logger.Logger, eventRepo repos.PlannerEventRepo) PlannerService {
	serviceLog := log.With("service", "PlannerService")
	return &plannerService{db: db, log: serviceLog, eventRepo: eventRepo}
}

// systemReviewContentTypes maps content types to the event type they must
// carry. USER_TASK maps to user_task; the review material kinds map to
// system_review.
var systemReviewContentTypes = map[string]bool{
	types.ContentTypeFlashcard:     true,
	types.ContentTypeQuestion:      true,
	types.ContentTypeErrorNotebook: true,
}

func (ps *plannerService) GetEvents(ctx context.Context, userID uuid.UUID, startDate, endDate string) ([]*types.PlannerEvent, error) {
	rows, err := ps.eventRepo.ListByUser(ctx, nil, userID, startDate, endDate)
	if err != nil {
		return nil, apierr.Store("failed to fetch planner events", err)
	}

	if startDate == "" || endDate == "" {
		return rows, nil
	}
	return ps.expandRecurring(rows, startDate, endDate)
}

// expandRecurring materializes recurring templates into concrete
// occurrences within the window. Occurrences inherit every template field,
// get the occurrence date, and point back to the template through
// ParentEventID; they are never persisted.
func (ps *plannerService) expandRecurring(rows []*types.PlannerEvent, startDate, endDate string) ([]*types.PlannerEvent, error) {
	out := make([]*types.PlannerEvent, 0, len(rows))
	for _, row := range rows {
		if !row.IsRecurring || len(row.RecurrenceDays) == 0 {
			if row.Date >= startDate && row.Date <= endDate {
				out = append(out, row)
			}
			continue
		}

		pattern := recurrence.Pattern{
			Days:  row.RecurrenceDays,
			Start: row.Date,
		}
		if row.RecurrenceEndDate != nil {
			pattern.EndDate = *row.RecurrenceEndDate
		}
		dates, err := recurrence.Expand(pattern, startDate, endDate)
		if err != nil {
			ps.log.Warn("Skipping recurring event with invalid pattern", "event_id", row.ID, "error", err)
			continue
		}
		for _, date := range dates {
			if date == row.Date {
				out = append(out, row)
				continue
			}
			occurrence := *row
			occurrence.Date = date
			templateID := row.ID
			occurrence.ParentEventID = &templateID
			out = append(out, &occurrence)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].StartHour < out[j].StartHour
	})
	return out, nil
}

func (ps *plannerService) CreateEvent(ctx context.Context, userID uuid.UUID, event *types.PlannerEvent) (*types.PlannerEvent, error) {
	if event == nil {
		return nil, apierr.Validation("event payload is required")
	}
	if event.Date == "" {
		return nil, apierr.Validation("date is required")
	}
	if event.ContentType == "" {
		return nil, apierr.Validation("content_type is required")
	}

	event.UserID = userID
	normalizeEventType(event)
	if event.Status == "" {
		event.Status = types.EventStatusPending
	}

	created, err := ps.eventRepo.Create(ctx, nil, event)
	if err != nil {
		return nil, apierr.Store("failed to create planner event", err)
	}
	if created == nil {
		return nil, apierr.Validation("planner event was not created")
	}
	return created, nil
}

// normalizeEventType repairs a mismatched event_type/content_type
// combination rather than rejecting it.
func normalizeEventType(event *types.PlannerEvent) {
	switch {
	case event.ContentType == types.ContentTypeUserTask:
		event.EventType = types.EventTypeUserTask
	case systemReviewContentTypes[event.ContentType]:
		event.EventType = types.EventTypeSystemReview
	case event.EventType == "":
		event.EventType = types.EventTypeUserTask
	}
}

func (ps *plannerService) UpdateEvent(ctx context.Context, userID, eventID uuid.UUID, patch map[string]interface{}) (*types.PlannerEvent, error) {
	// Identity, ownership and creation timestamp are never patchable.
	delete(patch, "id")
	delete(patch, "user_id")
	delete(patch, "created_at")

	existing, err := ps.eventRepo.GetByIDAndUser(ctx, nil, eventID, userID)
	if err != nil {
		return nil, apierr.Store("failed to fetch planner event", err)
	}
	if existing == nil {
		return nil, apierr.NotFound("planner event not found")
	}

	updated, err := ps.eventRepo.Update(ctx, nil, eventID, userID, patch)
	if err != nil {
		return nil, apierr.Store("failed to update planner event", err)
	}
	return updated, nil
}

func (ps *plannerService) DeleteEvent(ctx context.Context, userID, eventID uuid.UUID) error {
	// Filtered delete; zero matched rows is not an error.
	if err := ps.eventRepo.Delete(ctx, nil, eventID, userID); err != nil {
		return apierr.Store("failed to delete planner event", err)
	}
	return nil
}

func (ps *plannerService) UpdateProgress(ctx context.Context, userID, eventID uuid.UUID, completedCount, totalCount int) (*types.PlannerEvent, error) {
	existing, err := ps.eventRepo.GetByIDAndUser(ctx, nil, eventID, userID)
	if err != nil {
		return nil, apierr.Store("failed to fetch planner event", err)
	}
	if existing == nil {
		return nil, apierr.NotFound("planner event not found")
	}

	status := types.EventStatusPending
	switch {
	case completedCount >= totalCount:
		status = types.EventStatusCompleted
	case completedCount > 0:
		status = types.EventStatusInProgress
	}

	var completedAt interface{}
	if status == types.EventStatusCompleted {
		completedAt = time.Now().UTC()
	} else {
		completedAt = nil
	}

	updated, err := ps.eventRepo.Update(ctx, nil, eventID, userID, map[string]interface{}{
		"completed_count": completedCount,
		"total_count":     totalCount,
		"status":          status,
		"completed_at":    completedAt,
	})
	if err != nil {
		return nil, apierr.Store("failed to update planner progress", err)
	}
	return updated, nil
}

func (ps *plannerService) GetEventByDateAndType(ctx context.Context, userID uuid.UUID, date, contentType string) (*types.PlannerEvent, error) {
	event, err := ps.eventRepo.GetByDateAndType(ctx, nil, userID, date, contentType)
	if err != nil {
		return nil, apierr.Store("failed to fetch planner event by date and type", err)
	}
	return event, nil
}
