package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inocenciorjr/medbrave-backend/internal/logger"
	"github.com/inocenciorjr/medbrave-backend/internal/repos"
	"github.com/inocenciorjr/medbrave-backend/internal/types"
)

// PlannerSyncService propagates review activity into planner events. Items
// inside a session may be due on different calendar days than the session
// itself, so completions are regrouped by each card's own due date before
// they touch an event's counters.
type PlannerSyncService interface {
	// Enqueue records a pending reconciliation for the session. Failures
	// are logged and swallowed: completing a review item must succeed even
	// when the planner side-effect cannot be scheduled.
	Enqueue(ctx context.Context, sessionID uuid.UUID)
	// ReconcileSession applies the session's completions to the planner
	// events of every affected due date. Safe to re-run: only the delta
	// above the per-date applied count is written.
	ReconcileSession(ctx context.Context, session *types.ReviewSession) error
	// SyncNewCard keeps the due day's system_review event in step when a
	// card is created. Best effort; never returns an error.
	SyncNewCard(ctx context.Context, card *types.ReviewCard)
}

type plannerSyncService struct {
	db       *gorm.DB
	log      *logger.Logger
	planner  PlannerService
	cardRepo repos.ReviewCardRepo
	syncRepo repos.PlannerSyncRepo
}

func NewPlannerSyncService(db *gorm.DB, log *logger.Logger, planner PlannerService, cardRepo repos.ReviewCardRepo, syncRepo repos.PlannerSyncRepo) PlannerSyncService {
	serviceLog := log.With("service", "PlannerSyncService")
	return &plannerSyncService{
		db:       db,
		log:      serviceLog,
		planner:  planner,
		cardRepo: cardRepo,
		syncRepo: syncRepo,
	}
}

func (s *plannerSyncService) Enqueue(ctx context.Context, sessionID uuid.UUID) {
	if _, err := s.syncRepo.EnqueueTask(ctx, nil, sessionID); err != nil {
		s.log.Error("Failed to enqueue planner sync task", "session_id", sessionID, "error", err)
	}
}

func (s *plannerSyncService) ReconcileSession(ctx context.Context, session *types.ReviewSession) error {
	if session == nil || len(session.ReviewIDs) == 0 {
		return nil
	}

	cards, err := s.cardRepo.GetByIDs(ctx, nil, session.UserID, session.ReviewIDs)
	if err != nil {
		return fmt.Errorf("fetch session cards: %w", err)
	}

	// Group card ids by their own due day, not the session's day.
	byDate := make(map[string][]string)
	for _, card := range cards {
		date := card.DueDate()
		byDate[date] = append(byDate[date], card.ID.String())
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	var lastErr error
	for _, date := range dates {
		if err := s.reconcileDate(ctx, session, date, byDate[date]); err != nil {
			s.log.Error("Planner reconciliation failed for date", "session_id", session.ID, "date", date, "error", err)
			lastErr = err
		}
	}
	return lastErr
}

func (s *plannerSyncService) reconcileDate(ctx context.Context, session *types.ReviewSession, date string, cardIDs []string) error {
	event, err := s.planner.GetEventByDateAndType(ctx, session.UserID, date, session.ContentType)
	if err != nil {
		return err
	}
	if event == nil {
		// No event to update for this day; skip rather than abort the
		// remaining dates.
		s.log.Warn("No planner event for due date, skipping", "session_id", session.ID, "date", date, "content_type", session.ContentType)
		return nil
	}

	completedOnDate := 0
	for _, id := range cardIDs {
		if session.HasCompleted(id) {
			completedOnDate++
		}
	}

	applied := 0
	state, err := s.syncRepo.GetState(ctx, nil, session.ID, date)
	if err != nil {
		return err
	}
	if state != nil {
		applied = state.AppliedCount
	}

	delta := completedOnDate - applied
	if delta <= 0 {
		return nil
	}

	newCompleted := event.CompletedCount + delta
	newTotal := event.TotalCount
	if newCompleted > newTotal {
		// The total never shrinks below the completed count.
		newTotal = newCompleted
	}

	if _, err := s.planner.UpdateProgress(ctx, session.UserID, event.ID, newCompleted, newTotal); err != nil {
		return err
	}
	if err := s.syncRepo.UpsertState(ctx, nil, session.ID, date, completedOnDate); err != nil {
		return err
	}

	s.log.Info("Applied session completions to planner event",
		"session_id", session.ID, "event_id", event.ID, "date", date, "delta", delta)
	return nil
}

// Default slot hours, titles and styling per content type, applied when a
// new card lands on a day with no planner event yet.
var defaultEventHours = map[string][2]int{
	types.ContentTypeFlashcard:     {10, 14},
	types.ContentTypeQuestion:      {15, 17},
	types.ContentTypeErrorNotebook: {18, 20},
}

var defaultEventTitles = map[string]string{
	types.ContentTypeFlashcard:     "Flashcards",
	types.ContentTypeQuestion:      "Questões",
	types.ContentTypeErrorNotebook: "Caderno de Erros",
}

var defaultEventColors = map[string]string{
	types.ContentTypeFlashcard:     "purple",
	types.ContentTypeQuestion:      "cyan",
	types.ContentTypeErrorNotebook: "green",
}

var defaultEventIcons = map[string]string{
	types.ContentTypeFlashcard:     "layers",
	types.ContentTypeQuestion:      "list_alt",
	types.ContentTypeErrorNotebook: "book",
}

func (s *plannerSyncService) SyncNewCard(ctx context.Context, card *types.ReviewCard) {
	if card == nil {
		return
	}
	date := card.DueDate()

	event, err := s.planner.GetEventByDateAndType(ctx, card.UserID, date, card.ContentType)
	if err != nil {
		s.log.Error("Planner lookup failed during card sync", "card_id", card.ID, "date", date, "error", err)
		return
	}

	if event != nil {
		if _, err := s.planner.UpdateEvent(ctx, card.UserID, event.ID, map[string]interface{}{
			"total_count": event.TotalCount + 1,
		}); err != nil {
			s.log.Error("Failed to bump planner event total", "event_id", event.ID, "error", err)
		}
		return
	}

	hours, ok := defaultEventHours[card.ContentType]
	if !ok {
		hours = [2]int{8, 9}
	}
	title := defaultEventTitles[card.ContentType]
	if title == "" {
		title = "Revisão"
	}

	created, err := s.planner.CreateEvent(ctx, card.UserID, &types.PlannerEvent{
		EventType:   types.EventTypeSystemReview,
		ContentType: card.ContentType,
		Title:       title,
		Date:        date,
		StartHour:   hours[0],
		EndHour:     hours[1],
		Status:      types.EventStatusPending,
		Color:       defaultEventColors[card.ContentType],
		Icon:        defaultEventIcons[card.ContentType],
	})
	if err != nil {
		s.log.Error("Failed to create planner event for new card", "card_id", card.ID, "date", date, "error", err)
		return
	}

	// Recount so the fresh event reflects every card already due that day.
	due, err := s.cardRepo.ListDueOnDate(ctx, nil, card.UserID, card.ContentType, date)
	if err != nil {
		s.log.Error("Failed to count due cards for new event", "event_id", created.ID, "error", err)
		return
	}
	total := len(due)
	if total == 0 {
		total = 1
	}
	if _, err := s.planner.UpdateEvent(ctx, card.UserID, created.ID, map[string]interface{}{
		"total_count": total,
	}); err != nil {
		s.log.Error("Failed to set planner event total", "event_id", created.ID, "error", err)
	}
}
