package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inocenciorjr/medbrave-backend/internal/repos"
	"github.com/inocenciorjr/medbrave-backend/internal/types"
)

// syncFixture wires the whole scheduling core against one sqlite database,
// the same way the app package does against Postgres.
type syncFixture struct {
	db       *gorm.DB
	userID   uuid.UUID
	planner  PlannerService
	sessions ReviewSessionService
	cards    ReviewCardService
	sync     PlannerSyncService
	worker   *SyncWorker
	cardRepo repos.ReviewCardRepo
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()
	db := newTestDB(t)
	log := newTestLogger(t)

	eventRepo := repos.NewPlannerEventRepo(db, log)
	sessionRepo := repos.NewReviewSessionRepo(db, log)
	cardRepo := repos.NewReviewCardRepo(db, log)
	syncRepo := repos.NewPlannerSyncRepo(db, log)

	planner := NewPlannerService(db, log, eventRepo)
	syncSvc := NewPlannerSyncService(db, log, planner, cardRepo, syncRepo)

	return &syncFixture{
		db:       db,
		userID:   createTestUser(t, db),
		planner:  planner,
		sessions: NewReviewSessionService(db, log, sessionRepo),
		cards:    NewReviewCardService(db, log, cardRepo, syncSvc),
		sync:     syncSvc,
		worker:   NewSyncWorker(db, log, syncRepo, sessionRepo, syncSvc, time.Minute),
		cardRepo: cardRepo,
	}
}

func (fx *syncFixture) createCard(t *testing.T, due time.Time) *types.ReviewCard {
	t.Helper()
	card, err := fx.cardRepo.Create(context.Background(), nil, &types.ReviewCard{
		UserID:      fx.userID,
		ContentType: types.ContentTypeFlashcard,
		ContentID:   uuid.NewString(),
		Due:         due,
		State:       types.CardStateLearning,
	})
	if err != nil {
		t.Fatalf("create card: %v", err)
	}
	return card
}

func (fx *syncFixture) createEvent(t *testing.T, date string, total int) *types.PlannerEvent {
	t.Helper()
	event, err := fx.planner.CreateEvent(context.Background(), fx.userID, &types.PlannerEvent{
		Date:        date,
		ContentType: types.ContentTypeFlashcard,
		Title:       "Flashcards",
		TotalCount:  total,
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	return event
}

func (fx *syncFixture) eventProgress(t *testing.T, date string) (int, int, string) {
	t.Helper()
	event, err := fx.planner.GetEventByDateAndType(context.Background(), fx.userID, date, types.ContentTypeFlashcard)
	if err != nil {
		t.Fatalf("get event %s: %v", date, err)
	}
	if event == nil {
		t.Fatalf("no event on %s", date)
	}
	return event.CompletedCount, event.TotalCount, event.Status
}

func TestReconcileSessionGroupsByDueDate(t *testing.T) {
	fx := newSyncFixture(t)
	ctx := context.Background()

	// Two cards inside one session, due on different days.
	card1 := fx.createCard(t, mustDate(t, "2024-03-01").Add(10*time.Hour))
	card2 := fx.createCard(t, mustDate(t, "2024-03-02").Add(10*time.Hour))
	fx.createEvent(t, "2024-03-01", 2)
	fx.createEvent(t, "2024-03-02", 1)

	session, err := fx.sessions.CreateSession(ctx, fx.userID, types.ContentTypeFlashcard,
		[]string{card1.ID.String(), card2.ID.String()}, "2024-03-01")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	session, err = fx.sessions.MarkItemCompleted(ctx, fx.userID, session.ID, card1.ID.String())
	if err != nil {
		t.Fatalf("MarkItemCompleted: %v", err)
	}
	if err := fx.sync.ReconcileSession(ctx, session); err != nil {
		t.Fatalf("ReconcileSession: %v", err)
	}

	if done, _, _ := fx.eventProgress(t, "2024-03-01"); done != 1 {
		t.Errorf("day 1 completed: got %d want 1", done)
	}
	if done, _, _ := fx.eventProgress(t, "2024-03-02"); done != 0 {
		t.Errorf("day 2 completed: got %d want 0", done)
	}

	// Re-running over the same snapshot must not double-count.
	if err := fx.sync.ReconcileSession(ctx, session); err != nil {
		t.Fatalf("second ReconcileSession: %v", err)
	}
	if done, _, _ := fx.eventProgress(t, "2024-03-01"); done != 1 {
		t.Errorf("after rerun: got %d want 1", done)
	}

	// Completing the second card touches only its own due day.
	session, err = fx.sessions.MarkItemCompleted(ctx, fx.userID, session.ID, card2.ID.String())
	if err != nil {
		t.Fatalf("MarkItemCompleted card2: %v", err)
	}
	if err := fx.sync.ReconcileSession(ctx, session); err != nil {
		t.Fatalf("third ReconcileSession: %v", err)
	}
	if done, _, status := fx.eventProgress(t, "2024-03-02"); done != 1 || status != types.EventStatusCompleted {
		t.Errorf("day 2: completed=%d status=%q", done, status)
	}
	if done, _, _ := fx.eventProgress(t, "2024-03-01"); done != 1 {
		t.Errorf("day 1 changed unexpectedly: %d", done)
	}
}

func TestReconcileSkipsDatesWithoutEvent(t *testing.T) {
	fx := newSyncFixture(t)
	ctx := context.Background()

	card := fx.createCard(t, mustDate(t, "2024-03-01").Add(10*time.Hour))
	session, err := fx.sessions.CreateSession(ctx, fx.userID, types.ContentTypeFlashcard,
		[]string{card.ID.String()}, "2024-03-01")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	session, err = fx.sessions.MarkItemCompleted(ctx, fx.userID, session.ID, card.ID.String())
	if err != nil {
		t.Fatalf("MarkItemCompleted: %v", err)
	}

	if err := fx.sync.ReconcileSession(ctx, session); err != nil {
		t.Fatalf("ReconcileSession should skip missing events, got %v", err)
	}
	event, err := fx.planner.GetEventByDateAndType(ctx, fx.userID, "2024-03-01", types.ContentTypeFlashcard)
	if err != nil || event != nil {
		t.Fatalf("reconciliation must not invent events, got %v err %v", event, err)
	}
}

func TestReconcileGrowsUndersizedTotal(t *testing.T) {
	fx := newSyncFixture(t)
	ctx := context.Background()

	card := fx.createCard(t, mustDate(t, "2024-03-01").Add(10*time.Hour))
	fx.createEvent(t, "2024-03-01", 0)

	session, err := fx.sessions.CreateSession(ctx, fx.userID, types.ContentTypeFlashcard,
		[]string{card.ID.String()}, "2024-03-01")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	session, err = fx.sessions.MarkItemCompleted(ctx, fx.userID, session.ID, card.ID.String())
	if err != nil {
		t.Fatalf("MarkItemCompleted: %v", err)
	}
	if err := fx.sync.ReconcileSession(ctx, session); err != nil {
		t.Fatalf("ReconcileSession: %v", err)
	}

	done, total, status := fx.eventProgress(t, "2024-03-01")
	if done != 1 || total != 1 || status != types.EventStatusCompleted {
		t.Fatalf("got completed=%d total=%d status=%q", done, total, status)
	}
}

func TestSyncNewCardCreatesDefaultEvent(t *testing.T) {
	fx := newSyncFixture(t)
	ctx := context.Background()

	due := mustDate(t, "2024-03-05").Add(8 * time.Hour)
	if _, err := fx.cards.CreateCard(ctx, fx.userID, types.ContentTypeFlashcard, uuid.NewString(), due); err != nil {
		t.Fatalf("CreateCard: %v", err)
	}

	event, err := fx.planner.GetEventByDateAndType(ctx, fx.userID, "2024-03-05", types.ContentTypeFlashcard)
	if err != nil {
		t.Fatalf("GetEventByDateAndType: %v", err)
	}
	if event == nil {
		t.Fatal("expected a planner event for the new card's due day")
	}
	if event.Title != "Flashcards" || event.Color != "purple" || event.Icon != "layers" {
		t.Errorf("defaults: title=%q color=%q icon=%q", event.Title, event.Color, event.Icon)
	}
	if event.StartHour != 10 || event.EndHour != 14 {
		t.Errorf("slot hours: %d-%d", event.StartHour, event.EndHour)
	}
	if event.TotalCount != 1 {
		t.Errorf("total_count: got %d want 1", event.TotalCount)
	}

	// A second card on the same day bumps the existing event.
	if _, err := fx.cards.CreateCard(ctx, fx.userID, types.ContentTypeFlashcard, uuid.NewString(), due); err != nil {
		t.Fatalf("second CreateCard: %v", err)
	}
	if _, total, _ := fx.eventProgress(t, "2024-03-05"); total != 2 {
		t.Errorf("total after second card: got %d want 2", total)
	}
}

func TestSyncWorkerDrainsOutbox(t *testing.T) {
	fx := newSyncFixture(t)
	ctx := context.Background()

	card := fx.createCard(t, mustDate(t, "2024-03-01").Add(10*time.Hour))
	fx.createEvent(t, "2024-03-01", 1)

	session, err := fx.sessions.CreateSession(ctx, fx.userID, types.ContentTypeFlashcard,
		[]string{card.ID.String()}, "2024-03-01")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if _, err := fx.sessions.MarkItemCompleted(ctx, fx.userID, session.ID, card.ID.String()); err != nil {
		t.Fatalf("MarkItemCompleted: %v", err)
	}

	fx.sync.Enqueue(ctx, session.ID)
	if err := fx.worker.ProcessOnce(ctx); err != nil {
		t.Fatalf("ProcessOnce: %v", err)
	}

	done, _, status := fx.eventProgress(t, "2024-03-01")
	if done != 1 || status != types.EventStatusCompleted {
		t.Fatalf("event after drain: completed=%d status=%q", done, status)
	}

	var task types.PlannerSyncTask
	if err := fx.db.Where("session_id = ?", session.ID).First(&task).Error; err != nil {
		t.Fatalf("load task: %v", err)
	}
	if task.Status != types.SyncTaskStatusDone {
		t.Fatalf("task status: got %q want done", task.Status)
	}

	// A duplicate enqueue of the same snapshot is a no-op on the event.
	fx.sync.Enqueue(ctx, session.ID)
	if err := fx.worker.ProcessOnce(ctx); err != nil {
		t.Fatalf("second ProcessOnce: %v", err)
	}
	if done, _, _ := fx.eventProgress(t, "2024-03-01"); done != 1 {
		t.Fatalf("duplicate task double-counted: %d", done)
	}
}

func TestSyncWorkerDropsOrphanTask(t *testing.T) {
	fx := newSyncFixture(t)
	ctx := context.Background()

	fx.sync.Enqueue(ctx, uuid.New())
	if err := fx.worker.ProcessOnce(ctx); err != nil {
		t.Fatalf("ProcessOnce: %v", err)
	}

	var task types.PlannerSyncTask
	if err := fx.db.First(&task).Error; err != nil {
		t.Fatalf("load task: %v", err)
	}
	if task.Status != types.SyncTaskStatusFailed {
		t.Fatalf("orphan task status: got %q want failed", task.Status)
	}
}
