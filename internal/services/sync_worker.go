package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inocenciorjr/medbrave-backend/internal/logger"
	"github.com/inocenciorjr/medbrave-backend/internal/repos"
)

const (
	syncWorkerBatchSize   = 20
	syncWorkerMaxAttempts = 5
)

// SyncWorker drains the planner sync outbox. Each task is one session whose
// completions still need to reach the planner; reconciliation itself is
// idempotent, so retrying a task after a partial failure is safe.
type SyncWorker struct {
	db          *gorm.DB
	log         *logger.Logger
	syncRepo    repos.PlannerSyncRepo
	sessionRepo repos.ReviewSessionRepo
	syncService PlannerSyncService
	interval    time.Duration
}

func NewSyncWorker(db *gorm.DB, log *logger.Logger, syncRepo repos.PlannerSyncRepo, sessionRepo repos.ReviewSessionRepo, syncService PlannerSyncService, interval time.Duration) *SyncWorker {
	workerLog := log.With("worker", "SyncWorker")
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &SyncWorker{
		db:          db,
		log:         workerLog,
		syncRepo:    syncRepo,
		sessionRepo: sessionRepo,
		syncService: syncService,
		interval:    interval,
	}
}

// Start polls for pending tasks until ctx is cancelled.
func (w *SyncWorker) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		w.log.Info("Planner sync worker started", "interval", w.interval.String())
		for {
			select {
			case <-ctx.Done():
				w.log.Info("Planner sync worker stopped")
				return
			case <-ticker.C:
				if err := w.ProcessOnce(ctx); err != nil {
					w.log.Error("Planner sync pass failed", "error", err)
				}
			}
		}
	}()
}

// ProcessOnce handles one batch of pending tasks. Exposed so tests and
// shutdown paths can drain the outbox synchronously.
func (w *SyncWorker) ProcessOnce(ctx context.Context) error {
	tasks, err := w.syncRepo.ListPendingTasks(ctx, nil, syncWorkerBatchSize)
	if err != nil {
		return err
	}

	for _, task := range tasks {
		w.processTask(ctx, task.ID, task.SessionID, task.Attempts)
	}
	return nil
}

func (w *SyncWorker) processTask(ctx context.Context, taskID, sessionID uuid.UUID, attempts int) {
	session, err := w.sessionRepo.GetByID(ctx, nil, sessionID)
	if err != nil {
		w.recordFailure(ctx, taskID, attempts, err.Error())
		return
	}
	if session == nil {
		// Nothing left to reconcile against; drop the task for good.
		if err := w.syncRepo.RecordTaskFailure(ctx, nil, taskID, attempts+1, "session not found", true); err != nil {
			w.log.Error("Failed to mark sync task failed", "task_id", taskID, "error", err)
		}
		return
	}

	if err := w.syncService.ReconcileSession(ctx, session); err != nil {
		w.recordFailure(ctx, taskID, attempts, err.Error())
		return
	}

	if err := w.syncRepo.MarkTaskDone(ctx, nil, taskID); err != nil {
		w.log.Error("Failed to mark sync task done", "task_id", taskID, "error", err)
	}
}

func (w *SyncWorker) recordFailure(ctx context.Context, taskID uuid.UUID, attempts int, message string) {
	attempts++
	terminal := attempts >= syncWorkerMaxAttempts
	if terminal {
		w.log.Error("Planner sync task exhausted retries", "task_id", taskID, "attempts", attempts, "error", message)
	}
	if err := w.syncRepo.RecordTaskFailure(ctx, nil, taskID, attempts, message, terminal); err != nil {
		w.log.Error("Failed to record sync task failure", "task_id", taskID, "error", err)
	}
}
