package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/inocenciorjr/medbrave-backend/internal/apierr"
	"github.com/inocenciorjr/medbrave-backend/internal/logger"
	"github.com/inocenciorjr/medbrave-backend/internal/repos"
	"github.com/inocenciorjr/medbrave-backend/internal/types"
)

type ReviewSessionService interface {
	CreateSession(ctx context.Context, userID uuid.UUID, contentType string, reviewIDs []string, date string) (*types.ReviewSession, error)
	GetSessionByDate(ctx context.Context, userID uuid.UUID, contentType, date string) (*types.ReviewSession, error)
	GetOrCreateSessionForDate(ctx context.Context, userID uuid.UUID, contentType, date string, reviewIDs []string) (*types.ReviewSession, error)
	GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*types.ReviewSession, error)
	MarkItemCompleted(ctx context.Context, userID, sessionID uuid.UUID, itemID string) (*types.ReviewSession, error)
	CompleteSession(ctx context.Context, userID, sessionID uuid.UUID) (*types.ReviewSession, error)
	AbandonSession(ctx context.Context, userID, sessionID uuid.UUID) (*types.ReviewSession, error)
	UpdateProgress(ctx context.Context, userID, sessionID uuid.UUID, currentIndex int) (*types.ReviewSession, error)
	ListSessions(ctx context.Context, userID uuid.UUID, filter repos.SessionFilter) ([]*types.ReviewSession, error)
}

type reviewSessionService struct {
	db          *gorm.DB
	log         *logger.Logger
	sessionRepo repos.ReviewSessionRepo
}

func NewReviewSessionService(db *gorm.DB, log *logger.Logger, sessionRepo repos.ReviewSessionRepo) ReviewSessionService {
	serviceLog := log.With("service", "ReviewSessionService")
	return &reviewSessionService{db: db, log: serviceLog, sessionRepo: sessionRepo}
}

var reviewContentTypes = map[string]bool{
	types.ContentTypeFlashcard:     true,
	types.ContentTypeQuestion:      true,
	types.ContentTypeErrorNotebook: true,
}

// Today returns the current calendar day as YYYY-MM-DD, UTC.
func Today() string {
	return time.Now().UTC().Format(time.DateOnly)
}

func (rs *reviewSessionService) CreateSession(ctx context.Context, userID uuid.UUID, contentType string, reviewIDs []string, date string) (*types.ReviewSession, error) {
	if !reviewContentTypes[contentType] {
		return nil, apierr.Validation("invalid content_type")
	}
	if len(reviewIDs) == 0 {
		return nil, apierr.Validation("review_ids is required")
	}
	if date == "" {
		date = Today()
	}

	// Idempotency: one active session per (user, content type, day). A
	// concurrent loser of this check hits the partial unique index instead
	// of creating a duplicate.
	existing, err := rs.sessionRepo.GetLatestBySlot(ctx, nil, userID, contentType, date,
		[]string{types.SessionStatusActive})
	if err != nil {
		return nil, apierr.Store("failed to look up active review session", err)
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now().UTC()
	session := &types.ReviewSession{
		UserID:       userID,
		ContentType:  contentType,
		Date:         date,
		ReviewIDs:    datatypes.NewJSONSlice(reviewIDs),
		CompletedIDs: datatypes.NewJSONSlice([]string{}),
		CurrentIndex: 0,
		Status:       types.SessionStatusActive,
		StartedAt:    now,
	}
	created, err := rs.sessionRepo.Create(ctx, nil, session)
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent create won the slot between our check and this
			// insert; hand back the winner's row.
			winner, lookupErr := rs.sessionRepo.GetLatestBySlot(ctx, nil, userID, contentType, date,
				[]string{types.SessionStatusActive})
			if lookupErr == nil && winner != nil {
				rs.log.Info("Lost session create race, returning existing session", "session_id", winner.ID)
				return winner, nil
			}
		}
		return nil, apierr.Store("failed to create review session", err)
	}
	return created, nil
}

func (rs *reviewSessionService) GetSessionByDate(ctx context.Context, userID uuid.UUID, contentType, date string) (*types.ReviewSession, error) {
	// Completed sessions are historical; only active or abandoned ones
	// occupy the slot.
	session, err := rs.sessionRepo.GetLatestBySlot(ctx, nil, userID, contentType, date,
		[]string{types.SessionStatusActive, types.SessionStatusAbandoned})
	if err != nil {
		return nil, apierr.Store("failed to look up review session", err)
	}
	return session, nil
}

func (rs *reviewSessionService) GetOrCreateSessionForDate(ctx context.Context, userID uuid.UUID, contentType, date string, reviewIDs []string) (*types.ReviewSession, error) {
	if date == "" {
		date = Today()
	}

	session, err := rs.GetSessionByDate(ctx, userID, contentType, date)
	if err != nil {
		return nil, err
	}
	if session != nil {
		if session.Status == types.SessionStatusAbandoned {
			reactivated, err := rs.sessionRepo.Update(ctx, nil, session.ID, userID, map[string]interface{}{
				"status": types.SessionStatusActive,
			})
			if err != nil {
				return nil, apierr.Store("failed to reactivate review session", err)
			}
			rs.log.Info("Reactivated abandoned review session", "session_id", session.ID)
			return reactivated, nil
		}
		return session, nil
	}

	return rs.CreateSession(ctx, userID, contentType, reviewIDs, date)
}

func (rs *reviewSessionService) GetSession(ctx context.Context, userID, sessionID uuid.UUID) (*types.ReviewSession, error) {
	session, err := rs.sessionRepo.GetByIDAndUser(ctx, nil, sessionID, userID)
	if err != nil {
		return nil, apierr.Store("failed to fetch review session", err)
	}
	return session, nil
}

func (rs *reviewSessionService) MarkItemCompleted(ctx context.Context, userID, sessionID uuid.UUID, itemID string) (*types.ReviewSession, error) {
	session, err := rs.sessionRepo.GetByIDAndUser(ctx, nil, sessionID, userID)
	if err != nil {
		return nil, apierr.Store("failed to fetch review session", err)
	}
	if session == nil {
		return nil, apierr.NotFound("review session not found")
	}

	// Completion marking is idempotent per item.
	if session.HasCompleted(itemID) {
		return session, nil
	}

	belongs := false
	for _, id := range session.ReviewIDs {
		if id == itemID {
			belongs = true
			break
		}
	}
	if !belongs {
		return nil, apierr.Validation("item does not belong to session")
	}

	completed := append([]string{}, session.CompletedIDs...)
	completed = append(completed, itemID)

	currentIndex := len(completed)
	if max := len(session.ReviewIDs) - 1; currentIndex > max {
		currentIndex = max
	}

	patch := map[string]interface{}{
		"completed_ids": datatypes.NewJSONSlice(completed),
		"current_index": currentIndex,
	}
	if len(completed) >= len(session.ReviewIDs) {
		patch["status"] = types.SessionStatusCompleted
		patch["completed_at"] = time.Now().UTC()
	}

	updated, err := rs.sessionRepo.Update(ctx, nil, sessionID, userID, patch)
	if err != nil {
		return nil, apierr.Store("failed to mark item completed", err)
	}
	return updated, nil
}

func (rs *reviewSessionService) CompleteSession(ctx context.Context, userID, sessionID uuid.UUID) (*types.ReviewSession, error) {
	session, err := rs.sessionRepo.GetByIDAndUser(ctx, nil, sessionID, userID)
	if err != nil {
		return nil, apierr.Store("failed to fetch review session", err)
	}
	if session == nil {
		return nil, apierr.NotFound("review session not found")
	}

	updated, err := rs.sessionRepo.Update(ctx, nil, sessionID, userID, map[string]interface{}{
		"status":       types.SessionStatusCompleted,
		"completed_at": time.Now().UTC(),
	})
	if err != nil {
		return nil, apierr.Store("failed to complete review session", err)
	}
	return updated, nil
}

func (rs *reviewSessionService) AbandonSession(ctx context.Context, userID, sessionID uuid.UUID) (*types.ReviewSession, error) {
	session, err := rs.sessionRepo.GetByIDAndUser(ctx, nil, sessionID, userID)
	if err != nil {
		return nil, apierr.Store("failed to fetch review session", err)
	}
	if session == nil {
		return nil, apierr.NotFound("review session not found")
	}
	if session.Status == types.SessionStatusCompleted {
		return nil, apierr.Validation("completed sessions cannot be abandoned")
	}

	updated, err := rs.sessionRepo.Update(ctx, nil, sessionID, userID, map[string]interface{}{
		"status": types.SessionStatusAbandoned,
	})
	if err != nil {
		return nil, apierr.Store("failed to abandon review session", err)
	}
	return updated, nil
}

func (rs *reviewSessionService) UpdateProgress(ctx context.Context, userID, sessionID uuid.UUID, currentIndex int) (*types.ReviewSession, error) {
	if currentIndex < 0 {
		return nil, apierr.Validation("current_index must not be negative")
	}

	session, err := rs.sessionRepo.GetByIDAndUser(ctx, nil, sessionID, userID)
	if err != nil {
		return nil, apierr.Store("failed to fetch review session", err)
	}
	if session == nil {
		return nil, apierr.NotFound("review session not found")
	}

	// Cursor bookmark only; status is untouched.
	updated, err := rs.sessionRepo.Update(ctx, nil, sessionID, userID, map[string]interface{}{
		"current_index": currentIndex,
	})
	if err != nil {
		return nil, apierr.Store("failed to update session progress", err)
	}
	return updated, nil
}

func (rs *reviewSessionService) ListSessions(ctx context.Context, userID uuid.UUID, filter repos.SessionFilter) ([]*types.ReviewSession, error) {
	sessions, err := rs.sessionRepo.ListByUser(ctx, nil, userID, filter)
	if err != nil {
		return nil, apierr.Store("failed to list review sessions", err)
	}
	return sessions, nil
}
