package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/inocenciorjr/medbrave-backend/internal/logger"
	"github.com/inocenciorjr/medbrave-backend/internal/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// One shared in-memory database per test name so every connection in
	// the pool sees the same schema.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(
		&types.User{},
		&types.UserToken{},
		&types.PlannerEvent{},
		&types.ReviewSession{},
		&types.ReviewCard{},
		&types.PlannerSyncTask{},
		&types.PlannerSyncState{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	// Same arbiter the Postgres bootstrap installs.
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS "uniq_review_session_active_slot"
		ON "review_session" ("user_id", "content_type", "date")
		WHERE "status" = 'active'
	`).Error; err != nil {
		t.Fatalf("create unique index: %v", err)
	}
	return db
}

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("production")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func createTestUser(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	id := uuid.New()
	user := &types.User{
		ID:           id,
		Email:        fmt.Sprintf("%s@example.com", id),
		PasswordHash: "x",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user.ID
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.DateOnly, value)
	if err != nil {
		t.Fatalf("parse date %q: %v", value, err)
	}
	return parsed.UTC()
}
