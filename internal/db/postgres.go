package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/inocenciorjr/medbrave-backend/internal/logger"
	"github.com/inocenciorjr/medbrave-backend/internal/types"
	"github.com/inocenciorjr/medbrave-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	log.Info("Loading environment variables...")
	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "medbrave", log)
	log.Debug("Environment variables loaded")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	log.Info("Connecting to Postgres...")
	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		log.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	return &PostgresService{db: gormDB, log: serviceLog}, nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.User{},
		&types.UserToken{},
		&types.PlannerEvent{},
		&types.ReviewSession{},
		&types.ReviewCard{},
		&types.PlannerSyncTask{},
		&types.PlannerSyncState{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}

	s.log.Info("Configuring foreign key relationships for postgres tables...")
	constraints := []string{
		`ALTER TABLE "user_token"
		 ADD CONSTRAINT "fk_user_token_user_id"
		 FOREIGN KEY ("user_id") REFERENCES "app_user"("id") ON DELETE CASCADE`,
		`ALTER TABLE "planner_event"
		 ADD CONSTRAINT "fk_planner_event_user_id"
		 FOREIGN KEY ("user_id") REFERENCES "app_user"("id") ON DELETE CASCADE`,
		`ALTER TABLE "review_session"
		 ADD CONSTRAINT "fk_review_session_user_id"
		 FOREIGN KEY ("user_id") REFERENCES "app_user"("id") ON DELETE CASCADE`,
		`ALTER TABLE "review_card"
		 ADD CONSTRAINT "fk_review_card_user_id"
		 FOREIGN KEY ("user_id") REFERENCES "app_user"("id") ON DELETE CASCADE`,
		`ALTER TABLE "planner_sync_task"
		 ADD CONSTRAINT "fk_planner_sync_task_session_id"
		 FOREIGN KEY ("session_id") REFERENCES "review_session"("id") ON DELETE CASCADE`,
		`ALTER TABLE "planner_sync_state"
		 ADD CONSTRAINT "fk_planner_sync_state_session_id"
		 FOREIGN KEY ("session_id") REFERENCES "review_session"("id") ON DELETE CASCADE`,
	}
	for _, ddl := range constraints {
		if err := s.db.Exec(ddl).Error; err != nil {
			// Re-running migrations against an existing schema trips
			// duplicate-constraint errors; those are fine.
			s.log.Debug("Skipping constraint", "error", err)
		}
	}

	// One active session per (user, content type, day). The application
	// checks before insert, but a concurrent pair of creates needs the
	// store to arbitrate.
	if err := s.db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS "uniq_review_session_active_slot"
		ON "review_session" ("user_id", "content_type", "date")
		WHERE "status" = 'active'
	`).Error; err != nil {
		s.log.Error("Failed to create active session unique index", "error", err)
		return err
	}

	s.log.Info("Postgres migration complete")
	return nil
}
