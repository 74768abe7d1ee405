package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/adminpanel/backend/internal/models"
	"go.uber.org/zap"
)

type activityLogRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewActivityLogRepository creates a new activity log repository
func NewActivityLogRepository(db *sql.DB, logger *zap.Logger) *activityLogRepository {
	return &activityLogRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts an activity log entry
func (r *activityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO activity_logs (user_id, description, payload, ip_address, request_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.UserID, entry.Description, entry.Payload, entry.IPAddress, entry.RequestID, entry.CreatedAt)
	if err != nil {
		r.logger.Error("failed to create activity log", zap.Error(err), zap.String("description", entry.Description))
		return fmt.Errorf("failed to create activity log: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	entry.ID = int(id)

	return nil
}
