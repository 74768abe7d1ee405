package services

import (
	"context"
	"encoding/json"

	"github.com/adminpanel/backend/internal/models"
	"go.uber.org/zap"
)

// ActivityLogRepository is the interface that wraps methods for activity_logs table data access
type ActivityLogRepository interface {
	// Method Create inserts an activity log entry.
	//
	// If some error occurs, the error will be returned.
	Create(ctx context.Context, entry *models.ActivityLog) error
}

type activityLogger struct {
	repo   ActivityLogRepository
	logger *zap.Logger
}

// NewActivityLogger creates a new activity logger
func NewActivityLogger(repo ActivityLogRepository, logger *zap.Logger) *activityLogger {
	return &activityLogger{
		repo:   repo,
		logger: logger,
	}
}

// SaveLog stores an audit record of an action performed by actor. Failures are only logged.
func (l *activityLogger) SaveLog(ctx context.Context, actor models.Actor, snapshot any, description string) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		l.logger.Warn("failed to marshal activity snapshot", zap.Error(err), zap.String("description", description))
		payload = []byte("{}")
	}

	entry := &models.ActivityLog{
		UserID:      actor.ID,
		Description: description,
		Payload:     string(payload),
		IPAddress:   actor.IPAddress,
		RequestID:   actor.RequestID,
	}

	if err := l.repo.Create(ctx, entry); err != nil {
		l.logger.Error("failed to save activity log",
			zap.Error(err),
			zap.Int("actorId", actor.ID),
			zap.String("description", description),
		)
	}
}
