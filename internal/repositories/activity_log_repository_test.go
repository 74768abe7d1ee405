package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/adminpanel/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestActivityLogRepository_Create(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError bool
		expectedID    int
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO activity_logs \(user_id, description, payload, ip_address, request_id, created_at\)`).
					WithArgs(1, "Create new user", `{"id":2}`, "127.0.0.1", "req-1", sqlmock.AnyArg()).
					WillReturnResult(sqlmock.NewResult(10, 1))
			},
			expectedID: 10,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO activity_logs`).
					WillReturnError(errors.New("database error"))
			},
			expectedError: true,
		},
		{
			name: "last insert id error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO activity_logs`).
					WillReturnResult(sqlmock.NewErrorResult(errors.New("last insert id error")))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			repo := NewActivityLogRepository(db, zap.NewNop())
			tt.setupMock(mock)

			entry := &models.ActivityLog{
				UserID:      1,
				Description: "Create new user",
				Payload:     `{"id":2}`,
				IPAddress:   "127.0.0.1",
				RequestID:   "req-1",
			}
			err = repo.Create(context.Background(), entry)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedID, entry.ID)
				assert.False(t, entry.CreatedAt.IsZero())
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
