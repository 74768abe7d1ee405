package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/adminpanel/backend/internal/models"
	"go.uber.org/zap"
)

type roleRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db *sql.DB, logger *zap.Logger) *roleRepository {
	return &roleRepository{
		db:     db,
		logger: logger,
	}
}

// GetAll retrieves all roles ordered by id
func (r *roleRepository) GetAll(ctx context.Context) ([]models.Role, error) {
	return r.query(ctx, `SELECT id, name, display_name FROM roles ORDER BY id`)
}

// GetAllExcept retrieves all roles whose id is not in ids
func (r *roleRepository) GetAllExcept(ctx context.Context, ids []int) ([]models.Role, error) {
	if len(ids) == 0 {
		return r.GetAll(ctx)
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(`SELECT id, name, display_name FROM roles WHERE id NOT IN (%s) ORDER BY id`, strings.Join(placeholders, ", "))
	return r.query(ctx, query, args...)
}

func (r *roleRepository) query(ctx context.Context, query string, args ...any) ([]models.Role, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to query roles", zap.Error(err))
		return nil, fmt.Errorf("failed to query roles: %w", err)
	}
	defer rows.Close()

	roles := []models.Role{}
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.DisplayName); err != nil {
			r.logger.Error("failed to scan role", zap.Error(err))
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, role)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return roles, nil
}

// GetByID retrieves a role by id
func (r *roleRepository) GetByID(ctx context.Context, id int) (*models.Role, error) {
	return r.getOne(ctx, `SELECT id, name, display_name FROM roles WHERE id = ?`, id)
}

// GetByName retrieves a role by its internal key
func (r *roleRepository) GetByName(ctx context.Context, name string) (*models.Role, error) {
	return r.getOne(ctx, `SELECT id, name, display_name FROM roles WHERE name = ?`, name)
}

func (r *roleRepository) getOne(ctx context.Context, query string, arg any) (*models.Role, error) {
	role := &models.Role{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&role.ID, &role.Name, &role.DisplayName)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("role %v: %w", arg, models.ErrRecordNotFound)
	}
	if err != nil {
		r.logger.Error("failed to get role", zap.Error(err), zap.Any("key", arg))
		return nil, fmt.Errorf("failed to get role: %w", err)
	}

	return role, nil
}
