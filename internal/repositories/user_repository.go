package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/adminpanel/backend/internal/models"
	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// MySQL server error numbers
const (
	mysqlErrDuplicateEntry = 1062
	mysqlErrRowReferenced  = 1451
)

// sortableColumns maps data table column names to SQL expressions
var sortableColumns = map[string]string{
	"name":       "u.name",
	"email":      "u.email",
	"role":       "r.display_name",
	"created_at": "u.created_at",
	"updated_at": "u.updated_at",
}

// userRepository implements the user store on top of MySQL
type userRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger) *userRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// classifyError maps MySQL server errors to store level errors
func classifyError(err error) error {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case mysqlErrDuplicateEntry:
			return fmt.Errorf("%w: %w", models.ErrDuplicateEntry, err)
		case mysqlErrRowReferenced:
			return fmt.Errorf("%w: %w", models.ErrReferenced, err)
		}
	}
	return err
}

// GetAll retrieves one page of the users table listing.
//
// Returns the page rows, the total number of users and the number of users matching the search.
func (r *userRepository) GetAll(ctx context.Context, params models.TableParams) ([]models.UserListItem, int, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		r.logger.Error("failed to count users", zap.Error(err))
		return nil, 0, 0, fmt.Errorf("failed to count users: %w", err)
	}

	where := ""
	args := []any{}
	if params.Search != "" {
		where = "WHERE (u.name LIKE ? OR u.email LIKE ? OR r.display_name LIKE ?)"
		pattern := "%" + params.Search + "%"
		args = append(args, pattern, pattern, pattern)
	}

	filtered := total
	if where != "" {
		countQuery := fmt.Sprintf(`
			SELECT COUNT(*)
			FROM users u
			LEFT JOIN roles r ON r.id = u.role
			%s
		`, where)
		if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&filtered); err != nil {
			r.logger.Error("failed to count filtered users", zap.Error(err))
			return nil, 0, 0, fmt.Errorf("failed to count filtered users: %w", err)
		}
	}

	orderBy, ok := sortableColumns[params.SortColumn]
	if !ok {
		orderBy = "u.id"
	}
	direction := "ASC"
	if params.SortDir == models.SortDesc {
		direction = "DESC"
	}

	// Column and direction are taken from whitelists above, never from the request
	query := fmt.Sprintf(`
		SELECT u.id, u.name, u.email, COALESCE(r.display_name, ''), u.image, u.created_at, u.updated_at
		FROM users u
		LEFT JOIN roles r ON r.id = u.role
		%s
		ORDER BY %s %s
	`, where, orderBy, direction)
	if params.Length > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, params.Length, params.Start)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to query users", zap.Error(err))
		return nil, 0, 0, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []models.UserListItem{}
	for rows.Next() {
		var item models.UserListItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Email, &item.Role, &item.Image, &item.CreatedAt, &item.UpdatedAt); err != nil {
			r.logger.Error("failed to scan user", zap.Error(err))
			return nil, 0, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating rows", zap.Error(err))
		return nil, 0, 0, fmt.Errorf("error iterating rows: %w", err)
	}

	return users, total, filtered, nil
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `
		SELECT id, name, email, password, role, image, created_at, updated_at
		FROM users
		WHERE id = ?
	`

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Password,
		&user.Role,
		&user.Image,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %d: %w", id, models.ErrRecordNotFound)
	}
	if err != nil {
		r.logger.Error("failed to get user by id", zap.Error(err), zap.Int("id", id))
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// ExistsBy checks if a user other than excludeID has the given value in the selected column.
// Pass 0 as excludeID to check all users.
func (r *userRepository) ExistsBy(ctx context.Context, field models.DuplicateField, value string, excludeID int) (bool, error) {
	var query string
	switch field {
	case models.ByEmail:
		query = `SELECT EXISTS(SELECT 1 FROM users WHERE email = ? AND id <> ?)`
	case models.ByName:
		query = `SELECT EXISTS(SELECT 1 FROM users WHERE name = ? AND id <> ?)`
	default:
		return false, fmt.Errorf("invalid duplicate field: %d", field)
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, value, excludeID).Scan(&exists); err != nil {
		r.logger.Error("failed to check user existence", zap.Error(err), zap.Stringer("field", field))
		return false, fmt.Errorf("failed to check %s existence: %w", field, err)
	}

	return exists, nil
}

// Create inserts a new user and attaches its role in a single transaction.
//
// If storeAvatar is not nil it is called with the new user ID before commit and the returned
// filename is saved as the user's image. Any error rolls back the whole creation.
func (r *userRepository) Create(ctx context.Context, user *models.User, storeAvatar func(userID int) (string, error)) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx, `
		INSERT INTO users (name, email, password, role, image, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, user.Name, user.Email, user.Password, user.Role, user.Image, now, now)
	if err != nil {
		r.logger.Error("failed to create user", zap.Error(err))
		return fmt.Errorf("failed to create user: %w", classifyError(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO role_user (role_id, user_id) VALUES (?, ?)`, user.Role, id); err != nil {
		r.logger.Error("failed to attach role", zap.Error(err), zap.Int64("userId", id))
		return fmt.Errorf("failed to attach role: %w", classifyError(err))
	}

	image := user.Image
	if storeAvatar != nil {
		image, err = storeAvatar(int(id))
		if err != nil {
			return fmt.Errorf("failed to store avatar: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE users SET image = ? WHERE id = ?`, image, id); err != nil {
			r.logger.Error("failed to save avatar name", zap.Error(err), zap.Int64("userId", id))
			return fmt.Errorf("failed to save avatar name: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	user.ID = int(id)
	user.Image = image
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// Update saves all user fields. When syncRole is set the role attachment is replaced
// with the user's current role in the same transaction.
//
// If storeAvatar is not nil it is called after the row was updated and before commit; the
// returned filename replaces the user's image. Any error rolls back the whole update.
func (r *userRepository) Update(ctx context.Context, user *models.User, syncRole bool, storeAvatar func(userID int) (string, error)) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
		UPDATE users
		SET name = ?, email = ?, password = ?, role = ?, image = ?, updated_at = ?
		WHERE id = ?
	`, user.Name, user.Email, user.Password, user.Role, user.Image, now, user.ID); err != nil {
		r.logger.Error("failed to update user", zap.Error(err), zap.Int("id", user.ID))
		return fmt.Errorf("failed to update user: %w", classifyError(err))
	}

	if syncRole {
		if _, err := tx.ExecContext(ctx, `DELETE FROM role_user WHERE user_id = ?`, user.ID); err != nil {
			r.logger.Error("failed to detach roles", zap.Error(err), zap.Int("id", user.ID))
			return fmt.Errorf("failed to detach roles: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO role_user (role_id, user_id) VALUES (?, ?)`, user.Role, user.ID); err != nil {
			r.logger.Error("failed to attach role", zap.Error(err), zap.Int("id", user.ID))
			return fmt.Errorf("failed to attach role: %w", classifyError(err))
		}
	}

	image := user.Image
	if storeAvatar != nil {
		image, err = storeAvatar(user.ID)
		if err != nil {
			return fmt.Errorf("failed to store avatar: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE users SET image = ? WHERE id = ?`, image, user.ID); err != nil {
			r.logger.Error("failed to save avatar name", zap.Error(err), zap.Int("id", user.ID))
			return fmt.Errorf("failed to save avatar name: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	user.Image = image
	user.UpdatedAt = now
	return nil
}

// Delete detaches the user's roles and deletes the user in a single transaction
func (r *userRepository) Delete(ctx context.Context, id int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM role_user WHERE user_id = ?`, id); err != nil {
		r.logger.Error("failed to detach roles", zap.Error(err), zap.Int("id", id))
		return fmt.Errorf("failed to detach roles: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("failed to delete user", zap.Error(err), zap.Int("id", id))
		return fmt.Errorf("failed to delete user: %w", classifyError(err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %d: %w", id, models.ErrRecordNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
