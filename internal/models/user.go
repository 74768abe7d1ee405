package models

import "time"

// DefaultAvatar is the placeholder image used when a user has no uploaded avatar
const DefaultAvatar = "default-user.png"

// User represents a user account in the system
type User struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`    // bcrypt hash, never serialized
	Role      int       `json:"role"` // id of the single attached role
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserListItem represents a user row in the users table listing
type UserListItem struct {
	ID        int       `json:"id"`
	Image     string    `json:"image"`
	ImageURL  string    `json:"imageUrl"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"` // resolved role display name
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	CanManage bool      `json:"canManage"`
}

// CreateUserRequest represents the fields submitted by the create user form
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     int    `json:"role"`
}

// UpdateUserRequest represents the fields submitted by the edit user form
type UpdateUserRequest struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"` // empty keeps the current hash
	Role     int    `json:"role"`
	// ImageDelete is set when the "image_delete" checkbox was ticked
	ImageDelete bool `json:"imageDelete"`
	// ImageName is the avatar filename that will be persisted.
	// It is filled by the service, never by the client.
	ImageName string `json:"-"`
}

// DuplicateField selects the column used by duplicate checks
type DuplicateField int

const (
	ByEmail DuplicateField = iota + 1
	ByName
)

// String returns the column name of the duplicate field
func (f DuplicateField) String() string {
	switch f {
	case ByEmail:
		return "email"
	case ByName:
		return "name"
	default:
		return "unknown"
	}
}

// UserSnapshot is the audit representation of a user record
type UserSnapshot struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  int    `json:"role"`
	Image string `json:"image"`
}

// Snapshot returns the audit representation of the user
func (u *User) Snapshot() UserSnapshot {
	return UserSnapshot{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
		Image: u.Image,
	}
}
