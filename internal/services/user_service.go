package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/adminpanel/backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Audit descriptions of user mutations
const (
	activityCreateUser  = "Create new user"
	activityUpdateUser  = "Update user"
	activityDeleteUser  = "Delete user"
	activityImportUsers = "Import users"
)

// UserRepository is the interface that wraps methods for users table data access
type UserRepository interface {
	DuplicateChecker
	// Method GetAll retrieves one page of the users listing.
	//
	// "params" parameter holds paging, sorting and search options.
	//
	// Returns the page rows, the total number of users and the number of users matching the search.
	// If some error occurs, the error will be returned together with "nil" value.
	GetAll(ctx context.Context, params models.TableParams) ([]models.UserListItem, int, int, error)
	// Method GetByID retrieves a user by ID.
	//
	// "id" parameter is used to retrieve a user by ID.
	//
	// If user with such ID does not exist, models.ErrRecordNotFound is wrapped in the returned error.
	GetByID(ctx context.Context, id int) (*models.User, error)
	// Method Create inserts a new user and attaches its role in one transaction.
	//
	// "user" parameter is used to create a new user. Its ID, Image and timestamps are filled on success.
	// "storeAvatar" parameter is optional. It is called with the new user ID before commit
	// and the returned filename is saved as the user's image.
	//
	// If some error occurs, the transaction is rolled back and the error will be returned.
	Create(ctx context.Context, user *models.User, storeAvatar func(userID int) (string, error)) error
	// Method Update saves all user fields.
	//
	// "user" parameter contains the new state of the user.
	// "syncRole" parameter replaces the role attachment with user.Role in the same transaction.
	// "storeAvatar" parameter is optional. It is called after the row was updated and before commit;
	// the returned filename replaces user.Image.
	//
	// If some error occurs, the transaction is rolled back and the error will be returned.
	Update(ctx context.Context, user *models.User, syncRole bool, storeAvatar func(userID int) (string, error)) error
	// Method Delete detaches the roles of the user and deletes it.
	//
	// "id" parameter is used to identify the user to delete.
	//
	// models.ErrRecordNotFound or models.ErrReferenced are wrapped in the returned error when applicable.
	Delete(ctx context.Context, id int) error
}

// RoleRepository is the interface that wraps methods for roles table data access
type RoleRepository interface {
	// Method GetAll retrieves all roles ordered by id.
	GetAll(ctx context.Context) ([]models.Role, error)
	// Method GetAllExcept retrieves all roles whose id is not in "ids".
	GetAllExcept(ctx context.Context, ids []int) ([]models.Role, error)
	// Method GetByID retrieves a role by id.
	//
	// If role with such ID does not exist, models.ErrRecordNotFound is wrapped in the returned error.
	GetByID(ctx context.Context, id int) (*models.Role, error)
	// Method GetByName retrieves a role by its internal key.
	//
	// If role with such key does not exist, models.ErrRecordNotFound is wrapped in the returned error.
	GetByName(ctx context.Context, name string) (*models.Role, error)
}

// AvatarStorage is the interface that wraps avatar file operations
type AvatarStorage interface {
	// Method Store writes the avatar of a user and returns the stored filename "{userID}_image.{ext}".
	Store(userID int, originalFilename string, src io.Reader) (string, error)
	// Method Remove deletes an avatar file. Failures are swallowed and the default avatar is never removed.
	Remove(filename string)
	// Method DefaultName returns the placeholder avatar filename.
	DefaultName() string
	// Method URL returns the public URL of an avatar.
	URL(filename string) string
}

// ActivityLogger is the interface that wraps audit trail writing
type ActivityLogger interface {
	// Method SaveLog records a mutating action performed by actor.
	//
	// "snapshot" parameter is serialized as the payload of the record.
	// "description" parameter names the action.
	//
	// Errors are logged, never returned.
	SaveLog(ctx context.Context, actor models.Actor, snapshot any, description string)
}

type userService struct {
	userRepo UserRepository
	roleRepo RoleRepository
	avatars  AvatarStorage
	activity ActivityLogger
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo UserRepository,
	roleRepo RoleRepository,
	avatars AvatarStorage,
	activity ActivityLogger,
	logger *zap.Logger,
) *userService {
	return &userService{
		userRepo: userRepo,
		roleRepo: roleRepo,
		avatars:  avatars,
		activity: activity,
		logger:   logger,
	}
}

// List returns one page of the users table
func (s *userService) List(ctx context.Context, actor models.Actor, params models.TableParams) (*models.TablePage, error) {
	users, total, filtered, err := s.userRepo.GetAll(ctx, params)
	if err != nil {
		return nil, err
	}

	canManage := actor.IsAdministrator()
	for i := range users {
		users[i].ImageURL = s.avatars.URL(users[i].Image)
		users[i].CanManage = canManage
	}

	return &models.TablePage{
		Draw:            params.Draw,
		RecordsTotal:    total,
		RecordsFiltered: filtered,
		Data:            users,
	}, nil
}

// roleOptions returns the roles the actor may assign. Reserved roles are offered to administrators only.
func (s *userService) roleOptions(ctx context.Context, actor models.Actor) ([]models.Role, error) {
	if actor.IsAdministrator() {
		return s.roleRepo.GetAll(ctx)
	}
	return s.roleRepo.GetAllExcept(ctx, models.ReservedRoleIDs())
}

// AddForm returns the data of the create user form
func (s *userService) AddForm(ctx context.Context, actor models.Actor) (*models.FormData, error) {
	roles, err := s.roleOptions(ctx, actor)
	if err != nil {
		return nil, err
	}

	return &models.FormData{
		User:       &models.User{Image: s.avatars.DefaultName()},
		Roles:      roles,
		FormAction: "users.create",
		PageType:   "add",
		ButtonText: "Add",
	}, nil
}

// ImportForm returns the data of the import form
func (s *userService) ImportForm() *models.FormData {
	return &models.FormData{
		User:       &models.User{},
		FormAction: "users.importData",
		PageType:   "add",
		ButtonText: "Import",
	}
}

// Create validates and persists a new user. The avatar is optional.
func (s *userService) Create(ctx context.Context, actor models.Actor, req *models.CreateUserRequest, avatar *models.FileUpload) (*models.User, error) {
	if err := validateCreate(ctx, s.userRepo, req); err != nil {
		return nil, err
	}

	hash, err := generatePasswordHash(req.Password)
	if err != nil {
		s.logger.Error("failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("%w: failed to hash password: %w", ErrCreate, err)
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hash,
		Role:     req.Role,
		Image:    s.avatars.DefaultName(),
	}

	var storeAvatar func(userID int) (string, error)
	stored := ""
	if avatar != nil {
		storeAvatar = func(userID int) (string, error) {
			name, err := s.avatars.Store(userID, avatar.Filename, avatar.Content)
			if err != nil {
				return "", err
			}
			stored = name
			return name, nil
		}
	}

	if err := s.userRepo.Create(ctx, user, storeAvatar); err != nil {
		if stored != "" {
			s.avatars.Remove(stored)
		}
		if errors.Is(err, models.ErrDuplicateEntry) {
			verr := NewValidationError()
			verr.Add("email", "The email has already been taken.")
			return nil, verr
		}
		s.logger.Error("failed to create user", zap.Error(err), zap.String("email", req.Email))
		return nil, fmt.Errorf("%w: %w", ErrCreate, err)
	}

	s.activity.SaveLog(ctx, actor, user.Snapshot(), activityCreateUser)

	return user, nil
}

// Edit returns the data of the edit user form
func (s *userService) Edit(ctx context.Context, actor models.Actor, id int) (*models.FormData, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
		return nil, err
	}

	roles, err := s.roleOptions(ctx, actor)
	if err != nil {
		return nil, err
	}

	return &models.FormData{
		User:       user,
		Roles:      roles,
		FormAction: "users.update",
		PageType:   "edit",
		ButtonText: "Edit",
	}, nil
}

// Update validates and saves the changes of an existing user.
//
// An empty password keeps the current hash. The avatar ends up as the uploaded file when one is
// given and as the default avatar otherwise.
func (s *userService) Update(ctx context.Context, actor models.Actor, req *models.UpdateUserRequest, avatar *models.FileUpload) (*models.User, error) {
	current, err := s.userRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrUpdate, ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %w", ErrUpdate, err)
	}

	if err := validateUpdate(ctx, s.userRepo, req); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return nil, verr
		}
		return nil, fmt.Errorf("%w: %w", ErrUpdate, err)
	}

	password := current.Password
	if req.Password != "" {
		hash, err := generatePasswordHash(req.Password)
		if err != nil {
			s.logger.Error("failed to hash password", zap.Error(err), zap.Int("id", req.ID))
			return nil, fmt.Errorf("%w: failed to hash password: %w", ErrUpdate, err)
		}
		password = hash
	}

	req.ImageName = s.avatars.DefaultName()

	var storeAvatar func(userID int) (string, error)
	stored := ""
	if avatar != nil {
		storeAvatar = func(userID int) (string, error) {
			name, err := s.avatars.Store(userID, avatar.Filename, avatar.Content)
			if err != nil {
				return "", err
			}
			stored = name
			return name, nil
		}
	}

	syncRole := current.Role != req.Role
	user := &models.User{
		ID:        current.ID,
		Name:      req.Name,
		Email:     req.Email,
		Password:  password,
		Role:      req.Role,
		Image:     req.ImageName,
		CreatedAt: current.CreatedAt,
	}

	if err := s.userRepo.Update(ctx, user, syncRole, storeAvatar); err != nil {
		// The row still references the current image, so only a freshly named file is dropped
		if stored != "" && stored != current.Image {
			s.avatars.Remove(stored)
		}
		if errors.Is(err, models.ErrDuplicateEntry) {
			verr := NewValidationError()
			verr.Add("email", "The email has already been taken.")
			return nil, verr
		}
		s.logger.Error("failed to update user", zap.Error(err), zap.Int("id", req.ID))
		return nil, fmt.Errorf("%w: %w", ErrUpdate, err)
	}
	req.ImageName = user.Image

	if req.ImageDelete && current.Image != s.avatars.DefaultName() && current.Image != user.Image {
		s.avatars.Remove(current.Image)
	}

	s.activity.SaveLog(ctx, actor, user.Snapshot(), activityUpdateUser)

	return user, nil
}

// Delete removes a user together with its role attachment and avatar file.
// An actor can never delete their own account.
func (s *userService) Delete(ctx context.Context, actor models.Actor, id int) error {
	if actor.ID == id {
		return ErrSelfDelete
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			return fmt.Errorf("%w: %w", ErrDelete, ErrNotFound)
		}
		return fmt.Errorf("%w: %w", ErrDelete, err)
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, models.ErrReferenced):
			return fmt.Errorf("%w: %w", ErrForeignKey, err)
		case errors.Is(err, models.ErrRecordNotFound):
			return fmt.Errorf("%w: %w", ErrDelete, ErrNotFound)
		}
		s.logger.Error("failed to delete user", zap.Error(err), zap.Int("id", id))
		return fmt.Errorf("%w: %w", ErrDelete, err)
	}

	if user.Image != s.avatars.DefaultName() {
		s.avatars.Remove(user.Image)
	}

	s.activity.SaveLog(ctx, actor, user.Snapshot(), activityDeleteUser)

	return nil
}

// CheckDuplicate reports whether any user already holds value in the selected column
func (s *userService) CheckDuplicate(ctx context.Context, value string, field models.DuplicateField) (bool, error) {
	return s.userRepo.ExistsBy(ctx, field, value, 0)
}

// bcrypt only reads the first 72 bytes of a password and rejects longer input
const maxPasswordBytes = 72

// generatePasswordHash hashes a plaintext password with bcrypt, truncating it to the bytes bcrypt uses
func generatePasswordHash(password string) (string, error) {
	plain := []byte(password)
	if len(plain) > maxPasswordBytes {
		plain = plain[:maxPasswordBytes]
	}
	hash, err := bcrypt.GenerateFromPassword(plain, bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
