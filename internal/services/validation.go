package services

import (
	"context"
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/adminpanel/backend/internal/models"
)

const (
	maxFieldLength    = 255
	minPasswordLength = 6
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// DuplicateChecker is the interface that wraps the uniqueness lookup used by validation
type DuplicateChecker interface {
	// Method ExistsBy checks if a user other than excludeID already has the value in the selected column.
	//
	// "field" parameter selects the column to check.
	// "value" parameter is the value to look for.
	// "excludeID" parameter is the id of the user to ignore, 0 ignores nobody.
	//
	// If some error occurs, the error will be returned together with "false" value.
	ExistsBy(ctx context.Context, field models.DuplicateField, value string, excludeID int) (bool, error)
}

// validateCreate checks the fields submitted by the create form
func validateCreate(ctx context.Context, checker DuplicateChecker, req *models.CreateUserRequest) error {
	verr := NewValidationError()

	if err := validateEmail(ctx, checker, verr, req.Email, 0, true); err != nil {
		return err
	}

	switch {
	case req.Password == "":
		verr.Add("password", "The password field is required.")
	case utf8.RuneCountInString(req.Password) < minPasswordLength:
		verr.Add("password", fmt.Sprintf("The password must be at least %d characters.", minPasswordLength))
	case utf8.RuneCountInString(req.Password) > maxFieldLength:
		verr.Add("password", fmt.Sprintf("The password may not be greater than %d characters.", maxFieldLength))
	}

	validateCommon(verr, req.Name, req.Role)

	if verr.HasErrors() {
		return verr
	}
	return nil
}

// validateUpdate checks the fields submitted by the edit form. The password is not validated:
// an empty value keeps the current hash.
func validateUpdate(ctx context.Context, checker DuplicateChecker, req *models.UpdateUserRequest) error {
	verr := NewValidationError()

	if err := validateEmail(ctx, checker, verr, req.Email, req.ID, false); err != nil {
		return err
	}

	validateCommon(verr, req.Name, req.Role)

	if verr.HasErrors() {
		return verr
	}
	return nil
}

// validateEmail records email violations in verr. Only lookup failures are returned.
func validateEmail(ctx context.Context, checker DuplicateChecker, verr *ValidationError, email string, excludeID int, checkFormat bool) error {
	if email == "" {
		verr.Add("email", "The email field is required.")
		return nil
	}
	if utf8.RuneCountInString(email) > maxFieldLength {
		verr.Add("email", fmt.Sprintf("The email may not be greater than %d characters.", maxFieldLength))
		return nil
	}
	if checkFormat && !emailRegex.MatchString(email) {
		verr.Add("email", "The email must be a valid email address.")
		return nil
	}

	exists, err := checker.ExistsBy(ctx, models.ByEmail, email, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if exists {
		verr.Add("email", "The email has already been taken.")
	}
	return nil
}

func validateCommon(verr *ValidationError, name string, role int) {
	if utf8.RuneCountInString(name) > maxFieldLength {
		verr.Add("name", fmt.Sprintf("The name may not be greater than %d characters.", maxFieldLength))
	}
	if role <= 0 {
		verr.Add("role", "The role field is required.")
	}
}
