package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/adminpanel/backend/internal/middleware"
	"github.com/adminpanel/backend/internal/models"
	"github.com/adminpanel/backend/internal/services"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const defaultPageLength = 10

// UserService is the interface that wraps methods for user administration
type UserService interface {
	// Method List returns one page of the users table.
	//
	// "actor" parameter is the authenticated user, used to decide whether rows can be managed.
	// "params" parameter holds paging, sorting and search options.
	//
	// If some error occurs, the error will be returned together with nil.
	List(ctx context.Context, actor models.Actor, params models.TableParams) (*models.TablePage, error)
	// Method AddForm returns the data of the create user form.
	AddForm(ctx context.Context, actor models.Actor) (*models.FormData, error)
	// Method ImportForm returns the data of the import form.
	ImportForm() *models.FormData
	// Method Create validates and persists a new user.
	//
	// "avatar" parameter is optional.
	//
	// *services.ValidationError is returned when a field is invalid, services.ErrCreate when persistence failed.
	Create(ctx context.Context, actor models.Actor, req *models.CreateUserRequest, avatar *models.FileUpload) (*models.User, error)
	// Method Edit returns the data of the edit user form.
	//
	// If user with such ID does not exist, services.ErrNotFound is returned.
	Edit(ctx context.Context, actor models.Actor, id int) (*models.FormData, error)
	// Method Update validates and saves the changes of an existing user.
	//
	// "avatar" parameter is optional.
	//
	// *services.ValidationError is returned when a field is invalid, services.ErrUpdate otherwise.
	Update(ctx context.Context, actor models.Actor, req *models.UpdateUserRequest, avatar *models.FileUpload) (*models.User, error)
	// Method Delete removes a user.
	//
	// services.ErrSelfDelete, services.ErrForeignKey or services.ErrDelete are returned on failure.
	Delete(ctx context.Context, actor models.Actor, id int) error
}

// ImportService is the interface that wraps the bulk user import
type ImportService interface {
	// Method Import creates users from an uploaded CSV file.
	//
	// Rows are committed one by one, so a result is returned even when some rows were rejected.
	// If the file is missing, has the wrong extension, a wrong header or cannot be read, the error will be returned together with nil.
	Import(ctx context.Context, actor models.Actor, upload *models.FileUpload) (*models.ImportResult, error)
}

// UserHandler handles user administration HTTP requests
type UserHandler struct {
	BaseHandler
	userService   UserService
	importService ImportService
	maxUploadSize int64
	avatarURL     func(filename string) string
}

// NewUserHandler creates a new user handler
func NewUserHandler(
	userService UserService,
	importService ImportService,
	logger *zap.Logger,
	maxUploadSize int64,
	avatarURL func(filename string) string,
) *UserHandler {
	return &UserHandler{
		BaseHandler:   BaseHandler{Logger: logger},
		userService:   userService,
		importService: importService,
		maxUploadSize: maxUploadSize,
		avatarURL:     avatarURL,
	}
}

// RegisterRoutes registers all user handler routes
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/add", h.AddForm)
		r.Post("/create", h.Create)
		r.Get("/edit/{id}", h.Edit)
		r.Post("/update", h.Update)
		r.Get("/delete/{id}", h.Delete)
		r.Get("/import", h.ImportForm)
		r.Post("/importData", h.ImportData)
	})
}

// actor returns the authenticated user of the request
func actor(r *http.Request) models.Actor {
	a, _ := middleware.GetActor(r.Context())
	return a
}

// List handles GET /users
// @Summary List users
// @Description Server-side data table of users. Returns JSON for XHR clients, an HTML page otherwise.
// @Tags users
// @Produce json
// @Produce html
// @Param draw query int false "Data table draw counter"
// @Param start query int false "Offset of the first row"
// @Param length query int false "Page size, -1 for all rows"
// @Param order[0][column] query int false "Index of the sort column"
// @Param order[0][dir] query string false "Sort direction (asc, desc)"
// @Param search[value] query string false "Search over name, email and role"
// @Success 200 {object} models.TablePage "Users page"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 403 {object} map[string]string "Insufficient permissions"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security ApiKeyAuth
// @Router /users [get]
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	if !WantsJSON(r) {
		h.render(w, r, "list", pageData{Title: "Users"})
		return
	}

	params := parseTableParams(r)
	page, err := h.userService.List(r.Context(), actor(r), params)
	if err != nil {
		h.Logger.Error("failed to list users", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	h.RespondJSON(w, http.StatusOK, page)
}

// AddForm handles GET /users/add
// @Summary Create user form
// @Description Data of the create user form, including the role picker
// @Tags users
// @Produce json
// @Produce html
// @Success 200 {object} models.FormData "Form data"
// @Failure 500 {object} map[string]string "Internal server error"
// @Security ApiKeyAuth
// @Router /users/add [get]
func (h *UserHandler) AddForm(w http.ResponseWriter, r *http.Request) {
	form, err := h.userService.AddForm(r.Context(), actor(r))
	if err != nil {
		h.Logger.Error("failed to build add form", zap.Error(err))
		h.fail(w, r, http.StatusInternalServerError, MessageNotFound, routeURLs["users"])
		return
	}

	h.respondForm(w, r, "Add user", form)
}

// Create handles POST /users/create
// @Summary Create a user
// @Description Create a new user with an optional avatar
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Param name formData string false "Name"
// @Param email formData string true "Email"
// @Param password formData string true "Password (6-255 characters)"
// @Param role formData int true "Role ID"
// @Param image formData file false "Avatar image"
// @Success 201 {object} map[string]any "User created"
// @Failure 400 {object} map[string]any "Validation failed"
// @Failure 500 {object} map[string]any "Failed to create data"
// @Security ApiKeyAuth
// @Router /users/create [post]
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := h.parseForm(r); err != nil {
		h.Logger.Error("failed to parse form", zap.Error(err))
		h.fail(w, r, http.StatusBadRequest, MessageCreateFailed, "/users/add")
		return
	}

	req := &models.CreateUserRequest{
		Name:     strings.TrimSpace(r.FormValue("name")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("password"),
		Role:     formInt(r, "role"),
	}

	avatar, closeAvatar, err := formFile(r, "image")
	if err != nil {
		h.Logger.Error("failed to get avatar file from form", zap.Error(err))
		h.fail(w, r, http.StatusBadRequest, MessageCreateFailed, "/users/add")
		return
	}
	defer closeAvatar()

	user, err := h.userService.Create(r.Context(), actor(r), req, avatar)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			h.failValidation(w, r, verr, "/users/add")
			return
		}
		h.Logger.Error("failed to create user", zap.Error(err))
		h.fail(w, r, http.StatusInternalServerError, MessageCreateFailed, routeURLs["users"])
		return
	}

	h.succeed(w, r, http.StatusCreated, FlashSuccess, MessageCreateSuccess, map[string]any{"user": user})
}

// Edit handles GET /users/edit/{id}
// @Summary Edit user form
// @Description Data of the edit user form, including the role picker
// @Tags users
// @Produce json
// @Produce html
// @Param id path int true "User ID"
// @Success 200 {object} models.FormData "Form data"
// @Failure 400 {object} map[string]any "Invalid user ID"
// @Failure 404 {object} map[string]any "User not found"
// @Failure 500 {object} map[string]any "Internal server error"
// @Security ApiKeyAuth
// @Router /users/edit/{id} [get]
func (h *UserHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, MessageNotFound, routeURLs["users"])
		return
	}

	form, err := h.userService.Edit(r.Context(), actor(r), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			h.fail(w, r, http.StatusNotFound, MessageNotFound, routeURLs["users"])
			return
		}
		h.Logger.Error("failed to build edit form", zap.Error(err), zap.Int("id", id))
		h.fail(w, r, http.StatusInternalServerError, MessageNotFound, routeURLs["users"])
		return
	}

	h.respondForm(w, r, "Edit user", form)
}

// Update handles POST /users/update
// @Summary Update a user
// @Description Update a user. An empty password keeps the current one. Without a new image the avatar is reset to the default.
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Param id formData int true "User ID"
// @Param name formData string false "Name"
// @Param email formData string true "Email"
// @Param password formData string false "New password"
// @Param role formData int true "Role ID"
// @Param image formData file false "Avatar image"
// @Param image_delete formData string false "Delete the current avatar"
// @Success 200 {object} map[string]any "User updated"
// @Failure 400 {object} map[string]any "Validation failed"
// @Failure 404 {object} map[string]any "User not found"
// @Failure 500 {object} map[string]any "Failed to update data"
// @Security ApiKeyAuth
// @Router /users/update [post]
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	if err := h.parseForm(r); err != nil {
		h.Logger.Error("failed to parse form", zap.Error(err))
		h.fail(w, r, http.StatusBadRequest, MessageUpdateFailed, routeURLs["users"])
		return
	}

	req := &models.UpdateUserRequest{
		ID:          formInt(r, "id"),
		Name:        strings.TrimSpace(r.FormValue("name")),
		Email:       strings.TrimSpace(r.FormValue("email")),
		Password:    r.FormValue("password"),
		Role:        formInt(r, "role"),
		ImageDelete: r.FormValue("image_delete") != "",
	}

	avatar, closeAvatar, err := formFile(r, "image")
	if err != nil {
		h.Logger.Error("failed to get avatar file from form", zap.Error(err))
		h.fail(w, r, http.StatusBadRequest, MessageUpdateFailed, routeURLs["users"])
		return
	}
	defer closeAvatar()

	user, err := h.userService.Update(r.Context(), actor(r), req, avatar)
	if err != nil {
		var verr *services.ValidationError
		switch {
		case errors.As(err, &verr):
			h.failValidation(w, r, verr, fmt.Sprintf("/users/edit/%d", req.ID))
		case errors.Is(err, services.ErrNotFound):
			h.fail(w, r, http.StatusNotFound, MessageUpdateFailed, routeURLs["users"])
		default:
			h.Logger.Error("failed to update user", zap.Error(err), zap.Int("id", req.ID))
			h.fail(w, r, http.StatusInternalServerError, MessageUpdateFailed, routeURLs["users"])
		}
		return
	}

	h.succeed(w, r, http.StatusOK, FlashSuccess, MessageUpdateSuccess, map[string]any{"user": user})
}

// Delete handles GET /users/delete/{id}
// @Summary Delete a user
// @Description Delete a user and its avatar. Users cannot delete themselves.
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} map[string]any "User deleted"
// @Failure 400 {object} map[string]any "Invalid user ID"
// @Failure 403 {object} map[string]any "Cannot delete yourself"
// @Failure 404 {object} map[string]any "User not found"
// @Failure 409 {object} map[string]any "User is used by other data"
// @Failure 500 {object} map[string]any "Failed to delete data"
// @Security ApiKeyAuth
// @Router /users/delete/{id} [get]
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, MessageDeleteFailed, routeURLs["users"])
		return
	}

	if err := h.userService.Delete(r.Context(), actor(r), id); err != nil {
		switch {
		case errors.Is(err, services.ErrSelfDelete):
			h.fail(w, r, http.StatusForbidden, MessageDeleteSelf, routeURLs["users"])
		case errors.Is(err, services.ErrForeignKey):
			h.fail(w, r, http.StatusConflict, MessageForeignKey, routeURLs["users"])
		case errors.Is(err, services.ErrNotFound):
			h.fail(w, r, http.StatusNotFound, MessageDeleteFailed, routeURLs["users"])
		default:
			h.Logger.Error("failed to delete user", zap.Error(err), zap.Int("id", id))
			h.fail(w, r, http.StatusInternalServerError, MessageDeleteFailed, routeURLs["users"])
		}
		return
	}

	h.succeed(w, r, http.StatusOK, FlashSuccess, MessageDeleteSuccess, nil)
}

// ImportForm handles GET /users/import
// @Summary Import users form
// @Tags users
// @Produce json
// @Produce html
// @Success 200 {object} models.FormData "Form data"
// @Security ApiKeyAuth
// @Router /users/import [get]
func (h *UserHandler) ImportForm(w http.ResponseWriter, r *http.Request) {
	form := h.userService.ImportForm()
	if WantsJSON(r) {
		h.RespondJSON(w, http.StatusOK, form)
		return
	}
	h.render(w, r, "import", pageData{Title: "Import users", Form: form, ActionURL: routeURLs[form.FormAction]})
}

// ImportData handles POST /users/importData
// @Summary Import users from CSV
// @Description Header must hold exactly the columns email, first_name, last_name, role, password. Existing emails are reported, not imported.
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Param import formData file true "CSV file"
// @Success 200 {object} models.ImportResult "Import result"
// @Failure 400 {object} map[string]any "Missing file, wrong extension or wrong format"
// @Failure 500 {object} map[string]any "Import failed"
// @Security ApiKeyAuth
// @Router /users/importData [post]
func (h *UserHandler) ImportData(w http.ResponseWriter, r *http.Request) {
	if err := h.parseForm(r); err != nil {
		h.Logger.Error("failed to parse form", zap.Error(err))
		h.fail(w, r, http.StatusBadRequest, MessageImportFailed, routeURLs["users"])
		return
	}

	upload, closeUpload, err := formFile(r, "import")
	if err != nil {
		h.Logger.Error("failed to get import file from form", zap.Error(err))
		h.fail(w, r, http.StatusBadRequest, MessageImportFailed, routeURLs["users"])
		return
	}
	defer closeUpload()

	result, err := h.importService.Import(r.Context(), actor(r), upload)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrImportFileMissing):
			h.fail(w, r, http.StatusBadRequest, MessageImportFileMissing, routeURLs["users"])
		case errors.Is(err, services.ErrUnsupportedFormat):
			h.fail(w, r, http.StatusBadRequest, MessageImportExtension, routeURLs["users"])
		case errors.Is(err, services.ErrImportFormat):
			h.fail(w, r, http.StatusBadRequest, MessageImportFormat, routeURLs["users"])
		default:
			h.Logger.Error("failed to import users", zap.Error(err))
			h.fail(w, r, http.StatusInternalServerError, MessageImportFailed, routeURLs["users"])
		}
		return
	}

	level := FlashSuccess
	if result.Status == models.ImportWarning {
		level = FlashWarning
	}
	message := result.Message
	if !WantsJSON(r) && result.Summary != "" {
		message = result.Summary
	}
	h.succeed(w, r, http.StatusOK, level, message, map[string]any{
		"imported":   result.Imported,
		"duplicates": result.Duplicates,
		"failed":     result.Failed,
	})
}

// respondForm sends form data as JSON or renders the form page
func (h *UserHandler) respondForm(w http.ResponseWriter, r *http.Request, title string, form *models.FormData) {
	if WantsJSON(r) {
		h.RespondJSON(w, http.StatusOK, form)
		return
	}
	h.render(w, r, "form", pageData{
		Title:     title,
		Form:      form,
		ActionURL: routeURLs[form.FormAction],
		AvatarURL: h.avatarURL(form.User.Image),
	})
}

// succeed reports a successful mutation as JSON or as a flash message on the users page
func (h *UserHandler) succeed(w http.ResponseWriter, r *http.Request, status int, level FlashLevel, message string, extra map[string]any) {
	if WantsJSON(r) {
		h.RespondStatus(w, status, level, message, extra)
		return
	}
	h.RedirectWithFlash(w, r, routeURLs["users"], level, message)
}

// fail reports a failure as JSON or as a flash message on the redirect target
func (h *UserHandler) fail(w http.ResponseWriter, r *http.Request, status int, message, redirectTo string) {
	if WantsJSON(r) {
		h.RespondStatus(w, status, FlashError, message, nil)
		return
	}
	h.RedirectWithFlash(w, r, redirectTo, FlashError, message)
}

// failValidation reports field violations. Browsers are sent back to the form.
func (h *UserHandler) failValidation(w http.ResponseWriter, r *http.Request, verr *services.ValidationError, formURL string) {
	if WantsJSON(r) {
		h.RespondStatus(w, http.StatusBadRequest, FlashError, MessageValidationFailed, map[string]any{"errors": verr.Fields})
		return
	}

	fields := make([]string, 0, len(verr.Fields))
	for field := range verr.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	messages := make([]string, len(fields))
	for i, field := range fields {
		messages[i] = verr.Fields[field]
	}
	h.RedirectWithFlash(w, r, formURL, FlashError, strings.Join(messages, " "))
}

// parseForm parses multipart and urlencoded bodies
func (h *UserHandler) parseForm(r *http.Request) error {
	err := r.ParseMultipartForm(h.maxUploadSize)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return err
	}
	return nil
}

// formFile returns the uploaded file of field, or nil when none was sent.
// The returned func closes the file and is never nil.
func formFile(r *http.Request, field string) (*models.FileUpload, func(), error) {
	noop := func() {}

	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, err
	}
	if header.Size == 0 {
		file.Close()
		return nil, noop, nil
	}

	return &models.FileUpload{Filename: header.Filename, Content: file}, func() { file.Close() }, nil
}

func formInt(r *http.Request, field string) int {
	value, err := strconv.Atoi(strings.TrimSpace(r.FormValue(field)))
	if err != nil {
		return 0
	}
	return value
}

// parseTableParams reads server-side data table parameters.
// Both the data table protocol (order[0][column], search[value]) and plain sort/dir/search are accepted.
func parseTableParams(r *http.Request) models.TableParams {
	q := r.URL.Query()

	params := models.TableParams{
		Length:  defaultPageLength,
		SortDir: models.SortAsc,
	}

	if draw, err := strconv.Atoi(q.Get("draw")); err == nil && draw >= 0 {
		params.Draw = draw
	}
	if start, err := strconv.Atoi(q.Get("start")); err == nil && start >= 0 {
		params.Start = start
	}
	if length, err := strconv.Atoi(q.Get("length")); err == nil && (length > 0 || length == -1) {
		params.Length = length
	}

	if column := q.Get("order[0][column]"); column != "" {
		params.SortColumn = q.Get(fmt.Sprintf("columns[%s][data]", column))
	} else {
		params.SortColumn = q.Get("sort")
	}

	dir := q.Get("order[0][dir]")
	if dir == "" {
		dir = q.Get("dir")
	}
	if strings.EqualFold(dir, string(models.SortDesc)) {
		params.SortDir = models.SortDesc
	}

	search := q.Get("search[value]")
	if search == "" {
		search = q.Get("search")
	}
	params.Search = strings.TrimSpace(search)

	return params
}
