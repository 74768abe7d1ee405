package integration

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/adminpanel/backend/internal/config"
	"github.com/adminpanel/backend/internal/handlers"
	"github.com/adminpanel/backend/internal/middleware"
	"github.com/adminpanel/backend/internal/models"
	"github.com/adminpanel/backend/internal/repositories"
	"github.com/adminpanel/backend/internal/services"
	"github.com/adminpanel/backend/internal/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	testDB        *sql.DB
	testRouter    chi.Router
	testLogger    *zap.Logger
	testUploadDir string
)

// seededAdmin is the acting administrator of every request
var seededAdmin = models.Actor{ID: 1, Role: models.RoleAdministrator, IPAddress: "127.0.0.1"}

// seedTestData inserts the acting administrator
func seedTestData(t *testing.T, db *sql.DB) {
	t.Helper()
	cleanupTestData(t, db)

	hash, err := bcrypt.GenerateFromPassword([]byte("admin-secret"), bcrypt.MinCost)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO users (id, name, email, password, role, image) VALUES (1, 'Root', 'root@example.com', ?, 1, ?)`,
		string(hash), models.DefaultAvatar)
	require.NoError(t, err, "Failed to seed administrator")
	_, err = db.Exec(`INSERT INTO role_user (role_id, user_id) VALUES (1, 1)`)
	require.NoError(t, err, "Failed to seed administrator role")
}

// cleanupTestData removes all test data, keeping the seeded roles
func cleanupTestData(t *testing.T, db *sql.DB) {
	t.Helper()
	for _, query := range []string{
		"DELETE FROM activity_logs",
		"DELETE FROM role_user",
		"DELETE FROM users",
		"ALTER TABLE users AUTO_INCREMENT = 1",
	} {
		_, err := db.Exec(query)
		require.NoError(t, err, "Failed to cleanup test data")
	}
}

// setupTestRouter creates a test router with all handlers and a fixed actor
func setupTestRouter(db *sql.DB, logger *zap.Logger, uploadDir string) chi.Router {
	avatars := storage.NewAvatarStorage(uploadDir, "/uploads", logger)
	userRepo := repositories.NewUserRepository(db, logger)
	roleRepo := repositories.NewRoleRepository(db, logger)
	activityLogger := services.NewActivityLogger(repositories.NewActivityLogRepository(db, logger), logger)

	userService := services.NewUserService(userRepo, roleRepo, avatars, activityLogger, logger)
	importService := services.NewImportService(userRepo, roleRepo, activityLogger, logger)
	userHandler := handlers.NewUserHandler(userService, importService, logger, 10<<20, avatars.URL)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithActor(r.Context(), seededAdmin)))
		})
	})
	userHandler.RegisterRoutes(r)

	return r
}

// TestMain sets up and tears down the test environment
func TestMain(m *testing.M) {
	var err error
	testLogger, err = zap.NewDevelopment()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	cfg, err := config.LoadTestConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load test config: %v", err))
	}
	if !cfg.HasDatabase() {
		fmt.Println("TEST_DB_* not set, skipping integration tests")
		os.Exit(0)
	}

	testDB, err = sql.Open("mysql", cfg.DSN())
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to test database: %v", err))
	}
	if err = testDB.Ping(); err != nil {
		panic(fmt.Sprintf("Failed to ping test database: %v", err))
	}

	if err := migrateTestSchema(testDB); err != nil {
		panic(fmt.Sprintf("Failed to migrate test database: %v", err))
	}

	testUploadDir, err = os.MkdirTemp("", "avatars")
	if err != nil {
		panic(fmt.Sprintf("Failed to create upload directory: %v", err))
	}

	testRouter = setupTestRouter(testDB, testLogger, testUploadDir)

	code := m.Run()

	os.RemoveAll(testUploadDir)
	testDB.Close()
	os.Exit(code)
}

// migrateTestSchema applies the service migrations to the test database
func migrateTestSchema(db *sql.DB) error {
	driver, err := migratemysql.WithInstance(db, &migratemysql.Config{
		MigrationsTable: "users_schema_migrations",
	})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance("file://../../migrations", "mysql", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

func postMultipart(t *testing.T, path string, fields map[string]string, fileField, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	testRouter.ServeHTTP(w, req)
	return w
}

func getJSON(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	testRouter.ServeHTTP(w, req)
	return w
}

func TestIntegration_UserLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	seedTestData(t, testDB)
	defer cleanupTestData(t, testDB)

	// Create with avatar
	w := postMultipart(t, "/users/create", map[string]string{
		"name":     "Ann",
		"email":    "ann@example.com",
		"password": "secret1",
		"role":     "3",
	}, "image", "face.PNG", []byte("png"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		User models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, fmt.Sprintf("%d_image.png", created.User.ID), created.User.Image)
	assert.FileExists(t, testUploadDir+"/"+created.User.Image)

	var roleID int
	require.NoError(t, testDB.QueryRow("SELECT role_id FROM role_user WHERE user_id = ?", created.User.ID).Scan(&roleID))
	assert.Equal(t, 3, roleID)

	// Duplicate email is a validation error
	w = postMultipart(t, "/users/create", map[string]string{
		"email":    "ann@example.com",
		"password": "secret1",
		"role":     "3",
	}, "", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Listing with search
	w = getJSON(t, "/users?draw=2&search[value]=ann&length=10")
	require.Equal(t, http.StatusOK, w.Code)
	var page models.TablePage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 2, page.Draw)
	assert.Equal(t, 2, page.RecordsTotal)
	assert.Equal(t, 1, page.RecordsFiltered)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Staff", page.Data[0].Role)

	// Update role without new avatar resets the image
	w = postMultipart(t, "/users/update", map[string]string{
		"id":    fmt.Sprint(created.User.ID),
		"name":  "Ann B",
		"email": "ann@example.com",
		"role":  "4",
	}, "", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var image string
	require.NoError(t, testDB.QueryRow("SELECT image FROM users WHERE id = ?", created.User.ID).Scan(&image))
	assert.Equal(t, models.DefaultAvatar, image)
	require.NoError(t, testDB.QueryRow("SELECT role_id FROM role_user WHERE user_id = ?", created.User.ID).Scan(&roleID))
	assert.Equal(t, 4, roleID)

	// Self delete is refused
	w = getJSON(t, "/users/delete/1")
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Delete
	w = getJSON(t, fmt.Sprintf("/users/delete/%d", created.User.ID))
	assert.Equal(t, http.StatusOK, w.Code)

	var count int
	require.NoError(t, testDB.QueryRow("SELECT COUNT(*) FROM users WHERE id = ?", created.User.ID).Scan(&count))
	assert.Equal(t, 0, count)

	// Every successful mutation was audited
	require.NoError(t, testDB.QueryRow("SELECT COUNT(*) FROM activity_logs WHERE user_id = 1").Scan(&count))
	assert.Equal(t, 3, count)
}

func TestIntegration_ImportUsers(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	seedTestData(t, testDB)
	defer cleanupTestData(t, testDB)

	csvContent := "email,first_name,last_name,role,password\n" +
		"kate@example.com,Kate,Doe,staff,secret1\n" +
		"root@example.com,Root,User,administrator,secret1\n" +
		"lee@example.com,Lee,Kim,4,secret1\n" +
		"short,row\n"

	w := postMultipart(t, "/users/importData", nil, "import", "users.csv", []byte(csvContent))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result struct {
		Status     string   `json:"status"`
		Message    string   `json:"message"`
		Imported   int      `json:"imported"`
		Duplicates []string `json:"duplicates"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "warning", result.Status)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, []string{"root@example.com"}, result.Duplicates)
	assert.Contains(t, result.Message, "-Some data email already exists ( root@example.com )")

	var name string
	require.NoError(t, testDB.QueryRow("SELECT name FROM users WHERE email = 'kate@example.com'").Scan(&name))
	assert.Equal(t, "Kate Doe", name)

	var count int
	require.NoError(t, testDB.QueryRow("SELECT COUNT(*) FROM activity_logs WHERE description = 'Import users'").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestIntegration_ImportWrongFormat(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	seedTestData(t, testDB)
	defer cleanupTestData(t, testDB)

	tests := []struct {
		name           string
		filename       string
		content        string
		expectedStatus int
	}{
		{name: "wrong header", filename: "users.csv", content: "email,name\nx@example.com,X\n", expectedStatus: http.StatusBadRequest},
		{name: "wrong extension", filename: "users.txt", content: "email,first_name,last_name,role,password\n", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postMultipart(t, "/users/importData", nil, "import", tt.filename, []byte(tt.content))
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}
