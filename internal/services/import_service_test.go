package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/adminpanel/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
)

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("read failed")
}

func newImportFixture(t *testing.T) (*importService, *userServiceFixture) {
	t.Helper()
	f := newUserServiceFixture(t, existingUser(t))
	return NewImportService(f.users, f.roles, f.activity, zaptest.NewLogger(t)), f
}

func csvUpload(filename, content string) *models.FileUpload {
	return &models.FileUpload{Filename: filename, Content: strings.NewReader(content)}
}

func TestImportService_Import_Errors(t *testing.T) {
	tests := []struct {
		name          string
		upload        *models.FileUpload
		expectedError error
	}{
		{
			name:          "no file",
			upload:        nil,
			expectedError: ErrImportFileMissing,
		},
		{
			name:          "wrong extension",
			upload:        csvUpload("users.xlsx", "email,first_name,last_name,role,password\n"),
			expectedError: ErrUnsupportedFormat,
		},
		{
			name:          "no extension",
			upload:        csvUpload("users", "email,first_name,last_name,role,password\n"),
			expectedError: ErrUnsupportedFormat,
		},
		{
			name:          "missing role column",
			upload:        csvUpload("users.csv", "email,first_name,last_name,password\nnew@example.com,New,User,secret1\n"),
			expectedError: ErrImportFormat,
		},
		{
			name:          "extra column",
			upload:        csvUpload("users.csv", "email,first_name,last_name,role,password,phone\nnew@example.com,New,User,3,secret1,123\n"),
			expectedError: ErrImportFormat,
		},
		{
			name:          "duplicated column",
			upload:        csvUpload("users.csv", "email,email,last_name,role,password\n"),
			expectedError: ErrImportFormat,
		},
		{
			name:          "empty file",
			upload:        csvUpload("users.csv", ""),
			expectedError: ErrImportFormat,
		},
		{
			name:          "unreadable file",
			upload:        &models.FileUpload{Filename: "users.csv", Content: failingReader{}},
			expectedError: ErrImportFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, f := newImportFixture(t)

			result, err := service.Import(context.Background(), administrator, tt.upload)

			assert.ErrorIs(t, err, tt.expectedError)
			assert.Nil(t, result)
			assert.Empty(t, f.users.created)
			assert.Empty(t, f.activity.entries)
		})
	}
}

func TestImportService_Import(t *testing.T) {
	tests := []struct {
		name               string
		filename           string
		content            string
		expectedStatus     models.ImportStatus
		expectedImported   int
		expectedDuplicates []string
		expectedFailed     []string
		expectedMessage    []string
	}{
		{
			name:     "all rows imported",
			filename: "users.csv",
			content: "email,first_name,last_name,role,password\n" +
				"ann@example.com,Ann,Smith,3,secret1\n" +
				"tom@example.com,Tom,Jones,guest,secret2\n",
			expectedStatus:     models.ImportSuccess,
			expectedImported:   2,
			expectedDuplicates: []string{},
			expectedFailed:     []string{},
			expectedMessage:    []string{"Imported was success!"},
		},
		{
			name:     "existing email reported as duplicate",
			filename: "users.csv",
			content: "email,first_name,last_name,role,password\n" +
				"new@example.com,New,User,3,secret1\n" +
				"bob@example.com,Bob,Again,3,secret2\n",
			expectedStatus:     models.ImportWarning,
			expectedImported:   1,
			expectedDuplicates: []string{"bob@example.com"},
			expectedFailed:     []string{},
			expectedMessage:    []string{"Imported was success!", "-Some data email already exists ( bob@example.com )"},
		},
		{
			name:     "repeated email within the file",
			filename: "users.csv",
			content: "email,first_name,last_name,role,password\n" +
				"new@example.com,New,User,3,secret1\n" +
				"new@example.com,New,Twice,3,secret2\n",
			expectedStatus:     models.ImportWarning,
			expectedImported:   1,
			expectedDuplicates: []string{"new@example.com"},
			expectedFailed:     []string{},
		},
		{
			name:     "rows with wrong field count are skipped",
			filename: "users.csv",
			content: "email,first_name,last_name,role,password\n" +
				"short@example.com,Short,Row,3\n" +
				"long@example.com,Long,Row,3,secret1,extra\n" +
				"ok@example.com,Ok,Row,3,secret1\n",
			expectedStatus:     models.ImportSuccess,
			expectedImported:   1,
			expectedDuplicates: []string{},
			expectedFailed:     []string{},
		},
		{
			name:     "unknown role is reported",
			filename: "users.csv",
			content: "email,first_name,last_name,role,password\n" +
				"x@example.com,X,Y,superuser,secret1\n" +
				"z@example.com,Z,Y,99,secret1\n",
			expectedStatus:     models.ImportWarning,
			expectedImported:   0,
			expectedDuplicates: []string{},
			expectedFailed:     []string{"x@example.com", "z@example.com"},
			expectedMessage:    []string{"-Some data could not be imported ( x@example.com, z@example.com )"},
		},
		{
			name:     "upper case extension and reordered header with BOM",
			filename: "USERS.CSV",
			content: "\ufeffpassword, role ,email,last_name,first_name\n" +
				"secret1, staff , ann@example.com ,Smith,Ann\n",
			expectedStatus:     models.ImportSuccess,
			expectedImported:   1,
			expectedDuplicates: []string{},
			expectedFailed:     []string{},
		},
		{
			name:     "password longer than 72 bytes",
			filename: "users.csv",
			content: "email,first_name,last_name,role,password\n" +
				"long@example.com,Long,Password,3," + strings.Repeat("x", 100) + "\n",
			expectedStatus:     models.ImportSuccess,
			expectedImported:   1,
			expectedDuplicates: []string{},
			expectedFailed:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, f := newImportFixture(t)

			result, err := service.Import(context.Background(), administrator, csvUpload(tt.filename, tt.content))

			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, result.Status)
			assert.Equal(t, tt.expectedImported, result.Imported)
			assert.Equal(t, tt.expectedDuplicates, result.Duplicates)
			assert.Equal(t, tt.expectedFailed, result.Failed)
			assert.Len(t, f.users.created, tt.expectedImported)
			for _, part := range tt.expectedMessage {
				assert.Contains(t, result.Message, part)
			}

			for _, user := range f.users.created {
				assert.Equal(t, models.DefaultAvatar, user.Image)
				assert.NotEqual(t, "secret1", user.Password)
			}

			if tt.expectedImported > 0 {
				require.Len(t, f.activity.entries, 1)
				assert.Equal(t, activityImportUsers, f.activity.entries[0].description)
			} else {
				assert.Empty(t, f.activity.entries)
			}
		})
	}
}

func TestImportService_Import_RowMapping(t *testing.T) {
	service, f := newImportFixture(t)
	content := "\ufeffpassword,role,email,last_name,first_name\n" +
		"secret1,staff,ann@example.com,Smith,Ann\n" +
		"secret2,staff,tom@example.com,P\xe9rez,Jos\xe9\n"

	result, err := service.Import(context.Background(), administrator, csvUpload("users.csv", content))
	require.NoError(t, err)
	require.Equal(t, 2, result.Imported)
	require.Len(t, f.users.created, 2)

	ann := f.users.created[0]
	assert.Equal(t, "Ann Smith", ann.Name)
	assert.Equal(t, "ann@example.com", ann.Email)
	assert.Equal(t, 3, ann.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(ann.Password), []byte("secret1")))

	assert.Equal(t, "José Pérez", f.users.created[1].Name)

	// the role key is resolved once per import
	assert.Equal(t, 1, f.roles.lookupHits)
}

func TestImportOutcome(t *testing.T) {
	emails := func(prefix string, n int) []string {
		list := make([]string, n)
		for i := range list {
			list[i] = fmt.Sprintf("%s%03d@example.com", prefix, i)
		}
		return list
	}

	tests := []struct {
		name            string
		result          *models.ImportResult
		expectedStatus  models.ImportStatus
		expectedSummary []string
		absentSummary   []string
	}{
		{
			name:            "clean import",
			result:          &models.ImportResult{Imported: 3, Duplicates: []string{}, Failed: []string{}},
			expectedStatus:  models.ImportSuccess,
			expectedSummary: []string{"Imported was success!"},
		},
		{
			name:            "short lists are named in full",
			result:          &models.ImportResult{Duplicates: emails("dup", 10), Failed: emails("bad", 2)},
			expectedStatus:  models.ImportWarning,
			expectedSummary: []string{"dup009@example.com", "bad001@example.com"},
			absentSummary:   []string{"more"},
		},
		{
			name:            "long lists are shortened",
			result:          &models.ImportResult{Duplicates: emails("dup", 500), Failed: emails("bad", 11)},
			expectedStatus:  models.ImportWarning,
			expectedSummary: []string{"dup009@example.com and 490 more", "bad009@example.com and 1 more"},
			absentSummary:   []string{"dup010@example.com", "bad010@example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, message, summary := importOutcome(tt.result)

			assert.Equal(t, tt.expectedStatus, status)
			for _, email := range append(tt.result.Duplicates, tt.result.Failed...) {
				assert.Contains(t, message, email)
			}
			for _, part := range tt.expectedSummary {
				assert.Contains(t, summary, part)
			}
			for _, part := range tt.absentSummary {
				assert.NotContains(t, summary, part)
			}
		})
	}
}

func TestHeaderPositions(t *testing.T) {
	positions, err := headerPositions([]string{"role", " email ", "password", "last_name", "first_name"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"role": 0, "email": 1, "password": 2, "last_name": 3, "first_name": 4}, positions)

	_, err = headerPositions([]string{"email", "first_name", "last_name", "role", "Password"})
	assert.ErrorIs(t, err, ErrImportFormat)
}

func TestDecodeValue(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{name: "utf-8 kept", value: " Zoë ", expected: "Zoë"},
		{name: "latin-1 converted", value: "Fran\xe7ois", expected: "François"},
		{name: "empty", value: "   ", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, decodeValue(tt.value))
		})
	}
}
