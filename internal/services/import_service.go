package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/adminpanel/backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
)

const (
	importExtension = "csv"
	utf8BOM         = "\ufeff"
)

// ImportUserRepository is the interface that wraps the users table methods used by the importer
type ImportUserRepository interface {
	DuplicateChecker
	// Method Create inserts a new user and attaches its role in one transaction.
	//
	// "user" parameter is used to create a new user.
	// "storeAvatar" parameter is optional and is not used by the importer.
	//
	// If some error occurs, the error will be returned.
	Create(ctx context.Context, user *models.User, storeAvatar func(userID int) (string, error)) error
}

// ImportRoleRepository is the interface that wraps the role lookups used by the importer
type ImportRoleRepository interface {
	GetByID(ctx context.Context, id int) (*models.Role, error)
	GetByName(ctx context.Context, name string) (*models.Role, error)
}

type importService struct {
	userRepo ImportUserRepository
	roleRepo ImportRoleRepository
	activity ActivityLogger
	logger   *zap.Logger
}

// NewImportService creates a new bulk user import service
func NewImportService(
	userRepo ImportUserRepository,
	roleRepo ImportRoleRepository,
	activity ActivityLogger,
	logger *zap.Logger,
) *importService {
	return &importService{
		userRepo: userRepo,
		roleRepo: roleRepo,
		activity: activity,
		logger:   logger,
	}
}

// importSummary is the audit payload of a bulk import
type importSummary struct {
	Imported int      `json:"imported"`
	Emails   []string `json:"emails"`
}

// Import creates users from a CSV file.
//
// Every unique row is committed on its own, so a result with warnings still reports the rows
// that were created. Rows that do not have exactly five fields are skipped silently.
func (s *importService) Import(ctx context.Context, actor models.Actor, upload *models.FileUpload) (*models.ImportResult, error) {
	if upload == nil || upload.Content == nil {
		return nil, ErrImportFileMissing
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(upload.Filename), "."))
	if ext != importExtension {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, upload.Filename)
	}

	content, err := io.ReadAll(upload.Content)
	if err != nil {
		s.logger.Error("failed to read import file", zap.Error(err), zap.String("filename", upload.Filename))
		return nil, fmt.Errorf("%w: %w", ErrImportFailed, err)
	}

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrImportFormat
		}
		return nil, fmt.Errorf("%w: %w", ErrImportFailed, err)
	}

	positions, err := headerPositions(header)
	if err != nil {
		return nil, err
	}

	result := &models.ImportResult{
		Duplicates: []string{},
		Failed:     []string{},
	}
	imported := []string{}
	roles := map[string]int{}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.logger.Warn("skipping unreadable import row", zap.Error(err))
			continue
		}
		if len(record) != len(models.ImportColumns) {
			continue
		}
		line, _ := reader.FieldPos(0)

		row := parseImportRow(record, positions)
		if row.Email == "" {
			result.Failed = append(result.Failed, fmt.Sprintf("line %d", line))
			continue
		}

		exists, err := s.userRepo.ExistsBy(ctx, models.ByEmail, row.Email, 0)
		if err != nil {
			s.logger.Error("failed to check duplicate email", zap.Error(err), zap.String("email", row.Email))
			result.Failed = append(result.Failed, row.Email)
			continue
		}
		if exists {
			result.Duplicates = append(result.Duplicates, row.Email)
			continue
		}

		if err := s.createFromRow(ctx, row, roles); err != nil {
			if errors.Is(err, models.ErrDuplicateEntry) {
				result.Duplicates = append(result.Duplicates, row.Email)
				continue
			}
			s.logger.Warn("failed to import row", zap.Error(err), zap.Int("line", line), zap.String("email", row.Email))
			result.Failed = append(result.Failed, row.Email)
			continue
		}
		imported = append(imported, row.Email)
	}

	result.Imported = len(imported)
	result.Status, result.Message, result.Summary = importOutcome(result)

	if result.Imported > 0 {
		s.activity.SaveLog(ctx, actor, importSummary{Imported: result.Imported, Emails: imported}, activityImportUsers)
	}

	return result, nil
}

// createFromRow persists one import row with the default avatar
func (s *importService) createFromRow(ctx context.Context, row models.ImportRow, roles map[string]int) error {
	roleID, err := s.resolveRole(ctx, row.Role, roles)
	if err != nil {
		return err
	}

	hash, err := generatePasswordHash(row.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:     row.Name(),
		Email:    row.Email,
		Password: hash,
		Role:     roleID,
		Image:    models.DefaultAvatar,
	}
	return s.userRepo.Create(ctx, user, nil)
}

// resolveRole maps a role column value to a role id. Numeric values are looked up as ids,
// anything else as a role key. Results are cached for the duration of one import.
func (s *importService) resolveRole(ctx context.Context, value string, cache map[string]int) (int, error) {
	if id, ok := cache[value]; ok {
		return id, nil
	}
	if value == "" {
		return 0, fmt.Errorf("empty role")
	}

	var (
		role *models.Role
		err  error
	)
	if id, convErr := strconv.Atoi(value); convErr == nil {
		role, err = s.roleRepo.GetByID(ctx, id)
	} else {
		role, err = s.roleRepo.GetByName(ctx, strings.ToLower(value))
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve role %q: %w", value, err)
	}

	cache[value] = role.ID
	return role.ID, nil
}

// headerPositions validates the header row and returns the index of every recognized column.
// The header must hold exactly the recognized columns, in any order.
func headerPositions(header []string) (map[string]int, error) {
	if len(header) != len(models.ImportColumns) {
		return nil, fmt.Errorf("%w: expected %d columns, got %d", ErrImportFormat, len(models.ImportColumns), len(header))
	}

	recognized := make(map[string]bool, len(models.ImportColumns))
	for _, column := range models.ImportColumns {
		recognized[column] = true
	}

	positions := make(map[string]int, len(header))
	for i, column := range header {
		if i == 0 {
			column = strings.TrimPrefix(column, utf8BOM)
		}
		column = strings.TrimSpace(column)
		if !recognized[column] {
			return nil, fmt.Errorf("%w: unrecognized column %q", ErrImportFormat, column)
		}
		if _, dup := positions[column]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrImportFormat, column)
		}
		positions[column] = i
	}

	return positions, nil
}

func parseImportRow(record []string, positions map[string]int) models.ImportRow {
	return models.ImportRow{
		Email:     decodeValue(record[positions["email"]]),
		FirstName: decodeValue(record[positions["first_name"]]),
		LastName:  decodeValue(record[positions["last_name"]]),
		Role:      decodeValue(record[positions["role"]]),
		Password:  decodeValue(record[positions["password"]]),
	}
}

// decodeValue trims a field and converts it from Latin-1 when it is not valid UTF-8
func decodeValue(value string) string {
	if !utf8.ValidString(value) {
		if decoded, err := charmap.ISO8859_1.NewDecoder().String(value); err == nil {
			value = decoded
		}
	}
	return strings.TrimSpace(value)
}

// summaryEmailLimit is how many emails of each list the import summary names
const summaryEmailLimit = 10

// importOutcome builds the status, the full message and the shortened summary of a finished import
func importOutcome(result *models.ImportResult) (models.ImportStatus, string, string) {
	if len(result.Duplicates) == 0 && len(result.Failed) == 0 {
		message := importMessage(result, 0)
		return models.ImportSuccess, message, message
	}
	return models.ImportWarning, importMessage(result, 0), importMessage(result, summaryEmailLimit)
}

// importMessage describes the import result, naming at most limit emails per list (0 names all)
func importMessage(result *models.ImportResult, limit int) string {
	message := "Imported was success!"
	if len(result.Duplicates) == 0 && len(result.Failed) == 0 {
		return message
	}

	notes := []string{}
	if len(result.Duplicates) > 0 {
		notes = append(notes, "-Some data email already exists ( "+joinEmails(result.Duplicates, limit)+" )")
	}
	if len(result.Failed) > 0 {
		notes = append(notes, "-Some data could not be imported ( "+joinEmails(result.Failed, limit)+" )")
	}

	return message + " Note: We do not import this data because " + strings.Join(notes, " ")
}

func joinEmails(emails []string, limit int) string {
	if limit <= 0 || len(emails) <= limit {
		return strings.Join(emails, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(emails[:limit], ", "), len(emails)-limit)
}
