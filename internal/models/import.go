package models

// ImportStatus represents the overall outcome of a bulk import
type ImportStatus string

const (
	ImportSuccess ImportStatus = "success"
	ImportWarning ImportStatus = "warning"
)

// ImportColumns are the recognized CSV header columns
var ImportColumns = []string{"email", "first_name", "last_name", "role", "password"}

// ImportRow represents a parsed data row of an import file
type ImportRow struct {
	Email     string
	FirstName string
	LastName  string
	Role      string
	Password  string
}

// Name composes the display name of the row
func (r ImportRow) Name() string {
	return r.FirstName + " " + r.LastName
}

// ImportResult represents the outcome of a bulk import
type ImportResult struct {
	Status     ImportStatus `json:"status"`
	Message    string       `json:"message"`
	Imported   int          `json:"imported"`
	Duplicates []string     `json:"duplicates"`
	Failed     []string     `json:"failed"`
	// Summary is Message with the email lists shortened, used for browser flashes
	Summary string `json:"-"`
}
