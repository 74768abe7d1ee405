package models

// SortDirection represents the order direction of a table column
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// TableParams represents server-side data table parameters
type TableParams struct {
	Draw       int
	Start      int
	Length     int // -1 means all rows
	SortColumn string
	SortDir    SortDirection
	Search     string
}

// TablePage represents a server-side data table response
type TablePage struct {
	Draw            int            `json:"draw"`
	RecordsTotal    int            `json:"recordsTotal"`
	RecordsFiltered int            `json:"recordsFiltered"`
	Data            []UserListItem `json:"data"`
}

// FormData represents the data needed to render the add/edit/import forms
type FormData struct {
	User       *User  `json:"user"`
	Roles      []Role `json:"roles,omitempty"`
	FormAction string `json:"formAction"`
	PageType   string `json:"pageType"`
	ButtonText string `json:"buttonText"`
}
