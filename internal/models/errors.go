package models

import "errors"

// Store level errors shared by repositories and services
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateEntry = errors.New("duplicate entry")
	ErrReferenced     = errors.New("record is referenced by other records")
)
