package models

import "io"

// FileUpload represents a file received in a multipart form
type FileUpload struct {
	Filename string
	Content  io.Reader
}
