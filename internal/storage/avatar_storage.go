// Package storage keeps user avatar images on the local filesystem
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/adminpanel/backend/internal/models"
	"go.uber.org/zap"
)

// avatarStorage implements the avatar manager on top of an upload directory
type avatarStorage struct {
	basePath string
	baseURL  string
	logger   *zap.Logger
}

// NewAvatarStorage creates a new avatar storage rooted at basePath.
// baseURL is the public prefix avatars are served under.
func NewAvatarStorage(basePath, baseURL string, logger *zap.Logger) *avatarStorage {
	return &avatarStorage{
		basePath: basePath,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger,
	}
}

// FileName builds the avatar filename "{userID}_image.{ext}" from the client supplied filename
func FileName(userID int, originalFilename string) string {
	name := strconv.Itoa(userID) + "_image"
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(originalFilename), "."))
	if ext == "" {
		return name
	}
	return name + "." + ext
}

// Store writes the avatar of a user and returns the stored filename.
// An existing file with the same name is overwritten.
func (s *avatarStorage) Store(userID int, originalFilename string, src io.Reader) (string, error) {
	filename := FileName(userID, originalFilename)

	if err := os.MkdirAll(s.basePath, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	path := filepath.Join(s.basePath, filename)
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create avatar file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write avatar file: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close avatar file: %w", err)
	}

	return filename, nil
}

// Remove deletes an avatar file. Failures are logged and swallowed.
// The default avatar and empty names are never touched.
func (s *avatarStorage) Remove(filename string) {
	if filename == "" || filename == models.DefaultAvatar {
		return
	}

	// Stored names never contain separators; refuse anything that would escape basePath
	if filepath.Base(filename) != filename {
		s.logger.Warn("refusing to remove avatar outside upload directory", zap.String("filename", filename))
		return
	}

	if err := os.Remove(filepath.Join(s.basePath, filename)); err != nil {
		s.logger.Debug("failed to remove avatar", zap.String("filename", filename), zap.Error(err))
	}
}

// DefaultName returns the placeholder avatar filename
func (s *avatarStorage) DefaultName() string {
	return models.DefaultAvatar
}

// URL returns the public URL of an avatar, falling back to the default avatar
func (s *avatarStorage) URL(filename string) string {
	if filename == "" {
		filename = models.DefaultAvatar
	}
	return s.baseURL + "/" + filename
}
