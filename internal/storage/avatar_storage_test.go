package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adminpanel/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		name     string
		userID   int
		original string
		expected string
	}{
		{name: "jpg", userID: 5, original: "me.jpg", expected: "5_image.jpg"},
		{name: "upper case extension", userID: 12, original: "Photo.PNG", expected: "12_image.png"},
		{name: "nested dots", userID: 3, original: "my.profile.jpeg", expected: "3_image.jpeg"},
		{name: "no extension", userID: 9, original: "avatar", expected: "9_image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FileName(tt.userID, tt.original))
		})
	}
}

func TestAvatarStorage_Store(t *testing.T) {
	t.Run("creates directory and writes file", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "uploads")
		s := NewAvatarStorage(dir, "/uploads", zap.NewNop())

		filename, err := s.Store(4, "face.jpg", strings.NewReader("image-bytes"))
		require.NoError(t, err)
		assert.Equal(t, "4_image.jpg", filename)

		content, err := os.ReadFile(filepath.Join(dir, filename))
		require.NoError(t, err)
		assert.Equal(t, "image-bytes", string(content))
	})

	t.Run("overwrites existing avatar", func(t *testing.T) {
		dir := t.TempDir()
		s := NewAvatarStorage(dir, "/uploads", zap.NewNop())

		_, err := s.Store(4, "face.jpg", strings.NewReader("old"))
		require.NoError(t, err)
		_, err = s.Store(4, "face.jpg", strings.NewReader("new"))
		require.NoError(t, err)

		content, err := os.ReadFile(filepath.Join(dir, "4_image.jpg"))
		require.NoError(t, err)
		assert.Equal(t, "new", string(content))
	})

	t.Run("read error removes partial file", func(t *testing.T) {
		dir := t.TempDir()
		s := NewAvatarStorage(dir, "/uploads", zap.NewNop())

		_, err := s.Store(4, "face.jpg", &failingReader{})
		assert.Error(t, err)

		_, statErr := os.Stat(filepath.Join(dir, "4_image.jpg"))
		assert.True(t, os.IsNotExist(statErr))
	})
}

func TestAvatarStorage_Remove(t *testing.T) {
	dir := t.TempDir()
	s := NewAvatarStorage(dir, "/uploads", zap.NewNop())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "1_image.png"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, models.DefaultAvatar), []byte("x"), 0644))

	s.Remove("1_image.png")
	_, err := os.Stat(filepath.Join(dir, "1_image.png"))
	assert.True(t, os.IsNotExist(err))

	// default avatar is never removed
	s.Remove(models.DefaultAvatar)
	_, err = os.Stat(filepath.Join(dir, models.DefaultAvatar))
	assert.NoError(t, err)

	// missing files and escaping names are ignored
	assert.NotPanics(t, func() {
		s.Remove("missing.png")
		s.Remove("../outside.png")
		s.Remove("")
	})
}

func TestAvatarStorage_URL(t *testing.T) {
	s := NewAvatarStorage(t.TempDir(), "/uploads/", zap.NewNop())

	assert.Equal(t, "/uploads/2_image.png", s.URL("2_image.png"))
	assert.Equal(t, "/uploads/default-user.png", s.URL(""))
	assert.Equal(t, models.DefaultAvatar, s.DefaultName())
}

// failingReader always fails on Read
type failingReader struct{}

func (f *failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("read failed")
}
