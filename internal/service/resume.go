// Package service holds business logic shared by the API handlers,
// currently résumé file storage.
package service

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Upload limits.
const (
	MaxUploadSize    = 10 * 1024 * 1024 // 10MB
	DefaultUploadDir = "./uploads"
)

// StoredPrefix marks files written by the résumé service. Anything else
// in the upload directory is left alone by maintenance sweeps.
const StoredPrefix = "cv_"

// ErrNotPDF is returned when an uploaded file does not carry a .pdf extension.
var ErrNotPDF = fmt.Errorf("only PDF files are accepted")

// ResumeService stores uploaded résumé files under a flat directory.
type ResumeService struct {
	uploadDir string
}

// NewResumeService creates a résumé service rooted at uploadDir, creating
// the directory if needed.
func NewResumeService(uploadDir string) (*ResumeService, error) {
	if uploadDir == "" {
		uploadDir = DefaultUploadDir
	}
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &ResumeService{uploadDir: uploadDir}, nil
}

// UploadDir returns the directory résumés are stored in.
func (s *ResumeService) UploadDir() string {
	return s.uploadDir
}

// ValidateFilename checks that the original filename carries a .pdf
// extension. Extension check only; content is not inspected.
func (s *ResumeService) ValidateFilename(filename string) error {
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return ErrNotPDF
	}
	return nil
}

// Store validates the file and writes it to the upload directory under a
// collision-free name: cv_<uuid>_<sanitizedOriginalName>. Returns the
// stored filename.
func (s *ResumeService) Store(file multipart.File, header *multipart.FileHeader) (string, error) {
	if err := s.ValidateFilename(header.Filename); err != nil {
		return "", err
	}
	if header.Size > MaxUploadSize {
		return "", fmt.Errorf("file size exceeds maximum allowed (%d bytes)", MaxUploadSize)
	}

	storedName := fmt.Sprintf("%s%s_%s", StoredPrefix, uuid.New().String(), sanitizeFilename(header.Filename))

	dst, err := os.Create(filepath.Join(s.uploadDir, storedName))
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}

	if _, err := io.Copy(dst, file); err != nil {
		_ = dst.Close()
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("writing file: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dst.Name())
		return "", fmt.Errorf("closing file: %w", err)
	}

	return storedName, nil
}

// Remove deletes a stored résumé. Used to clean up when the application
// insert fails after the file was written.
func (s *ResumeService) Remove(storedName string) error {
	return os.Remove(filepath.Join(s.uploadDir, filepath.Base(storedName)))
}

// sanitizeFilename strips path components and characters that are unsafe
// in a stored filename.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, " ", "_")

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		}
	}

	if b.Len() == 0 {
		return "resume.pdf"
	}
	return b.String()
}
