package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var allowedUploadExts = map[string]bool{
	".pdf":  true,
	".docx": true,
	".txt":  true,
	".zip":  true,
}

// StorageService keeps uploaded screening files on local disk, one directory
// per run.
type StorageService interface {
	SaveFile(runID uuid.UUID, file *multipart.FileHeader, fileType string) (string, error)
	ReadFile(path string) ([]byte, error)
	DeleteRunFiles(runID uuid.UUID) error
	EnsureUploadDir() error
}

type storageService struct {
	uploadPath  string
	maxFileSize int64
}

func NewStorageService(uploadPath string, maxFileSize int64) StorageService {
	return &storageService{
		uploadPath:  uploadPath,
		maxFileSize: maxFileSize,
	}
}

func (s *storageService) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	return nil
}

// SaveFile stores file under the run's directory and returns its path. The
// original base name is kept so results can refer to it.
func (s *storageService) SaveFile(runID uuid.UUID, file *multipart.FileHeader, fileType string) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedUploadExts[ext] {
		return "", fmt.Errorf("invalid file extension: %s", ext)
	}
	if s.maxFileSize > 0 && file.Size > s.maxFileSize {
		return "", fmt.Errorf("file %s exceeds maximum size of %d bytes", file.Filename, s.maxFileSize)
	}

	dir := filepath.Join(s.uploadPath, runID.String(), fileType)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create run directory: %w", err)
	}

	name := filepath.Base(file.Filename)
	filePath := filepath.Join(dir, name)
	if _, err := os.Stat(filePath); err == nil {
		// Same name uploaded twice in one run.
		name = fmt.Sprintf("%s_%s%s", strings.TrimSuffix(name, filepath.Ext(name)), uuid.New().String()[:8], ext)
		filePath = filepath.Join(dir, name)
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return filePath, nil
}

func (s *storageService) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

func (s *storageService) DeleteRunFiles(runID uuid.UUID) error {
	if err := os.RemoveAll(filepath.Join(s.uploadPath, runID.String())); err != nil {
		return fmt.Errorf("failed to delete run files: %w", err)
	}
	return nil
}
