package services

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/metrics"
	"alfredoptarigan/resume-screener/internal/models"
)

// MaxEntryBytes caps a single decompressed archive entry.
const MaxEntryBytes = 20 << 20

var resumeExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".txt":  true,
}

// UnpackArchive returns the résumé files of a zip archive in archive order.
// Directories, macOS metadata, hidden files and unsupported types are skipped.
// An entry that cannot be read is logged and dropped; only a payload that is
// not a zip at all fails with ErrInvalidArchive.
func UnpackArchive(data []byte, log *zap.Logger) ([]models.Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}

	var docs []models.Document
	seen := make(map[string]bool)
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || skipEntry(f.Name) {
			continue
		}
		doc := models.Document{Name: path.Base(f.Name)}
		if !resumeExtensions[doc.Ext()] {
			continue
		}

		content, err := readEntry(f)
		if err != nil {
			metrics.SoftFailures.WithLabelValues("extract", string(KindExtraction)).Inc()
			log.Warn("skipping unreadable archive entry", zap.String("entry", f.Name), zap.Error(err))
			continue
		}

		if seen[doc.Name] {
			doc.Name = f.Name
		}
		seen[doc.Name] = true
		doc.Data = content
		docs = append(docs, doc)
	}

	return docs, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	if f.UncompressedSize64 > MaxEntryBytes {
		return nil, fmt.Errorf("%s exceeds %d bytes", f.Name, MaxEntryBytes)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer rc.Close()

	content, err := io.ReadAll(io.LimitReader(rc, MaxEntryBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
	}
	if len(content) > MaxEntryBytes {
		return nil, fmt.Errorf("%s exceeds %d bytes", f.Name, MaxEntryBytes)
	}
	return content, nil
}

func skipEntry(name string) bool {
	if strings.HasPrefix(name, "__MACOSX/") {
		return true
	}
	return strings.HasPrefix(path.Base(name), ".")
}

// ExpandUpload turns one uploaded file into résumé documents: zip archives
// are unpacked, anything else is taken as a single résumé.
func ExpandUpload(name string, data []byte, log *zap.Logger) ([]models.Document, error) {
	if strings.EqualFold(path.Ext(name), ".zip") {
		return UnpackArchive(data, log)
	}
	return []models.Document{{Name: path.Base(name), Data: data}}, nil
}
