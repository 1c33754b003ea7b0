package models

import (
	"path/filepath"
	"strings"
)

// Document is an in-memory input file: a résumé or a job description.
type Document struct {
	Name string
	Data []byte
}

// Ext returns the lower-cased file extension, including the dot.
func (d Document) Ext() string {
	return strings.ToLower(filepath.Ext(d.Name))
}

// CandidateDocument is a résumé whose text has been extracted. Documents with
// empty RawText never leave the extraction stage.
type CandidateDocument struct {
	FileReference string `json:"file_reference"`
	RawText       string `json:"raw_text"`
}
