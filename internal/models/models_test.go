package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewCandidateRecord_KeyPrefersEmail(t *testing.T) {
	email := "ada@example.com"
	runID := uuid.New()

	rec := NewCandidateRecord(runID, "posting-1", FinalCandidateResult{
		ResumeName:     "ada.pdf",
		CandidateEmail: &email,
		ATSScore:       88,
	})

	assert.Equal(t, "ada@example.com", rec.CandidateKey)
	assert.Equal(t, runID, rec.RunID)
	assert.Equal(t, 88, rec.ATSScore)
}

func TestNewCandidateRecord_KeyFallsBackToResumeName(t *testing.T) {
	empty := ""
	rec := NewCandidateRecord(uuid.New(), "posting-1", FinalCandidateResult{ResumeName: "bob.pdf", CandidateEmail: &empty})
	assert.Equal(t, "bob.pdf", rec.CandidateKey)

	rec = NewCandidateRecord(uuid.New(), "posting-1", FinalCandidateResult{ResumeName: "carol.pdf"})
	assert.Equal(t, "carol.pdf", rec.CandidateKey)
}

func TestDocumentExt(t *testing.T) {
	assert.Equal(t, ".pdf", Document{Name: "folder/CV.PDF"}.Ext())
	assert.Equal(t, "", Document{Name: "README"}.Ext())
}
