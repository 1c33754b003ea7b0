package services

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"alfredoptarigan/resume-screener/internal/models"
)

func buildZip(t *testing.T, entries map[string]string, order []string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range order {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(entries[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func docNames(docs []models.Document) []string {
	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Name
	}
	return names
}

func TestUnpackArchive_FiltersEntries(t *testing.T) {
	entries := map[string]string{
		"alice.pdf":             "alice",
		"folder/":               "",
		"__MACOSX/._alice.pdf":  "junk",
		".DS_Store":             "junk",
		"notes.md":              "ignored",
		"team/bob.DOCX":         "bob",
		"carol.txt":             "carol",
		"archive/old/alice.pdf": "older alice",
	}
	order := []string{"alice.pdf", "folder/", "__MACOSX/._alice.pdf", ".DS_Store", "notes.md", "team/bob.DOCX", "carol.txt", "archive/old/alice.pdf"}

	docs, err := UnpackArchive(buildZip(t, entries, order), zaptest.NewLogger(t))

	require.NoError(t, err)
	assert.Equal(t, []string{"alice.pdf", "bob.DOCX", "carol.txt", "archive/old/alice.pdf"}, docNames(docs))
	assert.Equal(t, []byte("alice"), docs[0].Data)
	assert.Equal(t, []byte("older alice"), docs[3].Data)
}

func TestUnpackArchive_InvalidPayload(t *testing.T) {
	_, err := UnpackArchive([]byte("this is not a zip"), zaptest.NewLogger(t))

	assert.ErrorIs(t, err, ErrInvalidArchive)
}

func TestUnpackArchive_EmptyArchive(t *testing.T) {
	docs, err := UnpackArchive(buildZip(t, nil, nil), zaptest.NewLogger(t))

	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestExpandUpload(t *testing.T) {
	docs, err := ExpandUpload("single.pdf", []byte("pdf"), zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, []models.Document{{Name: "single.pdf", Data: []byte("pdf")}}, docs)

	zipped := buildZip(t, map[string]string{"a.txt": "a"}, []string{"a.txt"})
	docs, err = ExpandUpload("batch.ZIP", zipped, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, docNames(docs))
}

func TestUnpackArchive_SkipsUnreadableEntries(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	w, err := zw.Create("good.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("Good candidate"))
	require.NoError(t, err)

	// Unknown compression method: opening the entry fails.
	raw, err := zw.CreateRaw(&zip.FileHeader{
		Name:               "bad.pdf",
		Method:             99,
		CompressedSize64:   4,
		UncompressedSize64: 4,
	})
	require.NoError(t, err)
	_, err = raw.Write([]byte("junk"))
	require.NoError(t, err)

	// Declared size above the entry cap.
	raw, err = zw.CreateRaw(&zip.FileHeader{
		Name:               "huge.docx",
		Method:             zip.Store,
		CompressedSize64:   4,
		UncompressedSize64: MaxEntryBytes + 1,
	})
	require.NoError(t, err)
	_, err = raw.Write([]byte("huge"))
	require.NoError(t, err)

	w, err = zw.Create("also-good.pdf")
	require.NoError(t, err)
	_, err = w.Write([]byte("%PDF"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	docs, err := UnpackArchive(buf.Bytes(), zaptest.NewLogger(t))

	require.NoError(t, err)
	assert.Equal(t, []string{"good.txt", "also-good.pdf"}, docNames(docs))
	assert.Equal(t, []byte("Good candidate"), docs[0].Data)
}
