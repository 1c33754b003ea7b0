package services

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/models"
)

// DocumentExtractor turns uploaded bytes into plain text.
type DocumentExtractor interface {
	// ExtractJobDescription returns ErrUnreadableJobDescription when no text
	// can be recovered.
	ExtractJobDescription(ctx context.Context, doc models.Document) (string, error)
	// ExtractResume never fails; unreadable résumés yield "".
	ExtractResume(ctx context.Context, doc models.Document) string
}

// TextParser is one independent way of reading text out of a PDF.
type TextParser interface {
	Name() string
	Parse(ctx context.Context, data []byte) (string, error)
}

type documentExtractor struct {
	parsers []TextParser
	log     *zap.Logger
}

// NewDocumentExtractor tries the parsers in order; the first non-empty text wins.
func NewDocumentExtractor(log *zap.Logger, parsers ...TextParser) DocumentExtractor {
	if len(parsers) == 0 {
		parsers = []TextParser{NewTextLayerParser(), NewPdftotextParser("pdftotext", 30*time.Second)}
	}
	return &documentExtractor{
		parsers: parsers,
		log:     log.With(zap.String("component", "extractor")),
	}
}

// ExtractJobDescription implements DocumentExtractor.
func (e *documentExtractor) ExtractJobDescription(ctx context.Context, doc models.Document) (string, error) {
	text, err := e.extract(ctx, doc)
	if err != nil {
		e.log.Warn("job description unreadable", zap.String("file", doc.Name), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrUnreadableJobDescription, err)
	}
	return text, nil
}

// ExtractResume implements DocumentExtractor.
func (e *documentExtractor) ExtractResume(ctx context.Context, doc models.Document) string {
	text, err := e.extract(ctx, doc)
	if err != nil {
		e.log.Warn("skipping unreadable resume", zap.String("file", doc.Name), zap.Error(err))
		return ""
	}
	return text
}

func (e *documentExtractor) extract(ctx context.Context, doc models.Document) (string, error) {
	if len(doc.Data) == 0 {
		return "", fmt.Errorf("empty file")
	}

	switch doc.Ext() {
	case ".txt":
		text := CleanText(string(doc.Data))
		if text == "" {
			return "", fmt.Errorf("no text content found")
		}
		return text, nil
	case ".docx":
		return extractDocxText(doc.Data)
	}

	var errs []string
	for _, p := range e.parsers {
		text, err := p.Parse(ctx, doc.Data)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", p.Name(), err))
			continue
		}
		if text = CleanText(text); text != "" {
			return text, nil
		}
		errs = append(errs, fmt.Sprintf("%s: no text content found", p.Name()))
		e.log.Debug("parser returned no text, trying next", zap.String("parser", p.Name()), zap.String("file", doc.Name))
	}
	return "", fmt.Errorf("all parsers failed: %s", strings.Join(errs, "; "))
}

type textLayerParser struct{}

// NewTextLayerParser reads the PDF text layer in-process.
func NewTextLayerParser() TextParser {
	return &textLayerParser{}
}

func (p *textLayerParser) Name() string { return "text-layer" }

func (p *textLayerParser) Parse(_ context.Context, data []byte) (text string, err error) {
	// The reader panics on some malformed xref tables.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		textBuilder.WriteString(pageText)
		textBuilder.WriteString("\n\n")
	}

	return textBuilder.String(), nil
}

type pdftotextParser struct {
	binary  string
	timeout time.Duration
}

// NewPdftotextParser shells out to poppler's pdftotext, feeding the PDF on stdin.
func NewPdftotextParser(binary string, timeout time.Duration) TextParser {
	return &pdftotextParser{binary: binary, timeout: timeout}
}

func (p *pdftotextParser) Name() string { return "pdftotext" }

func (p *pdftotextParser) Parse(ctx context.Context, data []byte) (string, error) {
	if _, err := exec.LookPath(p.binary); err != nil {
		return "", fmt.Errorf("%s not available: %w", p.binary, err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.binary, "-layout", "-enc", "UTF-8", "-", "-")
	cmd.Stdin = bytes.NewReader(data)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s failed: %w: %s", p.binary, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

var (
	docxParagraphEnd = regexp.MustCompile(`</w:p>`)
	docxTag          = regexp.MustCompile(`<[^>]+>`)
)

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	content := doc.Editable().GetContent()
	content = docxParagraphEnd.ReplaceAllString(content, "\n")
	content = docxTag.ReplaceAllString(content, "")
	content = xmlEntities.Replace(content)

	text := CleanText(content)
	if text == "" {
		return "", fmt.Errorf("no text content found in docx")
	}
	return text, nil
}

var xmlEntities = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'")

// CleanText trims every line and drops blank ones.
func CleanText(text string) string {
	text = strings.TrimSpace(text)

	lines := strings.Split(text, "\n")
	var cleanedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}
