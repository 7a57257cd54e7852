package local

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"docscan-backend/internal/ocr"
)

const maxHeuristicKeyLen = 64

// Engine is an offline analysis engine for development. PDF text is read
// directly from the file; images yield an empty analysis because no OCR
// service is involved.
type Engine struct{}

// New creates a local analysis engine.
func New() *Engine {
	return &Engine{}
}

// Analyze extracts text from the payload without calling a remote service.
func (e *Engine) Analyze(ctx context.Context, data []byte, fileType string) (ocr.RawAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return ocr.RawAnalysis{}, ocr.Failure(err)
	}

	if fileType != "PDF" {
		return ocr.RawAnalysis{KeyValues: map[string]string{}}, nil
	}

	text, err := extractPDF(data)
	if err != nil {
		return ocr.RawAnalysis{}, ocr.Failure(err)
	}

	out := ocr.RawAnalysis{KeyValues: map[string]string{}}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out.Lines = append(out.Lines, line)
		if k, v, ok := splitKeyValue(line); ok {
			out.KeyValues[k] = v
		}
	}
	return out, nil
}

// splitKeyValue treats short "key: value" lines as form fields.
func splitKeyValue(line string) (string, string, bool) {
	k, v, found := strings.Cut(line, ":")
	if !found {
		return "", "", false
	}
	k = strings.TrimSpace(k)
	v = strings.TrimSpace(v)
	if k == "" || v == "" || len([]rune(k)) > maxHeuristicKeyLen {
		return "", "", false
	}
	return k, v, true
}

func extractPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var _ ocr.Engine = (*Engine)(nil)
