package ocr

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// RawAnalysis is the engine-agnostic result of analyzing one document.
// Lines are detected text lines in reading order, KeyValues are detected
// form fields, and Tables hold cell text as tables[row][col].
type RawAnalysis struct {
	Lines     []string
	KeyValues map[string]string
	Tables    [][][]string
}

// Text joins the detected lines into a single newline-separated string.
func (a RawAnalysis) Text() string {
	return strings.Join(a.Lines, "\n")
}

// Empty reports whether the analysis carries no detected content.
func (a RawAnalysis) Empty() bool {
	return len(a.Lines) == 0 && len(a.KeyValues) == 0 && len(a.Tables) == 0
}

// Engine analyzes a document payload and returns its raw content.
// fileType is the normalized document type (PDF, JPG, PNG).
type Engine interface {
	Analyze(ctx context.Context, data []byte, fileType string) (RawAnalysis, error)
}

// ErrAnalysis marks failures reported by an analysis engine.
var ErrAnalysis = errors.New("analysis failed")

// Failure tags an engine error so callers can classify it with errors.Is
// while keeping the original cause in the chain.
func Failure(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrAnalysis) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrAnalysis, err)
}
