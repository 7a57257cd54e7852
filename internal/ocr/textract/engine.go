package textract

import (
	"context"
	"errors"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/textract"

	"docscan-backend/internal/ocr"
)

// Engine analyzes documents with Amazon Textract.
type Engine struct {
	client AnalyzeClient
}

// AnalyzeClient is the Textract API surface the engine depends on.
type AnalyzeClient interface {
	AnalyzeDocument(ctx context.Context, params *textract.AnalyzeDocumentInput, optFns ...func(*textract.Options)) (*textract.AnalyzeDocumentOutput, error)
}

// New creates a Textract-backed analysis engine.
func New(ctx context.Context, region string) (*Engine, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &Engine{client: textract.NewFromConfig(cfg)}, nil
}

// NewWithClient creates an engine around an existing client.
func NewWithClient(client AnalyzeClient) *Engine {
	return &Engine{client: client}
}

// Analyze submits the document bytes for synchronous form and table analysis.
func (e *Engine) Analyze(ctx context.Context, data []byte, fileType string) (ocr.RawAnalysis, error) {
	if len(data) == 0 {
		return ocr.RawAnalysis{}, ocr.Failure(errors.New("empty document payload"))
	}
	if err := ctx.Err(); err != nil {
		return ocr.RawAnalysis{}, ocr.Failure(err)
	}

	out, err := e.client.AnalyzeDocument(ctx, analyzeInput(data))
	if err != nil {
		return ocr.RawAnalysis{}, ocr.Failure(fmt.Errorf("textract analyze document: %w", err))
	}

	return flattenBlocks(out.Blocks), nil
}

var _ ocr.Engine = (*Engine)(nil)
