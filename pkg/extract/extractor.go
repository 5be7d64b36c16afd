// Package extract turns uploaded files into plain text for indexing.
// Dispatch is by MIME family: images and PDFs go through a vision model,
// textual formats are normalized to markdown, and plain text passes
// through untouched.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ai-supportdesk-be/pkg/llm"
)

// ErrUnsupportedMIME marks a file type no extractor handles. Callers should
// reject the upload before any asynchronous work is enqueued.
var ErrUnsupportedMIME = errors.New("unsupported mime type")

// DocumentReader extracts text from binary documents (images, PDFs).
type DocumentReader interface {
	ReadDocument(ctx context.Context, mimeType string, data []byte, instructions string) (string, error)
}

type Extractor struct {
	llmProvider llm.LLMProvider
	reader      DocumentReader
}

func NewExtractor(llmProvider llm.LLMProvider, reader DocumentReader) *Extractor {
	return &Extractor{
		llmProvider: llmProvider,
		reader:      reader,
	}
}

const imageInstructions = `Extract all visible text from this image verbatim. ` +
	`Describe diagrams, screenshots and figures in enough detail that the ` +
	`description can answer questions about them. Return plain text only.`

const pdfInstructions = `Extract the full text content of this document. ` +
	`Preserve headings and list structure as markdown. Return the content only, ` +
	`with no commentary.`

const markupInstructions = `Convert the following document to clean markdown. ` +
	`Strip tags, scripts and styling but keep all human-readable content and ` +
	`structure. Return the markdown only.

%s`

// Supported reports whether Extract can handle the MIME type. Use it to
// reject uploads synchronously.
func Supported(mimeType string) bool {
	family, _, _ := strings.Cut(mimeType, "/")
	switch {
	case family == "image":
		return true
	case mimeType == "application/pdf":
		return true
	case family == "text":
		return true
	case mimeType == "application/json", mimeType == "application/xml":
		return true
	}
	return false
}

// Extract returns the indexable text of a file.
func (e *Extractor) Extract(ctx context.Context, mimeType string, data []byte) (string, error) {
	family, _, _ := strings.Cut(mimeType, "/")

	switch {
	case family == "image":
		return e.reader.ReadDocument(ctx, mimeType, data, imageInstructions)

	case mimeType == "application/pdf":
		return e.reader.ReadDocument(ctx, mimeType, data, pdfInstructions)

	case mimeType == "text/plain":
		return string(data), nil

	case family == "text", mimeType == "application/json", mimeType == "application/xml":
		prompt := fmt.Sprintf(markupInstructions, string(data))
		text, err := e.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.1))
		if err != nil {
			return "", fmt.Errorf("normalize %s: %w", mimeType, err)
		}
		return text, nil
	}

	return "", fmt.Errorf("%w: %s", ErrUnsupportedMIME, mimeType)
}
