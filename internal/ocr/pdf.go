package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFEngine reads the embedded text layer of a PDF. Scanned PDFs without a
// text layer fail here and the upload should be resubmitted as an image.
type PDFEngine struct{}

func NewPDFEngine() *PDFEngine { return &PDFEngine{} }

func (p *PDFEngine) Name() string { return "pdf-text" }

func (p *PDFEngine) ExtractText(ctx context.Context, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text layer: %w", err)
	}
	var sb strings.Builder
	if _, err := io.Copy(&sb, plain); err != nil {
		return "", fmt.Errorf("read pdf text layer: %w", err)
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", errors.New("pdf has no extractable text layer")
	}
	return text, nil
}
