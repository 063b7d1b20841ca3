// Package ocr provides interchangeable text-extraction engines for the
// verification service: Google Vision, local Tesseract, and a PDF text-layer
// reader, plus sniffing and timeout wrappers.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/h2non/filetype"
)

// ErrUnavailable wraps any engine-level failure (timeout, API error,
// unreadable content). Callers treat it as retryable.
var ErrUnavailable = errors.New("ocr: engine unavailable")

// Engine turns raw document bytes into plain text.
type Engine interface {
	Name() string
	ExtractText(ctx context.Context, content []byte) (string, error)
}

// AutoEngine routes an upload to the right extractor by sniffing its magic
// bytes: PDFs go to the text-layer reader, everything else to the image
// engine.
type AutoEngine struct {
	pdf   Engine
	image Engine
}

func NewAutoEngine(pdf, image Engine) *AutoEngine {
	return &AutoEngine{pdf: pdf, image: image}
}

func (a *AutoEngine) Name() string { return "auto" }

func (a *AutoEngine) ExtractText(ctx context.Context, content []byte) (string, error) {
	kind, err := filetype.Match(content)
	if err != nil {
		return "", fmt.Errorf("%w: sniff content type: %v", ErrUnavailable, err)
	}
	if kind.Extension == "pdf" {
		return a.pdf.ExtractText(ctx, content)
	}
	return a.image.ExtractText(ctx, content)
}

type timeoutEngine struct {
	inner Engine
	limit time.Duration
}

// WithTimeout bounds every ExtractText call. On expiry the call fails with
// ErrUnavailable; the inner goroutine is cancelled cooperatively through the
// derived context.
func WithTimeout(inner Engine, limit time.Duration) Engine {
	return &timeoutEngine{inner: inner, limit: limit}
}

func (t *timeoutEngine) Name() string { return t.inner.Name() }

func (t *timeoutEngine) ExtractText(ctx context.Context, content []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.limit)
	defer cancel()

	type outcome struct {
		text string
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		text, err := t.inner.ExtractText(ctx, content)
		done <- outcome{text, err}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %s: %v", ErrUnavailable, t.inner.Name(), ctx.Err())
	case o := <-done:
		if o.err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrUnavailable, t.inner.Name(), o.err)
		}
		return o.text, nil
	}
}
