package ocr

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEngine struct {
	name  string
	text  string
	err   error
	delay time.Duration
}

func (s *stubEngine) Name() string { return s.name }

func (s *stubEngine) ExtractText(ctx context.Context, content []byte) (string, error) {
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(s.delay):
		}
	}
	return s.text, s.err
}

var (
	pngMagic = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00}
	pdfMagic = []byte("%PDF-1.7\n")
)

func TestAutoEngine_RoutesBySniffedType(t *testing.T) {
	pdfStub := &stubEngine{name: "pdf", text: "from pdf"}
	imgStub := &stubEngine{name: "img", text: "from image"}
	auto := NewAutoEngine(pdfStub, imgStub)

	text, err := auto.ExtractText(context.Background(), pdfMagic)
	require.NoError(t, err)
	assert.Equal(t, "from pdf", text)

	text, err = auto.ExtractText(context.Background(), pngMagic)
	require.NoError(t, err)
	assert.Equal(t, "from image", text)
}

func TestWithTimeout_SlowEngineFailsAsUnavailable(t *testing.T) {
	slow := &stubEngine{name: "slow", text: "never", delay: time.Second}
	wrapped := WithTimeout(slow, 10*time.Millisecond)

	_, err := wrapped.ExtractText(context.Background(), pngMagic)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestWithTimeout_PassesThroughResult(t *testing.T) {
	fast := &stubEngine{name: "fast", text: "hello"}
	wrapped := WithTimeout(fast, time.Second)

	text, err := wrapped.ExtractText(context.Background(), pngMagic)
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
	assert.Equal(t, "fast", wrapped.Name())
}

func TestWithTimeout_WrapsEngineErrors(t *testing.T) {
	failing := &stubEngine{name: "bad", err: errors.New("boom")}
	wrapped := WithTimeout(failing, time.Second)

	_, err := wrapped.ExtractText(context.Background(), pngMagic)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestPDFEngine_RejectsGarbage(t *testing.T) {
	_, err := NewPDFEngine().ExtractText(context.Background(), []byte("not a pdf"))
	assert.Error(t, err)
}
