package ocr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine runs OCR locally through the Tesseract C bindings. Useful
// when the Vision API is not configured or when uploads must not leave the
// host.
type TesseractEngine struct {
	languages []string
}

// NewTesseractEngine accepts a "+"-joined language spec like "eng+hin".
// Empty means English.
func NewTesseractEngine(langSpec string) *TesseractEngine {
	langs := []string{"eng"}
	if s := strings.TrimSpace(langSpec); s != "" {
		langs = strings.Split(s, "+")
	}
	return &TesseractEngine{languages: langs}
}

func (t *TesseractEngine) Name() string { return "tesseract" }

func (t *TesseractEngine) ExtractText(ctx context.Context, content []byte) (string, error) {
	// gosseract calls are not cancellable mid-run; honor an already-dead
	// context before starting the work.
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.languages...); err != nil {
		return "", fmt.Errorf("set tesseract languages: %w", err)
	}
	if err := client.SetImageFromBytes(content); err != nil {
		return "", fmt.Errorf("load image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract recognize: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("no text recognized in image")
	}
	return text, nil
}
