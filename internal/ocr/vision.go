package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"

	vision "cloud.google.com/go/vision/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

// VisionEngine extracts text with the Google Cloud Vision API. Credentials
// come from GOOGLE_APPLICATION_CREDENTIALS or ambient ADC.
type VisionEngine struct {
	credPath string
}

func NewVisionEngine() *VisionEngine {
	return &VisionEngine{credPath: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")}
}

func (v *VisionEngine) Name() string { return "google-vision" }

func (v *VisionEngine) ExtractText(ctx context.Context, content []byte) (string, error) {
	var client *vision.ImageAnnotatorClient
	var err error
	if v.credPath != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(v.credPath))
	} else {
		client, err = vision.NewImageAnnotatorClient(ctx)
	}
	if err != nil {
		return "", fmt.Errorf("init vision client: %w", err)
	}
	defer client.Close()

	img := &visionpb.Image{Content: content}
	anns, err := client.DetectTexts(ctx, img, nil, 1)
	if err != nil {
		return "", fmt.Errorf("detect texts: %w", err)
	}
	if len(anns) == 0 || anns[0].Description == "" {
		return "", errors.New("no text detected in image")
	}
	return anns[0].Description, nil
}
