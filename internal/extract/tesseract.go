package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/internal/models"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/pkg/logger"
)

// TesseractClient runs local Tesseract OCR on claim images. Images get a
// grayscale and contrast pass first; scanned claim forms recognize poorly
// without it.
type TesseractClient struct {
	logger    logger.Logger
	languages []string
	contrast  float64
}

func NewTesseractClient(log logger.Logger) *TesseractClient {
	return &TesseractClient{
		logger:    log,
		languages: []string{"eng"},
		contrast:  30,
	}
}

// Recognize implements OCRClient. Quality is the mean word confidence
// reported by Tesseract, normalized to [0,1].
func (c *TesseractClient) Recognize(ctx context.Context, image []byte, format models.ImageFormat) (string, float64, error) {
	img, err := imaging.Decode(bytes.NewReader(image))
	if err != nil {
		return "", 0, fmt.Errorf("failed to decode image: %w", err)
	}

	prepped := imaging.AdjustContrast(imaging.Grayscale(img), c.contrast)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, prepped, imaging.PNG); err != nil {
		return "", 0, fmt.Errorf("failed to encode preprocessed image: %w", err)
	}

	// Tesseract clients are not safe for concurrent use; one per call.
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(strings.Join(c.languages, "+")); err != nil {
		return "", 0, fmt.Errorf("failed to set language: %w", err)
	}

	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", 0, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", 0, fmt.Errorf("ocr failed: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		c.logger.Warn("Failed to read word confidences", logger.Error(err))
		return text, 0, nil
	}

	quality := 0.0
	if len(boxes) > 0 {
		sum := 0.0
		for _, b := range boxes {
			sum += b.Confidence
		}
		quality = sum / float64(len(boxes)) / 100.0
	}

	return text, quality, nil
}
