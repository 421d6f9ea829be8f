package extract

import (
	"context"
	"fmt"

	cfg "github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/config"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/pkg/logger"
)

// Engine selects the OCR collaborator backend.
type Engine string

const (
	EngineTesseract Engine = "tesseract"
	EngineTextract  Engine = "textract"
)

// NewOCRClient builds the configured OCR collaborator.
func NewOCRClient(ctx context.Context, engine Engine, log logger.Logger) (OCRClient, error) {
	switch engine {
	case EngineTesseract, "":
		return NewTesseractClient(log), nil
	case EngineTextract:
		return NewTextractClient(ctx, cfg.GetAWSConfig(), log)
	default:
		return nil, fmt.Errorf("unsupported ocr engine: %s", engine)
	}
}
