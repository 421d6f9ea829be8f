// Package extract wraps the external OCR and entity-extraction
// collaborators and normalizes their output into typed claim fields.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strconv"
	"strings"

	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/internal/models"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/pkg/logger"
)

// ExtractionError is fatal for a pipeline run: an undecodable or undersized
// image, or recognition quality below the configured floor.
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed: %s: %v", e.Reason, e.Err)
	}
	return "extraction failed: " + e.Reason
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// OCRClient is the external text-recognition collaborator.
type OCRClient interface {
	Recognize(ctx context.Context, image []byte, format models.ImageFormat) (text string, quality float64, err error)
}

// EntityExtractor is the external field-extraction collaborator. It maps
// raw text to named field values; absent fields are simply missing keys.
type EntityExtractor interface {
	Extract(text string) map[string]string
}

// Options gate what the adapter accepts.
type Options struct {
	MinQuality float64
	MinWidth   int
	MinHeight  int
}

// Adapter runs OCR and entity extraction on one claim image and produces
// the typed ExtractedFields record. It never retains the image.
type Adapter struct {
	ocr      OCRClient
	entities EntityExtractor
	logger   logger.Logger
	opts     Options
}

func NewAdapter(ocr OCRClient, entities EntityExtractor, log logger.Logger, opts Options) *Adapter {
	return &Adapter{
		ocr:      ocr,
		entities: entities,
		logger:   log,
		opts:     opts,
	}
}

// Extract decodes the claim image, runs the collaborators and normalizes
// their output. Unmapped fields stay absent (nil), never zero values.
func (a *Adapter) Extract(ctx context.Context, doc *models.ClaimDocument) (*models.ExtractedFields, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(doc.Image))
	if err != nil {
		return nil, &ExtractionError{Reason: "image cannot be decoded", Err: err}
	}

	if cfg.Width < a.opts.MinWidth || cfg.Height < a.opts.MinHeight {
		return nil, &ExtractionError{
			Reason: fmt.Sprintf("image %dx%d below minimum resolution %dx%d",
				cfg.Width, cfg.Height, a.opts.MinWidth, a.opts.MinHeight),
		}
	}

	text, quality, err := a.ocr.Recognize(ctx, doc.Image, doc.Format)
	if err != nil {
		return nil, &ExtractionError{Reason: "text recognition failed", Err: err}
	}

	if strings.TrimSpace(text) == "" {
		return nil, &ExtractionError{Reason: "no text recognized, the image may be blank or unreadable"}
	}

	if quality < a.opts.MinQuality {
		return nil, &ExtractionError{
			Reason: fmt.Sprintf("extraction quality %.2f below floor %.2f", quality, a.opts.MinQuality),
		}
	}

	fields := &models.ExtractedFields{
		RawText: text,
		Quality: quality,
	}

	raw := a.entities.Extract(text)
	if v, ok := raw[FieldPolicyNumber]; ok {
		fields.PolicyNumber = strPtr(strings.TrimSpace(v))
	}
	if v, ok := raw[FieldClaimValue]; ok {
		if amount, err := parseAmount(v); err == nil {
			fields.ClaimValue = &amount
		} else {
			a.logger.Warn("Unparseable claim amount",
				logger.String("documentId", doc.ID),
				logger.String("value", v),
			)
		}
	}
	if v, ok := raw[FieldClaimantName]; ok {
		fields.ClaimantName = strPtr(strings.TrimSpace(v))
	}
	if v, ok := raw[FieldIncidentDate]; ok {
		fields.IncidentDate = strPtr(strings.TrimSpace(v))
	}
	if v, ok := raw[FieldDescription]; ok {
		fields.Description = strPtr(strings.TrimSpace(v))
	}

	a.logger.Info("Fields extracted",
		logger.String("documentId", doc.ID),
		logger.Float64("quality", quality),
		logger.Bool("hasPolicyNumber", fields.PolicyNumber != nil),
		logger.Bool("hasClaimValue", fields.ClaimValue != nil),
	)

	return fields, nil
}

func parseAmount(v string) (float64, error) {
	cleaned := strings.TrimSpace(v)
	cleaned = strings.TrimPrefix(cleaned, "$")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	return strconv.ParseFloat(cleaned, 64)
}

func strPtr(s string) *string {
	return &s
}
