package classifier

import (
	"sort"
	"strings"

	cfg "github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/config"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/internal/models"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/pkg/logger"
)

// ClassificationError is the only failure mode of classification: missing
// input text. A low-confidence result is a valid result, not an error.
type ClassificationError struct {
	Reason string
}

func (e *ClassificationError) Error() string {
	return "classification failed: " + e.Reason
}

// Classifier derives claim type, confidence and priority from extracted
// fields. Priority is deterministic: value bands and high-priority terms.
type Classifier struct {
	model  *Model
	logger logger.Logger

	highPriorityTerms []string
	bands             []cfg.PriorityBand
}

func NewClassifier(model *Model, rules *cfg.Rules, log logger.Logger) *Classifier {
	bands := make([]cfg.PriorityBand, len(rules.PriorityBands))
	copy(bands, rules.PriorityBands)
	sort.Slice(bands, func(i, j int) bool { return bands[i].Threshold < bands[j].Threshold })

	return &Classifier{
		model:             model,
		logger:            log,
		highPriorityTerms: rules.HighPriorityTerms,
		bands:             bands,
	}
}

// Classify produces the claim type distribution's top class as the result,
// with confidence equal to that class's probability mass.
func (c *Classifier) Classify(fields *models.ExtractedFields) (*models.ClassificationResult, error) {
	text := fields.RawText
	if strings.TrimSpace(text) == "" {
		return nil, &ClassificationError{Reason: "input text is empty"}
	}

	dist := c.model.Distribution(text)
	claimType, confidence := c.model.Top(dist)

	result := &models.ClassificationResult{
		ClaimType:  claimType,
		Confidence: confidence,
		Priority:   c.derivePriority(text, fields.ClaimValue),
	}

	c.logger.Info("Claim classified",
		logger.String("claimType", result.ClaimType),
		logger.Float64("confidence", result.Confidence),
		logger.String("priority", string(result.Priority)),
	)

	return result, nil
}

func (c *Classifier) derivePriority(text string, claimValue *float64) models.Priority {
	priority := models.PriorityLow

	if claimValue != nil {
		for _, band := range c.bands {
			// Strictly greater: a value exactly at the threshold stays in
			// the lower band.
			if *claimValue > band.Threshold {
				priority = models.MaxPriority(priority, band.Priority)
			}
		}
	}

	lowered := strings.ToLower(text)
	for _, term := range c.highPriorityTerms {
		if strings.Contains(lowered, strings.ToLower(term)) {
			priority = models.PriorityHigh
			break
		}
	}

	return priority
}
