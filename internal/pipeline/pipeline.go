// Package pipeline sequences extraction, classification, compliance and
// routing for one claim, tracking per-stage status and timing.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	cfg "github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/config"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/internal/models"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/pkg/logger"
)

// Extractor produces typed fields from a claim image.
type Extractor interface {
	Extract(ctx context.Context, doc *models.ClaimDocument) (*models.ExtractedFields, error)
}

// Classifier assigns a claim type with a confidence score.
type Classifier interface {
	Classify(fields *models.ExtractedFields) (*models.ClassificationResult, error)
}

// ComplianceChecker evaluates fields against the policy rule set.
type ComplianceChecker interface {
	Check(fields *models.ExtractedFields, classification *models.ClassificationResult, snap *cfg.Snapshot) (*models.ComplianceFinding, error)
}

// WorkflowRouter selects the target workflow for a triaged claim.
type WorkflowRouter interface {
	Route(classification *models.ClassificationResult, compliance *models.ComplianceFinding, fields *models.ExtractedFields, snap *cfg.Snapshot) (*models.RoutingDecision, error)
}

// Pipeline runs one claim through the four stages strictly in order.
// Extraction and routing failures are fatal; classification and compliance
// failures are soft, substituting conservative fallbacks so a decision is
// still produced. A run never retries a stage.
type Pipeline struct {
	extractor  Extractor
	classifier Classifier
	checker    ComplianceChecker
	router     WorkflowRouter
	logger     logger.Logger
}

func New(
	extractor Extractor,
	classifier Classifier,
	checker ComplianceChecker,
	router WorkflowRouter,
	log logger.Logger,
) *Pipeline {
	return &Pipeline{
		extractor:  extractor,
		classifier: classifier,
		checker:    checker,
		router:     router,
		logger:     log,
	}
}

// Run processes one claim against the given configuration snapshot. The
// snapshot is fixed for the whole run; a concurrent rule reload does not
// affect it. On fatal failure the returned run carries the partial trace
// and the error is stage-tagged.
func (p *Pipeline) Run(ctx context.Context, doc *models.ClaimDocument, snap *cfg.Snapshot) (*models.PipelineRun, error) {
	run := &models.PipelineRun{
		ID:        uuid.New().String(),
		SourceID:  doc.SourceID,
		State:     models.RunIngested,
		Stages:    make(map[models.Stage]*models.StageResult, len(models.StageOrder)),
		StartedAt: time.Now(),
	}
	for _, stage := range models.StageOrder {
		run.StageFor(stage)
	}

	log := p.logger.With(logger.String("runId", run.ID))
	log.Info("Pipeline run started", logger.String("documentId", doc.ID))

	// Extracting: fatal on failure, nothing downstream can run.
	run.State = models.RunExtracting
	fields, err := timedStage(run, models.StageExtracting, func() (*models.ExtractedFields, error) {
		return p.extractor.Extract(ctx, doc)
	})
	if err != nil {
		return p.fail(run, log, models.StageExtracting, err)
	}
	run.Fields = fields

	// Classifying: soft failure, fall back to a conservative result that
	// routes to human review rather than crashing.
	run.State = models.RunClassifying
	classification, err := timedStage(run, models.StageClassifying, func() (*models.ClassificationResult, error) {
		return p.classifier.Classify(fields)
	})
	if err != nil {
		log.Warn("Classification failed, using fallback", logger.Error(err))
		classification = &models.ClassificationResult{
			ClaimType:  "other",
			Confidence: 0,
			Priority:   models.PriorityMedium,
		}
	}
	run.Classification = classification

	// CheckingCompliance: soft failure with a non-compliant fallback.
	run.State = models.RunCheckingCompliance
	finding, err := timedStage(run, models.StageCompliance, func() (*models.ComplianceFinding, error) {
		return p.checker.Check(fields, classification, snap)
	})
	if err != nil {
		log.Warn("Compliance check failed, using fallback", logger.Error(err))
		finding = &models.ComplianceFinding{
			IsCompliant: false,
			Notes:       fmt.Sprintf("compliance check failed: %v", err),
		}
	}
	run.Compliance = finding

	// Routing: fatal on failure, no safe default decision can be made up.
	run.State = models.RunRouting
	decision, err := timedStage(run, models.StageRouting, func() (*models.RoutingDecision, error) {
		return p.router.Route(classification, finding, fields, snap)
	})
	if err != nil {
		return p.fail(run, log, models.StageRouting, err)
	}
	run.Decision = decision

	run.State = models.RunCompleted
	run.FinishedAt = time.Now()

	log.Info("Pipeline run completed",
		logger.String("workflow", decision.Workflow),
		logger.Duration("elapsed", run.FinishedAt.Sub(run.StartedAt)),
	)
	return run, nil
}

func (p *Pipeline) fail(run *models.PipelineRun, log logger.Logger, stage models.Stage, err error) (*models.PipelineRun, error) {
	run.State = models.RunFailed
	run.FinishedAt = time.Now()

	// Stages after the failed one never run.
	skip := false
	for _, s := range models.StageOrder {
		if s == stage {
			skip = true
			continue
		}
		if skip {
			run.StageFor(s).Status = models.StageSkipped
		}
	}

	log.Error("Pipeline run failed",
		logger.String("stage", string(stage)),
		logger.Error(err),
	)
	return run, fmt.Errorf("%s: %w", stage, err)
}

// timedStage runs fn, recording status, error and duration on the run.
func timedStage[T any](run *models.PipelineRun, stage models.Stage, fn func() (T, error)) (T, error) {
	sr := run.StageFor(stage)
	start := time.Now()
	result, err := fn()
	sr.Duration = time.Since(start)
	if err != nil {
		sr.Status = models.StageFailed
		sr.Error = err.Error()
	} else {
		sr.Status = models.StageSucceeded
	}
	return result, err
}
