package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	cfg "github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/config"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/internal/models"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/pkg/logger"
)

type stubExtractor struct {
	fields *models.ExtractedFields
	err    error
	calls  int
}

func (s *stubExtractor) Extract(ctx context.Context, doc *models.ClaimDocument) (*models.ExtractedFields, error) {
	s.calls++
	return s.fields, s.err
}

type stubClassifier struct {
	result *models.ClassificationResult
	err    error
	calls  int
}

func (s *stubClassifier) Classify(fields *models.ExtractedFields) (*models.ClassificationResult, error) {
	s.calls++
	return s.result, s.err
}

type stubChecker struct {
	finding *models.ComplianceFinding
	err     error
	calls   int
}

func (s *stubChecker) Check(fields *models.ExtractedFields, classification *models.ClassificationResult, snap *cfg.Snapshot) (*models.ComplianceFinding, error) {
	s.calls++
	return s.finding, s.err
}

type stubRouter struct {
	decision *models.RoutingDecision
	err      error
	calls    int

	gotClassification *models.ClassificationResult
	gotCompliance     *models.ComplianceFinding
}

func (s *stubRouter) Route(classification *models.ClassificationResult, compliance *models.ComplianceFinding, fields *models.ExtractedFields, snap *cfg.Snapshot) (*models.RoutingDecision, error) {
	s.calls++
	s.gotClassification = classification
	s.gotCompliance = compliance
	return s.decision, s.err
}

func testSnapshot(t *testing.T) *cfg.Snapshot {
	t.Helper()
	snap, err := cfg.NewSnapshot(cfg.DefaultRules())
	if err != nil {
		t.Fatalf("Expected valid snapshot, got %v", err)
	}
	return snap
}

func testDoc() *models.ClaimDocument {
	return &models.ClaimDocument{ID: "doc-1", SourceID: "intake-7", Format: models.FormatPNG}
}

func happyStubs() (*stubExtractor, *stubClassifier, *stubChecker, *stubRouter) {
	return &stubExtractor{fields: &models.ExtractedFields{RawText: "collision", Quality: 0.9}},
		&stubClassifier{result: &models.ClassificationResult{ClaimType: "auto", Confidence: 0.85, Priority: models.PriorityMedium}},
		&stubChecker{finding: &models.ComplianceFinding{IsCompliant: true, Notes: "compliant"}},
		&stubRouter{decision: &models.RoutingDecision{Workflow: models.WorkflowGeneralQueue, TriggeringRuleID: "general-queue"}}
}

func TestRun_AllStagesSucceed(t *testing.T) {
	extractor, classifier, checker, router := happyStubs()
	p := New(extractor, classifier, checker, router, logger.NewTestLogger())

	run, err := p.Run(context.Background(), testDoc(), testSnapshot(t))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if run.State != models.RunCompleted {
		t.Errorf("Expected completed state, got %s", run.State)
	}
	if run.SourceID != "intake-7" {
		t.Errorf("Expected source id to carry over, got %q", run.SourceID)
	}
	if run.Decision == nil || run.Decision.Workflow != models.WorkflowGeneralQueue {
		t.Errorf("Expected GeneralClaimsQueue decision, got %+v", run.Decision)
	}
	for _, stage := range models.StageOrder {
		sr := run.Stages[stage]
		if sr == nil || sr.Status != models.StageSucceeded {
			t.Errorf("Expected stage %s to succeed, got %+v", stage, sr)
		}
	}
	if extractor.calls != 1 || classifier.calls != 1 || checker.calls != 1 || router.calls != 1 {
		t.Error("Expected each stage to run exactly once")
	}
}

func TestRun_ExtractionFailureIsFatal(t *testing.T) {
	extractor, classifier, checker, router := happyStubs()
	extractor.err = errors.New("image cannot be decoded")
	extractor.fields = nil
	p := New(extractor, classifier, checker, router, logger.NewTestLogger())

	run, err := p.Run(context.Background(), testDoc(), testSnapshot(t))
	if err == nil {
		t.Fatal("Expected error for failed extraction")
	}
	if !strings.Contains(err.Error(), string(models.StageExtracting)) {
		t.Errorf("Expected error tagged with the stage, got %v", err)
	}

	if run.State != models.RunFailed {
		t.Errorf("Expected failed state, got %s", run.State)
	}
	if run.Stages[models.StageExtracting].Status != models.StageFailed {
		t.Errorf("Expected extraction stage failed, got %s", run.Stages[models.StageExtracting].Status)
	}
	for _, stage := range models.StageOrder[1:] {
		if got := run.Stages[stage].Status; got != models.StageSkipped {
			t.Errorf("Expected stage %s skipped, got %s", stage, got)
		}
	}
	if classifier.calls+checker.calls+router.calls != 0 {
		t.Error("Expected no downstream stage to run after fatal extraction")
	}
}

func TestRun_ClassificationFailureFallsBack(t *testing.T) {
	extractor, classifier, checker, router := happyStubs()
	classifier.err = errors.New("input text is empty")
	classifier.result = nil
	p := New(extractor, classifier, checker, router, logger.NewTestLogger())

	run, err := p.Run(context.Background(), testDoc(), testSnapshot(t))
	if err != nil {
		t.Fatalf("Expected soft failure to still complete, got %v", err)
	}

	if run.Classification == nil {
		t.Fatal("Expected fallback classification")
	}
	if run.Classification.ClaimType != "other" || run.Classification.Confidence != 0 {
		t.Errorf("Expected fallback type 'other' with zero confidence, got %+v", run.Classification)
	}
	if run.Classification.Priority != models.PriorityMedium {
		t.Errorf("Expected fallback priority Medium, got %s", run.Classification.Priority)
	}
	if run.Stages[models.StageClassifying].Status != models.StageFailed {
		t.Errorf("Expected classifying stage recorded as failed, got %s", run.Stages[models.StageClassifying].Status)
	}
	if router.gotClassification == nil || router.gotClassification.ClaimType != "other" {
		t.Error("Expected router to receive the fallback classification")
	}
	if run.State != models.RunCompleted {
		t.Errorf("Expected completed state, got %s", run.State)
	}
}

func TestRun_ComplianceFailureFallsBack(t *testing.T) {
	extractor, classifier, checker, router := happyStubs()
	checker.err = errors.New("rule engine exploded")
	checker.finding = nil
	p := New(extractor, classifier, checker, router, logger.NewTestLogger())

	run, err := p.Run(context.Background(), testDoc(), testSnapshot(t))
	if err != nil {
		t.Fatalf("Expected soft failure to still complete, got %v", err)
	}

	if run.Compliance == nil || run.Compliance.IsCompliant {
		t.Errorf("Expected non-compliant fallback finding, got %+v", run.Compliance)
	}
	if !strings.Contains(run.Compliance.Notes, "rule engine exploded") {
		t.Errorf("Expected fallback notes to carry the cause, got %q", run.Compliance.Notes)
	}
	if router.gotCompliance == nil || router.gotCompliance.IsCompliant {
		t.Error("Expected router to receive the non-compliant fallback")
	}
}

func TestRun_RoutingFailureIsFatal(t *testing.T) {
	extractor, classifier, checker, router := happyStubs()
	router.err = errors.New("no routing rule matched")
	router.decision = nil
	p := New(extractor, classifier, checker, router, logger.NewTestLogger())

	run, err := p.Run(context.Background(), testDoc(), testSnapshot(t))
	if err == nil {
		t.Fatal("Expected error for failed routing")
	}
	if run.State != models.RunFailed {
		t.Errorf("Expected failed state, got %s", run.State)
	}
	if run.Decision != nil {
		t.Errorf("Expected no decision, got %+v", run.Decision)
	}
	if run.Stages[models.StageRouting].Status != models.StageFailed {
		t.Errorf("Expected routing stage failed, got %s", run.Stages[models.StageRouting].Status)
	}
	// Earlier stage results stay on the trace.
	if run.Fields == nil || run.Classification == nil || run.Compliance == nil {
		t.Error("Expected partial trace to survive a routing failure")
	}
}

func TestRun_FreshRunIDs(t *testing.T) {
	extractor, classifier, checker, router := happyStubs()
	p := New(extractor, classifier, checker, router, logger.NewTestLogger())

	first, err := p.Run(context.Background(), testDoc(), testSnapshot(t))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	second, err := p.Run(context.Background(), testDoc(), testSnapshot(t))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if first.ID == second.ID {
		t.Error("Expected distinct run ids")
	}
}
