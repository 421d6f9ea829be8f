package claims

import (
	"context"
	"errors"
	"strings"
	"testing"

	cfg "github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/config"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/internal/models"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/internal/pipeline"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/pkg/logger"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

type countingExtractor struct {
	calls int
}

func (c *countingExtractor) Extract(ctx context.Context, doc *models.ClaimDocument) (*models.ExtractedFields, error) {
	c.calls++
	return &models.ExtractedFields{RawText: "collision", Quality: 0.9}, nil
}

type stubClassifier struct{}

func (stubClassifier) Classify(fields *models.ExtractedFields) (*models.ClassificationResult, error) {
	return &models.ClassificationResult{ClaimType: "auto", Confidence: 0.85, Priority: models.PriorityMedium}, nil
}

type stubChecker struct{}

func (stubChecker) Check(fields *models.ExtractedFields, classification *models.ClassificationResult, snap *cfg.Snapshot) (*models.ComplianceFinding, error) {
	return &models.ComplianceFinding{IsCompliant: true}, nil
}

type stubRouter struct{}

func (stubRouter) Route(classification *models.ClassificationResult, compliance *models.ComplianceFinding, fields *models.ExtractedFields, snap *cfg.Snapshot) (*models.RoutingDecision, error) {
	return &models.RoutingDecision{Workflow: models.WorkflowGeneralQueue, TriggeringRuleID: "general-queue"}, nil
}

func newTestService(t *testing.T, extractor pipeline.Extractor) *ClaimService {
	t.Helper()
	log := logger.NewTestLogger()
	rules, err := cfg.NewStoreFromRules(cfg.DefaultRules(), log)
	if err != nil {
		t.Fatalf("Expected rules store to build, got %v", err)
	}
	p := pipeline.New(extractor, stubClassifier{}, stubChecker{}, stubRouter{}, log)
	return NewService(p, rules, nil, nil, log, nil)
}

func TestTriageClaim_RunsPipeline(t *testing.T) {
	svc := newTestService(t, &countingExtractor{})

	run, err := svc.TriageClaim(context.Background(), "claim.png", pngHeader, "intake-7")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if run.State != models.RunCompleted {
		t.Errorf("Expected completed run, got %s", run.State)
	}
	if run.Decision == nil || run.Decision.Workflow != models.WorkflowGeneralQueue {
		t.Errorf("Expected GeneralClaimsQueue decision, got %+v", run.Decision)
	}
}

func TestTriageClaim_RejectsUnsupportedFormat(t *testing.T) {
	svc := newTestService(t, &countingExtractor{})

	_, err := svc.TriageClaim(context.Background(), "claim.gif", []byte("GIF89a...."), "intake-7")
	if err == nil {
		t.Fatal("Expected error for unsupported format")
	}
	if !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("Expected unsupported-format error, got %v", err)
	}
}

func TestTriageClaim_RejectsOversizedFile(t *testing.T) {
	svc := newTestService(t, &countingExtractor{})

	data := make([]byte, len(pngHeader), 6*1024*1024)
	copy(data, pngHeader)
	data = data[:cap(data)]

	_, err := svc.TriageClaim(context.Background(), "claim.png", data, "intake-7")
	if err == nil {
		t.Fatal("Expected error above the size limit")
	}
	if !strings.Contains(err.Error(), "exceeds maximum") {
		t.Errorf("Expected size-limit error, got %v", err)
	}
}

func TestTriageClaim_CachesByDigest(t *testing.T) {
	extractor := &countingExtractor{}
	svc := newTestService(t, extractor)

	first, err := svc.TriageClaim(context.Background(), "claim.png", pngHeader, "intake-7")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	second, err := svc.TriageClaim(context.Background(), "claim.png", pngHeader, "intake-7")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if extractor.calls != 1 {
		t.Errorf("Expected one pipeline run for identical bytes, got %d", extractor.calls)
	}
	if first.ID != second.ID {
		t.Error("Expected the cached run to be returned")
	}
	if first.Decision.Workflow != second.Decision.Workflow {
		t.Error("Expected identical decisions for identical input")
	}
}

func TestTriageClaim_FailedRunIsNotCached(t *testing.T) {
	failing := &failingExtractor{}
	svc := newTestService(t, failing)

	if _, err := svc.TriageClaim(context.Background(), "claim.png", pngHeader, "intake-7"); err == nil {
		t.Fatal("Expected error from failing extraction")
	}
	if _, err := svc.TriageClaim(context.Background(), "claim.png", pngHeader, "intake-7"); err == nil {
		t.Fatal("Expected error from failing extraction")
	}
	if failing.calls != 2 {
		t.Errorf("Expected failed runs to bypass the cache, got %d calls", failing.calls)
	}
}

type failingExtractor struct {
	calls int
}

func (f *failingExtractor) Extract(ctx context.Context, doc *models.ClaimDocument) (*models.ExtractedFields, error) {
	f.calls++
	return nil, errors.New("no text recognized")
}

func TestSniffFormat(t *testing.T) {
	if got, err := sniffFormat(pngHeader); err != nil || got != models.FormatPNG {
		t.Errorf("Expected png, got %v (%v)", got, err)
	}

	jpeg := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0x10, 'J', 'F', 'I', 'F', 0, 1}
	if got, err := sniffFormat(jpeg); err != nil || got != models.FormatJPEG {
		t.Errorf("Expected jpeg, got %v (%v)", got, err)
	}

	if _, err := sniffFormat([]byte("plain text, not an image")); err == nil {
		t.Error("Expected error for non-image payload")
	}
}
