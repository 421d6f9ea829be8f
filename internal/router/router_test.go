package router

import (
	"errors"
	"testing"

	cfg "github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/config"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/internal/models"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/pkg/logger"
)

func snapshot(t *testing.T, rules *cfg.Rules) *cfg.Snapshot {
	t.Helper()
	snap, err := cfg.NewSnapshot(rules)
	if err != nil {
		t.Fatalf("Expected valid snapshot, got %v", err)
	}
	return snap
}

func valPtr(v float64) *float64 { return &v }

func route(t *testing.T, snap *cfg.Snapshot, classification *models.ClassificationResult, compliance *models.ComplianceFinding, fields *models.ExtractedFields) *models.RoutingDecision {
	t.Helper()
	decision, err := NewRouter(logger.NewTestLogger()).Route(classification, compliance, fields, snap)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	return decision
}

func TestRoute_NonCompliantWinsFirst(t *testing.T) {
	snap := snapshot(t, cfg.DefaultRules())

	// Non-compliant plus high value plus low confidence: order decides.
	decision := route(t, snap,
		&models.ClassificationResult{ClaimType: "auto", Confidence: 0.2},
		&models.ComplianceFinding{IsCompliant: false, Notes: "exclusion"},
		&models.ExtractedFields{ClaimValue: valPtr(90000)},
	)
	if decision.Workflow != models.WorkflowAutoDeny {
		t.Errorf("Expected AutoDeny, got %s", decision.Workflow)
	}
	if decision.TriggeringRuleID != "auto-deny" {
		t.Errorf("Expected rule auto-deny, got %s", decision.TriggeringRuleID)
	}
}

func TestRoute_LowConfidenceBeforeHighValue(t *testing.T) {
	snap := snapshot(t, cfg.DefaultRules())

	decision := route(t, snap,
		&models.ClassificationResult{ClaimType: "auto", Confidence: 0.5},
		&models.ComplianceFinding{IsCompliant: true},
		&models.ExtractedFields{ClaimValue: valPtr(90000)},
	)
	if decision.Workflow != models.WorkflowManualReview {
		t.Errorf("Expected ManualReview, got %s", decision.Workflow)
	}
}

func TestRoute_HighValueBoundaryIsStrict(t *testing.T) {
	snap := snapshot(t, cfg.DefaultRules())

	// Exactly at the threshold: high_value must not trigger.
	decision := route(t, snap,
		&models.ClassificationResult{ClaimType: "auto", Confidence: 0.85},
		&models.ComplianceFinding{IsCompliant: true},
		&models.ExtractedFields{ClaimValue: valPtr(50000)},
	)
	if decision.Workflow != models.WorkflowGeneralQueue {
		t.Errorf("Expected GeneralClaimsQueue at the boundary, got %s", decision.Workflow)
	}

	decision = route(t, snap,
		&models.ClassificationResult{ClaimType: "auto", Confidence: 0.85},
		&models.ComplianceFinding{IsCompliant: true},
		&models.ExtractedFields{ClaimValue: valPtr(50000.01)},
	)
	if decision.Workflow != models.WorkflowSeniorAdjuster {
		t.Errorf("Expected SeniorAdjuster above the boundary, got %s", decision.Workflow)
	}
}

func TestRoute_MissingClaimValueNeverHighValue(t *testing.T) {
	snap := snapshot(t, cfg.DefaultRules())

	decision := route(t, snap,
		&models.ClassificationResult{ClaimType: "auto", Confidence: 0.85},
		&models.ComplianceFinding{IsCompliant: true},
		&models.ExtractedFields{},
	)
	if decision.Workflow != models.WorkflowGeneralQueue {
		t.Errorf("Expected GeneralClaimsQueue without a claim value, got %s", decision.Workflow)
	}
}

func TestRoute_StraightThroughNeedsConfidenceAndCompliance(t *testing.T) {
	snap := snapshot(t, cfg.DefaultRules())

	decision := route(t, snap,
		&models.ClassificationResult{ClaimType: "auto", Confidence: 0.97},
		&models.ComplianceFinding{IsCompliant: true},
		&models.ExtractedFields{ClaimValue: valPtr(800)},
	)
	if decision.Workflow != models.WorkflowStraightThru {
		t.Errorf("Expected StraightThrough, got %s", decision.Workflow)
	}

	// Confidence exactly at the threshold still qualifies.
	decision = route(t, snap,
		&models.ClassificationResult{ClaimType: "auto", Confidence: 0.95},
		&models.ComplianceFinding{IsCompliant: true},
		&models.ExtractedFields{ClaimValue: valPtr(800)},
	)
	if decision.Workflow != models.WorkflowStraightThru {
		t.Errorf("Expected StraightThrough at the threshold, got %s", decision.Workflow)
	}
}

func TestRoute_DefaultRuleCatchesRest(t *testing.T) {
	snap := snapshot(t, cfg.DefaultRules())

	decision := route(t, snap,
		&models.ClassificationResult{ClaimType: "auto", Confidence: 0.85},
		&models.ComplianceFinding{IsCompliant: true},
		&models.ExtractedFields{ClaimValue: valPtr(5000)},
	)
	if decision.Workflow != models.WorkflowGeneralQueue {
		t.Errorf("Expected GeneralClaimsQueue, got %s", decision.Workflow)
	}
	if decision.TriggeringRuleID != "general-queue" {
		t.Errorf("Expected rule general-queue, got %s", decision.TriggeringRuleID)
	}
}

func TestRoute_ReasoningCoversSkippedRules(t *testing.T) {
	snap := snapshot(t, cfg.DefaultRules())

	decision := route(t, snap,
		&models.ClassificationResult{ClaimType: "auto", Confidence: 0.85},
		&models.ComplianceFinding{IsCompliant: true},
		&models.ExtractedFields{ClaimValue: valPtr(5000)},
	)
	// Four skipped rules plus the triggered one.
	if len(decision.Reasoning) != 5 {
		t.Errorf("Expected 5 reasoning fragments, got %d: %v", len(decision.Reasoning), decision.Reasoning)
	}
}

func TestRoute_FallbackWithoutDefaultRule(t *testing.T) {
	rules := cfg.DefaultRules()
	rules.RoutingRules = []cfg.RoutingRule{
		{ID: "auto-deny", Predicate: cfg.PredicateNonCompliant, Workflow: models.WorkflowAutoDeny, Reason: "non-compliant"},
	}
	snap := snapshot(t, rules)

	decision := route(t, snap,
		&models.ClassificationResult{ClaimType: "auto", Confidence: 0.85},
		&models.ComplianceFinding{IsCompliant: true},
		&models.ExtractedFields{},
	)
	if decision.Workflow != models.WorkflowGeneralQueue {
		t.Errorf("Expected default workflow, got %s", decision.Workflow)
	}
	if decision.TriggeringRuleID != "default" {
		t.Errorf("Expected rule id 'default', got %s", decision.TriggeringRuleID)
	}
}

func TestRoute_NoMatchNoDefaultIsError(t *testing.T) {
	rules := cfg.DefaultRules()
	rules.RoutingRules = []cfg.RoutingRule{
		{ID: "auto-deny", Predicate: cfg.PredicateNonCompliant, Workflow: models.WorkflowAutoDeny, Reason: "non-compliant"},
	}
	rules.DefaultWorkflow = ""
	snap := snapshot(t, rules)

	_, err := NewRouter(logger.NewTestLogger()).Route(
		&models.ClassificationResult{ClaimType: "auto", Confidence: 0.85},
		&models.ComplianceFinding{IsCompliant: true},
		&models.ExtractedFields{},
		snap,
	)
	if err == nil {
		t.Fatal("Expected error when nothing matches and no default exists")
	}
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Errorf("Expected ConfigError, got %T", err)
	}
}
