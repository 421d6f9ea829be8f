package compliance

import (
	"errors"
	"strings"
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

func strPtr(s string) *string { return &s }

func TestCheck_CoveredTermMatches(t *testing.T) {
	checker := NewChecker(logger.NewTestLogger())
	snap := snapshot(t, cfg.DefaultRules())

	finding, err := checker.Check(
		&models.ExtractedFields{RawText: "Rear-end COLLISION at the intersection"},
		&models.ClassificationResult{ClaimType: "auto"},
		snap,
	)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !finding.IsCompliant {
		t.Errorf("Expected compliant finding, got notes: %s", finding.Notes)
	}
	if len(finding.MatchedCoverage) != 1 || finding.MatchedCoverage[0] != "collision" {
		t.Errorf("Expected matched coverage [collision], got %v", finding.MatchedCoverage)
	}
}

func TestCheck_ExclusionOverridesCoverage(t *testing.T) {
	checker := NewChecker(logger.NewTestLogger())
	snap := snapshot(t, cfg.DefaultRules())

	finding, err := checker.Check(
		&models.ExtractedFields{RawText: "collision during street racing event"},
		&models.ClassificationResult{ClaimType: "auto"},
		snap,
	)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if finding.IsCompliant {
		t.Error("Expected exclusion to override coverage")
	}
	if len(finding.MatchedCoverage) == 0 {
		t.Error("Expected coverage match to still be recorded")
	}
	if len(finding.Violations) != 1 || finding.Violations[0] != "racing" {
		t.Errorf("Expected violations [racing], got %v", finding.Violations)
	}
	if !strings.Contains(finding.Notes, "racing") {
		t.Errorf("Expected notes to name the exclusion, got %q", finding.Notes)
	}
}

func TestCheck_NoCoverageMatch(t *testing.T) {
	checker := NewChecker(logger.NewTestLogger())
	snap := snapshot(t, cfg.DefaultRules())

	finding, err := checker.Check(
		&models.ExtractedFields{RawText: "something entirely unrelated happened"},
		&models.ClassificationResult{ClaimType: "auto"},
		snap,
	)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if finding.IsCompliant {
		t.Error("Expected non-compliant finding when no covered term matches")
	}
	if len(finding.Violations) != 0 {
		t.Errorf("Expected no violations, got %v", finding.Violations)
	}
}

func TestCheck_MissingPolicyIsFindingNotError(t *testing.T) {
	checker := NewChecker(logger.NewTestLogger())
	snap := snapshot(t, cfg.DefaultRules())

	finding, err := checker.Check(
		&models.ExtractedFields{RawText: "lost luggage on a trip"},
		&models.ClassificationResult{ClaimType: "travel"},
		snap,
	)
	if err != nil {
		t.Fatalf("Expected no error for missing policy, got %v", err)
	}
	if finding.IsCompliant {
		t.Error("Expected non-compliant finding for unconfigured claim type")
	}
	if !strings.Contains(finding.Notes, "travel") {
		t.Errorf("Expected notes to name the claim type, got %q", finding.Notes)
	}
}

func TestCheck_EmptyTermRuleIsConfigError(t *testing.T) {
	checker := NewChecker(logger.NewTestLogger())
	// Built directly so snapshot validation cannot reject it first.
	snap := &cfg.Snapshot{Rules: cfg.Rules{
		PolicyRules: []cfg.PolicyRule{{ClaimType: "auto"}},
	}}

	_, err := checker.Check(
		&models.ExtractedFields{RawText: "collision"},
		&models.ClassificationResult{ClaimType: "auto"},
		snap,
	)
	if err == nil {
		t.Fatal("Expected config error for rule with no terms")
	}
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Errorf("Expected ConfigError, got %T", err)
	}
}

func TestCheck_CaseInsensitiveMatching(t *testing.T) {
	checker := NewChecker(logger.NewTestLogger())
	snap := snapshot(t, cfg.DefaultRules())

	finding, err := checker.Check(
		&models.ExtractedFields{RawText: "THEFT of the vehicle overnight"},
		&models.ClassificationResult{ClaimType: "AUTO"},
		snap,
	)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !finding.IsCompliant {
		t.Errorf("Expected case-insensitive match, got notes: %s", finding.Notes)
	}
}

func TestCheck_MalformedPolicyNumberIsAdvisory(t *testing.T) {
	checker := NewChecker(logger.NewTestLogger())
	snap := snapshot(t, cfg.DefaultRules())

	finding, err := checker.Check(
		&models.ExtractedFields{
			RawText:      "collision on the highway",
			PolicyNumber: strPtr("12345"),
		},
		&models.ClassificationResult{ClaimType: "auto"},
		snap,
	)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !finding.IsCompliant {
		t.Error("Expected malformed policy number to stay advisory")
	}
	if !strings.Contains(finding.Notes, "12345") {
		t.Errorf("Expected notes to mention the policy number, got %q", finding.Notes)
	}

	finding, err = checker.Check(
		&models.ExtractedFields{
			RawText:      "collision on the highway",
			PolicyNumber: strPtr("PN-AUTO-12345"),
		},
		&models.ClassificationResult{ClaimType: "auto"},
		snap,
	)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if strings.Contains(finding.Notes, "expected format") {
		t.Errorf("Expected no advisory for well-formed policy number, got %q", finding.Notes)
	}
}

func TestCheck_DescriptionPreferredOverRawText(t *testing.T) {
	checker := NewChecker(logger.NewTestLogger())
	snap := snapshot(t, cfg.DefaultRules())

	// The raw text mentions an exclusion the description does not; only
	// the description should be matched once it is present.
	finding, err := checker.Check(
		&models.ExtractedFields{
			RawText:     "racing stripes quote, collision repair",
			Description: strPtr("collision with a parked car"),
		},
		&models.ClassificationResult{ClaimType: "auto"},
		snap,
	)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !finding.IsCompliant {
		t.Errorf("Expected compliant finding from description, got notes: %s", finding.Notes)
	}
}
