// Package compliance evaluates extracted claim fields against the policy
// rule set, producing coverage and violation findings.
package compliance

import (
	"fmt"
	"regexp"
	"strings"

	cfg "github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/config"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/internal/models"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/pkg/logger"
)

// ConfigError reports a structurally invalid policy rule set. Missing
// policies for a claim type are a reportable finding, not this error.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid policy rule set: " + e.Reason
}

// Advisory only: the finding notes a malformed policy number but the
// compliance outcome stays term-driven.
var policyNumberRe = regexp.MustCompile(`^PN-[A-Z]+-\d+$`)

// Checker matches policy terms against a claim's free-text description and
// structured fields.
type Checker struct {
	logger logger.Logger
}

func NewChecker(log logger.Logger) *Checker {
	return &Checker{logger: log}
}

// Check selects the policy rule for the claim's type and matches covered
// and excluded terms case-insensitively as substrings. A claim is
// compliant iff at least one covered term matches and no excluded term
// does; exclusion always overrides coverage.
func (c *Checker) Check(
	fields *models.ExtractedFields,
	classification *models.ClassificationResult,
	snap *cfg.Snapshot,
) (*models.ComplianceFinding, error) {
	for _, rule := range snap.Rules.PolicyRules {
		if len(rule.CoveredTerms)+len(rule.ExcludedTerms) == 0 {
			return nil, &ConfigError{Reason: fmt.Sprintf("policy rule for %q has no terms", rule.ClaimType)}
		}
	}

	rule := snap.PolicyFor(classification.ClaimType)
	if rule == nil {
		c.logger.Warn("No policy rule for claim type",
			logger.String("claimType", classification.ClaimType),
		)
		return &models.ComplianceFinding{
			IsCompliant: false,
			Notes:       fmt.Sprintf("no policy rule configured for claim type %q", classification.ClaimType),
		}, nil
	}

	haystack := strings.ToLower(matchText(fields))

	finding := &models.ComplianceFinding{}
	for _, term := range rule.CoveredTerms {
		if strings.Contains(haystack, strings.ToLower(term)) {
			finding.MatchedCoverage = append(finding.MatchedCoverage, term)
		}
	}
	for _, term := range rule.ExcludedTerms {
		if strings.Contains(haystack, strings.ToLower(term)) {
			finding.Violations = append(finding.Violations, term)
		}
	}

	finding.IsCompliant = len(finding.MatchedCoverage) > 0 && len(finding.Violations) == 0

	switch {
	case len(finding.Violations) > 0:
		finding.Notes = fmt.Sprintf("claim matches exclusion clause: %q", finding.Violations[0])
	case len(finding.MatchedCoverage) == 0:
		finding.Notes = fmt.Sprintf("no covered term of policy %q matches the claim", rule.ClaimType)
	default:
		finding.Notes = "compliant"
	}

	if fields.PolicyNumber != nil && !policyNumberRe.MatchString(*fields.PolicyNumber) {
		finding.Notes += fmt.Sprintf("; policy number %q does not match the expected format", *fields.PolicyNumber)
	}

	c.logger.Info("Compliance checked",
		logger.String("claimType", classification.ClaimType),
		logger.Bool("isCompliant", finding.IsCompliant),
		logger.Int("coverageMatches", len(finding.MatchedCoverage)),
		logger.Int("violations", len(finding.Violations)),
	)

	return finding, nil
}

// matchText joins the description (or raw text) with the structured fields
// so term matching sees everything extraction produced.
func matchText(fields *models.ExtractedFields) string {
	parts := []string{fields.DescriptionOrRaw()}
	if fields.ClaimantName != nil {
		parts = append(parts, *fields.ClaimantName)
	}
	if fields.IncidentDate != nil {
		parts = append(parts, *fields.IncidentDate)
	}
	return strings.Join(parts, "\n")
}
