// Package router selects the target workflow for a triaged claim. Routing
// rules are an ordered list of (predicate, workflow, reason) entries
// evaluated by a single first-match-wins interpreter, so reordering rules
// is a configuration change, not a code change.
package router

import (
	"fmt"

	cfg "github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/config"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/internal/models"
	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/pkg/logger"
)

// ConfigError reports that no routing rule matched and no default workflow
// is configured. The router never silently returns an undefined workflow.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid routing configuration: " + e.Reason
}

type Router struct {
	logger logger.Logger
}

func NewRouter(log logger.Logger) *Router {
	return &Router{logger: log}
}

// Route evaluates the configured rules in order and returns the decision
// of the first rule whose predicate matches. Every evaluated rule appends
// a reasoning fragment, so the decision also explains why higher-priority
// rules did not fire.
func (r *Router) Route(
	classification *models.ClassificationResult,
	compliance *models.ComplianceFinding,
	fields *models.ExtractedFields,
	snap *cfg.Snapshot,
) (*models.RoutingDecision, error) {
	var reasoning []string

	for _, rule := range snap.Rules.RoutingRules {
		matched, detail := evaluate(rule.Predicate, classification, compliance, fields, snap)
		if !matched {
			reasoning = append(reasoning, fmt.Sprintf("rule %s not triggered: %s", rule.ID, detail))
			continue
		}

		reasoning = append(reasoning, fmt.Sprintf("rule %s triggered: %s (%s)", rule.ID, rule.Reason, detail))
		decision := &models.RoutingDecision{
			Workflow:         rule.Workflow,
			Reasoning:        reasoning,
			TriggeringRuleID: rule.ID,
		}

		r.logger.Info("Claim routed",
			logger.String("workflow", decision.Workflow),
			logger.String("ruleId", rule.ID),
		)
		return decision, nil
	}

	if snap.Rules.DefaultWorkflow == "" {
		return nil, &ConfigError{Reason: "no routing rule matched and no default workflow is configured"}
	}

	reasoning = append(reasoning, "no rule triggered, using default workflow")
	decision := &models.RoutingDecision{
		Workflow:         snap.Rules.DefaultWorkflow,
		Reasoning:        reasoning,
		TriggeringRuleID: "default",
	}

	r.logger.Info("Claim routed to default workflow",
		logger.String("workflow", decision.Workflow),
	)
	return decision, nil
}

// evaluate reports whether the predicate matches and a human-readable
// detail for the reasoning trail either way.
func evaluate(
	predicate string,
	classification *models.ClassificationResult,
	compliance *models.ComplianceFinding,
	fields *models.ExtractedFields,
	snap *cfg.Snapshot,
) (bool, string) {
	rules := &snap.Rules

	switch predicate {
	case cfg.PredicateNonCompliant:
		if !compliance.IsCompliant {
			return true, fmt.Sprintf("non-compliant: %s", compliance.Notes)
		}
		return false, "claim is compliant"

	case cfg.PredicateLowConfidence:
		if classification.Confidence < rules.ConfidenceThreshold {
			return true, fmt.Sprintf("low classification confidence %.2f, threshold %.2f",
				classification.Confidence, rules.ConfidenceThreshold)
		}
		return false, fmt.Sprintf("confidence %.2f meets threshold %.2f",
			classification.Confidence, rules.ConfidenceThreshold)

	case cfg.PredicateHighValue:
		if fields.ClaimValue == nil {
			return false, "claim value not extracted"
		}
		// Strictly greater than the threshold; a claim at exactly the
		// threshold does not trigger.
		if *fields.ClaimValue > rules.HighValueThreshold {
			return true, fmt.Sprintf("claim value %.2f above threshold %.2f",
				*fields.ClaimValue, rules.HighValueThreshold)
		}
		return false, fmt.Sprintf("claim value %.2f within threshold %.2f",
			*fields.ClaimValue, rules.HighValueThreshold)

	case cfg.PredicateHighPriority:
		if classification.Priority == models.PriorityHigh {
			return true, "claim priority is High"
		}
		return false, fmt.Sprintf("claim priority is %s", classification.Priority)

	case cfg.PredicateSTPEligible:
		if classification.Confidence >= rules.STPThreshold && compliance.IsCompliant {
			return true, fmt.Sprintf("compliant with confidence %.2f at or above %.2f",
				classification.Confidence, rules.STPThreshold)
		}
		return false, fmt.Sprintf("confidence %.2f below %.2f or not compliant",
			classification.Confidence, rules.STPThreshold)

	case cfg.PredicateDefault:
		return true, "default rule"

	default:
		// Snapshot validation rejects unknown predicates; an unmatched one
		// here is treated as never matching.
		return false, fmt.Sprintf("unknown predicate %q", predicate)
	}
}
