package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/SHADOW-0602/Smart-Claims-Processing-Platform-HiDevs/internal/models"
)

// Routing predicates understood by the workflow router. The rule list is
// ordered configuration; the predicate vocabulary is fixed.
const (
	PredicateNonCompliant  = "non_compliant"
	PredicateLowConfidence = "low_confidence"
	PredicateHighValue     = "high_value"
	PredicateHighPriority  = "high_priority"
	PredicateSTPEligible   = "stp_eligible"
	PredicateDefault       = "default"
)

var knownPredicates = map[string]bool{
	PredicateNonCompliant:  true,
	PredicateLowConfidence: true,
	PredicateHighValue:     true,
	PredicateHighPriority:  true,
	PredicateSTPEligible:   true,
	PredicateDefault:       true,
}

// PolicyRule holds the covered and excluded terms for one claim type.
type PolicyRule struct {
	ClaimType     string   `yaml:"claim_type" json:"claimType"`
	CoveredTerms  []string `yaml:"covered_terms" json:"coveredTerms"`
	ExcludedTerms []string `yaml:"excluded_terms" json:"excludedTerms"`
}

// RoutingRule maps a threshold predicate to a target workflow. Rules are
// evaluated in list order; the first match wins.
type RoutingRule struct {
	ID        string `yaml:"id" json:"id"`
	Predicate string `yaml:"predicate" json:"predicate"`
	Workflow  string `yaml:"workflow" json:"workflow"`
	Reason    string `yaml:"reason" json:"reason"`
}

// TrainingExample is one labeled description used to fit the classifier
// model at startup.
type TrainingExample struct {
	Description string `yaml:"description" json:"description"`
	ClaimType   string `yaml:"claim_type" json:"claimType"`
}

// PriorityBand raises the claim priority when the claim value strictly
// exceeds the threshold.
type PriorityBand struct {
	Threshold float64         `yaml:"threshold" json:"threshold"`
	Priority  models.Priority `yaml:"priority" json:"priority"`
}

// Rules is the full hot-reloadable rule configuration.
type Rules struct {
	PolicyRules  []PolicyRule  `yaml:"policy_rules"`
	RoutingRules []RoutingRule `yaml:"routing_rules"`

	DefaultWorkflow     string  `yaml:"default_workflow"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	HighValueThreshold  float64 `yaml:"high_value_threshold"`
	STPThreshold        float64 `yaml:"stp_threshold"`

	ClassOrder        []string          `yaml:"class_order"`
	TrainingData      []TrainingExample `yaml:"training_data"`
	HighPriorityTerms []string          `yaml:"high_priority_terms"`
	PriorityBands     []PriorityBand    `yaml:"priority_bands"`

	MinQuality  float64 `yaml:"min_quality"`
	MinWidth    int     `yaml:"min_width"`
	MinHeight   int     `yaml:"min_height"`
	MaxFileSize int64   `yaml:"max_file_size"`
}

// Snapshot is a validated, immutable view of the rule configuration. An
// in-flight pipeline run keeps the snapshot it started with; reload builds
// a new snapshot and swaps the store pointer.
type Snapshot struct {
	Rules    Rules
	LoadedAt time.Time
}

// PolicyFor returns the policy rule for a claim type, nil when none exists.
func (s *Snapshot) PolicyFor(claimType string) *PolicyRule {
	for i := range s.Rules.PolicyRules {
		if strings.EqualFold(s.Rules.PolicyRules[i].ClaimType, claimType) {
			return &s.Rules.PolicyRules[i]
		}
	}
	return nil
}

// NewSnapshot validates the rule set and freezes it into a snapshot.
func NewSnapshot(r *Rules) (*Snapshot, error) {
	if err := validateRules(r); err != nil {
		return nil, err
	}
	return &Snapshot{Rules: *r, LoadedAt: time.Now()}, nil
}

// LoadRules reads and validates a YAML rule file.
func LoadRules(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	rules := DefaultRules()
	if err := yaml.Unmarshal(data, rules); err != nil {
		return nil, fmt.Errorf("parse rules file %s: %w", path, err)
	}

	snap, err := NewSnapshot(rules)
	if err != nil {
		return nil, fmt.Errorf("invalid rules file %s: %w", path, err)
	}
	return snap, nil
}

func validateRules(r *Rules) error {
	seen := make(map[string]bool, len(r.PolicyRules))
	for _, pr := range r.PolicyRules {
		if pr.ClaimType == "" {
			return fmt.Errorf("policy rule with empty claim type")
		}
		if seen[strings.ToLower(pr.ClaimType)] {
			return fmt.Errorf("duplicate policy rule for claim type %q", pr.ClaimType)
		}
		seen[strings.ToLower(pr.ClaimType)] = true
		if len(pr.CoveredTerms)+len(pr.ExcludedTerms) == 0 {
			return fmt.Errorf("policy rule for %q has no terms", pr.ClaimType)
		}
	}

	ids := make(map[string]bool, len(r.RoutingRules))
	for _, rr := range r.RoutingRules {
		if rr.ID == "" {
			return fmt.Errorf("routing rule with empty id")
		}
		if ids[rr.ID] {
			return fmt.Errorf("duplicate routing rule id %q", rr.ID)
		}
		ids[rr.ID] = true
		if !knownPredicates[rr.Predicate] {
			return fmt.Errorf("routing rule %q has unknown predicate %q", rr.ID, rr.Predicate)
		}
		if rr.Workflow == "" {
			return fmt.Errorf("routing rule %q has no workflow", rr.ID)
		}
	}

	if r.ConfidenceThreshold < 0 || r.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence_threshold %v out of range [0,1]", r.ConfidenceThreshold)
	}
	if r.STPThreshold < 0 || r.STPThreshold > 1 {
		return fmt.Errorf("stp_threshold %v out of range [0,1]", r.STPThreshold)
	}
	if r.MinQuality < 0 || r.MinQuality > 1 {
		return fmt.Errorf("min_quality %v out of range [0,1]", r.MinQuality)
	}

	if len(r.TrainingData) > 0 && len(r.TrainingData) < 2 {
		return fmt.Errorf("training_data needs at least 2 samples, got %d", len(r.TrainingData))
	}
	for i, ex := range r.TrainingData {
		if ex.Description == "" || ex.ClaimType == "" {
			return fmt.Errorf("training_data[%d] is missing description or claim_type", i)
		}
	}

	return nil
}

// DefaultRules returns the built-in rule configuration. A rules file
// overrides any subset of it.
func DefaultRules() *Rules {
	return &Rules{
		PolicyRules: []PolicyRule{
			{
				ClaimType:     "auto",
				CoveredTerms:  []string{"collision", "accident", "theft", "vandalism", "windshield"},
				ExcludedTerms: []string{"racing", "intentional damage", "commercial use"},
			},
			{
				ClaimType:     "property",
				CoveredTerms:  []string{"fire", "storm", "burglary", "water damage", "hail"},
				ExcludedTerms: []string{"flood", "earthquake", "wear and tear"},
			},
			{
				ClaimType:     "health",
				CoveredTerms:  []string{"surgery", "hospital", "emergency", "injury", "fracture"},
				ExcludedTerms: []string{"cosmetic", "pre-existing condition"},
			},
			{
				// Catch-all for the fallback claim type, so a claim that
				// could not be classified reaches manual review on low
				// confidence instead of being auto-denied for a missing
				// policy.
				ClaimType:    "other",
				CoveredTerms: []string{"claim", "damage", "loss", "liability", "belongings", "luggage"},
			},
		},
		RoutingRules: []RoutingRule{
			{ID: "auto-deny", Predicate: PredicateNonCompliant, Workflow: models.WorkflowAutoDeny, Reason: "claim is not compliant with the policy"},
			{ID: "manual-review", Predicate: PredicateLowConfidence, Workflow: models.WorkflowManualReview, Reason: "classification confidence below threshold"},
			{ID: "senior-adjuster", Predicate: PredicateHighValue, Workflow: models.WorkflowSeniorAdjuster, Reason: "claim value above high value threshold"},
			{ID: "straight-through", Predicate: PredicateSTPEligible, Workflow: models.WorkflowStraightThru, Reason: "high confidence compliant claim"},
			{ID: "general-queue", Predicate: PredicateDefault, Workflow: models.WorkflowGeneralQueue, Reason: "standard claim"},
		},
		DefaultWorkflow:     models.WorkflowGeneralQueue,
		ConfidenceThreshold: 0.75,
		HighValueThreshold:  50000,
		STPThreshold:        0.95,
		ClassOrder:          []string{"auto", "property", "health", "other"},
		TrainingData: []TrainingExample{
			{Description: "car accident collision on the highway rear ended vehicle", ClaimType: "auto"},
			{Description: "vehicle theft stolen car from parking lot", ClaimType: "auto"},
			{Description: "windshield cracked by road debris while driving", ClaimType: "auto"},
			{Description: "house fire kitchen damage smoke", ClaimType: "property"},
			{Description: "storm damaged roof shingles and gutters", ClaimType: "property"},
			{Description: "burglary broke window stole electronics from home", ClaimType: "property"},
			{Description: "emergency surgery after fall hospital stay", ClaimType: "health"},
			{Description: "broken arm fracture treatment and physiotherapy", ClaimType: "health"},
			{Description: "hospital admission for severe injury", ClaimType: "health"},
			{Description: "lost luggage during trip claim for belongings", ClaimType: "other"},
			{Description: "general liability claim for damages", ClaimType: "other"},
		},
		HighPriorityTerms: []string{"major", "fire", "totaled", "emergency", "collision"},
		PriorityBands: []PriorityBand{
			{Threshold: 1000, Priority: models.PriorityMedium},
			{Threshold: 100000, Priority: models.PriorityHigh},
		},
		MinQuality:  0.30,
		MinWidth:    100,
		MinHeight:   100,
		MaxFileSize: 5 * 1024 * 1024, // 5MB
	}
}
