package models

import (
	"time"
)

// ImageFormat claim image format
type ImageFormat string

const (
	FormatPNG  ImageFormat = "png"
	FormatJPEG ImageFormat = "jpeg"
)

// Priority of a claim, derived from claim type, value bands and keywords.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// rank orders priorities so callers can take the max of two derivations.
var priorityRank = map[Priority]int{
	PriorityLow:    0,
	PriorityMedium: 1,
	PriorityHigh:   2,
}

// MaxPriority returns the higher of two priorities.
func MaxPriority(a, b Priority) Priority {
	if priorityRank[b] > priorityRank[a] {
		return b
	}
	return a
}

// Well-known workflow names. The routing rule set is configuration, so any
// string is a valid workflow; these are the defaults.
const (
	WorkflowAutoDeny       = "AutoDeny"
	WorkflowManualReview   = "ManualReview"
	WorkflowSeniorAdjuster = "SeniorAdjuster"
	WorkflowStraightThru   = "StraightThrough"
	WorkflowGeneralQueue   = "GeneralClaimsQueue"
)

// ClaimDocument is one submitted claim image. It is owned by the pipeline
// for the duration of a single run and never persisted past it.
type ClaimDocument struct {
	ID         string      `json:"id"`
	Image      []byte      `json:"-"`
	Format     ImageFormat `json:"format"`
	Size       int64       `json:"size"`
	SourceID   string      `json:"sourceId,omitempty"`
	ReceivedAt time.Time   `json:"receivedAt"`
}

// ExtractedFields is the normalized output of the extraction adapter.
// Pointer fields distinguish "absent" from "present but empty".
type ExtractedFields struct {
	PolicyNumber *string  `json:"policyNumber,omitempty"`
	ClaimValue   *float64 `json:"claimValue,omitempty"`
	ClaimantName *string  `json:"claimantName,omitempty"`
	IncidentDate *string  `json:"incidentDate,omitempty"`
	Description  *string  `json:"description,omitempty"`
	RawText      string   `json:"rawText"`
	Quality      float64  `json:"quality"`
}

// ClaimValueOr returns the extracted claim value or def when absent.
func (f *ExtractedFields) ClaimValueOr(def float64) float64 {
	if f == nil || f.ClaimValue == nil {
		return def
	}
	return *f.ClaimValue
}

// DescriptionOrRaw returns the free-text description, falling back to the
// raw OCR text when no description field was extracted.
func (f *ExtractedFields) DescriptionOrRaw() string {
	if f == nil {
		return ""
	}
	if f.Description != nil {
		return *f.Description
	}
	return f.RawText
}

// ClassificationResult assigns a claim type with a confidence score.
// A low confidence is a valid result, consumed downstream as a routing
// signal, never an error.
type ClassificationResult struct {
	ClaimType  string   `json:"claimType"`
	Confidence float64  `json:"confidence"`
	Priority   Priority `json:"priority"`
}

// ComplianceFinding reports coverage and exclusion matches for one claim.
// An exclusion match always overrides coverage.
type ComplianceFinding struct {
	IsCompliant     bool     `json:"isCompliant"`
	MatchedCoverage []string `json:"matchedCoverage,omitempty"`
	Violations      []string `json:"violations,omitempty"`
	Notes           string   `json:"notes,omitempty"`
}

// RoutingDecision is the terminal artifact of a pipeline run.
type RoutingDecision struct {
	Workflow         string   `json:"workflow"`
	Reasoning        []string `json:"reasoning"`
	TriggeringRuleID string   `json:"triggeringRuleId"`
}

// Stage names the pipeline stages in execution order.
type Stage string

const (
	StageExtracting  Stage = "extracting"
	StageClassifying Stage = "classifying"
	StageCompliance  Stage = "checking_compliance"
	StageRouting     Stage = "routing"
)

// StageOrder is the fixed execution order of the pipeline stages.
var StageOrder = []Stage{StageExtracting, StageClassifying, StageCompliance, StageRouting}

// StageStatus is the status of a single stage within a run.
type StageStatus string

const (
	StagePending   StageStatus = "pending"
	StageSucceeded StageStatus = "succeeded"
	StageFailed    StageStatus = "failed"
	StageSkipped   StageStatus = "skipped"
)

// RunState is the overall state machine of a pipeline run.
type RunState string

const (
	RunIngested           RunState = "ingested"
	RunExtracting         RunState = "extracting"
	RunClassifying        RunState = "classifying"
	RunCheckingCompliance RunState = "checking_compliance"
	RunRouting            RunState = "routing"
	RunCompleted          RunState = "completed"
	RunFailed             RunState = "failed"
)

// StageResult records the outcome and duration of one stage.
type StageResult struct {
	Status   StageStatus   `json:"status"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// PipelineRun aggregates one claim's results across all stages. It is owned
// by the orchestrator and returned to the caller as the audit trace.
type PipelineRun struct {
	ID             string                 `json:"id"`
	SourceID       string                 `json:"sourceId,omitempty"`
	State          RunState               `json:"state"`
	Stages         map[Stage]*StageResult `json:"stages"`
	Fields         *ExtractedFields       `json:"fields,omitempty"`
	Classification *ClassificationResult  `json:"classification,omitempty"`
	Compliance     *ComplianceFinding     `json:"compliance,omitempty"`
	Decision       *RoutingDecision       `json:"decision,omitempty"`
	StartedAt      time.Time              `json:"startedAt"`
	FinishedAt     time.Time              `json:"finishedAt,omitempty"`
}

// StageFor returns the stage result, creating a pending record on first use.
func (r *PipelineRun) StageFor(s Stage) *StageResult {
	if r.Stages == nil {
		r.Stages = make(map[Stage]*StageResult, len(StageOrder))
	}
	sr, ok := r.Stages[s]
	if !ok {
		sr = &StageResult{Status: StagePending}
		r.Stages[s] = sr
	}
	return sr
}
