package extract

import (
	"regexp"
)

// Semantic field names produced by entity extraction.
const (
	FieldPolicyNumber = "POLICY_NO"
	FieldClaimValue   = "CLAIM_VALUE"
	FieldClaimantName = "CLAIMANT"
	FieldIncidentDate = "INCIDENT_DATE"
	FieldDescription  = "DESCRIPTION"
)

var (
	policyRe = regexp.MustCompile(`(?i)policy\s*(?:no|number)[.:\s]+([A-Z0-9][A-Z0-9-]*)`)
	valueRe  = regexp.MustCompile(`(?i)claim\s*(?:amount|value)[:\s]+\$?\s*(\d+(?:,\d{3})*(?:\.\d+)?)`)
	dateRe   = regexp.MustCompile(`(?i)(?:incident\s*date|date\s*of\s*(?:incident|loss))[:\s]+([0-9]{1,4}[-/.][0-9]{1,2}[-/.][0-9]{1,4})`)
	nameRe   = regexp.MustCompile(`(?i)(?:claimant|insured)(?:\s*name)?[:\s]+([A-Za-z][A-Za-z .'-]*)`)
	descRe   = regexp.MustCompile(`(?i)description[:\s]+([^\n]+)`)
)

// RegexExtractor is the default entity-extraction collaborator. It pulls
// the fixed set of claim form fields out of raw OCR text with patterns
// matching the common "Label: value" form layout.
type RegexExtractor struct{}

func NewRegexExtractor() *RegexExtractor {
	return &RegexExtractor{}
}

// Extract returns a mapping of field name to raw string value. Fields that
// do not appear in the text are left out of the map entirely.
func (e *RegexExtractor) Extract(text string) map[string]string {
	fields := make(map[string]string)

	if m := policyRe.FindStringSubmatch(text); m != nil {
		fields[FieldPolicyNumber] = m[1]
	}
	if m := valueRe.FindStringSubmatch(text); m != nil {
		fields[FieldClaimValue] = m[1]
	}
	if m := dateRe.FindStringSubmatch(text); m != nil {
		fields[FieldIncidentDate] = m[1]
	}
	if m := nameRe.FindStringSubmatch(text); m != nil {
		fields[FieldClaimantName] = m[1]
	}
	if m := descRe.FindStringSubmatch(text); m != nil {
		fields[FieldDescription] = m[1]
	}

	return fields
}
