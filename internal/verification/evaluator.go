package verification

import "strings"

// Issue strings surfaced to the reviewer UI. The wording is part of the
// contract with the frontend; do not edit casually.
const (
	IssueNoNameMatch      = "No matching names found in the document"
	IssueLowOCRConfidence = "Low OCR confidence - document may be unclear or corrupted"
	IssueMissingElements  = "Missing expected document elements (signature, seal, etc.)"
)

// structuralMarkers is the fixed vocabulary whose presence suggests a
// genuine institutional artifact rather than arbitrary text.
var structuralMarkers = []string{"signature", "seal", "date", "university", "college", "institution"}

// EvaluatorConfig exposes the decision policy as named, tunable values.
// The defaults are load-bearing: they shape the gray zone that routes
// borderline documents to manual review instead of auto accept/reject.
type EvaluatorConfig struct {
	// ValidityThreshold: final confidence must exceed this for a valid
	// verdict. Also the cutoff for the low-OCR-confidence diagnostic.
	ValidityThreshold float64
	// NoMatchPenalty is subtracted when no candidate name matched.
	NoMatchPenalty float64
	// MissingElementsPenalty is subtracted when too few structural markers
	// appear in the text.
	MissingElementsPenalty float64
	// MinStructuralMarkers is the number of distinct markers a genuine
	// document is expected to contain.
	MinStructuralMarkers int
}

func DefaultEvaluatorConfig() EvaluatorConfig {
	return EvaluatorConfig{
		ValidityThreshold:      0.6,
		NoMatchPenalty:         0.3,
		MissingElementsPenalty: 0.2,
		MinStructuralMarkers:   2,
	}
}

// Evaluator applies the rule-based authenticity heuristic. Pure and total:
// it never fails, ambiguous evidence becomes issues on the verdict.
type Evaluator struct {
	cfg EvaluatorConfig
}

func NewEvaluator(cfg EvaluatorConfig) *Evaluator {
	return &Evaluator{cfg: cfg}
}

// Evaluate turns an extraction result into a final verdict. Rules run in a
// pinned order; the name penalty lands before the structural one, which
// matters only when stacked penalties hit the [0,1] clamp.
func (e *Evaluator) Evaluate(result ExtractionResult) AuthenticityVerdict {
	verdict := AuthenticityVerdict{
		Issues:     []string{},
		Confidence: result.Confidence,
	}

	anyMatched := false
	for _, m := range result.NameMatches {
		if m.Matched {
			anyMatched = true
			break
		}
	}

	if !anyMatched {
		verdict.Issues = append(verdict.Issues, IssueNoNameMatch)
		verdict.Confidence -= e.cfg.NoMatchPenalty
	}

	// Diagnostic only: the low base confidence is already in the value.
	if result.Confidence < e.cfg.ValidityThreshold {
		verdict.Issues = append(verdict.Issues, IssueLowOCRConfidence)
	}

	if CountStructuralMarkers(result.ExtractedText) < e.cfg.MinStructuralMarkers {
		verdict.Issues = append(verdict.Issues, IssueMissingElements)
		verdict.Confidence -= e.cfg.MissingElementsPenalty
	}

	verdict.Confidence = clamp01(verdict.Confidence)

	// Validity needs both a name hit and confidence above the threshold.
	// High confidence alone never validates a document nobody is named on.
	verdict.IsValid = verdict.Confidence > e.cfg.ValidityThreshold && anyMatched
	return verdict
}

// CountStructuralMarkers reports how many distinct expected markers appear
// in the text (case-insensitive).
func CountStructuralMarkers(text string) int {
	lower := strings.ToLower(text)
	count := 0
	for _, marker := range structuralMarkers {
		if strings.Contains(lower, marker) {
			count++
		}
	}
	return count
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
