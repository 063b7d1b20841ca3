package verification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultEvaluator() *Evaluator {
	return NewEvaluator(DefaultEvaluatorConfig())
}

// Genuine-looking document: name present, three structural markers.
func TestEvaluate_CleanDocumentIsValidWithNoIssues(t *testing.T) {
	svc := NewService(nil)
	res := svc.Match(certificateText, []string{"Jane Doe"})

	verdict := defaultEvaluator().Evaluate(res)
	assert.True(t, verdict.IsValid)
	assert.Empty(t, verdict.Issues)
	assert.Greater(t, verdict.Confidence, 0.6)
}

func TestEvaluate_NoNameHitIsInvalid(t *testing.T) {
	svc := NewService(nil)
	res := svc.Match("quarterly inventory report for widget production", []string{"Jane Doe"})

	verdict := defaultEvaluator().Evaluate(res)
	assert.False(t, verdict.IsValid)
	assert.Contains(t, verdict.Issues, IssueNoNameMatch)
}

func TestEvaluate_MissingStructuralElements(t *testing.T) {
	// Name matched with a perfect score but the text carries zero markers:
	// 1.0 - 0.2 = 0.8 keeps the document valid, with the issue recorded.
	svc := NewService(nil)
	res := svc.Match("awarded to jane doe with honours", []string{"Jane Doe"})

	verdict := defaultEvaluator().Evaluate(res)
	require.Contains(t, verdict.Issues, IssueMissingElements)
	assert.True(t, verdict.IsValid)

	// Same penalty applied to a weaker base drops through the threshold.
	weak := ExtractionResult{
		ExtractedText: "awarded with honours",
		Confidence:    0.75,
		NameMatches:   []NameMatch{{ExtractedName: "Jane Doe", Confidence: 0.75, Matched: true}},
	}
	verdict = defaultEvaluator().Evaluate(weak)
	assert.Contains(t, verdict.Issues, IssueMissingElements)
	assert.InDelta(t, 0.55, verdict.Confidence, 1e-9)
	assert.False(t, verdict.IsValid)
}

func TestEvaluate_EmptyCandidates(t *testing.T) {
	svc := NewService(nil)
	res := svc.Match(certificateText, nil)
	require.Equal(t, NeutralConfidence, res.Confidence)

	verdict := defaultEvaluator().Evaluate(res)
	assert.False(t, verdict.IsValid)
	assert.Contains(t, verdict.Issues, IssueNoNameMatch)
	assert.Contains(t, verdict.Issues, IssueLowOCRConfidence)
}

// Validity requires BOTH a name hit and confidence above the threshold.
func TestEvaluate_ValidityQuadrants(t *testing.T) {
	markers := "signature and seal present" // two distinct markers
	cases := []struct {
		name      string
		base      float64
		matched   bool
		wantValid bool
	}{
		{"match and high confidence", 0.9, true, true},
		{"match but low confidence", 0.5, true, false},
		{"no match despite high confidence", 0.95, false, false},
		{"no match and low confidence", 0.4, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := ExtractionResult{
				ExtractedText: markers,
				Confidence:    tc.base,
				NameMatches: []NameMatch{
					{ExtractedName: "Jane Doe", Confidence: tc.base, Matched: tc.matched},
				},
			}
			verdict := defaultEvaluator().Evaluate(res)
			assert.Equal(t, tc.wantValid, verdict.IsValid)
		})
	}
}

func TestEvaluate_StackedPenaltiesClampToZero(t *testing.T) {
	res := ExtractionResult{
		ExtractedText: "no markers here",
		Confidence:    0.4,
		NameMatches:   []NameMatch{{ExtractedName: "Jane Doe", Confidence: 0.4}},
	}
	// 0.4 - 0.3 - 0.2 raw would be negative.
	verdict := defaultEvaluator().Evaluate(res)
	assert.Equal(t, 0.0, verdict.Confidence)
	assert.False(t, verdict.IsValid)
	assert.Len(t, verdict.Issues, 3)
}

func TestEvaluate_IssueOrderIsStable(t *testing.T) {
	res := ExtractionResult{
		ExtractedText: "nothing useful",
		Confidence:    0.4,
	}
	verdict := defaultEvaluator().Evaluate(res)
	require.Equal(t, []string{IssueNoNameMatch, IssueLowOCRConfidence, IssueMissingElements}, verdict.Issues)
}

func TestEvaluate_IsIdempotent(t *testing.T) {
	svc := NewService(nil)
	res := svc.Match(certificateText, []string{"Jane Doe", "Nobody Else"})

	eval := defaultEvaluator()
	first := eval.Evaluate(res)
	second := eval.Evaluate(res)
	assert.Equal(t, first, second)
}

func TestEvaluate_LowConfidenceIsDiagnosticOnly(t *testing.T) {
	// Base below the threshold with a matched name and markers present:
	// the issue is recorded but no extra penalty is applied.
	res := ExtractionResult{
		ExtractedText: "signature over the official seal",
		Confidence:    0.55,
		NameMatches:   []NameMatch{{ExtractedName: "Jane Doe", Confidence: 0.55, Matched: true}},
	}
	verdict := defaultEvaluator().Evaluate(res)
	assert.Contains(t, verdict.Issues, IssueLowOCRConfidence)
	assert.InDelta(t, 0.55, verdict.Confidence, 1e-9)
}

func TestCountStructuralMarkers(t *testing.T) {
	assert.Equal(t, 0, CountStructuralMarkers("grocery list"))
	assert.Equal(t, 2, CountStructuralMarkers("Signature over the SEAL"))
	assert.Equal(t, 6, CountStructuralMarkers("signature seal date university college institution"))
	// Repeats count once.
	assert.Equal(t, 1, CountStructuralMarkers("seal seal seal"))
}
