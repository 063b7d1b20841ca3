package verification

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	text string
	err  error
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) ExtractText(ctx context.Context, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return f.text, f.err
}

const certificateText = `State University of Sports Science
This is to certify that
Jane Doe
has completed the Bachelor of Physiotherapy programme.
Date: 12 June 2023
Signature of the Registrar
Seal of the University`

func TestExtract_ReturnsOneMatchPerCandidateInOrder(t *testing.T) {
	svc := NewService(&fakeEngine{text: certificateText})

	candidates := []string{"Jane Doe", "J. Doe", "Jane Smith"}
	res, err := svc.Extract(context.Background(), []byte("img"), candidates, DocTypeDegree)
	require.NoError(t, err)

	require.Len(t, res.NameMatches, len(candidates))
	for i, m := range res.NameMatches {
		assert.Equal(t, candidates[i], m.ExtractedName)
	}
}

func TestMatch_FoundNameScoresInHighBand(t *testing.T) {
	svc := NewService(nil)

	res := svc.Match(certificateText, []string{"Jane Doe"})
	require.Len(t, res.NameMatches, 1)

	m := res.NameMatches[0]
	assert.True(t, m.Matched)
	assert.GreaterOrEqual(t, m.Confidence, 0.85)
	assert.LessOrEqual(t, m.Confidence, 1.0)
}

func TestMatch_FuzzyHitSurvivesOCRGarbling(t *testing.T) {
	svc := NewService(nil)

	// Zero instead of the letter O, a classic OCR substitution.
	res := svc.Match("certificate awarded to JANE D0E for excellence", []string{"Jane Doe"})
	require.Len(t, res.NameMatches, 1)
	assert.True(t, res.NameMatches[0].Matched)
	assert.GreaterOrEqual(t, res.NameMatches[0].Confidence, 0.85)
}

func TestMatch_AbsentNameScoresInLowBand(t *testing.T) {
	svc := NewService(nil)

	res := svc.Match("quarterly inventory report for widget production", []string{"Jane Doe"})
	require.Len(t, res.NameMatches, 1)

	m := res.NameMatches[0]
	assert.False(t, m.Matched)
	assert.GreaterOrEqual(t, m.Confidence, 0.30)
	assert.Less(t, m.Confidence, 0.70)
}

func TestMatch_MatchedImpliesConfidenceAboveThreshold(t *testing.T) {
	svc := NewService(nil)

	texts := []string{
		certificateText,
		"JANE D0E",
		"completely unrelated text about plumbing",
		"",
	}
	candidates := []string{"Jane Doe", "John Q. Public", "X", ""}
	for _, text := range texts {
		res := svc.Match(text, candidates)
		for _, m := range res.NameMatches {
			if m.Matched {
				assert.Greater(t, m.Confidence, MatchThreshold, "text=%q name=%q", text, m.ExtractedName)
			}
			assert.GreaterOrEqual(t, m.Confidence, 0.0)
			assert.LessOrEqual(t, m.Confidence, 1.0)
		}
		assert.GreaterOrEqual(t, res.Confidence, 0.0)
		assert.LessOrEqual(t, res.Confidence, 1.0)
	}
}

func TestMatch_AggregateIsMeanOfCandidateScores(t *testing.T) {
	svc := NewService(nil)

	res := svc.Match(certificateText, []string{"Jane Doe", "Completely Different Person"})
	require.Len(t, res.NameMatches, 2)

	want := (res.NameMatches[0].Confidence + res.NameMatches[1].Confidence) / 2
	assert.InDelta(t, want, res.Confidence, 1e-9)
}

func TestMatch_EmptyCandidatesReportsNeutralConfidence(t *testing.T) {
	svc := NewService(nil)

	res := svc.Match(certificateText, nil)
	assert.Empty(t, res.NameMatches)
	assert.Equal(t, NeutralConfidence, res.Confidence)
}

func TestExtract_EngineFailureIsExtractionUnavailable(t *testing.T) {
	svc := NewService(&fakeEngine{err: errors.New("vision API timeout")})

	res, err := svc.Extract(context.Background(), []byte("img"), []string{"Jane Doe"}, DocTypeCertificate)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExtractionUnavailable)
	// No partial results on failure.
	assert.Empty(t, res.NameMatches)
	assert.Empty(t, res.ExtractedText)
}

func TestExtract_CancelledContextIsExtractionUnavailable(t *testing.T) {
	svc := NewService(&fakeEngine{text: certificateText})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Extract(ctx, []byte("img"), []string{"Jane Doe"}, DocTypeCertificate)
	assert.ErrorIs(t, err, ErrExtractionUnavailable)
}

func TestExtract_InputValidation(t *testing.T) {
	svc := NewService(&fakeEngine{text: certificateText})

	_, err := svc.Extract(context.Background(), nil, []string{"Jane Doe"}, DocTypeDegree)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Extract(context.Background(), []byte("img"), []string{"Jane Doe"}, DocumentType("diploma"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExtract_NoEngineConfigured(t *testing.T) {
	svc := NewService(nil)

	_, err := svc.Extract(context.Background(), []byte("img"), []string{"Jane Doe"}, DocTypeDegree)
	assert.ErrorIs(t, err, ErrExtractionUnavailable)
}

func TestParseDocumentType(t *testing.T) {
	for _, valid := range []string{"marksheet", "degree", "certificate"} {
		dt, ok := ParseDocumentType(valid)
		assert.True(t, ok)
		assert.Equal(t, DocumentType(valid), dt)
	}
	_, ok := ParseDocumentType("diploma")
	assert.False(t, ok)
}
