package verification

import (
	"context"
	"fmt"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// Engine is the pluggable text-extraction boundary. Anything that can turn a
// document into plain text satisfies it: a vision API, local Tesseract, or a
// PDF text layer reader.
type Engine interface {
	Name() string
	ExtractText(ctx context.Context, content []byte) (string, error)
}

const (
	// MatchThreshold is the score a found name must clear to count as matched.
	MatchThreshold = 0.7
	// NeutralConfidence is reported when no candidate names were supplied.
	// A neutral prior, not a failure signal.
	NeutralConfidence = 0.5

	// Confidence bands. A name found in the text scores in [0.85, 1.0];
	// a name not found scores in [0.30, 0.70] because OCR noise or name
	// variants may still warrant partial trust.
	highBandFloor = 0.85
	lowBandFloor  = 0.30
	lowBandCeil   = 0.70

	// fuzzyFoundThreshold is the Jaro-Winkler similarity at which a candidate
	// counts as present even without an exact substring hit (OCR garbling).
	fuzzyFoundThreshold = 0.88
)

// Service runs text extraction and name matching for uploaded credentials.
// Stateless; safe for concurrent use.
type Service struct {
	engine Engine
	metric *metrics.JaroWinkler
}

func NewService(engine Engine) *Service {
	return &Service{engine: engine, metric: metrics.NewJaroWinkler()}
}

// Extract runs OCR on the document and scores every candidate name against
// the extracted text. Engine failures surface as ErrExtractionUnavailable
// with no partial result.
func (s *Service) Extract(ctx context.Context, content []byte, candidates []string, docType DocumentType) (ExtractionResult, error) {
	if len(content) == 0 {
		return ExtractionResult{}, fmt.Errorf("%w: empty document", ErrInvalidInput)
	}
	if _, ok := ParseDocumentType(string(docType)); !ok {
		return ExtractionResult{}, fmt.Errorf("%w: unknown document type %q", ErrInvalidInput, docType)
	}
	if s.engine == nil {
		return ExtractionResult{}, fmt.Errorf("%w: no extraction engine configured", ErrExtractionUnavailable)
	}

	text, err := s.engine.ExtractText(ctx, content)
	if err != nil {
		return ExtractionResult{}, fmt.Errorf("%w: %s: %v", ErrExtractionUnavailable, s.engine.Name(), err)
	}
	return s.Match(text, candidates), nil
}

// Match scores candidates against already-extracted text. Exactly one
// NameMatch is returned per candidate, in input order. Aggregate confidence
// is the mean of the per-candidate scores, or NeutralConfidence when no
// candidates were supplied.
func (s *Service) Match(text string, candidates []string) ExtractionResult {
	res := ExtractionResult{
		ExtractedText: text,
		NameMatches:   make([]NameMatch, 0, len(candidates)),
	}
	if len(candidates) == 0 {
		res.Confidence = NeutralConfidence
		return res
	}

	lower := strings.ToLower(text)
	lines := nonEmptyLines(lower)
	var sum float64
	for _, cand := range candidates {
		m := s.scoreCandidate(lower, lines, cand)
		res.NameMatches = append(res.NameMatches, m)
		sum += m.Confidence
	}
	res.Confidence = sum / float64(len(res.NameMatches))
	return res
}

// scoreCandidate derives a deterministic confidence from the best fuzzy
// similarity between the candidate and the text. No randomness: the band is
// picked by presence, the position inside the band by the similarity score.
func (s *Service) scoreCandidate(lowerText string, lines []string, cand string) NameMatch {
	m := NameMatch{ExtractedName: cand}
	needle := strings.ToLower(strings.TrimSpace(cand))
	if needle == "" {
		m.Confidence = lowBandFloor
		return m
	}

	var best float64
	words := len(strings.Fields(needle))
	for _, ln := range lines {
		if sim := strutil.Similarity(needle, ln, s.metric); sim > best {
			best = sim
		}
		for _, win := range wordWindows(ln, words) {
			if sim := strutil.Similarity(needle, win, s.metric); sim > best {
				best = sim
			}
		}
	}

	found := strings.Contains(lowerText, needle) || best >= fuzzyFoundThreshold
	if found {
		m.Confidence = highBandFloor + (1-highBandFloor)*best
	} else {
		m.Confidence = lowBandFloor + (lowBandCeil-lowBandFloor)*best
	}
	// Dual condition: presence alone is not enough near the band boundary.
	m.Matched = found && m.Confidence > MatchThreshold
	return m
}

func nonEmptyLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, ln := range raw {
		if ln = strings.TrimSpace(ln); ln != "" {
			lines = append(lines, ln)
		}
	}
	return lines
}

// wordWindows returns every n-word window of a line, so "Jane Doe" can be
// compared against the right slice of "Ms Jane Doe B.Sc".
func wordWindows(line string, n int) []string {
	fields := strings.Fields(line)
	if n <= 0 || len(fields) < n {
		return nil
	}
	wins := make([]string, 0, len(fields)-n+1)
	for i := 0; i+n <= len(fields); i++ {
		wins = append(wins, strings.Join(fields[i:i+n], " "))
	}
	return wins
}
