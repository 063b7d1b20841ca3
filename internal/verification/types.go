package verification

import "errors"

// DocumentType selects which extraction profile a credential upload uses.
type DocumentType string

const (
	DocTypeMarksheet   DocumentType = "marksheet"
	DocTypeDegree      DocumentType = "degree"
	DocTypeCertificate DocumentType = "certificate"
)

// ParseDocumentType maps the wire value to a DocumentType.
func ParseDocumentType(s string) (DocumentType, bool) {
	switch DocumentType(s) {
	case DocTypeMarksheet, DocTypeDegree, DocTypeCertificate:
		return DocumentType(s), true
	}
	return "", false
}

// NameMatch is the result of testing one candidate name against the
// extracted text. Matched is only ever true when the name was found in the
// text AND the score cleared the match threshold.
type NameMatch struct {
	ExtractedName string  `json:"extractedName"`
	Confidence    float64 `json:"confidence"`
	Matched       bool    `json:"matched"`
}

// ExtractionResult is produced once per verification call and consumed by
// the evaluator. NameMatches holds exactly one entry per input candidate,
// in input order.
type ExtractionResult struct {
	ExtractedText string      `json:"extractedText"`
	Confidence    float64     `json:"confidence"`
	NameMatches   []NameMatch `json:"nameMatches"`
}

// AuthenticityVerdict is the final outcome. Issues is reviewer-facing text;
// an empty list means no problems were found. Low confidence and missing
// name matches are normal outcomes here, never errors.
type AuthenticityVerdict struct {
	IsValid    bool     `json:"isValid"`
	Issues     []string `json:"issues"`
	Confidence float64  `json:"confidence"`
}

var (
	// ErrExtractionUnavailable means the OCR/text-extraction dependency could
	// not produce a result. Always retryable from the caller's point of view,
	// never degraded into a default verdict.
	ErrExtractionUnavailable = errors.New("verification: extraction unavailable")

	// ErrInvalidInput means the request was malformed (empty document,
	// unsupported document type). Upstream validation should catch this first.
	ErrInvalidInput = errors.New("verification: invalid input")
)
