package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/h2non/filetype"

	"github.com/meghan128/sportx-sub001/internal/cache"
	"github.com/meghan128/sportx-sub001/internal/db"
	"github.com/meghan128/sportx-sub001/internal/metrics"
	"github.com/meghan128/sportx-sub001/internal/models"
	"github.com/meghan128/sportx-sub001/internal/verification"
)

// maxUploadBytes is the registration workflow's document size ceiling.
const maxUploadBytes = 5 << 20

var allowedUploadTypes = map[string]bool{
	"pdf":  true,
	"jpg":  true,
	"png":  true,
	"webp": true,
}

// VerifyDocument: POST /api/v1/register/verify-document (protected)
// multipart/form-data with file field "document", form values "names"
// (primary legal name first) and "documentType".
func VerifyDocument(w http.ResponseWriter, r *http.Request) {
	// A little slack over the ceiling so oversized uploads get a clean
	// 400 instead of a connection reset.
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(maxUploadBytes + (1 << 20)); err != nil {
		writeJSONResp(w, http.StatusBadRequest, map[string]any{"status": "Bad_Request", "message": "failed to parse form or file too large"})
		return
	}

	file, header, err := formFileWithFallback(r, "document")
	if err != nil {
		writeJSONResp(w, http.StatusBadRequest, map[string]any{"status": "Bad_Request", "message": "missing file field 'document' (send multipart/form-data with field name 'document')"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil || len(content) == 0 {
		writeJSONResp(w, http.StatusBadRequest, map[string]any{"status": "Bad_Request", "message": "failed to read uploaded file"})
		return
	}
	if len(content) > maxUploadBytes {
		writeJSONResp(w, http.StatusBadRequest, map[string]any{"status": "Bad_Request", "message": "document exceeds the 5MB limit"})
		return
	}
	kind, _ := filetype.Match(content)
	if !allowedUploadTypes[kind.Extension] {
		writeJSONResp(w, http.StatusBadRequest, map[string]any{"status": "Bad_Request", "message": "unsupported document format (accepted: PDF, JPG, PNG, WEBP)"})
		return
	}

	docType, ok := verification.ParseDocumentType(r.FormValue("documentType"))
	if !ok {
		writeJSONResp(w, http.StatusBadRequest, map[string]any{"status": "Bad_Request", "message": "documentType must be one of marksheet, degree, certificate"})
		return
	}

	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var user models.Users
	if db.DB != nil {
		if err := db.DB.First(&user, userID).Error; err != nil {
			writeJSONResp(w, http.StatusNotFound, map[string]any{"status": "Not_Found", "message": "account not found"})
			return
		}
	}

	candidates := parseNames(r)
	if len(candidates) == 0 && user.ID != 0 {
		// Fall back to the account's legal and declared alternative names.
		candidates = append([]string{user.FullName()}, user.AlternativeNames...)
		candidates = cleanNames(candidates)
	}
	if len(candidates) == 0 {
		writeJSONResp(w, http.StatusBadRequest, map[string]any{"status": "Bad_Request", "message": "at least one candidate name is required"})
		return
	}

	sum := sha256.Sum256(content)
	sha := hex.EncodeToString(sum[:])
	cacheKey := verdictCacheKey(sha, docType, candidates)
	ctx := r.Context()

	// Same document re-uploaded with the same question (type and candidate
	// list) within the cache TTL: return the prior verdict without re-running
	// OCR, flagged as a duplicate. The account status comes from the account,
	// not the cached verdict.
	if cached, found := cache.GetVerdict(ctx, cacheKey); found {
		metrics.VerificationsTotal.WithLabelValues(metrics.OutcomeDuplicate).Inc()
		resp := verificationResponse(cached.Verdict, cached.NameMatches, sha, docType, header.Filename)
		resp["document"].(map[string]any)["duplicate"] = true
		switch {
		case db.DB != nil && user.ID != 0:
			resp["authStatus"] = user.AuthStatus
		case cached.Verdict.IsValid:
			resp["authStatus"] = models.AuthStatusApproved
		default:
			resp["authStatus"] = models.AuthStatusPending
		}
		writeJSONResp(w, http.StatusOK, resp)
		return
	}

	start := time.Now()
	result, err := verifier.Extract(ctx, content, candidates, docType)
	elapsed := time.Since(start)
	if err != nil {
		if errors.Is(err, verification.ErrInvalidInput) {
			writeJSONResp(w, http.StatusBadRequest, map[string]any{"status": "Bad_Request", "message": err.Error()})
			return
		}
		metrics.ExtractionDuration.Observe(elapsed.Seconds())
		log.Println("verify: extraction unavailable:", err)
		metrics.VerificationsTotal.WithLabelValues(metrics.OutcomeUnavailable).Inc()
		writeJSONResp(w, http.StatusServiceUnavailable, map[string]any{
			"status":  "Verification_Unavailable",
			"message": "Document verification is temporarily unavailable. Please try again.",
		})
		return
	}
	metrics.ExtractionDuration.Observe(elapsed.Seconds())

	verdict := evaluator.Evaluate(result)

	// Best-effort reviewer hints; never blocks the verdict.
	parsed, perr := ParseWithGemini(ctx, result.ExtractedText)
	if perr != nil {
		log.Println("verify: field parse skipped:", perr)
	}
	institution, instConf := matchAccreditedInstitution(parsed.InstitutionName)

	authStatus := models.AuthStatusPending
	if verdict.IsValid {
		authStatus = models.AuthStatusApproved
	}

	var recordID uint
	if db.DB != nil {
		record := models.VerificationRecord{
			UserID:            userID,
			DocumentType:      string(docType),
			DocumentSHA256:    sha,
			FileName:          header.Filename,
			IsValid:           verdict.IsValid,
			Confidence:        verdict.Confidence,
			Issues:            models.JSONStrings(verdict.Issues),
			NameMatches:       models.JSONNameMatches(result.NameMatches),
			ParsedHolderName:  parsed.HolderName,
			ParsedInstitution: parsed.InstitutionName,
			ParsedAwardDate:   parsed.AwardDate,
			InstitutionMatch:  instConf,
			Status:            authStatus,
		}
		if institution != nil {
			record.AccreditedInstitutionID = &institution.ID
		}
		if err := db.DB.Create(&record).Error; err != nil {
			writeJSONResp(w, http.StatusInternalServerError, map[string]any{"status": "Server_Error", "message": "failed to persist verification"})
			return
		}
		recordID = record.ID

		// A verdict never downgrades an already-approved account.
		if user.AuthStatus != models.AuthStatusApproved {
			if err := db.DB.Model(&models.Users{}).Where("id = ?", userID).Update("auth_status", authStatus).Error; err != nil {
				log.Println("verify: failed to update auth status:", err)
			}
		}
	}

	cache.SetVerdict(ctx, cacheKey, cache.CachedVerdict{Verdict: verdict, NameMatches: result.NameMatches})

	outcome := metrics.OutcomePending
	if verdict.IsValid {
		outcome = metrics.OutcomeApproved
	}
	metrics.VerificationsTotal.WithLabelValues(outcome).Inc()

	resp := verificationResponse(verdict, result.NameMatches, sha, docType, header.Filename)
	resp["authStatus"] = authStatus
	if recordID != 0 {
		resp["recordId"] = recordID
	}
	if perr == nil {
		resp["parsed"] = parsed
	}
	if institution != nil {
		resp["institution"] = map[string]any{
			"name":              institution.Name,
			"accreditationBody": institution.AccreditationBody,
			"matchConfidence":   round2(instConf),
		}
	}
	writeJSONResp(w, http.StatusOK, resp)
}

// verdictCacheKey scopes cached verdicts to the exact question asked: same
// document bytes, same document type, same candidate list in the same order.
// Two requests with different candidates must never share an entry, or one
// caller would see the other's name matches.
func verdictCacheKey(sha string, docType verification.DocumentType, candidates []string) string {
	h := sha256.New()
	io.WriteString(h, sha)
	io.WriteString(h, "\x00")
	io.WriteString(h, string(docType))
	for _, c := range candidates {
		io.WriteString(h, "\x00")
		io.WriteString(h, strings.ToLower(strings.TrimSpace(c)))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func verificationResponse(verdict verification.AuthenticityVerdict, matches []verification.NameMatch, sha string, docType verification.DocumentType, fileName string) map[string]any {
	return map[string]any{
		"verification": map[string]any{
			"isValid":    verdict.IsValid,
			"confidence": round2(verdict.Confidence),
			"issues":     verdict.Issues,
		},
		"extraction": map[string]any{
			"nameMatches": matches,
		},
		"document": map[string]any{
			"sha256":    sha,
			"type":      docType,
			"fileName":  fileName,
			"duplicate": false,
		},
	}
}

// formFileWithFallback tries the expected field name first, then probes
// common alternatives frontends use.
func formFileWithFallback(r *http.Request, field string) (multipart.File, *multipart.FileHeader, error) {
	file, header, err := r.FormFile(field)
	if err == nil {
		return file, header, nil
	}
	if r.MultipartForm == nil || r.MultipartForm.File == nil {
		return nil, nil, err
	}
	alts := []string{"file", "upload", "image", "certificate", "doc", "document[]", "files[]"}
	for _, a := range alts {
		if f, h, e := r.FormFile(a); e == nil {
			log.Println("verify: using alternative file field:", a)
			return f, h, nil
		}
	}
	for k := range r.MultipartForm.File {
		if f, h, e := r.FormFile(k); e == nil {
			log.Println("verify: falling back to first file field:", k)
			return f, h, nil
		}
	}
	return nil, nil, err
}

// parseNames accepts the "names" form value as a JSON array, repeated
// fields, or a comma-separated list. Primary name first.
func parseNames(r *http.Request) []string {
	values := r.Form["names"]
	if len(values) == 0 {
		return nil
	}
	if len(values) == 1 {
		raw := strings.TrimSpace(values[0])
		if strings.HasPrefix(raw, "[") {
			var arr []string
			if err := json.Unmarshal([]byte(raw), &arr); err == nil {
				return cleanNames(arr)
			}
		}
		if strings.Contains(raw, ",") {
			return cleanNames(strings.Split(raw, ","))
		}
	}
	return cleanNames(values)
}

func cleanNames(in []string) []string {
	out := make([]string, 0, len(in))
	for _, n := range in {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// matchAccreditedInstitution fuzzy-compares the parsed institution name
// against the accredited registry, the same Jaro-Winkler comparison used for
// candidate names. 0.85 is the acceptance threshold.
func matchAccreditedInstitution(name string) (*models.AccreditedInstitution, float64) {
	name = strings.TrimSpace(name)
	if name == "" || db.DB == nil {
		return nil, 0
	}
	var institutions []models.AccreditedInstitution
	if err := db.DB.Find(&institutions).Error; err != nil {
		log.Println("verify: institution lookup failed:", err)
		return nil, 0
	}
	best, bestConf := institutionBestMatch(name, institutions)
	if bestConf < 0.85 {
		return nil, bestConf
	}
	return best, bestConf
}

func institutionBestMatch(name string, institutions []models.AccreditedInstitution) (*models.AccreditedInstitution, float64) {
	var best *models.AccreditedInstitution
	var bestConf float64
	for i := range institutions {
		conf := institutionSimilarity(name, institutions[i].Name)
		if conf > bestConf {
			best = &institutions[i]
			bestConf = conf
		}
	}
	if best == nil {
		return nil, 0
	}
	return best, bestConf
}
