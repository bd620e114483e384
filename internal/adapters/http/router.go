package httpadapter

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/caseworks/evidence-intake/internal/core/domain"
	"github.com/caseworks/evidence-intake/internal/core/ports"
	"github.com/caseworks/evidence-intake/internal/export"
	"github.com/caseworks/evidence-intake/internal/observability/metrics"
)

const maxUploadBytes = 32 << 20

// Router is the thin HTTP boundary over the document core. It owns no
// business logic; everything delegates to the inbound ports.
type Router struct {
	intake   ports.DocumentIntake
	reader   ports.DocumentReader
	reviewer ports.DocumentReviewer
	reports  *export.Service
	metrics  *metrics.HTTPServerMetrics

	// callers presenting this token may see unmasked PII; empty disables
	piiAccessToken string
}

func NewRouter(
	intake ports.DocumentIntake,
	reader ports.DocumentReader,
	reviewer ports.DocumentReviewer,
	reports *export.Service,
	httpMetrics *metrics.HTTPServerMetrics,
	piiAccessToken string,
) *Router {
	return &Router{
		intake:         intake,
		reader:         reader,
		reviewer:       reviewer,
		reports:        reports,
		metrics:        httpMetrics,
		piiAccessToken: piiAccessToken,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.Handle("/v1/documents", rt.instrument("/v1/documents", http.HandlerFunc(rt.documents)))
	mux.Handle("/v1/documents/", rt.instrument("/v1/documents/{id}", http.HandlerFunc(rt.documentSubroute)))
	mux.Handle("/v1/reviews/bulk-approve", rt.instrument("/v1/reviews/bulk-approve", http.HandlerFunc(rt.bulkApprove)))
	mux.Handle("/v1/reviews/bulk-reject", rt.instrument("/v1/reviews/bulk-reject", http.HandlerFunc(rt.bulkReject)))
	mux.Handle("/v1/reports/review-queue", rt.instrument("/v1/reports/review-queue", http.HandlerFunc(rt.reviewQueueReport)))
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}
	return requestIDMiddleware(accessLogMiddleware(mux))
}

func (rt *Router) instrument(pattern string, next http.Handler) http.Handler {
	if rt.metrics == nil {
		return next
	}
	return rt.metrics.Middleware(pattern, next)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) documents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		rt.submitDocument(w, r)
	case http.MethodGet:
		rt.listDocuments(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (rt *Router) submitDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "multipart form required")
		return
	}
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read upload")
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	doc, err := rt.intake.Submit(r.Context(), ports.SubmitRequest{
		CaseID:   r.FormValue("case_id"),
		Content:  content,
		Filename: fileHeader.Filename,
		MimeType: mimeType,
		TypeHint: r.FormValue("document_type"),
		Priority: r.FormValue("priority"),
		Source:   domain.SourceUpload,
	})
	if err != nil {
		rt.observeSubmission("rejected")
		writeError(w, statusForError(err), err.Error())
		return
	}
	if doc.IsDuplicate {
		rt.observeSubmission("duplicate")
	} else {
		rt.observeSubmission("accepted")
	}
	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) observeSubmission(result string) {
	if rt.metrics != nil {
		rt.metrics.ObserveSubmission(result)
	}
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	var (
		docs []*domain.Document
		err  error
	)
	switch {
	case r.URL.Query().Get("status") != "":
		docs, err = rt.reader.ListByStatus(r.Context(), domain.DocumentStatus(r.URL.Query().Get("status")))
	case r.URL.Query().Get("category") != "":
		docs, err = rt.reader.ListByCategory(r.Context(), domain.Category(r.URL.Query().Get("category")))
	default:
		docs, err = rt.reader.List(r.Context())
	}
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// documentSubroute dispatches /v1/documents/{id} and its nested actions.
func (rt *Router) documentSubroute(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	parts := strings.SplitN(rest, "/", 2)
	id := parts[0]
	if id == "" {
		writeError(w, http.StatusNotFound, "document id required")
		return
	}

	action := ""
	if len(parts) == 2 {
		action = parts[1]
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		rt.getDocument(w, r, id)
	case action == "extractions" && r.Method == http.MethodGet:
		rt.getExtractions(w, r, id)
	case action == "corrections" && r.Method == http.MethodPost:
		rt.correctField(w, r, id)
	case action == "approve" && r.Method == http.MethodPost:
		rt.approve(w, r, id)
	case action == "reject" && r.Method == http.MethodPost:
		rt.reject(w, r, id)
	case action == "reprocess" && r.Method == http.MethodPost:
		rt.reprocess(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "unknown document operation")
	}
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request, id string) {
	doc, err := rt.reader.Get(r.Context(), id)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

type extractionView struct {
	ID                string                  `json:"id"`
	FieldName         string                  `json:"field_name"`
	Value             string                  `json:"value"`
	Confidence        float64                 `json:"confidence"`
	IsPII             bool                    `json:"is_pii"`
	ManuallyCorrected bool                    `json:"manually_corrected"`
	Validated         bool                    `json:"validated"`
	ValidationStatus  domain.ValidationStatus `json:"validation_status,omitempty"`
}

func (rt *Router) getExtractions(w http.ResponseWriter, r *http.Request, id string) {
	includePII := r.URL.Query().Get("include_pii") == "true"
	if includePII && !rt.authorizedForPII(r) {
		writeError(w, http.StatusForbidden, "not authorized for unmasked PII")
		return
	}

	extractions, err := rt.reader.Extractions(r.Context(), id)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	views := make([]extractionView, 0, len(extractions))
	for _, ex := range extractions {
		views = append(views, extractionView{
			ID:                ex.ID,
			FieldName:         ex.FieldName,
			Value:             ex.DisplayValue(includePII),
			Confidence:        ex.Confidence,
			IsPII:             ex.IsPII,
			ManuallyCorrected: ex.ManuallyCorrected,
			Validated:         ex.Validated,
			ValidationStatus:  ex.ValidationStatus,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"extractions": views})
}

func (rt *Router) authorizedForPII(r *http.Request) bool {
	return rt.piiAccessToken != "" && r.Header.Get("X-PII-Access") == rt.piiAccessToken
}

func (rt *Router) reviewQueueReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	workbook, err := rt.reports.ReviewQueueXLSX(r.Context())
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="review-queue.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(workbook)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
