package httpadapter

import (
	"encoding/json"
	"net/http"

	"github.com/caseworks/evidence-intake/internal/core/ports"
)

type reviewDecisionRequest struct {
	ReviewedBy string `json:"reviewed_by"`
	Reason     string `json:"reason,omitempty"`
}

func (rt *Router) approve(w http.ResponseWriter, r *http.Request, id string) {
	var req reviewDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := rt.reviewer.Approve(r.Context(), id, req.ReviewedBy); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "approved"})
}

func (rt *Router) reject(w http.ResponseWriter, r *http.Request, id string) {
	var req reviewDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := rt.reviewer.Reject(r.Context(), id, req.ReviewedBy, req.Reason); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}

func (rt *Router) reprocess(w http.ResponseWriter, r *http.Request, id string) {
	if err := rt.reviewer.Reprocess(r.Context(), id); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "reprocessing"})
}

type correctionRequest struct {
	FieldName   string `json:"field_name"`
	NewValue    string `json:"new_value"`
	CorrectedBy string `json:"corrected_by"`
}

func (rt *Router) correctField(w http.ResponseWriter, r *http.Request, id string) {
	var req correctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	ex, err := rt.reviewer.CorrectField(r.Context(), id, req.FieldName, req.NewValue, req.CorrectedBy)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, extractionView{
		ID:                ex.ID,
		FieldName:         ex.FieldName,
		Value:             ex.DisplayValue(false),
		Confidence:        ex.Confidence,
		IsPII:             ex.IsPII,
		ManuallyCorrected: ex.ManuallyCorrected,
		Validated:         ex.Validated,
		ValidationStatus:  ex.ValidationStatus,
	})
}

type bulkRequest struct {
	DocumentIDs []string `json:"document_ids"`
	ReviewedBy  string   `json:"reviewed_by"`
	Reason      string   `json:"reason,omitempty"`
}

func (rt *Router) bulkApprove(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	outcomes, err := rt.reviewer.BulkApprove(r.Context(), req.DocumentIDs, req.ReviewedBy)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	rt.observeBulkOutcomes("approve", outcomes)
	writeJSON(w, http.StatusOK, map[string]any{"results": outcomes})
}

func (rt *Router) bulkReject(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	outcomes, err := rt.reviewer.BulkReject(r.Context(), req.DocumentIDs, req.ReviewedBy, req.Reason)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	rt.observeBulkOutcomes("reject", outcomes)
	writeJSON(w, http.StatusOK, map[string]any{"results": outcomes})
}

func (rt *Router) observeBulkOutcomes(operation string, outcomes []ports.BulkOutcome) {
	if rt.metrics == nil {
		return
	}
	for _, outcome := range outcomes {
		result := "ok"
		if !outcome.OK {
			result = "failed"
		}
		rt.metrics.ObserveBulkOutcome(operation, result)
	}
}
