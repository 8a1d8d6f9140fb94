package trx

import (
	"encoding/json"
	"net/http"

	"ArthaFlowSaas/api"
	"ArthaFlowSaas/api/constants"
)

// GetExceptionCase returns a case by id, or the open case of a transaction.
func GetExceptionCase(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID        string `json:"user_id"`
			CaseID        string `json:"case_id"`
			TransactionID string `json:"transaction_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		switch {
		case req.CaseID != "":
			c, err := d.Store.GetCase(r.Context(), req.CaseID)
			if err != nil {
				api.RespondWithFault(w, err)
				return
			}
			api.RespondWithPayload(w, c)
		case req.TransactionID != "":
			c, err := d.Store.OpenCaseForTransaction(r.Context(), req.TransactionID)
			if err != nil {
				api.RespondWithFault(w, err)
				return
			}
			api.RespondWithPayload(w, c)
		default:
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrCaseNotFound)
		}
	}
}

// PatchExceptionCase merges corrections into the accumulating patch.
func PatchExceptionCase(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID string            `json:"user_id"`
			CaseID string            `json:"case_id"`
			Fields map[string]string `json:"fields"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		actor := api.GetUserIDFromCtx(r.Context())
		c, err := d.Exceptions.Patch(r.Context(), req.CaseID, actor, req.Fields)
		if err != nil {
			api.RespondWithFault(w, err)
			return
		}
		api.RespondWithPayload(w, c)
	}
}

// RecheckExceptionCase re-runs reconciliation with the patch overlaid. A clean
// report resolves the case and submits the transaction.
func RecheckExceptionCase(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID string `json:"user_id"`
			CaseID string `json:"case_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		actor := api.GetUserIDFromCtx(r.Context())
		c, report, err := d.Exceptions.Recheck(r.Context(), req.CaseID, actor)
		if err != nil {
			api.RespondWithFault(w, err)
			return
		}
		api.RespondWithPayload(w, map[string]interface{}{
			"case":   c,
			"report": report,
		})
	}
}
