package trx

import (
	"encoding/json"
	"net/http"

	"ArthaFlowSaas/api"
	"ArthaFlowSaas/internal/revision"
)

// GetRevisionAccess tells the owner which fields the approver opened and
// until when.
func GetRevisionAccess(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID        string `json:"user_id"`
			TransactionID string `json:"transaction_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		actor := api.GetUserIDFromCtx(r.Context())
		tx, fields, err := d.Revisions.GetRevisionAccess(r.Context(), req.TransactionID, actor)
		if err != nil {
			api.RespondWithFault(w, err)
			return
		}
		api.RespondWithPayload(w, map[string]interface{}{
			"transaction":       tx,
			"editable_fields":   fields,
			"revision_deadline": tx.RevisionDeadline,
		})
	}
}

// SaveRevision applies header and item changes inside the approver's grant.
func SaveRevision(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID        string            `json:"user_id"`
			TransactionID string            `json:"transaction_id"`
			Header        map[string]string `json:"header"`
			Items         []itemInput       `json:"items"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		actor := api.GetUserIDFromCtx(r.Context())
		changes := revision.Changes{Header: req.Header}
		if req.Items != nil {
			changes.Items = toItems(req.Items)
		}
		tx, err := d.Revisions.SaveRevision(r.Context(), req.TransactionID, actor, changes)
		if err != nil {
			api.RespondWithFault(w, err)
			return
		}
		api.RespondWithPayload(w, tx)
	}
}

// ResubmitTransaction archives the current version and advances the live row.
func ResubmitTransaction(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID        string `json:"user_id"`
			TransactionID string `json:"transaction_id"`
			Notes         string `json:"notes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		actor := api.GetUserIDFromCtx(r.Context())
		tx, err := d.Revisions.Resubmit(r.Context(), req.TransactionID, actor, req.Notes)
		if err != nil {
			api.RespondWithFault(w, err)
			return
		}
		api.RespondWithPayload(w, tx)
	}
}
