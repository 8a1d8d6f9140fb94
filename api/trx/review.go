package trx

import (
	"encoding/json"
	"net/http"
	"time"

	"ArthaFlowSaas/api"
	"ArthaFlowSaas/api/constants"
	"ArthaFlowSaas/internal/faults"
	"ArthaFlowSaas/internal/lifecycle"
)

type reviewRequest struct {
	UserID        string `json:"user_id"`
	TransactionID string `json:"transaction_id"`
	Comment       string `json:"comment"`
}

func loadForReview(d *Deps, r *http.Request, req *reviewRequest) (*lifecycle.Transaction, error) {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		return nil, faults.Invalid("", "invalid request body")
	}
	if req.TransactionID == "" {
		return nil, faults.Invalid("transaction_id", "required")
	}
	return d.Store.GetTransaction(r.Context(), req.TransactionID)
}

// ClaimForReview parks a submitted transaction in under_review so competing
// approvers see it is taken. Claiming is optional; approve/reject/return work
// directly from submitted as well.
func ClaimForReview(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reviewRequest
		tx, err := loadForReview(d, r, &req)
		if err != nil {
			api.RespondWithFault(w, err)
			return
		}
		if err := d.Guard.EnsureTransition(tx, lifecycle.StatusUnderReview); err != nil {
			api.RespondWithFault(w, err)
			return
		}
		from := tx.Status
		tx.Status = lifecycle.StatusUnderReview
		if err := d.Store.TransitionStatus(r.Context(), tx, from); err != nil {
			api.RespondWithFault(w, err)
			return
		}
		actor := api.GetUserIDFromCtx(r.Context())
		d.Sink.Audit(tx.ID, "REVIEW_CLAIMED", actor, req.Comment)
		api.RespondWithPayload(w, tx)
	}
}

// ApproveTransaction closes the review with an approval.
func ApproveTransaction(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reviewRequest
		tx, err := loadForReview(d, r, &req)
		if err != nil {
			api.RespondWithFault(w, err)
			return
		}
		from := tx.Status
		if err := d.Guard.ApplyApprove(tx, time.Now()); err != nil {
			api.RespondWithFault(w, err)
			return
		}
		if err := d.Store.TransitionStatus(r.Context(), tx, from); err != nil {
			api.RespondWithFault(w, err)
			return
		}
		actor := api.GetUserIDFromCtx(r.Context())
		d.Sink.Audit(tx.ID, "APPROVED", actor, req.Comment)
		d.Sink.Signal(tx.OwnerUserID, "review", "Transaction "+tx.Code+" was approved")
		api.RespondWithPayload(w, tx)
	}
}

// RejectTransaction is terminal: the transaction is locked for good.
func RejectTransaction(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reviewRequest
		tx, err := loadForReview(d, r, &req)
		if err != nil {
			api.RespondWithFault(w, err)
			return
		}
		from := tx.Status
		if err := d.Guard.ApplyReject(tx, time.Now()); err != nil {
			api.RespondWithFault(w, err)
			return
		}
		if err := d.Store.TransitionStatus(r.Context(), tx, from); err != nil {
			api.RespondWithFault(w, err)
			return
		}
		actor := api.GetUserIDFromCtx(r.Context())
		d.Sink.Audit(tx.ID, "REJECTED", actor, req.Comment)
		d.Sink.Signal(tx.OwnerUserID, "review", "Transaction "+tx.Code+" was rejected")
		api.RespondWithPayload(w, tx)
	}
}

// ReturnTransaction sends the transaction back to its owner with an
// editable-field grant and a revision deadline.
func ReturnTransaction(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID         string   `json:"user_id"`
			TransactionID  string   `json:"transaction_id"`
			EditableFields []string `json:"editable_fields"`
			Deadline       string   `json:"deadline"`
			Comment        string   `json:"comment"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		tx, err := d.Store.GetTransaction(r.Context(), req.TransactionID)
		if err != nil {
			api.RespondWithFault(w, err)
			return
		}

		spec := lifecycle.ReturnSpec{
			EditableFields: req.EditableFields,
			Comment:        req.Comment,
		}
		if req.Deadline != "" {
			deadline, err := time.Parse(time.RFC3339, req.Deadline)
			if err != nil {
				api.RespondWithFault(w, faults.Invalid("deadline", "expected RFC3339 timestamp"))
				return
			}
			spec.Deadline = &deadline
		}

		from := tx.Status
		if err := d.Guard.ApplyReturn(tx, spec, time.Now()); err != nil {
			api.RespondWithFault(w, err)
			return
		}
		if err := d.Store.TransitionStatus(r.Context(), tx, from); err != nil {
			api.RespondWithFault(w, err)
			return
		}
		actor := api.GetUserIDFromCtx(r.Context())
		d.Sink.Audit(tx.ID, "RETURNED", actor, req.Comment)
		d.Sink.Signal(tx.OwnerUserID, "review",
			"Transaction "+tx.Code+" was returned for revision until "+tx.RevisionDeadline.Format(constants.DateTimeFormat))
		api.RespondWithPayload(w, tx)
	}
}
