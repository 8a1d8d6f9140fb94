package trx

import (
	"encoding/json"
	"net/http"
	"strings"

	"ArthaFlowSaas/api"
	"ArthaFlowSaas/api/constants"
	"ArthaFlowSaas/internal/faults"
	"ArthaFlowSaas/internal/lifecycle"

	"github.com/shopspring/decimal"
)

type itemInput struct {
	Description string          `json:"description"`
	AccountCode string          `json:"account_code"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

func toItems(in []itemInput) []lifecycle.TransactionItem {
	items := make([]lifecycle.TransactionItem, 0, len(in))
	for _, it := range in {
		items = append(items, lifecycle.TransactionItem{
			Description: it.Description,
			AccountCode: it.AccountCode,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}
	return items
}

// CreateTransaction opens a new lineage at version 1. When items are present
// the amount is always the recomputed item sum, never the posted value.
func CreateTransaction(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID        string      `json:"user_id"`
			Code          string      `json:"transaction_code"`
			Type          string      `json:"transaction_type"`
			VendorName    string      `json:"vendor_name"`
			InvoiceNumber string      `json:"invoice_number"`
			InvoiceDate   string      `json:"invoice_date"`
			CostCenter    string      `json:"cost_center"`
			Description   string      `json:"description"`
			Amount        string      `json:"amount"`
			Currency      string      `json:"currency"`
			Items         []itemInput `json:"items"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if strings.TrimSpace(req.Code) == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrTrxCodeRequired)
			return
		}

		t := &lifecycle.Transaction{
			Code:          strings.TrimSpace(req.Code),
			Type:          req.Type,
			OwnerUserID:   api.GetUserIDFromCtx(r.Context()),
			VendorName:    req.VendorName,
			InvoiceNumber: req.InvoiceNumber,
			InvoiceDate:   req.InvoiceDate,
			CostCenter:    req.CostCenter,
			Description:   req.Description,
			Currency:      req.Currency,
			Flags:         lifecycle.Flags{Version: lifecycle.FlagsVersion},
			Items:         toItems(req.Items),
		}
		if len(t.Items) > 0 {
			t.Amount = lifecycle.SumItems(t.Items)
		} else {
			if strings.TrimSpace(req.Amount) == "" {
				api.RespondWithError(w, http.StatusBadRequest, constants.ErrTrxAmountRequired)
				return
			}
			amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
			if err != nil {
				api.RespondWithFault(w, faults.Invalid("amount", "not a valid decimal"))
				return
			}
			t.Amount = amount
		}

		if err := d.Store.CreateTransaction(r.Context(), t); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrTrxCreateFailed)
			return
		}
		d.Sink.Audit(t.ID, "CREATED", t.OwnerUserID, "")
		api.RespondWithPayload(w, t)
	}
}

// UpdateTransaction edits header fields or replaces items while the
// transaction is still editable. Item replacement recomputes the amount.
func UpdateTransaction(d *Deps) http.HandlerFunc {
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

		tx, err := d.Store.GetTransaction(r.Context(), req.TransactionID)
		if err != nil {
			api.RespondWithFault(w, err)
			return
		}
		actor := api.GetUserIDFromCtx(r.Context())
		if tx.OwnerUserID != actor {
			api.RespondWithError(w, http.StatusForbidden, constants.ErrUnauthorized)
			return
		}
		if err := d.Guard.EnsureEditable(tx); err != nil {
			api.RespondWithFault(w, err)
			return
		}

		expected := tx.Status
		if len(req.Header) > 0 {
			if err := applyHeader(tx, req.Header); err != nil {
				api.RespondWithFault(w, err)
				return
			}
			if err := d.Store.UpdateHeader(r.Context(), tx, expected); err != nil {
				api.RespondWithFault(w, err)
				return
			}
		}
		if req.Items != nil {
			items := toItems(req.Items)
			amount := lifecycle.SumItems(items)
			if err := d.Store.ReplaceItems(r.Context(), tx.ID, items, amount, expected); err != nil {
				api.RespondWithFault(w, err)
				return
			}
			tx.Items = items
			tx.Amount = amount
		}

		d.Sink.Audit(tx.ID, "UPDATED", actor, "")
		api.RespondWithPayload(w, tx)
	}
}

// applyHeader maps wire field names onto the transaction. grand_total is
// rejected when items exist since the amount is always the item sum then.
func applyHeader(tx *lifecycle.Transaction, header map[string]string) error {
	for field, value := range header {
		switch field {
		case "vendor_name":
			tx.VendorName = value
		case "invoice_number":
			tx.InvoiceNumber = value
		case "invoice_date":
			tx.InvoiceDate = value
		case "cost_center":
			tx.CostCenter = value
		case "description":
			tx.Description = value
		case "grand_total":
			if len(tx.Items) > 0 {
				return faults.Invalid("grand_total", "amount is derived from items")
			}
			amount, err := decimal.NewFromString(strings.TrimSpace(value))
			if err != nil {
				return faults.Invalid("grand_total", "not a valid decimal")
			}
			tx.Amount = amount
		default:
			return faults.Invalid(field, "unknown header field")
		}
	}
	return nil
}

// GetTransaction loads one row by id or the active version by code.
func GetTransaction(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID        string `json:"user_id"`
			TransactionID string `json:"transaction_id"`
			Code          string `json:"transaction_code"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		var (
			tx  *lifecycle.Transaction
			err error
		)
		if req.TransactionID != "" {
			tx, err = d.Store.GetTransaction(r.Context(), req.TransactionID)
		} else if req.Code != "" {
			tx, err = d.Store.GetActiveByCode(r.Context(), req.Code)
		} else {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrTrxCodeRequired)
			return
		}
		if err != nil {
			api.RespondWithFault(w, err)
			return
		}
		api.RespondWithPayload(w, tx)
	}
}

// ListTransactions returns the caller's active-version rows, newest first.
func ListTransactions(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := api.GetUserIDFromCtx(r.Context())
		rows, err := d.Store.ListByOwner(r.Context(), actor)
		if err != nil {
			api.RespondWithFault(w, err)
			return
		}
		api.RespondWithPayload(w, rows)
	}
}

// GetVersionHistory returns every version of a code lineage, archived rows
// included, newest version first.
func GetVersionHistory(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID string `json:"user_id"`
			Code   string `json:"transaction_code"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Code == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrTrxCodeRequired)
			return
		}
		rows, err := d.Store.ListVersions(r.Context(), req.Code)
		if err != nil {
			api.RespondWithFault(w, err)
			return
		}
		api.RespondWithPayload(w, rows)
	}
}
