package trx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ArthaFlowSaas/api"
	"ArthaFlowSaas/api/constants"

	"github.com/xuri/excelize/v2"
)

const queueExportLimit = 1000

// ListResolutionQueue returns the pending accounting resolution work items.
func ListResolutionQueue(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID string `json:"user_id"`
			Limit  int    `json:"limit"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		limit := req.Limit
		if limit <= 0 || limit > queueExportLimit {
			limit = queueExportLimit
		}
		items, err := d.Store.ListResolutionQueue(r.Context(), limit)
		if err != nil {
			api.RespondWithFault(w, err)
			return
		}
		api.RespondWithPayload(w, items)
	}
}

// ExportResolutionQueue streams the resolution queue as an XLSX workbook for
// the accounting team.
func ExportResolutionQueue(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := d.Store.ListResolutionQueue(r.Context(), queueExportLimit)
		if err != nil {
			api.RespondWithFault(w, err)
			return
		}

		f := excelize.NewFile()
		sheet := f.GetSheetName(0)
		header := []interface{}{"Item ID", "Transaction ID", "Owner", "Reason", "Enqueued At"}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, "failed to build export")
			return
		}
		for i, item := range items {
			row := []interface{}{
				item.ID, item.TransactionID, item.OwnerUserID, item.Reason,
				item.EnqueuedAt.Format(constants.DateTimeFormat),
			}
			cell := fmt.Sprintf("A%d", i+2)
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, "failed to build export")
				return
			}
		}

		filename := "resolution-queue-" + time.Now().Format("20060102-150405") + ".xlsx"
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
		if err := f.Write(w); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, "failed to stream export")
			return
		}
	}
}
