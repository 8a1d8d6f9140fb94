package trx

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"ArthaFlowSaas/api"
	"ArthaFlowSaas/api/constants"
	"ArthaFlowSaas/internal/checksum"
	"ArthaFlowSaas/internal/exception"
	"ArthaFlowSaas/internal/extraction"
	"ArthaFlowSaas/internal/faults"
	"ArthaFlowSaas/internal/lifecycle"
	"ArthaFlowSaas/internal/reconcile"
)

var supportedDocExts = map[string]bool{
	".pdf": true, ".png": true, ".jpg": true, ".jpeg": true, ".tif": true, ".tiff": true,
}

// SubmitWithDocument is the submission gate. The uploaded document is
// extracted and reconciled against the recorded fields before any status
// change: a clean report submits the transaction, a failing one parks it in
// precheck_locked and opens an exception case scoped to the mismatched fields.
func SubmitWithDocument(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actor := api.GetUserIDFromCtx(ctx)

		trxID := r.FormValue("transaction_id")
		if trxID == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrTrxCodeRequired)
			return
		}
		tx, err := d.Store.GetTransaction(ctx, trxID)
		if err != nil {
			api.RespondWithFault(w, err)
			return
		}
		if err := d.Guard.EnsureSubmittable(tx, actor); err != nil {
			api.RespondWithFault(w, err)
			return
		}

		file, header, err := r.FormFile("document")
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrDocRequired)
			return
		}
		defer file.Close()

		ext := strings.ToLower(filepath.Ext(header.Filename))
		if !supportedDocExts[ext] {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrDocUnsupported)
			return
		}

		savedPath, err := saveUpload(d.UploadDir, file, ext)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, "failed to store uploaded document")
			return
		}

		blocks := extraction.CollectBlocks(ctx, d.Extractor, savedPath)
		if emptyBlocks(blocks) {
			api.RespondWithFault(w, faults.Extraction("", constants.ErrDocExtractionFail))
			return
		}

		report := d.Engine.Reconcile(recordedFrom(tx), blocks)

		matchStatus := "mismatch"
		if report.Match {
			matchStatus = "match"
		}
		doc := &lifecycle.TransactionDocument{
			TransactionID: tx.ID,
			FileRef:       savedPath,
			RawText:       report.Parsed.RawText,
			Blocks:        blocks,
			Parsed:        report.Parsed,
			MatchStatus:   matchStatus,
			Confidence:    report.Confidence,
		}
		if err := d.Store.InsertDocument(ctx, doc); err != nil {
			api.RespondWithFault(w, err)
			return
		}

		tx.Flags.LastReconcile = matchStatus
		if report.Match {
			if err := d.Submitter.Submit(ctx, tx, actor, nil); err != nil {
				api.RespondWithFault(w, err)
				return
			}
			api.RespondWithPayload(w, map[string]interface{}{
				"transaction": tx,
				"report":      report,
			})
			return
		}

		from := tx.Status
		tx.Status = lifecycle.StatusPrecheckLock
		if err := d.Store.TransitionStatus(ctx, tx, from); err != nil {
			api.RespondWithFault(w, err)
			return
		}
		d.Sink.Audit(tx.ID, "PRECHECK_LOCKED", actor, exception.SummarizeMismatches(report))

		c, err := d.Exceptions.CreateCase(ctx, tx, report.MismatchedFieldNames(), exception.SummarizeMismatches(report))
		if err != nil {
			api.RespondWithFault(w, err)
			return
		}
		api.RespondWithPayload(w, map[string]interface{}{
			"transaction": tx,
			"report":      report,
			"case":        c,
		})
	}
}

// GetLatestDocument returns the newest upload with its parse and match status.
func GetLatestDocument(d *Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID        string `json:"user_id"`
			TransactionID string `json:"transaction_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		doc, err := d.Store.LatestDocument(r.Context(), req.TransactionID)
		if err != nil {
			api.RespondWithFault(w, err)
			return
		}
		api.RespondWithPayload(w, doc)
	}
}

func recordedFrom(tx *lifecycle.Transaction) reconcile.RecordedFields {
	rec := reconcile.RecordedFields{
		VendorName:    tx.VendorName,
		InvoiceNumber: tx.InvoiceNumber,
		GrandTotal:    tx.Amount,
		HasItems:      len(tx.Items) > 0,
	}
	if rec.HasItems {
		rec.ItemsTotal = lifecycle.SumItems(tx.Items)
	}
	return rec
}

func emptyBlocks(blocks []reconcile.TextBlock) bool {
	for _, b := range blocks {
		if strings.TrimSpace(b.Text) != "" {
			return false
		}
	}
	return true
}

// saveUpload stores the document under its content digest, so identical
// uploads land on the same file.
func saveUpload(dir string, src io.Reader, ext string) (string, error) {
	tmp, err := os.CreateTemp(dir, "upload-*"+ext)
	if err != nil {
		return "", err
	}
	digest, err := checksum.Digest(io.TeeReader(src, tmp))
	tmp.Close()
	if err != nil {
		os.Remove(tmp.Name())
		return "", err
	}

	path := filepath.Join(dir, digest+ext)
	if _, err := os.Stat(path); err == nil {
		os.Remove(tmp.Name())
		return path, nil
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return path, nil
}
