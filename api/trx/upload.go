package trx

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"ArthaFlowSaas/api"
	"ArthaFlowSaas/api/constants"
	"ArthaFlowSaas/internal/faults"
	"ArthaFlowSaas/internal/lifecycle"

	"github.com/shakinm/xlsReader/xls"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// rowResult reports per-row validation for a bulk upload.
type rowResult struct {
	Row    int    `json:"row"`
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

// UploadItems bulk-loads invoice lines from a csv/xlsx/xls file into an
// editable transaction, replacing the current item set. Expected columns:
// description, account_code, quantity, unit_price. Rows that fail validation
// are reported back; a single bad row rejects the whole file so a partial
// item set never replaces a complete one.
func UploadItems(d *Deps) http.HandlerFunc {
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
		if tx.OwnerUserID != actor {
			api.RespondWithError(w, http.StatusForbidden, constants.ErrUnauthorized)
			return
		}
		if err := d.Guard.EnsureEditable(tx); err != nil {
			api.RespondWithFault(w, err)
			return
		}
		if tx.Status == lifecycle.StatusReturned && !tx.Flags.HasEditable("items") {
			api.RespondWithFault(w, faults.Invalid("items", constants.ErrRevisionNoGrant))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "file is required")
			return
		}
		defer file.Close()

		records, err := parseUploadFile(file, getFileExt(header.Filename))
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid or empty file: "+header.Filename)
			return
		}
		if len(records) < 2 {
			api.RespondWithError(w, http.StatusBadRequest, "file must have a header row and at least one data row")
			return
		}

		items, results, ok := buildItems(records)
		if !ok {
			api.RespondWithPayload(w, map[string]interface{}{
				"applied": false,
				"rows":    results,
			})
			return
		}

		amount := lifecycle.SumItems(items)
		if err := d.Store.ReplaceItems(ctx, tx.ID, items, amount, tx.Status); err != nil {
			api.RespondWithFault(w, err)
			return
		}
		d.Sink.Audit(tx.ID, "ITEMS_UPLOADED", actor, fmt.Sprintf("%d rows from %s", len(items), header.Filename))
		api.RespondWithPayload(w, map[string]interface{}{
			"applied": true,
			"rows":    results,
			"amount":  amount,
			"items":   items,
		})
	}
}

// buildItems validates every data row. Column order is fixed:
// description, account_code, quantity, unit_price.
func buildItems(records [][]string) ([]lifecycle.TransactionItem, []rowResult, bool) {
	items := make([]lifecycle.TransactionItem, 0, len(records)-1)
	results := make([]rowResult, 0, len(records)-1)
	ok := true

	for i, row := range records[1:] {
		res := rowResult{Row: i + 2, OK: true}
		if len(row) < 4 {
			res.OK, res.Reason = false, "expected 4 columns"
			ok = false
			results = append(results, res)
			continue
		}
		qty, err := decimal.NewFromString(strings.TrimSpace(row[2]))
		if err != nil || qty.Sign() <= 0 {
			res.OK, res.Reason = false, "quantity is not a positive number"
		}
		price, perr := decimal.NewFromString(strings.TrimSpace(row[3]))
		if perr != nil || price.Sign() < 0 {
			res.OK, res.Reason = false, "unit_price is not a valid amount"
		}
		if strings.TrimSpace(row[0]) == "" {
			res.OK, res.Reason = false, "description is empty"
		}
		if !res.OK {
			ok = false
			results = append(results, res)
			continue
		}
		items = append(items, lifecycle.TransactionItem{
			Description: strings.TrimSpace(row[0]),
			AccountCode: strings.TrimSpace(row[1]),
			Quantity:    qty,
			UnitPrice:   price,
		})
		results = append(results, res)
	}
	return items, results, ok
}

func getFileExt(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// parseUploadFile turns a csv/xlsx/xls upload into raw rows. Legacy xls goes
// through a temp file because the reader needs a path, not a stream.
func parseUploadFile(file multipart.File, ext string) ([][]string, error) {
	switch ext {
	case ".csv":
		r := csv.NewReader(file)
		r.FieldsPerRecord = -1
		r.LazyQuotes = true
		r.TrimLeadingSpace = true
		return r.ReadAll()
	case ".xlsx":
		f, err := excelize.OpenReader(file)
		if err != nil {
			return nil, err
		}
		sheet := f.GetSheetName(0)
		return f.GetRows(sheet)
	case ".xls":
		return parseXLSFile(file)
	}
	return nil, errors.New("unsupported file type: " + ext)
}

func parseXLSFile(file multipart.File) ([][]string, error) {
	tmpFile, err := os.CreateTemp("", "trxitems-*.xls")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmpFile.Name())

	if _, err := io.Copy(tmpFile, file); err != nil {
		tmpFile.Close()
		return nil, err
	}
	tmpFile.Close()

	xlsBook, err := xls.OpenFile(tmpFile.Name())
	if err != nil {
		return nil, err
	}
	sheet, err := xlsBook.GetSheet(0)
	if err != nil || sheet == nil {
		return nil, fmt.Errorf("no sheets found")
	}

	rows := [][]string{}
	for _, xlsRow := range sheet.GetRows() {
		rowData := []string{}
		for _, col := range xlsRow.GetCols() {
			rowData = append(rowData, col.GetString())
		}
		rows = append(rows, rowData)
	}
	return rows, nil
}
