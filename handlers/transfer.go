package handlers

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/acquainted-app/acquaintedbackend/services"
)

// maxImportSize bounds import payloads; a personal dataset is far below this
const maxImportSize = 32 << 20 // 32 MiB

type TransferHandler struct {
	Service *services.TransferService
}

// ExportData serves the full dataset snapshot as a JSON download
func (th *TransferHandler) ExportData(w http.ResponseWriter, r *http.Request) {
	data, err := th.Service.Export()
	if err != nil {
		log.Printf("Error exporting data: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "export_failed", "Failed to export data")
		return
	}

	filename := services.ExportFilename(time.Now())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	writeJSON(w, http.StatusOK, data)
}

// ImportData merges an uploaded snapshot into the local store and
// reports the imported/updated/skipped counts
func (th *TransferHandler) ImportData(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportSize))
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_body", "Failed to read import payload: "+err.Error())
		return
	}

	data, err := services.ParseExport(body)
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_format", err.Error())
		return
	}

	summary, err := th.Service.Import(data)
	if err != nil {
		log.Printf("Error importing data: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "import_failed", "Failed to import data")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// ClearData wipes all collections in one transaction
func (th *TransferHandler) ClearData(w http.ResponseWriter, r *http.Request) {
	if err := th.Service.ClearAll(); err != nil {
		log.Printf("Error clearing data: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "clear_failed", "Failed to clear data")
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
