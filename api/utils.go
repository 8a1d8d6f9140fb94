package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"ArthaFlowSaas/internal/faults"
)

// RespondWithError sends a consistent JSON error body.
func RespondWithError(w http.ResponseWriter, status int, errMsg string) {
	log.Println("[ERROR]", errMsg)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   errMsg,
	})
}

// RespondWithPayload sends a consistent JSON success envelope.
func RespondWithPayload(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data":    payload,
	})
}

// RespondWithFault maps the core error taxonomy onto HTTP statuses. Anything
// outside the taxonomy is an internal error.
func RespondWithFault(w http.ResponseWriter, err error) {
	var (
		notFound   *faults.NotFoundError
		denied     *faults.AccessDeniedError
		locked     *faults.LockedStateError
		invalid    *faults.ValidationError
		extraction *faults.ExtractionFailure
	)
	switch {
	case errors.As(err, &notFound):
		RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &denied):
		RespondWithError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &locked):
		RespondWithError(w, http.StatusConflict, err.Error())
	case errors.As(err, &invalid):
		RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &extraction):
		RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		RespondWithError(w, http.StatusInternalServerError, err.Error())
	}
}
