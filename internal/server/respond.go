package server

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/hferras/depsolve/pkg/errors"
)

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps structured error codes onto HTTP statuses. Unclassified
// errors become 500s with a generic body so internals never leak.
func writeError(w http.ResponseWriter, err error) {
	code := apperrors.GetCode(err)

	status := http.StatusInternalServerError
	switch code {
	case apperrors.ErrCodeInvalidInput, apperrors.ErrCodeInvalidManifest,
		apperrors.ErrCodeInvalidGraph, apperrors.ErrCodeInvalidRelax,
		apperrors.ErrCodeInvalidNode:
		status = http.StatusBadRequest
	case apperrors.ErrCodeGraphNotFound, apperrors.ErrCodeNodeNotFound,
		apperrors.ErrCodeEdgeNotFound:
		status = http.StatusNotFound
	}

	body := errorBody{Code: string(code), Message: apperrors.UserMessage(err)}
	if status == http.StatusInternalServerError {
		body = errorBody{Code: string(apperrors.ErrCodeInternal), Message: "internal error"}
	}
	writeJSON(w, status, errorResponse{Error: body})
}
