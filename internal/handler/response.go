package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"sweetshop/internal/model"
	"sweetshop/pkg/apierror"
)

func writeSuccess(w http.ResponseWriter, status int, data any, meta *model.Meta) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.Succeeded(data, meta))
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := model.APIError{
		Code:    apierror.CodeInternal,
		Message: "Unexpected server error",
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		body.Details = apiErr.Details
	} else if errors.Is(err, model.ErrItemNotFound) {
		status = http.StatusNotFound
		body.Code = apierror.CodeNotFound
		body.Message = "Sweet not found"
	} else if errors.Is(err, model.ErrAccountNotFound) {
		status = http.StatusNotFound
		body.Code = apierror.CodeNotFound
		body.Message = "Account not found"
	} else if errors.Is(err, model.ErrEmailTaken) {
		status = http.StatusBadRequest
		body.Code = apierror.CodeAlreadyExists
		body.Message = "Email already registered"
	} else if errors.Is(err, model.ErrInsufficientStock) {
		status = http.StatusBadRequest
		body.Code = apierror.CodeInsufficientStock
		body.Message = "Insufficient stock"
	} else if errors.Is(err, model.ErrInvalidInput) {
		status = http.StatusBadRequest
		body.Code = apierror.CodeBadRequest
		body.Message = "Invalid input"
	} else {
		// Log unclassified errors so they are visible in container logs.
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.Failed(body.Code, body.Message, body.Details))
}

// decodeJSON reads exactly one JSON value into dst, rejecting unknown
// fields and trailing data.
func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return apierror.New(apierror.CodeBadRequest, "request body too large",
				fmt.Sprintf("limit is %d bytes", maxErr.Limit), http.StatusRequestEntityTooLarge)
		case errors.Is(err, io.EOF):
			return apierror.New(apierror.CodeBadRequest, "request body is required", "", http.StatusBadRequest)
		default:
			return apierror.New(apierror.CodeBadRequest, "invalid JSON body", err.Error(), http.StatusBadRequest)
		}
	}

	if decoder.More() {
		return apierror.New(apierror.CodeBadRequest, "invalid JSON body", "unexpected data after JSON value", http.StatusBadRequest)
	}

	return nil
}

func parseIntOrDefault(value string, fallback int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func parseItemID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apierror.New(apierror.CodeValidation, "id must be a positive integer", raw, http.StatusBadRequest)
	}
	return id, nil
}

// parseOptionalFloat returns nil for an absent or blank parameter.
func parseOptionalFloat(values map[string][]string, key string) (*float64, error) {
	raw := ""
	if v, ok := values[key]; ok && len(v) > 0 {
		raw = strings.TrimSpace(v[0])
	}
	if raw == "" {
		return nil, nil
	}

	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apierror.New(apierror.CodeValidation, key+" must be a number", raw, http.StatusBadRequest)
	}
	if math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return nil, apierror.New(apierror.CodeValidation, key+" must be a finite number", raw, http.StatusBadRequest)
	}
	return &parsed, nil
}
