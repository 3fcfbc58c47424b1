package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"daara/internal/core"
	"daara/internal/log"
	"daara/internal/query"
	"daara/internal/services"
)

const maxBodyBytes = 8 << 20 // backups carry every record

var errBadRequest = errors.New("bad request")

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, core.ErrInvalidMonth),
		errors.Is(err, core.ErrInvalidYear),
		errors.Is(err, core.ErrUnknownFund),
		errors.Is(err, core.ErrUnknownField),
		errors.Is(err, core.ErrEmptyMemberName),
		errors.Is(err, core.ErrDuplicateRecord):
		return http.StatusBadRequest, log.ErrorTypeValidation
	case errors.Is(err, services.ErrMemberNotFound):
		return http.StatusNotFound, log.ErrorTypeNotFound
	case errors.Is(err, services.ErrNoPreviousRecord):
		return http.StatusConflict, log.ErrorTypeNotFound
	}
	return http.StatusInternalServerError, log.ErrorTypeInternal
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, errType := statusFor(err)
	logger := log.FromContext(r.Context())
	fields := log.NewFields().WithError(err, errType).ToSlice()
	msg := err.Error()
	if status >= 500 {
		logger.ErrorContext(r.Context(), "Request failed", fields...)
		msg = http.StatusText(status)
	} else {
		logger.DebugContext(r.Context(), "Request rejected", fields...)
	}
	writeJSON(w, status, errorBody{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errBadRequest)
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// recordKey reads {year} and {month}. Months are accepted by name or number.
func recordKey(r *http.Request) (int, core.Month, error) {
	year, err := strconv.Atoi(strings.TrimSpace(chi.URLParam(r, "year")))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", core.ErrInvalidYear, chi.URLParam(r, "year"))
	}
	month, err := core.ParseMonth(chi.URLParam(r, "month"))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", err, chi.URLParam(r, "month"))
	}
	if err := core.ValidateKey(year, month); err != nil {
		return 0, 0, err
	}
	return year, month, nil
}

func entryList(r *http.Request) (core.EntryList, error) {
	list, ok := core.ParseEntryList(chi.URLParam(r, "list"))
	if !ok {
		return "", fmt.Errorf("%w: unknown entry list %q", errBadRequest, chi.URLParam(r, "list"))
	}
	return list, nil
}

func filterFromQuery(r *http.Request) query.Filter {
	q := r.URL.Query()
	return query.Filter{Year: q.Get("year"), Month: q.Get("month"), Member: q.Get("member")}.Normalize()
}

func attachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}
