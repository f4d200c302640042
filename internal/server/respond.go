package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"gnsnode/pkg/errors"
)

type errorBody struct {
	Error *errors.AppError `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders any error as {"error":{code,message,details}}. Causes
// are never exposed.
func writeError(w http.ResponseWriter, err error) {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		appErr = &errors.AppError{Code: errors.CodeInternal, Message: "internal server error"}
	}
	body := &errors.AppError{Code: appErr.Code, Message: appErr.Message, Details: appErr.Details}
	if body.Code == errors.CodeInternal {
		body.Message = "internal server error"
	}
	writeJSON(w, body.Code.HTTPStatus(), errorBody{Error: body})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return errors.InvalidArgDetails("request body too large", map[string]any{"max": tooLarge.Limit})
		}
		return errors.InvalidArg("request body is not valid JSON")
	}
	return nil
}

// parseSince accepts RFC 3339 or unix milliseconds. Empty means the beginning.
func parseSince(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, errors.InvalidArg("since must be RFC 3339 or unix milliseconds")
	}
	return t.UTC(), nil
}

func parseLimit(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.InvalidArg("limit must be a positive integer")
	}
	return n, nil
}
