package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/mind-engage/interview-console/internal/interview"
	"github.com/mind-engage/interview-console/internal/logging"
	"github.com/mind-engage/interview-console/internal/scoring"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

var badInput = []error{
	scoring.ErrInvalidWeight,
	scoring.ErrInvalidScoreValue,
	scoring.ErrInvalidMinimalRate,
	scoring.ErrDuplicateScore,
	scoring.ErrUnknownResolution,
}

// writeError maps domain errors to status codes: validation 400, not found 404,
// anything else 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *interview.ValidationError
	if errors.As(err, &ve) {
		respondError(w, http.StatusBadRequest, ve.Error())
		return
	}
	for _, target := range badInput {
		if errors.Is(err, target) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if errors.Is(err, interview.ErrNotFound) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	logging.FromContext(r.Context()).Error("request failed",
		zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
	respondError(w, http.StatusInternalServerError, "internal error")
}

// decodeJSON reads a JSON body; an empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return &interview.ValidationError{Field: "body", Message: "bad json", Err: err}
	}
	return nil
}

func queryInt(r *http.Request, key string, def int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(key)); err == nil {
		return v
	}
	return def
}

func queryFloat(r *http.Request, key string) float64 {
	v, _ := strconv.ParseFloat(r.URL.Query().Get(key), 64)
	return v
}

// parseDate accepts RFC 3339 timestamps and plain dates. A plain date used as
// an upper bound covers the whole day.
func parseDate(s string, endOfDay bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, &interview.ValidationError{Field: "date", Message: "want RFC 3339 or YYYY-MM-DD, got " + s}
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return t, nil
}
