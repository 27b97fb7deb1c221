package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/angelmondragon/brandprices-backend/pkg/errors"
	"github.com/angelmondragon/brandprices-backend/pkg/types"
)

// ParseQueryID reads a required positive integer query parameter.
func ParseQueryID(r *http.Request, key string) (int64, error) {
	return ParseID(key, r.URL.Query().Get(key))
}

// ParsePathID reads a required positive integer route parameter.
func ParsePathID(r *http.Request, key string) (int64, error) {
	return ParseID(key, chi.URLParam(r, key))
}

// ParseQueryTimestamp reads a required query parameter in types.LocalDateTimeLayout.
func ParseQueryTimestamp(r *http.Request, key string) (types.LocalDateTime, error) {
	return ParseTimestamp(key, r.URL.Query().Get(key))
}

// ParsePathTimestamp reads a required route parameter in types.LocalDateTimeLayout.
func ParsePathTimestamp(r *http.Request, key string) (types.LocalDateTime, error) {
	return ParseTimestamp(key, chi.URLParam(r, key))
}

func ParseID(field, raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "parameter is required").WithDetails(map[string]any{"field": field})
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "parameter must be numeric").WithDetails(map[string]any{"field": field})
	}
	if value <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "parameter must be positive").WithDetails(map[string]any{"field": field})
	}
	return value, nil
}

func ParseTimestamp(field, raw string) (types.LocalDateTime, error) {
	if strings.TrimSpace(raw) == "" {
		return types.LocalDateTime{}, pkgerrors.New(pkgerrors.CodeValidation, "parameter is required").WithDetails(map[string]any{"field": field})
	}
	parsed, err := types.ParseLocalDateTime(raw)
	if err != nil {
		return types.LocalDateTime{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parameter must be a timestamp").
			WithDetails(map[string]any{"field": field, "layout": types.LocalDateTimeLayout})
	}
	return types.NewLocalDateTime(parsed), nil
}
