package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

// ParamValidator is a function type that validates a parameter.
type ParamValidator func(valueToTest int64) bool

// Gte accepts values greater than or equal to min.
func Gte(min int64) ParamValidator {
	return func(v int64) bool { return v >= min }
}

// Between accepts values in the closed range [min, max].
func Between(min, max int64) ParamValidator {
	return func(v int64) bool { return v >= min && v <= max }
}

// QueryInt parses an optional integer query parameter. A missing parameter yields def.
// On an invalid value it writes a 400 response and returns false.
func QueryInt(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string, def int, valid ParamValidator) (int, bool) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return def, true
	}
	intValue, err := strconv.ParseInt(value, 10, 32)
	if err != nil || !valid(intValue) {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s number: %s", key, value))
		return 0, false
	}
	return int(intValue), true
}
