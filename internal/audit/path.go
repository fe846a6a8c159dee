package audit

import (
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/noah-isme/rci-portal-api/internal/models"
)

// UnknownEntity labels calls whose path carries no usable segment.
const UnknownEntity = "Unknown"

// DefaultExcludedPaths lists path prefixes that are never audited.
var DefaultExcludedPaths = []string{
	"/api/auth/login",
	"/api/auth/token",
	"/admin/",
	"/static/",
	"/media/",
}

// IsTrackedMethod reports whether calls using method mutate state.
func IsTrackedMethod(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

// ActionForMethod maps a tracked HTTP method to its audit action.
func ActionForMethod(method string) (string, bool) {
	switch strings.ToUpper(method) {
	case http.MethodPost:
		return models.AuditActionCreate, true
	case http.MethodPut, http.MethodPatch:
		return models.AuditActionUpdate, true
	case http.MethodDelete:
		return models.AuditActionDelete, true
	default:
		return "", false
	}
}

// IsExcludedPath reports whether path starts with one of the excluded prefixes.
func IsExcludedPath(path string, excluded []string) bool {
	for _, prefix := range excluded {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// EntityFromPath derives an entity label from the first meaningful path
// segment: "/api/students/42" becomes "Student". The label is syntactic only,
// so irregular plurals come out wrong ("/api/classes" gives "Classe").
func EntityFromPath(path string) string {
	for _, segment := range strings.Split(path, "/") {
		if segment == "" || segment == "api" {
			continue
		}
		return capitalize(strings.TrimRight(segment, "s"))
	}
	return UnknownEntity
}

// DeletedIDFromPath returns the first path segment that looks like an
// identifier: all digits, or longer than ten characters.
func DeletedIDFromPath(path string) (string, bool) {
	for _, segment := range strings.Split(path, "/") {
		if isDigits(segment) || utf8.RuneCountInString(segment) > 10 {
			return segment, true
		}
	}
	return "", false
}

func capitalize(value string) string {
	if value == "" {
		return value
	}
	first, size := utf8.DecodeRuneInString(value)
	return string(unicode.ToUpper(first)) + strings.ToLower(value[size:])
}

func isDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
