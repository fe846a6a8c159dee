package audit

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/noah-isme/rci-portal-api/internal/models"
)

// Keys of the details document.
const (
	KeyMethod      = "method"
	KeyPath        = "path"
	KeyUserRole    = "user_role"
	KeyRequestData = "request_data"
	KeyCreated     = "created"
	KeyChanges     = "changes"
	KeyDeletedID   = "deleted_id"
	KeyFullName    = "full_name"
	KeyBefore      = "before"
	KeyAfter       = "after"
)

const rawFallbackLimit = 200

// Call describes a completed mutating call.
type Call struct {
	Method       string
	Path         string
	Role         string
	ResponseBody []byte
}

// Entry is an audit record ready to be persisted.
type Entry struct {
	Entity  string
	Action  string
	ActorID *string
	Details map[string]interface{}
	// CorrelationID ties the entry to the request logs. It is not persisted.
	CorrelationID string
}

// BuildDetails assembles the details document for call. It never fails:
// payloads that cannot be parsed degrade to fallbacks.
func BuildDetails(call Call, capture *Capture) map[string]interface{} {
	var role interface{}
	if strings.TrimSpace(call.Role) != "" {
		role = call.Role
	}

	details := map[string]interface{}{
		KeyMethod:      strings.ToUpper(call.Method),
		KeyPath:        call.Path,
		KeyUserRole:    role,
		KeyRequestData: capture.RequestData(),
	}

	action, _ := ActionForMethod(call.Method)
	switch action {
	case models.AuditActionCreate:
		created := parseResponse(call.ResponseBody)
		if record, ok := created.(map[string]interface{}); ok {
			if name, owned := OwnerName(capture.Subject()); owned {
				record[KeyFullName] = name
			}
		}
		details[KeyCreated] = created
	case models.AuditActionUpdate:
		after, ok := parseResponse(call.ResponseBody).(map[string]interface{})
		if !ok {
			after = map[string]interface{}{}
		}
		before := capture.Before()
		if name, owned := OwnerName(capture.Subject()); owned {
			after[KeyFullName] = name
			if capture.HasSnapshot() {
				before[KeyFullName] = name
			}
		}
		details[KeyChanges] = Diff(before, after)
	case models.AuditActionDelete:
		if id, found := DeletedIDFromPath(call.Path); found {
			details[KeyDeletedID] = id
		}
	}

	return details
}

// Diff compares two flat documents over the union of their keys and keeps
// only keys whose values differ. Missing keys compare as null.
func Diff(before, after map[string]interface{}) map[string]interface{} {
	changes := map[string]interface{}{}
	keys := make(map[string]struct{}, len(before)+len(after))
	for key := range before {
		keys[key] = struct{}{}
	}
	for key := range after {
		keys[key] = struct{}{}
	}

	for key := range keys {
		old := before[key]
		updated := after[key]
		if reflect.DeepEqual(old, updated) {
			continue
		}
		changes[key] = map[string]interface{}{
			KeyBefore: old,
			KeyAfter:  updated,
		}
	}
	return changes
}

// parseResponse decodes a response payload. API responses are wrapped in the
// {success, data, message} envelope, in which case the record under data is
// returned. Bodies that are not JSON fall back to their first 200 characters.
func parseResponse(body []byte) interface{} {
	var decoded interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return truncate(string(body), rawFallbackLimit)
	}

	if envelope, ok := decoded.(map[string]interface{}); ok {
		if _, hasSuccess := envelope["success"]; hasSuccess {
			if data, hasData := envelope["data"]; hasData && data != nil {
				return data
			}
		}
	}
	return decoded
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}
