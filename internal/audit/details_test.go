package audit

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildDetailsCommonKeys(t *testing.T) {
	capture := NewCapture([]byte(`{"term":"2024-1"}`))
	details := BuildDetails(Call{Method: "post", Path: "/api/enrollments", Role: "registrar", ResponseBody: []byte(`{"enrollment_id":"e1"}`)}, capture)

	require.Equal(t, "POST", details[KeyMethod])
	require.Equal(t, "/api/enrollments", details[KeyPath])
	require.Equal(t, "registrar", details[KeyUserRole])
	require.Equal(t, map[string]interface{}{"term": "2024-1"}, details[KeyRequestData])
	require.Equal(t, map[string]interface{}{"enrollment_id": "e1"}, details[KeyCreated])
}

func TestBuildDetailsMissingRoleIsNull(t *testing.T) {
	details := BuildDetails(Call{Method: "DELETE", Path: "/api/grades/12"}, NewCapture(nil))
	require.Contains(t, details, KeyUserRole)
	require.Nil(t, details[KeyUserRole])
	require.Equal(t, "12", details[KeyDeletedID])
}

func TestBuildDetailsUnwrapsEnvelope(t *testing.T) {
	body := []byte(`{"success":true,"message":"created","data":{"student_id":"s1"}}`)
	capture := NewCapture(nil)
	capture.Bind(Owned{FullName: "Ana Santos"})

	details := BuildDetails(Call{Method: "POST", Path: "/api/students", ResponseBody: body}, capture)
	require.Equal(t, map[string]interface{}{"student_id": "s1", "full_name": "Ana Santos"}, details[KeyCreated])
}

func TestBuildDetailsRawFallback(t *testing.T) {
	long := strings.Repeat("é", 250)
	details := BuildDetails(Call{Method: "POST", Path: "/api/notes", ResponseBody: []byte(long)}, NewCapture([]byte("not-json")))
	require.Equal(t, strings.Repeat("é", 200), details[KeyCreated])
	require.Equal(t, map[string]interface{}{}, details[KeyRequestData])
}

func TestBuildDetailsUpdateInjectsOwnerOnBothSides(t *testing.T) {
	capture := NewCapture([]byte(`{"status":"graduated"}`))
	capture.SnapshotBefore(map[string]interface{}{"status": "enrolled", "year_level": 4})
	capture.Bind(Owned{FullName: "Ana Santos"})

	body := []byte(`{"success":true,"data":{"status":"graduated","year_level":4}}`)
	details := BuildDetails(Call{Method: "PATCH", Path: "/api/students/1", ResponseBody: body}, capture)

	require.Equal(t, map[string]interface{}{
		"status": map[string]interface{}{KeyBefore: "enrolled", KeyAfter: "graduated"},
	}, details[KeyChanges])
}

func TestBuildDetailsUpdateWithoutSnapshotUsesRequest(t *testing.T) {
	capture := NewCapture([]byte(`{"status":"dropped"}`))
	capture.Bind(Owned{FullName: "Ana Santos"})

	body := []byte(`{"success":true,"data":{"status":"dropped"}}`)
	details := BuildDetails(Call{Method: "PUT", Path: "/api/students/1", ResponseBody: body}, capture)

	require.Equal(t, map[string]interface{}{
		"full_name": map[string]interface{}{KeyBefore: nil, KeyAfter: "Ana Santos"},
	}, details[KeyChanges])
}

func TestDiff(t *testing.T) {
	before := map[string]interface{}{"a": float64(1), "b": "x", "c": []interface{}{"p"}}
	after := map[string]interface{}{"a": float64(1), "b": "y", "d": true}

	require.Equal(t, map[string]interface{}{
		"b": map[string]interface{}{KeyBefore: "x", KeyAfter: "y"},
		"c": map[string]interface{}{KeyBefore: []interface{}{"p"}, KeyAfter: nil},
		"d": map[string]interface{}{KeyBefore: nil, KeyAfter: true},
	}, Diff(before, after))

	require.Empty(t, Diff(after, after))
}

func TestCaptureNilSafe(t *testing.T) {
	var capture *Capture
	capture.SnapshotBefore(map[string]interface{}{"a": 1})
	capture.Bind(Owned{FullName: "x"})
	require.Equal(t, map[string]interface{}{}, capture.RequestData())
	require.Equal(t, Unowned{}, capture.Subject())
	require.False(t, capture.HasSnapshot())
	require.Nil(t, FromContext(context.Background()))
}
