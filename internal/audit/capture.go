package audit

import (
	"context"
	"encoding/json"
)

// Subject tells the auditor whether the record touched by a call belongs to
// an identity with a display name. Only Owned and Unowned implement it.
type Subject interface {
	subject()
}

// Owned marks records that expose an owning identity, such as a student
// profile and its user account.
type Owned struct {
	FullName string
}

// Unowned marks records without an owning identity.
type Unowned struct{}

func (Owned) subject()   {}
func (Unowned) subject() {}

// OwnerName returns the owning identity's display name, if any.
func OwnerName(s Subject) (string, bool) {
	if owned, ok := s.(Owned); ok {
		return owned.FullName, true
	}
	return "", false
}

// Capture carries the state of one audited call from the middleware to the
// handler and back. Handlers may attach the subject and a pre-call snapshot;
// every method is safe on a nil receiver so handlers need no audit checks.
type Capture struct {
	request map[string]interface{}
	before  map[string]interface{}
	subject Subject
}

// NewCapture parses the request payload. Bodies that are empty or not a JSON
// object are recorded as an empty document.
func NewCapture(requestBody []byte) *Capture {
	return &Capture{request: decodeObject(requestBody), subject: Unowned{}}
}

// RequestData returns the parsed request payload.
func (c *Capture) RequestData() map[string]interface{} {
	if c == nil || c.request == nil {
		return map[string]interface{}{}
	}
	return c.request
}

// SnapshotBefore records the pre-call representation of the record being
// updated. The record is normalised through JSON so it compares cleanly with
// the response payload.
func (c *Capture) SnapshotBefore(record interface{}) {
	if c == nil || record == nil {
		return
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return
	}
	if snapshot := decodeObject(raw); len(snapshot) > 0 {
		c.before = snapshot
	}
}

// Before returns the pre-call state used for update diffs: the snapshot when
// the handler provided one, otherwise the request payload. Preferring the
// stored snapshot over the request body is a deliberate departure from the
// request-body rule, so a diff shows the stored value that was replaced.
func (c *Capture) Before() map[string]interface{} {
	if c == nil {
		return map[string]interface{}{}
	}
	if c.before != nil {
		return c.before
	}
	return c.RequestData()
}

// HasSnapshot reports whether a pre-call snapshot was attached.
func (c *Capture) HasSnapshot() bool {
	return c != nil && c.before != nil
}

// Bind attaches the subject of the call.
func (c *Capture) Bind(subject Subject) {
	if c == nil || subject == nil {
		return
	}
	c.subject = subject
}

// Subject returns the bound subject, Unowned by default.
func (c *Capture) Subject() Subject {
	if c == nil || c.subject == nil {
		return Unowned{}
	}
	return c.subject
}

type captureKey struct{}

// WithCapture stores the capture on ctx.
func WithCapture(ctx context.Context, capture *Capture) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, captureKey{}, capture)
}

// FromContext returns the capture stored on ctx, or nil when the call is not
// being audited.
func FromContext(ctx context.Context) *Capture {
	if ctx == nil {
		return nil
	}
	capture, _ := ctx.Value(captureKey{}).(*Capture)
	return capture
}

func decodeObject(raw []byte) map[string]interface{} {
	if len(raw) == 0 {
		return map[string]interface{}{}
	}
	var object map[string]interface{}
	if err := json.Unmarshal(raw, &object); err != nil || object == nil {
		return map[string]interface{}{}
	}
	return object
}
