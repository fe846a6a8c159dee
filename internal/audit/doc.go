// Package audit turns a successful mutating HTTP call into an audit entry.
//
// The functions here are pure: they derive the entity label from the request
// path, map methods to actions and build the details document from the
// captured request/response payloads. The fiber middleware that decides when
// to audit and persists entries lives in internal/middleware.
package audit
