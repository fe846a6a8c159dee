package service

import (
	"errors"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/noah-isme/rci-portal-api/internal/dto"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID   string
	Role string
}

// Is reports whether the actor holds one of roles.
func (a Actor) Is(roles ...string) bool {
	role := normalizeRole(a.Role)
	for _, r := range roles {
		if role == r {
			return true
		}
	}
	return false
}

var plainText = bluemonday.StrictPolicy()

// sanitizeText strips markup from free-form user input.
func sanitizeText(value string) string {
	return strings.TrimSpace(plainText.Sanitize(value))
}

func normalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}

// maskEmailAddress keeps the first and last character of the local part for logs.
func maskEmailAddress(email string) string {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return ""
	}
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || strings.Contains(domain, "@") {
		return "***"
	}
	if len(local) <= 2 {
		return local[:1] + "***@" + domain
	}
	return local[:1] + "***" + local[len(local)-1:] + "@" + domain
}

// translateNotFound maps gorm.ErrRecordNotFound onto a domain error.
func translateNotFound(err error, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateRecord
	}
	return err
}

func emptyList[T any](page, pageSize int) dto.ListResponse[T] {
	return dto.ListResponse[T]{Items: []T{}, Pagination: dto.NewPaginationMeta(page, pageSize, 0)}
}
