package models

import (
	"strings"

	"github.com/google/uuid"
)

func ensureID(id *string) {
	if strings.TrimSpace(*id) == "" {
		*id = uuid.NewString()
	}
}
