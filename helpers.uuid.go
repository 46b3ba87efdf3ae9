package main

import (
	"strings"

	"github.com/gofrs/uuid"
)

var _ UIDHandler = (*IDsHandler)(nil)

// UIDHandler generates and checks the prefixed ids used across the
// catalog (books b:, authors a:, users u:, sessions s:, requests r:).
type UIDHandler interface {
	Generate(prefix string) string
	IsValid(id string, prefix string) bool
}

// IDsHandler implements the UIDHandler interface over random uuids.
type IDsHandler struct{}

// NewIDsHandler returns a ready to use IDsHandler.
func NewIDsHandler() *IDsHandler {
	return &IDsHandler{}
}

// Generate provides a random identifier under the given prefix.
func (idh *IDsHandler) Generate(prefix string) string {
	id, _ := uuid.NewV4()
	return prefix + ":" + id.String()
}

// IsValid reports whether the id carries the expected prefix followed
// by a well-formed uuid.
func (idh *IDsHandler) IsValid(id, prefix string) bool {
	rest, found := strings.CutPrefix(id, prefix+":")
	if !found {
		return false
	}
	return uuid.FromStringOrNil(rest) != uuid.Nil
}
