package handler

import "github.com/google/uuid"

// parseUUID parses a UUID from its string form
func parseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}
