package engine

import "github.com/google/uuid"

// generateID returns a random UUIDv4 session identifier.
func generateID() string {
	return uuid.NewString()
}
