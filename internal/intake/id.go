package intake

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

// NewID creates a short opaque record identifier.
func NewID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return uuid.New().String()
	}
	return hex.EncodeToString(b)
}
