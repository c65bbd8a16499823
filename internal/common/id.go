package common

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
)

// NewBookID generates a unique book identifier with the "book_" prefix.
// Format: book_<uuid>
func NewBookID() string {
	return "book_" + uuid.New().String()
}

// NewHistoryID generates a unique history entry identifier.
func NewHistoryID() string {
	return "hist_" + uuid.New().String()
}

// NewClipID generates a unique accumulator clip identifier.
func NewClipID() string {
	return "clip_" + uuid.New().String()
}

// Fingerprint computes a stable hex digest over the given parts. Used to
// key the conversion cache on (classified input, active prompt identity).
func Fingerprint(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
