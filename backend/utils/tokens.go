package utils

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
)

// GenerateJoinCode returns a short random URL-safe token used to join a
// team. Uniqueness is enforced by the database; callers retry on a
// collision with a freshly generated code.
func GenerateJoinCode() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	code := base64.RawURLEncoding.EncodeToString(buf)
	return strings.TrimRight(code, "_-")
}
