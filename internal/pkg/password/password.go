package password

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// RandomPlaceholder generates a cryptographically random 64-character hex
// string. Federated accounts get one as their credential so the password
// login path can never match them.
func RandomPlaceholder() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate placeholder password: %w", err)
	}
	return hex.EncodeToString(b), nil
}
