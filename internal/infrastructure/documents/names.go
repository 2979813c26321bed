package documents

import (
	"fmt"
	"path"
	"strings"

	"github.com/claimflow/claimflow-go/internal/domain/claims"
)

// maxNameLength bounds a stored file name.
const maxNameLength = 255

// Encoded traversal and null byte forms that survive base-name reduction.
var encodedPatterns = []string{"%2e%2e", "%252e%252e", "%00", "\x00"}

// Sensitive files are never accepted as claim attachments.
var (
	blockedExtensions = []string{".env", ".pem", ".key", ".crt", ".pfx", ".p12", ".jks", ".keystore", ".secret", ".credentials"}
	blockedNames      = []string{"id_rsa", "id_dsa", "id_ecdsa", "id_ed25519", "shadow", "passwd", "authorized_keys", "known_hosts"}
)

// cleanName reduces a client supplied file name to its base name and
// screens it.
func cleanName(name string) (string, error) {
	base := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	switch {
	case base == "" || base == "." || base == "/" || base == "..":
		return "", invalidName(name, "empty")
	case len(base) > maxNameLength:
		return "", invalidName(name, fmt.Sprintf("longer than %d characters", maxNameLength))
	case strings.HasPrefix(base, "."):
		return "", invalidName(name, "hidden file")
	}

	lower := strings.ToLower(base)
	for _, p := range encodedPatterns {
		if strings.Contains(lower, p) {
			return "", invalidName(name, "encoded path characters")
		}
	}
	for _, n := range blockedNames {
		if lower == n {
			return "", invalidName(name, "blocked file name")
		}
	}
	ext := path.Ext(lower)
	for _, e := range blockedExtensions {
		if ext == e {
			return "", invalidName(name, "blocked file extension")
		}
	}
	return base, nil
}

func invalidName(name, reason string) error {
	return fmt.Errorf("%w: invalid document name %q: %s", claims.ErrValidation, name, reason)
}
