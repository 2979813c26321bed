package documents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimflow/claimflow-go/internal/domain/claims"
)

func TestCleanName(t *testing.T) {
	accepted := map[string]string{
		"photo.jpg":               "photo.jpg",
		" estimate.pdf ":          "estimate.pdf",
		"scans/page-1.png":        "page-1.png",
		`C:\Users\alice\bill.pdf`: "bill.pdf",
		"../../etc/report.txt":    "report.txt",
	}
	for in, want := range accepted {
		got, err := cleanName(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	rejected := []string{
		"",
		"..",
		"/",
		".env",
		"server.pem",
		"backup.KEY",
		"id_rsa",
		"scan%2e%2e.pdf",
		"scan%00.pdf",
		"a\x00b.pdf",
		string(make([]byte, 300)),
	}
	for _, in := range rejected {
		_, err := cleanName(in)
		assert.ErrorIs(t, err, claims.ErrValidation, "%q", in)
	}
}
