package objectkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	t.Run("LowercasesAndHyphenatesEachSpecialCharacter", func(t *testing.T) {
		// Two consecutive special characters must map to two hyphens, not
		// one: collapsing them would shorten the key grammar's prefix.
		assert.Equal(t, "acme---co-", Sanitize("Acme & Co."))
	})

	t.Run("LeavesAlphanumericsAlone", func(t *testing.T) {
		assert.Equal(t, "project123", Sanitize("Project123"))
	})

	t.Run("IsIdempotent", func(t *testing.T) {
		once := Sanitize("Acme & Co.")
		assert.Equal(t, once, Sanitize(once))
	})
}

func TestKeyBuilders(t *testing.T) {
	t.Run("Original", func(t *testing.T) {
		assert.Equal(t, "acme-proj-1/images/original/file-1.png", Original("Acme", "proj-1", "file-1", "png"))
	})

	t.Run("Variant", func(t *testing.T) {
		assert.Equal(t, "acme-proj-1/images/thumb/file-1.webp", Variant("Acme", "proj-1", "file-1", "thumb", "webp"))
	})

	t.Run("File", func(t *testing.T) {
		assert.Equal(t, "acme-proj-1/files/file-1.pdf", File("Acme", "proj-1", "file-1", "pdf"))
	})
}
