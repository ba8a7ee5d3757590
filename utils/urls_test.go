package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareURL(t *testing.T) {
	t.Run("AppendsSingleParam", func(t *testing.T) {
		got, err := PrepareURL("http://x.test/p", map[string]string{"a": "1"})
		require.NoError(t, err)
		assert.Equal(t, "http://x.test/p?a=1", got)
	})

	t.Run("PreservesExistingQuery", func(t *testing.T) {
		got, err := PrepareURL("http://x.test/p?a=1", map[string]string{"b": "2"})
		require.NoError(t, err)
		assert.Equal(t, "http://x.test/p?a=1&b=2", got)
	})

	t.Run("EncodesValues", func(t *testing.T) {
		got, err := PrepareURL("http://x.test/p", map[string]string{"q": "a b"})
		require.NoError(t, err)
		assert.Equal(t, "http://x.test/p?q=a+b", got)
	})

	t.Run("NoParams", func(t *testing.T) {
		got, err := PrepareURL("http://x.test/p", nil)
		require.NoError(t, err)
		assert.Equal(t, "http://x.test/p", got)
	})
}

func TestUniqueFilename(t *testing.T) {
	pattern := regexp.MustCompile(`^qrcode-[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.svg$`)

	t.Run("MatchesPattern", func(t *testing.T) {
		name := UniqueFilename("qrcode", ".svg")
		assert.Regexp(t, pattern, name)
	})

	t.Run("NoDotDuplication", func(t *testing.T) {
		withDot := UniqueFilename("qrcode", ".svg")
		withoutDot := UniqueFilename("qrcode", "svg")
		assert.Regexp(t, pattern, withDot)
		assert.Regexp(t, pattern, withoutDot)
		assert.NotContains(t, withDot, "..")
	})

	t.Run("SuccessiveCallsDiffer", func(t *testing.T) {
		a := UniqueFilename("qrcode", ".svg")
		b := UniqueFilename("qrcode", ".svg")
		assert.NotEqual(t, a, b)
	})
}
