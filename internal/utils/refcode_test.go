package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateReferenceCodeFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^[a-z0-9]{20}$`)
	for i := 0; i < 100; i++ {
		code, err := GenerateReferenceCode()
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
	}
}

func TestGenerateReferenceCodeVaries(t *testing.T) {
	a, err := GenerateReferenceCode()
	require.NoError(t, err)
	b, err := GenerateReferenceCode()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
