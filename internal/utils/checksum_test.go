package utils

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sha256("hello")
const helloSHA = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"

func TestDigest(t *testing.T) {
	d := NewDigest()
	_, err := io.Copy(d, strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), d.Size())
	assert.Equal(t, helloSHA, d.SHA256())
}
