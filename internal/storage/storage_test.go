package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCVExtension(t *testing.T) {
	ext, ok := CVExtension("application/pdf")
	assert.True(t, ok)
	assert.Equal(t, ".pdf", ext)

	ext, ok = CVExtension("Application/PDF; charset=binary")
	assert.True(t, ok)
	assert.Equal(t, ".pdf", ext)

	_, ok = CVExtension("image/png")
	assert.False(t, ok)
}

func TestCVObjectName(t *testing.T) {
	a := CVObjectName("u1", ".pdf")
	b := CVObjectName("u1", ".pdf")
	assert.True(t, strings.HasPrefix(a, "cvs/u1/"))
	assert.True(t, strings.HasSuffix(a, ".pdf"))
	assert.NotEqual(t, a, b)
}
