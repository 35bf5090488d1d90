package redisstore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyHashesToken(t *testing.T) {
	d := New(nil)

	k := d.key("abc")
	assert.True(t, strings.HasPrefix(k, defaultPrefix))
	assert.Len(t, strings.TrimPrefix(k, defaultPrefix), 64)
	assert.Equal(t, k, d.key("abc"))
	assert.NotEqual(t, k, d.key("abd"))
	assert.NotContains(t, k, "abc")
}
