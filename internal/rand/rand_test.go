package rand

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestName(t *testing.T) {
	name := Name("cmislib-test-", 10)
	assert.True(t, strings.HasPrefix(name, "cmislib-test-"))
	assert.Len(t, name, len("cmislib-test-")+10)
	for _, c := range strings.TrimPrefix(name, "cmislib-test-") {
		assert.True(t, strings.ContainsRune(charset, c), "unexpected %q", c)
	}
	assert.NotEqual(t, Name("", 16), Name("", 16))
}

func BenchmarkName(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Name("x-", 16)
	}
}
