package namegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	// When: a batch of names is generated
	for i := 0; i < 100; i++ {
		name := Generate()

		// Then: every name is three lowercase dash-joined words
		parts := strings.Split(name, "-")
		require.Len(t, parts, 3)

		for _, part := range parts {
			assert.NotEmpty(t, part)
			assert.Equal(t, strings.ToLower(part), part)
		}
	}
}
