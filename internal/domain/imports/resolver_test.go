package imports

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	departments := []ReferenceEntity{
		{ID: "d1", Name: "Engineering"},
		{ID: "d2", Name: "People Ops"},
	}

	t.Run("case-insensitive exact match", func(t *testing.T) {
		assert.Equal(t, "d1", Resolve("engineering", departments))
		assert.Equal(t, "d2", Resolve("PEOPLE OPS", departments))
	})

	t.Run("surrounding whitespace ignored", func(t *testing.T) {
		assert.Equal(t, "d1", Resolve("engineering ", departments))
	})

	t.Run("partial match is no match", func(t *testing.T) {
		assert.Equal(t, "", Resolve("Eng", departments))
	})

	t.Run("empty label", func(t *testing.T) {
		assert.Equal(t, "", Resolve("", departments))
		assert.Equal(t, "", Resolve("   ", departments))
	})

	t.Run("no candidates", func(t *testing.T) {
		assert.Equal(t, "", Resolve("Engineering", nil))
	})
}
