package tags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "action", Normalize("  Action "))
	assert.Equal(t, "rpg", Normalize("RPG"))
	assert.Equal(t, "", Normalize("   "))
}

func TestSplit(t *testing.T) {
	t.Run("deduplicates and folds case", func(t *testing.T) {
		set := Split("Action, RPG, action , ,Indie")
		assert.Len(t, set, 3)
		assert.Contains(t, set, "action")
		assert.Contains(t, set, "rpg")
		assert.Contains(t, set, "indie")
	})

	t.Run("empty string yields empty set", func(t *testing.T) {
		assert.Empty(t, Split(""))
		assert.Empty(t, Split(" , ,"))
	})
}

func TestJoin(t *testing.T) {
	set := map[string]struct{}{"rpg": {}, "action": {}, "indie": {}}
	assert.Equal(t, "action,indie,rpg", Join(set))
}

func TestNormalizeSet(t *testing.T) {
	set := NormalizeSet([]string{"Action", " action", "RPG", ""})
	assert.Len(t, set, 2)
	assert.Contains(t, set, "action")
	assert.Contains(t, set, "rpg")
}
