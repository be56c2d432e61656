package stoplist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetBasic(t *testing.T) {
	set := New([]string{"the", "a", "and"})

	assert.True(t, set.IsStop("the"))
	assert.False(t, set.IsStop("hello"))
	assert.False(t, set.IsStop("The"), "membership should be exact")
}

func TestSetAddRemove(t *testing.T) {
	set := New([]string{"the"})

	set.Add("test")
	assert.True(t, set.IsStop("test"), "after Add")

	set.Remove("test")
	assert.False(t, set.IsStop("test"), "after Remove")
}

func TestSetAllSorted(t *testing.T) {
	set := New([]string{"zebra", "apple", "mango", ""})
	assert.Equal(t, []string{"apple", "mango", "zebra"}, set.All())
}

func TestNilSet(t *testing.T) {
	var set *Set
	assert.False(t, set.IsStop("the"))
	assert.Zero(t, set.Len())
	assert.Empty(t, set.All())
}

func TestEnglish(t *testing.T) {
	set := English()
	for _, w := range []string{"the", "we", "are", "on", "no", "off"} {
		assert.True(t, set.IsStop(w), "%q should be an English stopword", w)
	}
	assert.False(t, set.IsStop("polygon"))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stop.yaml")
	require.NoError(t, os.WriteFile(path, []byte("terms:\n  - gm\n  - wagmi\n"), 0o644))

	set, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, set.Len())
	assert.True(t, set.IsStop("wagmi"))
}

func TestLoadMissing(t *testing.T) {
	_, err := Load("/nonexistent/stop.yaml")
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	merged := New([]string{"gm"}).Merge(New([]string{"ser"}))
	assert.Equal(t, []string{"gm", "ser"}, merged.All())
}
