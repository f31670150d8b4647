package glossary_test

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/glossary"
)

func sampleEntries() []glossary.Entry {
	return []glossary.Entry{
		{
			Term:       "Window function",
			Definition: "A function computed over a partition of rows.",
			Aliases:    []string{"analytic function"},
		},
		{
			Term:       "Window frame",
			Definition: "The row range a window function aggregates over.",
			See:        []string{"Window function"},
		},
	}
}

func TestLookup(t *testing.T) {
	g, err := glossary.New(sampleEntries())
	require.NoError(t, err)

	entry, ok := g.Lookup("window function")
	require.True(t, ok)
	assert.Equal(t, "Window function", entry.Term)

	// Aliases resolve too, with case and padding ignored.
	entry, ok = g.Lookup("  ANALYTIC Function ")
	require.True(t, ok)
	assert.Equal(t, "Window function", entry.Term)

	_, ok = g.Lookup("sharding")
	assert.False(t, ok)
}

func TestTermsSorted(t *testing.T) {
	g, err := glossary.New(sampleEntries())
	require.NoError(t, err)

	assert.Equal(t, []string{"Window frame", "Window function"}, g.Terms())
	assert.Equal(t, 2, g.Len())
}

func TestAnchors(t *testing.T) {
	g, err := glossary.New(sampleEntries())
	require.NoError(t, err)

	anchors := g.Anchors()
	assert.Contains(t, anchors, "window-function")
	assert.Contains(t, anchors, "window-frame")

	assert.Equal(t, "window-function", glossary.Entry{Term: "Window function"}.Anchor())
}

func TestNewRejectsInvalidEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []glossary.Entry
		msg     string
	}{
		{
			"missing definition",
			[]glossary.Entry{{Term: "CTE"}},
			"glossary entry 0",
		},
		{
			"missing term",
			[]glossary.Entry{{Definition: "orphaned"}},
			"glossary entry 0",
		},
		{
			"duplicate term after folding",
			[]glossary.Entry{
				{Term: "CTE", Definition: "a"},
				{Term: "cte", Definition: "b"},
			},
			`"cte" collides with "CTE"`,
		},
		{
			"alias collides with term",
			[]glossary.Entry{
				{Term: "CTE", Definition: "a"},
				{Term: "Subquery", Definition: "b", Aliases: []string{"cte"}},
			},
			`"cte" collides with "CTE"`,
		},
		{
			"dangling see reference",
			[]glossary.Entry{
				{Term: "CTE", Definition: "a", See: []string{"Recursion"}},
			},
			`see reference "Recursion" does not exist`,
		},
		{
			"blank alias",
			[]glossary.Entry{
				{Term: "CTE", Definition: "a", Aliases: []string{"  "}},
			},
			"empty alias",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := glossary.New(tt.entries)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestLoad(t *testing.T) {
	fsys := fstest.MapFS{
		glossary.File: &fstest.MapFile{Data: []byte(`terms:
  - term: Anti-join
    definition: A join keeping only rows with no match on the other side.
`)},
	}

	g, err := glossary.Load(fsys)
	require.NoError(t, err)

	entry, ok := g.Lookup("anti-join")
	require.True(t, ok)
	assert.Equal(t, "Anti-join", entry.Term)
}

func TestLoadMissingFile(t *testing.T) {
	g, err := glossary.Load(fstest.MapFS{})
	require.NoError(t, err)
	assert.Equal(t, 0, g.Len())
}

func TestLoadMalformed(t *testing.T) {
	fsys := fstest.MapFS{
		glossary.File: &fstest.MapFile{Data: []byte("terms: [oops\n")},
	}
	_, err := glossary.Load(fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse "+glossary.File)
}
