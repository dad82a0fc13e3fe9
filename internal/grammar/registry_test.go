package grammar

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalDefinition = `
root: doc
types:
  - id: doc
  - id: article
    numbering: arabic
relations:
  - parent: doc
    children: [article]
`

func TestRegistry_LoadCaches(t *testing.T) {
	r := NewRegistry(nil, fstest.MapFS{
		"minimal.yaml": {Data: []byte(minimalDefinition)},
	})

	assert.False(t, r.Loaded("minimal"))

	first, err := r.Load("minimal")
	require.NoError(t, err)
	second, err := r.Load("minimal")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.True(t, r.Loaded("minimal"))
}

func TestRegistry_ConcurrentFirstLoad(t *testing.T) {
	r := NewRegistry(nil, Builtin())

	const workers = 16
	results := make([]*Grammar, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			g, err := r.Load("bill")
			if err != nil {
				t.Errorf("load failed: %v", err)
				return
			}
			results[i] = g
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		assert.Same(t, results[0], results[i])
	}
}

func TestRegistry_UnknownTemplate(t *testing.T) {
	r := NewRegistry(nil, Builtin())

	for _, id := range []string{"missing", "", "../bill", "a/b"} {
		t.Run(id, func(t *testing.T) {
			g, err := r.Load(id)
			require.Error(t, err)
			assert.Nil(t, g)
			assert.True(t, errors.Is(err, ErrUnknownTemplate))
			assert.True(t, errors.Is(err, ErrStructureDefinition))
		})
	}
}

func TestRegistry_FailedLoadNotCached(t *testing.T) {
	src := fstest.MapFS{
		"draft.yaml": {Data: []byte("root: [broken")},
	}
	r := NewRegistry(nil, src)

	_, err := r.Load("draft")
	require.Error(t, err)
	assert.False(t, r.Loaded("draft"))

	src["draft.yaml"] = &fstest.MapFile{Data: []byte(minimalDefinition)}
	g, err := r.Load("draft")
	require.NoError(t, err)
	assert.Equal(t, "draft", g.Template())
}

func TestRegistry_SourcePrecedence(t *testing.T) {
	override := fstest.MapFS{
		"bill.yaml": {Data: []byte(minimalDefinition)},
	}
	r := NewRegistry(nil, override, Builtin())

	g, err := r.Load("bill")
	require.NoError(t, err)
	assert.Len(t, g.Types(), 2)

	ids, err := r.Templates()
	require.NoError(t, err)
	assert.Equal(t, []string{"annex", "bill", "memorandum"}, ids)
}

func TestRegistry_Reset(t *testing.T) {
	override := fstest.MapFS{"bill.yaml": &fstest.MapFile{Data: []byte(`template: bill
root: body
types:
  - id: body
  - id: clause
relations:
  - parent: body
    children: [clause]
`)}}
	r := NewRegistry(slog.New(slog.NewTextHandler(io.Discard, nil)), Builtin())

	before, err := r.Load("bill")
	require.NoError(t, err)
	assert.False(t, before.HasType("clause"))

	r.Reset(override, Builtin())
	assert.False(t, r.Loaded("bill"))

	after, err := r.Load("bill")
	require.NoError(t, err)
	assert.True(t, after.HasType("clause"))
	assert.True(t, before.HasType("article"), "earlier grammar must stay intact")

	ids, err := r.Templates()
	require.NoError(t, err)
	assert.Contains(t, ids, "annex")
}

func TestGlobal(t *testing.T) {
	g, err := Global().Load("memorandum")
	require.NoError(t, err)
	assert.True(t, g.IsWildcardRelation("attachments"))
	assert.Same(t, Global(), Global())
}
