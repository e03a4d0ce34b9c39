package gitlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/lanegraph/pkg/dag"
	"github.com/matzehuels/lanegraph/pkg/layout"
)

type fixture struct {
	dir        string
	a, b, c, d plumbing.Hash
}

// newFixture builds a repository shaped like
//
//	d (master)  merge of b and c
//	b           on top of a
//	c (side)    on top of a
//	a           root
func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)

	when := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	commit := func(msg string, parents ...plumbing.Hash) plumbing.Hash {
		t.Helper()
		name := msg + ".txt"
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(msg), 0o644))
		_, err := wt.Add(name)
		require.NoError(t, err)
		when = when.Add(time.Minute)
		h, err := wt.Commit(msg+"\n\nbody text", &git.CommitOptions{
			Author:  &object.Signature{Name: "Test", Email: "test@test.com", When: when},
			Parents: parents,
		})
		require.NoError(t, err)
		return h
	}

	f := fixture{dir: dir}
	f.a = commit("a")
	f.b = commit("b")
	f.c = commit("c", f.a)
	f.d = commit("d", f.b, f.c)

	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName("side"), f.c)
	require.NoError(t, repo.Storer.SetReference(ref))
	return f
}

func TestFrontiersDefaultToBranches(t *testing.T) {
	f := newFixture(t)
	r, err := Open(f.dir, Options{})
	require.NoError(t, err)

	frontiers, err := r.Frontiers()
	require.NoError(t, err)
	// master sorts before side
	assert.Equal(t, []string{f.d.String(), f.c.String()}, frontiers)
}

func TestFrontiersFromRevisions(t *testing.T) {
	f := newFixture(t)
	r, err := Open(f.dir, Options{Revisions: []string{"side", "HEAD~1", f.c.String()}})
	require.NoError(t, err)

	frontiers, err := r.Frontiers()
	require.NoError(t, err)
	assert.Equal(t, []string{f.c.String(), f.b.String()}, frontiers)

	bad, err := Open(f.dir, Options{Revisions: []string{"nope"}})
	require.NoError(t, err)
	_, err = bad.Frontiers()
	assert.Error(t, err)
}

func TestOpenFromSubdirectory(t *testing.T) {
	f := newFixture(t)
	sub := filepath.Join(f.dir, "nested", "dir")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	r, err := Open(sub, Options{})
	require.NoError(t, err)
	assert.Equal(t, f.dir, r.Root())

	_, err = Open(t.TempDir(), Options{})
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	f := newFixture(t)
	r, err := Open(f.dir, Options{})
	require.NoError(t, err)

	d, ok := r.Resolve(f.d.String())
	require.True(t, ok)
	assert.Equal(t, []string{f.b.String(), f.c.String()}, d.Deps)
	assert.Equal(t, int64(3), d.Lamport)
	assert.Equal(t, "d", d.Meta[dag.MetaMessage])
	assert.Equal(t, "Test", d.Meta[dag.MetaAuthor])
	assert.Equal(t, "d", d.Label())

	for h, want := range map[plumbing.Hash]int64{f.a: 1, f.b: 2, f.c: 2} {
		e, ok := r.Resolve(h.String())
		require.True(t, ok)
		assert.Equal(t, want, e.Lamport, "lamport of %s", e.Meta[dag.MetaMessage])
	}

	_, ok = r.Resolve("not-a-hash")
	assert.False(t, ok)
	_, ok = r.Resolve(plumbing.ZeroHash.String())
	assert.False(t, ok)
}

func TestLayoutOfRepository(t *testing.T) {
	f := newFixture(t)
	r, err := Open(f.dir, Options{Revisions: []string{"master"}})
	require.NoError(t, err)
	frontiers, err := r.Frontiers()
	require.NoError(t, err)

	view := layout.Compute(r, frontiers)
	require.NoError(t, view.Err())
	require.Len(t, view.Rows, 4)
	assert.Equal(t, f.d.String(), view.Rows[0].ID())
	assert.Equal(t, f.a.String(), view.Rows[3].ID())
	assert.Equal(t, 1, view.Rows[0].Forks())
	assert.Equal(t, 1, view.Rows[3].Merges())
}

func TestMaxCommitsTruncates(t *testing.T) {
	f := newFixture(t)
	r, err := Open(f.dir, Options{Revisions: []string{"master"}, MaxCommits: 2})
	require.NoError(t, err)
	frontiers, err := r.Frontiers()
	require.NoError(t, err)

	view := layout.Compute(r, frontiers)
	require.Len(t, view.Rows, 2)
	assert.ElementsMatch(t, []string{f.a.String(), f.c.String()}, view.Unresolved)

	// Generation numbers restart at the boundary.
	d, ok := r.Resolve(f.d.String())
	require.True(t, ok)
	assert.Equal(t, int64(2), d.Lamport)
}

func TestCollect(t *testing.T) {
	f := newFixture(t)
	r, err := Open(f.dir, Options{})
	require.NoError(t, err)
	frontiers, err := r.Frontiers()
	require.NoError(t, err)

	g, err := r.Collect(frontiers)
	require.NoError(t, err)
	assert.Equal(t, 4, g.EventCount())
	assert.Equal(t, 4, g.EdgeCount())
	assert.Equal(t, []string{f.d.String()}, g.Heads())
	assert.NoError(t, g.Validate())
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "fix lanes", summary("  fix lanes\n\nlonger body\n"))
	assert.Equal(t, "", summary(""))
}
