// Package gitlog exposes a git repository's commit graph as a layout
// history.
//
// A [Repository] resolves commit hashes to events on demand: deps are the
// parent hashes, the lamport clock is the commit's generation number and the
// metadata carries the message summary, author and commit time. Generation
// numbers are computed iteratively and memoised, so deep histories do not
// grow the call stack.
//
// With [Options.MaxCommits] set, the commits reachable from the frontiers
// are prefetched breadth-first up to the bound. Anything beyond it resolves
// as absent and is reported as unresolved by the layout, which renders as a
// truncated history.
package gitlog

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/matzehuels/lanegraph/pkg/dag"
)

// ErrNoRevisions is returned when a repository has no branches and no HEAD.
var ErrNoRevisions = errors.New("repository has no commits")

// Options configures how a repository is read.
type Options struct {
	// Revisions to start from. Empty means every local branch head, or HEAD
	// when the repository has no branches.
	Revisions []string

	// MaxCommits bounds the prefetched history. Zero means unlimited.
	MaxCommits int
}

// Repository resolves commits of one git repository. It is safe for
// concurrent use.
type Repository struct {
	repo *git.Repository
	root string
	opts Options

	mu      sync.Mutex
	commits map[plumbing.Hash]*object.Commit // nil value: missing object
	gen     map[plumbing.Hash]int64
	allowed map[plumbing.Hash]bool // nil: unbounded
}

// Open opens the repository containing path. Parent directories are searched
// for the .git directory.
func Open(path string, opts Options) (*Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}

	root := path
	if wt, err := repo.Worktree(); err == nil {
		root = wt.Filesystem.Root()
	}

	return &Repository{
		repo:    repo,
		root:    root,
		opts:    opts,
		commits: make(map[plumbing.Hash]*object.Commit),
		gen:     make(map[plumbing.Hash]int64),
	}, nil
}

// Root returns the repository's worktree root.
func (r *Repository) Root() string { return r.root }

// Frontiers resolves the configured revisions to commit hashes, dropping
// duplicates. When MaxCommits is set it also prefetches the bounded history.
func (r *Repository) Frontiers() ([]string, error) {
	revs := r.opts.Revisions
	if len(revs) == 0 {
		var err error
		if revs, err = r.defaultRevisions(); err != nil {
			return nil, err
		}
	}

	var hashes []plumbing.Hash
	for _, rev := range revs {
		h, err := r.repo.ResolveRevision(plumbing.Revision(rev))
		if err != nil {
			return nil, fmt.Errorf("resolving revision %q: %w", rev, err)
		}
		if !slices.Contains(hashes, *h) {
			hashes = append(hashes, *h)
		}
	}

	if r.opts.MaxCommits > 0 {
		r.mu.Lock()
		r.prefetch(hashes, r.opts.MaxCommits)
		r.mu.Unlock()
	}

	ids := make([]string, len(hashes))
	for i, h := range hashes {
		ids[i] = h.String()
	}
	return ids, nil
}

// defaultRevisions lists local branch names sorted, or HEAD.
func (r *Repository) defaultRevisions() ([]string, error) {
	iter, err := r.repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("listing local branches: %w", err)
	}
	var names []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		names = append(names, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating local branches: %w", err)
	}
	if len(names) > 0 {
		slices.Sort(names)
		return names, nil
	}

	if _, err := r.repo.Head(); err != nil {
		return nil, ErrNoRevisions
	}
	return []string{"HEAD"}, nil
}

// prefetch marks up to limit commits reachable from heads, breadth-first.
func (r *Repository) prefetch(heads []plumbing.Hash, limit int) {
	r.allowed = make(map[plumbing.Hash]bool, limit)
	r.gen = make(map[plumbing.Hash]int64)
	queue := slices.Clone(heads)
	for len(queue) > 0 && len(r.allowed) < limit {
		h := queue[0]
		queue = queue[1:]
		if r.allowed[h] {
			continue
		}
		c := r.commit(h)
		if c == nil {
			continue
		}
		r.allowed[h] = true
		queue = append(queue, c.ParentHashes...)
	}
}

// Resolve implements layout.Resolver. IDs that are not full commit hashes,
// commits missing from the object store (shallow clones) and commits beyond
// the prefetch bound are absent.
func (r *Repository) Resolve(id string) (dag.Event, bool) {
	if !plumbing.IsHash(id) {
		return dag.Event{}, false
	}
	h := plumbing.NewHash(id)

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.visible(h) {
		return dag.Event{}, false
	}
	c := r.commits[h]

	var deps []string
	for _, p := range c.ParentHashes {
		deps = append(deps, p.String())
	}
	return dag.Event{
		ID:      id,
		Deps:    deps,
		Lamport: r.generation(h),
		Meta: dag.Metadata{
			dag.MetaMessage: summary(c.Message),
			dag.MetaAuthor:  c.Author.Name,
			dag.MetaTime:    c.Committer.When.UTC().Format(time.RFC3339),
		},
	}, true
}

// Collect resolves every visible commit reachable from frontiers into a DAG.
func (r *Repository) Collect(frontiers []string) (*dag.DAG, error) {
	g := dag.New(dag.Metadata{"source": r.root})
	seen := make(map[string]bool)
	stack := slices.Clone(frontiers)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		e, ok := r.Resolve(id)
		if !ok {
			continue
		}
		if err := g.AddEvent(e); err != nil {
			return nil, fmt.Errorf("commit %s: %w", id, err)
		}
		stack = append(stack, e.Deps...)
	}
	return g, nil
}

// commit loads and memoises a commit object. Missing objects yield nil.
func (r *Repository) commit(h plumbing.Hash) *object.Commit {
	if c, ok := r.commits[h]; ok {
		return c
	}
	c, err := r.repo.CommitObject(h)
	if err != nil {
		c = nil
	}
	r.commits[h] = c
	return c
}

func (r *Repository) visible(h plumbing.Hash) bool {
	if r.allowed != nil && !r.allowed[h] {
		return false
	}
	return r.commit(h) != nil
}

// generation returns 1 + the highest generation among visible parents, with
// roots and boundary commits at 1. The walk uses an explicit stack.
func (r *Repository) generation(h plumbing.Hash) int64 {
	if g, ok := r.gen[h]; ok {
		return g
	}
	stack := []plumbing.Hash{h}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if _, done := r.gen[top]; done {
			stack = stack[:len(stack)-1]
			continue
		}

		var highest int64
		pending := false
		for _, p := range r.commits[top].ParentHashes {
			if !r.visible(p) {
				continue
			}
			g, ok := r.gen[p]
			if !ok {
				stack = append(stack, p)
				pending = true
				continue
			}
			highest = max(highest, g)
		}
		if pending {
			continue
		}
		r.gen[top] = highest + 1
		stack = stack[:len(stack)-1]
	}
	return r.gen[h]
}

func summary(msg string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(msg), "\n")
	return strings.TrimSpace(line)
}
