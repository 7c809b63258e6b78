package gitctx

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// RepoMeta contains git repository metadata.
type RepoMeta struct {
	Root   string
	Head   string
	Branch string
}

// ErrNoMergeBase is returned by Range when the two revisions share no history.
var ErrNoMergeBase = errors.New("no merge base")

func openRepo(dir string) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %w", err)
	}
	return repo, nil
}

// GetRepoMeta collects repository metadata for the repository containing dir.
func GetRepoMeta(dir string) (RepoMeta, error) {
	repo, err := openRepo(dir)
	if err != nil {
		return RepoMeta{}, err
	}
	var meta RepoMeta
	if wt, err := repo.Worktree(); err == nil {
		meta.Root = wt.Filesystem.Root()
	}
	// A repository without commits has no HEAD yet.
	if ref, err := repo.Head(); err == nil {
		meta.Head = ref.Hash().String()
		if ref.Name().IsBranch() {
			meta.Branch = ref.Name().Short()
		}
	}
	return meta, nil
}

// Commit returns the diff for a single commit against its first parent. A
// root commit is diffed against the empty tree.
func Commit(ctx context.Context, rev string, opts DiffOptions) (DiffResult, error) {
	repo, err := openRepo(opts.dir())
	if err != nil {
		return DiffResult{}, err
	}
	commit, err := resolveCommit(repo, rev)
	if err != nil {
		return DiffResult{}, err
	}

	var parent *object.Commit
	if commit.NumParents() > 0 {
		if parent, err = commit.Parent(0); err != nil {
			return DiffResult{}, fmt.Errorf("reading parent of %s: %w", rev, err)
		}
	}
	diff, err := treeDiff(ctx, parent, commit)
	if err != nil {
		return DiffResult{}, fmt.Errorf("diffing %s: %w", rev, err)
	}

	res := buildResult(diff, "commit", commit.Hash.String(), opts)
	res.Repo, _ = GetRepoMeta(opts.dir())
	return res, nil
}

// Range returns the combined diff for a revision range "base..head". With
// "base...head", or when mergeBase is set, the diff starts at the merge base
// of the two revisions.
func Range(ctx context.Context, revRange string, mergeBase bool, opts DiffOptions) (DiffResult, error) {
	baseRev, headRev, threeDot, err := splitRange(revRange)
	if err != nil {
		return DiffResult{}, err
	}
	repo, err := openRepo(opts.dir())
	if err != nil {
		return DiffResult{}, err
	}
	base, err := resolveCommit(repo, baseRev)
	if err != nil {
		return DiffResult{}, err
	}
	head, err := resolveCommit(repo, headRev)
	if err != nil {
		return DiffResult{}, err
	}

	if mergeBase || threeDot {
		bases, err := head.MergeBase(base)
		if err != nil {
			return DiffResult{}, fmt.Errorf("computing merge base: %w", err)
		}
		if len(bases) == 0 {
			return DiffResult{}, fmt.Errorf("%w between %s and %s", ErrNoMergeBase, baseRev, headRev)
		}
		base = bases[0]
	}

	diff, err := treeDiff(ctx, base, head)
	if err != nil {
		return DiffResult{}, fmt.Errorf("diffing %s: %w", revRange, err)
	}
	res := buildResult(diff, "range", revRange, opts)
	res.Repo, _ = GetRepoMeta(opts.dir())
	return res, nil
}

func splitRange(revRange string) (base, head string, threeDot bool, err error) {
	sep := ".."
	if strings.Contains(revRange, "...") {
		sep, threeDot = "...", true
	}
	base, head, ok := strings.Cut(revRange, sep)
	if !ok || base == "" {
		return "", "", false, fmt.Errorf("invalid range %q: expected <base>..<head>", revRange)
	}
	if head == "" {
		head = "HEAD"
	}
	return base, head, threeDot, nil
}

func resolveCommit(repo *git.Repository, rev string) (*object.Commit, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", rev, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("reading commit %s: %w", rev, err)
	}
	return commit, nil
}

// treeDiff renders the unified diff between the trees of two commits. A nil
// from commit stands for the empty tree.
func treeDiff(ctx context.Context, from, to *object.Commit) (string, error) {
	toTree, err := to.Tree()
	if err != nil {
		return "", err
	}
	var fromTree *object.Tree
	if from != nil {
		if fromTree, err = from.Tree(); err != nil {
			return "", err
		}
	}
	changes, err := object.DiffTreeWithOptions(ctx, fromTree, toTree, object.DefaultDiffTreeOptions)
	if err != nil {
		return "", err
	}
	patch, err := changes.PatchContext(ctx)
	if err != nil {
		return "", err
	}
	return patch.String(), nil
}
