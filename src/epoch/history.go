package epoch

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// History abstracts the version-control history of the version-indicator
// file, so the reconciler can be tested against synthetic histories.
type History interface {
	// Revisions lists up to limit revision ids that touched the artifact,
	// most recent first.
	Revisions(ctx context.Context, limit int) ([]string, error)

	// FileAt returns the artifact's content at the given revision.
	FileAt(ctx context.Context, rev string) ([]byte, error)
}

// GitHistory reads the history of a file in a git checkout by shelling out to
// the git binary.
type GitHistory struct {
	// RepoDir is the root of the checkout.
	RepoDir string

	// ArtifactPath is the path of the version-indicator file, relative to
	// RepoDir.
	ArtifactPath string
}

// Revisions runs git log on the artifact, bounded to limit entries.
func (g *GitHistory) Revisions(ctx context.Context, limit int) ([]string, error) {
	out, err := g.git(ctx, "log", "-n", fmt.Sprintf("%d", limit),
		"--format=%H", "--", g.ArtifactPath)
	if err != nil {
		return nil, err
	}

	var revs []string
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if line != "" {
			revs = append(revs, line)
		}
	}

	return revs, nil
}

// FileAt reads the artifact's committed content at rev, without touching the
// working tree.
func (g *GitHistory) FileAt(ctx context.Context, rev string) ([]byte, error) {
	return g.git(ctx, "show", rev+":"+g.ArtifactPath)
}

func (g *GitHistory) git(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.RepoDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git %s: %v: %s", args[0], err,
			strings.TrimSpace(stderr.String()))
	}

	return stdout.Bytes(), nil
}
