package gitops

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNoChanges is returned when the file matches the last committed version.
var ErrNoChanges = errors.New("no changes to commit")

// Author identifies the commits fondo creates.
type Author struct {
	Name  string
	Email string
}

// DefaultAuthor is used when no author is configured.
var DefaultAuthor = Author{Name: "fondo", Email: "fondo@localhost"}

// IsRepo reports whether dir is the root of a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// EnsureRepo runs git init in dir unless it is already a repository.
func EnsureRepo(ctx context.Context, dir string) error {
	if IsRepo(dir) {
		return nil
	}
	if _, err := run(ctx, dir, "init", "--quiet"); err != nil {
		return err
	}
	return nil
}

// CommitFile stages one file and commits it. file may be absolute or
// relative to dir. Returns the short commit hash.
func CommitFile(ctx context.Context, dir, file, message string, author Author) (string, error) {
	rel := file
	if filepath.IsAbs(file) {
		r, err := filepath.Rel(dir, file)
		if err != nil {
			return "", fmt.Errorf("locating %s in %s: %w", file, dir, err)
		}
		rel = r
	}

	if _, err := run(ctx, dir, "add", "--", rel); err != nil {
		return "", err
	}
	staged, err := run(ctx, dir, "diff", "--cached", "--name-only", "--", rel)
	if err != nil {
		return "", err
	}
	if staged == "" {
		return "", fmt.Errorf("%s: %w", rel, ErrNoChanges)
	}

	// Identity is passed explicitly so commits work without a global git config.
	if _, err := run(ctx, dir,
		"-c", "user.name="+author.Name,
		"-c", "user.email="+author.Email,
		"commit", "--quiet", "-m", message, "--", rel,
	); err != nil {
		return "", err
	}
	return run(ctx, dir, "rev-parse", "--short", "HEAD")
}

func run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %s: %w", args[0], strings.TrimSpace(string(out)), err)
	}
	return strings.TrimSpace(string(out)), nil
}
