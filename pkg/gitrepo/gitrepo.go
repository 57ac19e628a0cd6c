// Copyright 2025 gameforge
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package gitrepo wraps the external git binary over a single local working
// copy. The Repo assumes exclusive ownership of that working copy for the
// lifetime of a batch run; cross-process safety is an operational constraint,
// not something enforced here.
package gitrepo

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ErrRepo indicates an underlying git invocation failed. The wrapped message
// carries the tool's own diagnostic output.
var ErrRepo = errors.Base("git operation failed")

// 🎯 Repo is a thin adapter over a local working copy.
type Repo struct {
	path string
}

// 🏭 New creates a repo adapter for the working copy at path.
// Nothing is touched until an operation is invoked.
func New(path string) *Repo {
	return &Repo{path: path}
}

// Path returns the working-copy root.
func (r *Repo) Path() string {
	return r.path
}

// 🔍 Exists reports whether a git metadata directory is present.
func (r *Repo) Exists() bool {
	info, err := os.Stat(filepath.Join(r.path, ".git"))
	return err == nil && info.IsDir()
}

// 📥 Clone clones remoteURL at branch into the working-copy path.
// Fails when the path already holds a repository.
func (r *Repo) Clone(ctx context.Context, remoteURL, branch string) error {
	if r.Exists() {
		return errors.Errorf("repository already exists at %s: %w", r.path, ErrRepo)
	}

	zerolog.Ctx(ctx).Debug().Str("branch", branch).Str("path", r.path).Msg("cloning repository")

	cmd := exec.CommandContext(ctx, "git", "clone", "-b", branch, "--single-branch", remoteURL, r.path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return errors.Errorf("clone failed: %s: %w", strings.TrimSpace(string(out)), ErrRepo)
	}
	return nil
}

// 📡 Pull fetches and integrates the latest remote state. Always invoked
// before staging new files to minimize push races with other contributors.
func (r *Repo) Pull(ctx context.Context) error {
	if _, err := r.run(ctx, "pull"); err != nil {
		return err
	}
	return nil
}

// ➕ Add stages a file that already lives inside the working copy.
func (r *Repo) Add(ctx context.Context, path string) error {
	rel, err := r.relativize(path)
	if err != nil {
		return err
	}
	if _, err := r.run(ctx, "add", rel); err != nil {
		return err
	}
	return nil
}

// ➖ Remove deletes a tracked file from the working copy (git rm).
func (r *Repo) Remove(ctx context.Context, path string) error {
	rel, err := r.relativize(path)
	if err != nil {
		return err
	}
	if _, err := r.run(ctx, "rm", rel); err != nil {
		return err
	}
	return nil
}

// 💾 Commit records the staged changes. An empty staging area is a no-op
// success, which keeps retried handoffs idempotent.
func (r *Repo) Commit(ctx context.Context, message string) error {
	out, err := r.run(ctx, "commit", "-m", message)
	if err != nil {
		if strings.Contains(out, "nothing to commit") || strings.Contains(out, "nothing added to commit") {
			zerolog.Ctx(ctx).Debug().Msg("nothing to commit, treating as success")
			return nil
		}
		return err
	}
	return nil
}

// 📤 Push publishes local commits. branch may be empty to push the current
// branch. Rejections surface as ErrRepo; retry policy belongs to the caller
// and never includes a force-push.
func (r *Repo) Push(ctx context.Context, branch string) error {
	args := []string{"push"}
	if branch != "" {
		args = append(args, "origin", branch)
	}
	if _, err := r.run(ctx, args...); err != nil {
		return err
	}
	return nil
}

// 📋 Status returns short-form working-copy status. Diagnostic only, never
// used for control decisions.
func (r *Repo) Status(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "status", "--short")
	if err != nil {
		return "", err
	}
	return out, nil
}

// relativize converts an absolute path into a repo-relative one, rejecting
// anything outside the working copy.
func (r *Repo) relativize(path string) (string, error) {
	rel, err := filepath.Rel(r.path, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Errorf("path %s is not inside the repository %s: %w", path, r.path, ErrRepo)
	}
	return rel, nil
}

// run executes git with the working copy as cwd, returning combined output.
// No timeout is imposed: a hang in git hangs the batch, which is acceptable
// for an operator-supervised tool.
func (r *Repo) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.path
	out, err := cmd.CombinedOutput()
	text := strings.TrimSpace(string(out))
	if err != nil {
		return text, errors.Errorf("git %s failed: %s: %w", args[0], text, ErrRepo)
	}
	return text, nil
}
