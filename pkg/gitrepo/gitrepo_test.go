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

package gitrepo

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.TestWriter{T: t})
	return logger.WithContext(context.Background())
}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

// runGit runs a raw git command for test setup.
func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
	return strings.TrimSpace(string(out))
}

// newBareRemote builds a bare repository with one commit on main and returns
// its path, suitable as a clone/push target.
func newBareRemote(t *testing.T) string {
	t.Helper()
	base := t.TempDir()

	seed := filepath.Join(base, "seed")
	require.NoError(t, os.MkdirAll(seed, 0o755))
	runGit(t, seed, "init", "-b", "main")
	runGit(t, seed, "config", "user.email", "tests@example.com")
	runGit(t, seed, "config", "user.name", "tests")
	require.NoError(t, os.WriteFile(filepath.Join(seed, "README.md"), []byte("assets\n"), 0o644))
	runGit(t, seed, "add", "README.md")
	runGit(t, seed, "commit", "-m", "initial")

	bare := filepath.Join(base, "remote.git")
	runGit(t, base, "clone", "--bare", seed, bare)
	return bare
}

// cloneWorkingCopy clones the bare remote into dir and configures identity.
func cloneWorkingCopy(t *testing.T, ctx context.Context, remote, dir string) *Repo {
	t.Helper()
	repo := New(dir)
	require.NoError(t, repo.Clone(ctx, remote, "main"), "clone should succeed")
	runGit(t, dir, "config", "user.email", "tests@example.com")
	runGit(t, dir, "config", "user.name", "tests")
	return repo
}

func TestExists(t *testing.T) {
	requireGit(t)

	dir := t.TempDir()
	repo := New(filepath.Join(dir, "repo"))
	assert.False(t, repo.Exists(), "missing directory should not count as a repo")

	remote := newBareRemote(t)
	require.NoError(t, repo.Clone(testContext(t), remote, "main"))
	assert.True(t, repo.Exists(), "cloned directory should count as a repo")
}

func TestCloneRefusesExistingRepo(t *testing.T) {
	requireGit(t)
	ctx := testContext(t)

	remote := newBareRemote(t)
	dir := filepath.Join(t.TempDir(), "repo")
	repo := cloneWorkingCopy(t, ctx, remote, dir)

	err := repo.Clone(ctx, remote, "main")
	require.Error(t, err, "second clone should fail")
	assert.True(t, errors.Is(err, ErrRepo), "error should be ErrRepo")
}

func TestCloneBadBranch(t *testing.T) {
	requireGit(t)
	ctx := testContext(t)

	remote := newBareRemote(t)
	repo := New(filepath.Join(t.TempDir(), "repo"))

	err := repo.Clone(ctx, remote, "no-such-branch")
	require.Error(t, err, "clone of a missing branch should fail")
	assert.True(t, errors.Is(err, ErrRepo), "error should be ErrRepo")
	assert.Contains(t, err.Error(), "no-such-branch", "error should carry git's diagnostic output")
}

func TestAddOutsideRepo(t *testing.T) {
	repo := New(filepath.Join(t.TempDir(), "repo"))

	err := repo.Add(testContext(t), "/etc/passwd")
	require.Error(t, err, "adding a path outside the repo should fail")
	assert.True(t, errors.Is(err, ErrRepo), "error should be ErrRepo")
}

func TestRemoveOutsideRepo(t *testing.T) {
	repo := New(filepath.Join(t.TempDir(), "repo"))

	err := repo.Remove(testContext(t), filepath.Join(t.TempDir(), "elsewhere.txt"))
	require.Error(t, err, "removing a path outside the repo should fail")
	assert.True(t, errors.Is(err, ErrRepo), "error should be ErrRepo")
}

func TestCommitNothingToCommit(t *testing.T) {
	requireGit(t)
	ctx := testContext(t)

	remote := newBareRemote(t)
	repo := cloneWorkingCopy(t, ctx, remote, filepath.Join(t.TempDir(), "repo"))

	err := repo.Commit(ctx, "empty commit attempt")
	assert.NoError(t, err, "commit with nothing staged should be a no-op success")
}

func TestAddCommitPush(t *testing.T) {
	requireGit(t)
	ctx := testContext(t)

	remote := newBareRemote(t)
	dir := filepath.Join(t.TempDir(), "repo")
	repo := cloneWorkingCopy(t, ctx, remote, dir)

	require.NoError(t, repo.Pull(ctx), "pull should succeed")

	path := filepath.Join(dir, "Assets", "hero.fbx")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("mesh"), 0o644))

	require.NoError(t, repo.Add(ctx, path), "add should succeed")
	require.NoError(t, repo.Commit(ctx, "Add hero"), "commit should succeed")
	require.NoError(t, repo.Push(ctx, "main"), "push should succeed")

	// The remote should now have both commits.
	log := runGit(t, remote, "log", "--oneline", "main")
	assert.Len(t, strings.Split(log, "\n"), 2, "remote should have two commits")

	status, err := repo.Status(ctx)
	require.NoError(t, err, "status should succeed")
	assert.Empty(t, status, "working copy should be clean after push")
}

func TestPushRejected(t *testing.T) {
	requireGit(t)
	ctx := testContext(t)

	remote := newBareRemote(t)
	dir := filepath.Join(t.TempDir(), "repo")
	repo := cloneWorkingCopy(t, ctx, remote, dir)

	// Cut the remote out from under the clone.
	runGit(t, dir, "remote", "set-url", "origin", filepath.Join(t.TempDir(), "nowhere.git"))

	path := filepath.Join(dir, "late.fbx")
	require.NoError(t, os.WriteFile(path, []byte("mesh"), 0o644))
	require.NoError(t, repo.Add(ctx, path))
	require.NoError(t, repo.Commit(ctx, "Add late"))

	err := repo.Push(ctx, "main")
	require.Error(t, err, "push to a missing remote should fail")
	assert.True(t, errors.Is(err, ErrRepo), "error should be ErrRepo")
}
