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

package pipeline

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

	"github.com/gameforge/handoff/pkg/config"
	"github.com/gameforge/handoff/pkg/gitrepo"
	"github.com/gameforge/handoff/pkg/parse"
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

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)
	return strings.TrimSpace(string(out))
}

func testConfig(t *testing.T, base string) *config.Config {
	t.Helper()
	cfg := &config.Config{
		Project: config.Project{Name: "Demo Game"},
		Git:     config.Git{Repository: "https://github.com/example/demo-assets.git"},
		Naming: config.Naming{
			Pattern: `^(?P<module>\w+)_(?P<category>\w+)_(?P<feature>[\w-]+)\.(?P<ext>\w+)$`,
			Example: "GameRes_Character_Hero.fbx",
		},
		PathTemplate: "{module}/{category}/{feature}/",
	}
	cfg.ResolveWorkspace(base)
	require.NoError(t, cfg.Validate(), "test config should validate")
	return cfg
}

// testWorkspace is a full workspace: inbox, a working copy cloned from a
// local bare remote, and the failed directory.
type testWorkspace struct {
	cfg    *config.Config
	remote string
}

func newTestWorkspace(t *testing.T, ctx context.Context) *testWorkspace {
	t.Helper()
	base := t.TempDir()
	cfg := testConfig(t, base)
	require.NoError(t, cfg.EnsureDirs(), "workspace dirs should be created")

	// Seed a bare remote with one commit on main.
	seed := filepath.Join(base, "seed")
	require.NoError(t, os.MkdirAll(seed, 0o755))
	runGit(t, seed, "init", "-b", "main")
	runGit(t, seed, "config", "user.email", "tests@example.com")
	runGit(t, seed, "config", "user.name", "tests")
	require.NoError(t, os.WriteFile(filepath.Join(seed, "README.md"), []byte("assets\n"), 0o644))
	runGit(t, seed, "add", "README.md")
	runGit(t, seed, "commit", "-m", "initial")
	remote := filepath.Join(base, "remote.git")
	runGit(t, base, "clone", "--bare", seed, remote)

	repo := gitrepo.New(cfg.RepoDir())
	require.NoError(t, repo.Clone(ctx, remote, "main"), "clone should succeed")
	runGit(t, cfg.RepoDir(), "config", "user.email", "tests@example.com")
	runGit(t, cfg.RepoDir(), "config", "user.name", "tests")

	return &testWorkspace{cfg: cfg, remote: remote}
}

func (w *testWorkspace) addInboxFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(w.cfg.Inbox(), name)
	require.NoError(t, os.WriteFile(path, []byte("asset bytes"), 0o644))
	return path
}

// breakRemote points origin at a path that does not exist, so every fetch
// and push fails.
func (w *testWorkspace) breakRemote(t *testing.T) {
	t.Helper()
	runGit(t, w.cfg.RepoDir(), "remote", "set-url", "origin", filepath.Join(w.cfg.WorkspaceBase(), "nowhere.git"))
}

func newProcessor(t *testing.T, cfg *config.Config) *Processor {
	t.Helper()
	proc, err := New(Options{Config: cfg})
	require.NoError(t, err, "New should succeed")
	return proc
}

func TestNewRejectsBadPattern(t *testing.T) {
	cfg := testConfig(t, t.TempDir())
	cfg.Naming.Pattern = `^(?P<module>\w+`

	_, err := New(Options{Config: cfg})
	require.Error(t, err, "New should reject a bad naming pattern")
	assert.True(t, errors.Is(err, parse.ErrBadPattern), "error should be ErrBadPattern")
}

func TestNewHonorsRepoOverride(t *testing.T) {
	ctx := testContext(t)
	base := t.TempDir()
	cfg := testConfig(t, base)
	require.NoError(t, cfg.EnsureDirs())

	elsewhere := filepath.Join(base, "other-checkout")
	proc, err := New(Options{Config: cfg, Repo: gitrepo.New(elsewhere)})
	require.NoError(t, err, "New should succeed")
	assert.Equal(t, elsewhere, proc.Repo().Path(), "override should replace the config default")

	// The precondition check runs against the override, not .repo.
	filePath := filepath.Join(cfg.Inbox(), "GameRes_Character_Hero.fbx")
	require.NoError(t, os.WriteFile(filePath, []byte("asset"), 0o644))

	res := proc.Process(ctx, filePath)
	require.Error(t, res.Err, "missing override working copy should fail the precondition")
	assert.Contains(t, res.Err.Error(), elsewhere, "error should name the overridden path")
}

func TestProcessSuccess(t *testing.T) {
	requireGit(t)
	ctx := testContext(t)
	ws := newTestWorkspace(t, ctx)
	proc := newProcessor(t, ws.cfg)

	filePath := ws.addInboxFile(t, "GameRes_Character_Hero.fbx")

	res := proc.Process(ctx, filePath)
	require.NoError(t, res.Err, "handoff should succeed")
	assert.Equal(t, StatePushed, res.State, "file should reach the pushed state")
	assert.True(t, res.Succeeded(), "result should count as success")

	wantRel := filepath.Join("Assets", "GameRes", "GameRes", "Character", "Hero", "GameRes_Character_Hero.fbx")
	assert.Equal(t, wantRel, res.TargetRel, "reported path should be repo-relative")

	// The file left the inbox and sits at its canonical path.
	assert.NoFileExists(t, filePath, "inbox should no longer hold the file")
	assert.FileExists(t, filepath.Join(ws.cfg.RepoDir(), wantRel), "working copy should hold the file")

	// The commit reached the remote, with the rendered template message.
	log := runGit(t, ws.remote, "log", "--format=%B", "-1", "main")
	assert.Contains(t, log, "Add Character", "commit subject should substitute the category")
	assert.Contains(t, log, "GameRes_Character_Hero.fbx", "commit body should list the file")
}

func TestProcessParseErrorLeavesFileInInbox(t *testing.T) {
	requireGit(t)
	ctx := testContext(t)
	ws := newTestWorkspace(t, ctx)
	proc := newProcessor(t, ws.cfg)

	filePath := ws.addInboxFile(t, "bad name.fbx")

	res := proc.Process(ctx, filePath)
	require.Error(t, res.Err, "handoff should fail")
	assert.True(t, errors.Is(res.Err, parse.ErrParse), "error should be ErrParse")
	assert.Equal(t, StateReturnedToInbox, res.State, "file should stay in the inbox")
	assert.FileExists(t, filePath, "inbox should still hold the file")
	assert.Contains(t, res.Err.Error(), ws.cfg.Naming.Example, "error should show the expected format")

	entries, err := os.ReadDir(ws.cfg.FailedDir())
	require.NoError(t, err)
	assert.Empty(t, entries, "failed dir should stay empty on a parse error")
}

func TestProcessMissingWorkingCopy(t *testing.T) {
	ctx := testContext(t)
	base := t.TempDir()
	cfg := testConfig(t, base)
	require.NoError(t, cfg.EnsureDirs())
	proc := newProcessor(t, cfg)

	filePath := filepath.Join(cfg.Inbox(), "GameRes_Character_Hero.fbx")
	require.NoError(t, os.WriteFile(filePath, []byte("asset"), 0o644))

	res := proc.Process(ctx, filePath)
	require.Error(t, res.Err, "handoff should fail fast")
	assert.True(t, errors.Is(res.Err, ErrProcess), "error should be ErrProcess")
	assert.Equal(t, StateReturnedToInbox, res.State, "failure should be side-effect-free")
	assert.FileExists(t, filePath, "inbox should be untouched")
}

func TestProcessGitFailureReturnsFileToInbox(t *testing.T) {
	requireGit(t)
	ctx := testContext(t)
	ws := newTestWorkspace(t, ctx)
	proc := newProcessor(t, ws.cfg)
	ws.breakRemote(t)

	filePath := ws.addInboxFile(t, "GameRes_Character_Hero.fbx")

	res := proc.Process(ctx, filePath)
	require.Error(t, res.Err, "handoff should fail")
	assert.True(t, errors.Is(res.Err, gitrepo.ErrRepo), "error should be ErrRepo")
	assert.Equal(t, StateReturnedToInbox, res.State, "file should be moved back")
	assert.FileExists(t, filePath, "compensating move should restore the inbox file")

	target := filepath.Join(ws.cfg.RepoDir(), "Assets", "GameRes", "GameRes", "Character", "Hero", "GameRes_Character_Hero.fbx")
	assert.NoFileExists(t, target, "working copy should not keep the uncommitted file")
}

func TestRecoverFallsBackToFailedDirWhenInboxGone(t *testing.T) {
	ctx := testContext(t)
	base := t.TempDir()
	cfg := testConfig(t, base)
	require.NoError(t, cfg.EnsureDirs())
	proc := newProcessor(t, cfg)

	// A file already relocated into the working copy.
	target := filepath.Join(base, ".repo", "Assets", "hero.fbx")
	require.NoError(t, os.MkdirAll(filepath.Dir(target), 0o755))
	require.NoError(t, os.WriteFile(target, []byte("asset"), 0o644))

	// The original inbox directory no longer exists.
	originalPath := filepath.Join(base, "vanished-inbox", "hero.fbx")

	res := proc.recoverFromGitFailure(ctx,
		Result{File: "hero.fbx", State: StateRelocated},
		target, originalPath, errors.New("push failed"))

	assert.Equal(t, StateMovedToFailed, res.State, "file should end in the failed dir")
	assert.FileExists(t, res.FinalPath, "failed dir should hold the file")
	assert.Equal(t, cfg.FailedDir(), filepath.Dir(res.FinalPath), "resting place should be the failed dir")
	assert.NoFileExists(t, target, "working copy should no longer hold the file")
}

func TestProcessBatch(t *testing.T) {
	requireGit(t)
	ctx := testContext(t)
	ws := newTestWorkspace(t, ctx)
	proc := newProcessor(t, ws.cfg)

	good := ws.addInboxFile(t, "GameRes_Character_Hero.fbx")
	bad := ws.addInboxFile(t, "nope.fbx")
	alsoGood := ws.addInboxFile(t, "GameRes_Prop_Crate.fbx")

	batch := proc.ProcessBatch(ctx, []string{good, bad, alsoGood})

	assert.Equal(t, 2, batch.Succeeded, "two files should succeed")
	assert.Equal(t, 1, batch.Failed, "one file should fail")
	assert.FileExists(t, bad, "the failing file should stay in the inbox")
	assert.NoFileExists(t, good, "succeeded files should leave the inbox")
	assert.NoFileExists(t, alsoGood, "a failure must not abort later files")
}
