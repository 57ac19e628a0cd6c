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
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/gameforge/handoff/pkg/config"
	"github.com/gameforge/handoff/pkg/gitrepo"
	"github.com/gameforge/handoff/pkg/log"
	"github.com/gameforge/handoff/pkg/parse"
	"github.com/gameforge/handoff/pkg/pathgen"
)

// ErrProcess indicates a handoff precondition failed before any filesystem
// mutation.
var ErrProcess = errors.Base("handoff precondition failed")

// 🚦 State is a file's position in the handoff state machine.
type State int

const (
	StatePending State = iota
	StateParsed
	StateRelocated
	StateCommitted
	StatePushed
	StateReturnedToInbox
	StateMovedToFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateParsed:
		return "parsed"
	case StateRelocated:
		return "relocated"
	case StateCommitted:
		return "committed"
	case StatePushed:
		return "pushed"
	case StateReturnedToInbox:
		return "returned_to_inbox"
	case StateMovedToFailed:
		return "moved_to_failed"
	default:
		return "unknown"
	}
}

// 📦 Result is one file's terminal outcome.
type Result struct {
	File      string // original filename
	State     State
	TargetRel string // repo-relative target path, set when pushed
	FinalPath string // absolute resting place of the file
	Err       error  // nil on success
}

// Succeeded reports whether the file completed the full handoff.
func (r Result) Succeeded() bool {
	return r.State == StatePushed
}

// 📊 BatchResult aggregates one batch run.
type BatchResult struct {
	Succeeded int
	Failed    int
}

// 🔧 Options configures a Processor.
type Options struct {
	// Config is the loaded project configuration.
	Config *config.Config
	// Repo overrides the working-copy adapter; defaults to the config's
	// .repo directory.
	Repo *gitrepo.Repo
}

// 🎮 Processor drives the per-file handoff state machine.
type Processor struct {
	cfg    *config.Config
	parser *parse.Parser
	paths  *pathgen.Generator
	repo   *gitrepo.Repo
	sink   *Sink
}

// 🏭 New creates a processor, compiling the naming pattern up front so that
// a bad pattern fails at construction rather than per file.
func New(opts Options) (*Processor, error) {
	if opts.Config == nil {
		return nil, errors.Errorf("config is required")
	}

	parser, err := parse.New(opts.Config.Naming.Pattern)
	if err != nil {
		return nil, errors.Errorf("building filename parser: %w", err)
	}

	repo := opts.Repo
	if repo == nil {
		repo = gitrepo.New(opts.Config.RepoDir())
	}

	return &Processor{
		cfg:    opts.Config,
		parser: parser,
		paths:  pathgen.New(opts.Config.PathTemplate, opts.Config.Project.AssetRoot),
		repo:   repo,
		sink:   NewSink(opts.Config.FailedDir()),
	}, nil
}

// Sink exposes the failure sink (the status command reports its location).
func (p *Processor) Sink() *Sink {
	return p.sink
}

// Repo exposes the working-copy adapter.
func (p *Processor) Repo() *gitrepo.Repo {
	return p.repo
}

// 🎯 Process runs the handoff state machine for a single file. The returned
// Result is always terminal: the file ends in the inbox, the pushed working
// copy, or the failed directory. Process never panics the batch loop.
func (p *Processor) Process(ctx context.Context, filePath string) Result {
	res := Result{File: filepath.Base(filePath), State: StatePending}
	logger := zerolog.Ctx(ctx)

	// Precondition: the check runs before any filesystem mutation, so this
	// failure is side-effect-free and the file stays in the inbox.
	if !p.repo.Exists() {
		res.State = StateReturnedToInbox
		res.FinalPath = filePath
		res.Err = errors.Errorf("working copy missing at %s, run setup first: %w", p.repo.Path(), ErrProcess)
		return res
	}

	parsed, err := p.parser.Parse(res.File)
	if err != nil {
		// The file never leaves the inbox on a parse failure.
		res.State = StateReturnedToInbox
		res.FinalPath = filePath
		res.Err = p.describeParseError(err)
		return res
	}
	res.State = StateParsed

	target, err := p.paths.Generate(parsed, p.repo.Path())
	if err != nil {
		res.State = StateReturnedToInbox
		res.FinalPath = filePath
		res.Err = err
		return res
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return p.routeUnknown(ctx, res, filePath, errors.Errorf("creating target directory: %w", err))
	}

	// First irreversible side effect.
	if err := moveFile(filePath, target); err != nil {
		return p.routeUnknown(ctx, res, filePath, errors.Errorf("moving file into working copy: %w", err))
	}
	res.State = StateRelocated
	logger.Debug().Str("file", res.File).Str("target", target).Msg("file relocated into working copy")

	if err := p.publish(ctx, parsed, target, &res.State); err != nil {
		return p.recoverFromGitFailure(ctx, res, target, filePath, err)
	}
	res.State = StatePushed

	if rel, err := filepath.Rel(p.repo.Path(), target); err == nil {
		res.TargetRel = rel
	}
	res.FinalPath = target
	return res
}

// publish runs the version-control phase: pull, add, commit, push. A
// rejected push gets exactly one pull+retry; never a force-push.
func (p *Processor) publish(ctx context.Context, parsed *parse.ParsedFilename, target string, state *State) error {
	if err := p.repo.Pull(ctx); err != nil {
		return err
	}
	if err := p.repo.Add(ctx, target); err != nil {
		return err
	}
	if err := p.repo.Commit(ctx, p.commitMessage(parsed)); err != nil {
		return err
	}
	*state = StateCommitted

	if err := p.repo.Push(ctx, p.cfg.Git.Branch); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("push rejected, retrying once after pull")
		if err := p.repo.Pull(ctx); err != nil {
			return err
		}
		return p.repo.Push(ctx, p.cfg.Git.Branch)
	}
	return nil
}

// commitMessage renders the configured commit template for one file.
func (p *Processor) commitMessage(parsed *parse.ParsedFilename) string {
	return strings.NewReplacer(
		"{module}", parsed.Module,
		"{category}", parsed.Category,
		"{feature}", parsed.Feature,
		"{file_count}", "1",
		"{file_list}", parsed.OriginalName,
	).Replace(p.cfg.Git.CommitTemplate)
}

// recoverFromGitFailure compensates for a git failure after the move: the
// file has left the inbox but never reached a committed-and-pushed state, and
// leaving it uncommitted in the working copy would corrupt repository
// cleanliness for the next file. Move it back to the inbox; when the inbox
// directory is gone, route it to the failed directory instead.
func (p *Processor) recoverFromGitFailure(ctx context.Context, res Result, target, originalPath string, cause error) Result {
	logger := zerolog.Ctx(ctx)
	res.Err = cause

	if dirExists(filepath.Dir(originalPath)) {
		if err := moveFile(target, originalPath); err != nil {
			// Last line of defense: report, never raise.
			logger.Error().Err(err).Str("file", res.File).Str("stranded_at", target).Msg("could not return file to inbox after git failure")
			res.FinalPath = target
			return res
		}
		logger.Warn().Err(cause).Str("file", res.File).Msg("git operation failed, file returned to inbox")
		res.State = StateReturnedToInbox
		res.FinalPath = originalPath
		return res
	}

	failedPath, err := p.sink.MoveToFailed(ctx, target)
	if err != nil {
		logger.Error().Err(err).Str("file", res.File).Str("stranded_at", target).Msg("could not move file to failed directory")
		res.FinalPath = target
		return res
	}
	res.State = StateMovedToFailed
	res.FinalPath = failedPath
	return res
}

// routeUnknown handles errors outside the typed taxonomy. The pipeline must
// never terminate with the file in limbo, so the file (still at its inbox
// path here) goes to the failure sink.
func (p *Processor) routeUnknown(ctx context.Context, res Result, filePath string, cause error) Result {
	res.Err = cause

	failedPath, err := p.sink.MoveToFailed(ctx, filePath)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("file", res.File).Msg("failure sink unavailable, file left in inbox")
		res.State = StateReturnedToInbox
		res.FinalPath = filePath
		return res
	}
	res.State = StateMovedToFailed
	res.FinalPath = failedPath
	return res
}

// describeParseError appends the configured naming example, when there is
// one, so the operator sees what a conforming name looks like.
func (p *Processor) describeParseError(err error) error {
	if p.cfg.Naming.Example == "" {
		return err
	}
	return errors.Errorf("%w (expected format, e.g. %s)", err, p.cfg.Naming.Example)
}

// 🔁 ProcessBatch hands off files strictly sequentially, in the order
// supplied. A failure never aborts the batch; the caller turns a non-zero
// failed count into a non-zero process exit.
func (p *Processor) ProcessBatch(ctx context.Context, files []string) BatchResult {
	user := log.NewUserLogger(ctx)
	var batch BatchResult

	for i, filePath := range files {
		user.LogFileStart(i+1, len(files), filepath.Base(filePath))

		res := p.Process(ctx, filePath)
		user.LogFileReport(fileReport(res))

		if res.Succeeded() {
			batch.Succeeded++
		} else {
			batch.Failed++
		}
	}

	user.LogSummary(batch.Succeeded, batch.Failed, p.sink.Dir())
	return batch
}

// fileReport maps a pipeline result onto the display form.
func fileReport(res Result) log.FileReport {
	report := log.FileReport{
		Name: res.File,
		Err:  res.Err,
	}
	switch res.State {
	case StatePushed:
		report.Outcome = log.Pushed
		report.FinalPath = res.TargetRel
	case StateReturnedToInbox:
		report.Outcome = log.ReturnedToInbox
		report.FinalPath = res.FinalPath
	case StateMovedToFailed:
		report.Outcome = log.MovedToFailed
		report.FinalPath = res.FinalPath
	default:
		report.Outcome = log.Lost
		report.FinalPath = res.FinalPath
	}
	return report
}
