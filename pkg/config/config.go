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

// Package config loads and validates the per-project handoff configuration.
package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ErrConfig indicates bad or missing settings, detected at load time.
var ErrConfig = errors.Base("invalid configuration")

// Defaults applied when the config file leaves a field empty.
const (
	DefaultBranch    = "main"
	DefaultAssetRoot = "Assets/GameRes/"

	DefaultCommitTemplate = "feat(assets): Add {category}\n\n" +
		"Feature: {feature}\n" +
		"Files: {file_count}\n\n" +
		"{file_list}"
)

// allowedHosts are the repository URL prefixes the tool will talk to.
var allowedHosts = []string{
	"https://github.com",
	"https://gitee.com",
}

// 🔌 Parser is the interface for config parsers.
type Parser interface {
	// Parse parses the config from bytes.
	Parse(ctx context.Context, data []byte) (*Config, error)

	// CanParse checks if this parser can handle the given file.
	CanParse(filename string) bool
}

// 🗺️ parsers is the list of registered parsers.
var parsers []Parser

// 📝 Register registers a parser.
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file.
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📦 Project identifies the game project the assets belong to.
type Project struct {
	Name      string `yaml:"name" hcl:"name"`
	AssetRoot string `yaml:"asset_root" hcl:"asset_root,optional"`
}

// 🌿 Git holds the remote repository settings.
type Git struct {
	Repository     string `yaml:"repository" hcl:"repository"`
	Branch         string `yaml:"branch" hcl:"branch,optional"`
	CommitTemplate string `yaml:"commit_template" hcl:"commit_template,optional"`
}

// 🏷️ Naming holds the filename convention.
type Naming struct {
	Pattern string `yaml:"pattern" hcl:"pattern"`
	Example string `yaml:"example" hcl:"example,optional"`
}

// 🗂️ Workspace points at the directory tree the pipeline works in.
type Workspace struct {
	Base string `yaml:"base" hcl:"base,optional"`
}

// 📚 Config is the complete handoff configuration.
type Config struct {
	Project      Project    `yaml:"project" hcl:"project,block"`
	Git          Git        `yaml:"git" hcl:"git,block"`
	Naming       Naming     `yaml:"naming" hcl:"naming,block"`
	PathTemplate string     `yaml:"path_template" hcl:"path_template"`
	Workspace    *Workspace `yaml:"workspace" hcl:"workspace,block"`

	// workspaceBase is the resolved absolute workspace directory.
	workspaceBase string
}

// 🎯 Load loads and validates the configuration from a file. Relative
// workspace paths are resolved against the config file's directory.
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w: %w", ErrConfig, err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file %s: %w", path, ErrConfig)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	absConfig, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Errorf("resolving config path: %w", err)
	}
	cfg.ResolveWorkspace(filepath.Dir(absConfig))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ResolveWorkspace fixes up the workspace base relative to the config file
// location. Load calls this; tests building a Config by hand call it too.
func (cfg *Config) ResolveWorkspace(configDir string) {
	base := "./"
	if cfg.Workspace != nil && cfg.Workspace.Base != "" {
		base = cfg.Workspace.Base
	}
	if !filepath.IsAbs(base) {
		base = filepath.Join(configDir, base)
	}
	cfg.workspaceBase = filepath.Clean(base)
}

// 🔍 Validate checks required fields and applies defaults.
func (cfg *Config) Validate() error {
	required := []struct {
		value, field string
	}{
		{cfg.Project.Name, "project.name"},
		{cfg.Git.Repository, "git.repository"},
		{cfg.PathTemplate, "path_template"},
		{cfg.Naming.Pattern, "naming.pattern"},
	}
	for _, r := range required {
		if r.value == "" {
			return errors.Errorf("missing required field %s: %w", r.field, ErrConfig)
		}
	}

	allowed := false
	for _, host := range allowedHosts {
		if strings.HasPrefix(cfg.Git.Repository, host) {
			allowed = true
			break
		}
	}
	if !allowed {
		return errors.Errorf("unsupported repository host %s: %w", cfg.Git.Repository, ErrConfig)
	}

	if cfg.Git.Branch == "" {
		cfg.Git.Branch = DefaultBranch
	}
	if cfg.Git.CommitTemplate == "" {
		cfg.Git.CommitTemplate = DefaultCommitTemplate
	}
	if cfg.Project.AssetRoot == "" {
		cfg.Project.AssetRoot = DefaultAssetRoot
	}

	return nil
}

// WorkspaceBase returns the resolved absolute workspace directory.
func (cfg *Config) WorkspaceBase() string {
	return cfg.workspaceBase
}

// Inbox is the staging directory for files awaiting handoff.
func (cfg *Config) Inbox() string {
	return filepath.Join(cfg.workspaceBase, "inbox")
}

// RepoDir is the hidden local working copy.
func (cfg *Config) RepoDir() string {
	return filepath.Join(cfg.workspaceBase, ".repo")
}

// FailedDir is the terminal holding area for files that could not be
// handed off.
func (cfg *Config) FailedDir() string {
	return filepath.Join(cfg.workspaceBase, "failed")
}

// LogsDir holds operator-facing log files.
func (cfg *Config) LogsDir() string {
	return filepath.Join(cfg.workspaceBase, "logs")
}

// 🏗️ EnsureDirs creates the workspace directories the pipeline expects.
// The working copy itself is created by clone, not here.
func (cfg *Config) EnsureDirs() error {
	for _, dir := range []string{cfg.Inbox(), cfg.FailedDir(), cfg.LogsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Errorf("creating workspace directory %s: %w", dir, err)
		}
	}
	return nil
}
