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

// Package pathgen maps parsed filenames to their canonical location inside
// the working copy.
package pathgen

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gameforge/handoff/pkg/parse"
	"gitlab.com/tozd/go/errors"
)

// ErrTemplate indicates the path template references a field that does not
// exist on a parsed filename. This is a configuration mistake, in the same
// class as config.ErrConfig and parse.ErrBadPattern: fixing it means editing
// the config file, not the input files.
var ErrTemplate = errors.Base("path template references unknown field")

// maxComponentLen caps sanitized path components.
const maxComponentLen = 100

// unsafeChars are the characters never allowed inside a single path segment.
const unsafeChars = `<>:"|?*\/`

// placeholderRe finds template placeholders left unresolved after substitution.
var placeholderRe = regexp.MustCompile(`\{[^{}]*\}`)

// 🎯 Generator renders target paths from a path template and asset root.
// Same (parsed, repoRoot) input always yields the same path.
type Generator struct {
	pathTemplate string
	assetRoot    string
}

// 🏭 New creates a generator for the given template and asset-root prefix.
func New(pathTemplate, assetRoot string) *Generator {
	return &Generator{
		pathTemplate: pathTemplate,
		assetRoot:    assetRoot,
	}
}

// 📝 Generate renders the absolute target path for a parsed filename.
// Parsed fields are untrusted input and are sanitized before being
// interpolated into directory components.
func (g *Generator) Generate(parsed *parse.ParsedFilename, repoRoot string) (string, error) {
	rendered := strings.NewReplacer(
		"{module}", SanitizeComponent(parsed.Module),
		"{category}", SanitizeComponent(parsed.Category),
		"{feature}", SanitizeComponent(parsed.Feature),
		"{variant}", SanitizeComponent(parsed.Variant),
	).Replace(g.pathTemplate)

	if leftover := placeholderRe.FindString(rendered); leftover != "" {
		return "", errors.Errorf("placeholder %s in template %q: %w", leftover, g.pathTemplate, ErrTemplate)
	}

	return filepath.Join(repoRoot, filepath.FromSlash(g.assetRoot), filepath.FromSlash(rendered), parsed.OriginalName), nil
}

// 🧹 SanitizeComponent makes a string safe to use as a single path segment:
// characters illegal in path segments become underscores and the result is
// truncated to 100 characters. Truncation counts runes, not bytes, so
// multibyte names are never cut mid-character.
func SanitizeComponent(component string) string {
	sanitized := strings.Map(func(r rune) rune {
		if strings.ContainsRune(unsafeChars, r) {
			return '_'
		}
		return r
	}, component)

	if runes := []rune(sanitized); len(runes) > maxComponentLen {
		sanitized = string(runes[:maxComponentLen])
	}
	return sanitized
}
