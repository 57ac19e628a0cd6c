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

// Package parse turns raw asset filenames into structured fields using a
// configured naming pattern with named capture groups.
package parse

import (
	"regexp"

	"gitlab.com/tozd/go/errors"
)

var (
	// ErrBadPattern indicates the configured naming pattern is unusable.
	ErrBadPattern = errors.Base("invalid naming pattern")

	// ErrParse indicates a filename does not conform to the naming pattern.
	ErrParse = errors.Base("filename does not match naming pattern")
)

// requiredGroups are the capture groups every naming pattern must define.
var requiredGroups = []string{"module", "category", "feature"}

// 📦 ParsedFilename holds the structured fields extracted from a filename.
// It is produced once per input file and never mutated afterwards.
type ParsedFilename struct {
	Module       string
	Category     string
	Feature      string
	Variant      string // optional, empty when the pattern has no variant group
	Extension    string
	OriginalName string
}

// 🎯 Parser matches filenames against a single configured pattern.
type Parser struct {
	re *regexp.Regexp
}

// 🏭 New compiles the naming pattern and validates its capture groups.
// The pattern is anchored to the whole filename; partial matches never count.
func New(pattern string) (*Parser, error) {
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, errors.Errorf("compiling naming pattern %q: %w: %w", pattern, ErrBadPattern, err)
	}

	groups := make(map[string]bool)
	for _, name := range re.SubexpNames() {
		if name != "" {
			groups[name] = true
		}
	}
	for _, required := range requiredGroups {
		if !groups[required] {
			return nil, errors.Errorf("naming pattern is missing required capture group %q: %w", required, ErrBadPattern)
		}
	}

	return &Parser{re: re}, nil
}

// 📝 Parse extracts the structured fields from a filename.
// Pure function: no side effects, no filesystem access.
func (p *Parser) Parse(filename string) (*ParsedFilename, error) {
	match := p.re.FindStringSubmatch(filename)
	if match == nil {
		return nil, errors.Errorf("filename %q: %w", filename, ErrParse)
	}

	fields := make(map[string]string)
	for i, name := range p.re.SubexpNames() {
		if name != "" && i < len(match) {
			fields[name] = match[i]
		}
	}

	parsed := &ParsedFilename{
		Module:       fields["module"],
		Category:     fields["category"],
		Feature:      fields["feature"],
		Variant:      fields["variant"],
		Extension:    fields["ext"],
		OriginalName: filename,
	}
	if parsed.Extension == "" {
		parsed.Extension = fields["extension"]
	}

	// A group can match and still capture nothing (e.g. (?P<module>\w*)).
	if parsed.Module == "" || parsed.Category == "" || parsed.Feature == "" {
		return nil, errors.Errorf("filename %q is missing a required component: %w", filename, ErrParse)
	}

	return parsed, nil
}
