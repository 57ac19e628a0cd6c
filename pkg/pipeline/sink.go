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
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// timestampLayout is the collision suffix format, e.g. 20250830_154500.
const timestampLayout = "20060102_150405"

// 🪣 Sink is the durable holding area for files that could not be handed
// off. Files placed here are only ever cleaned up manually by an operator.
type Sink struct {
	dir string
}

// 🏭 NewSink creates a sink writing into dir. The directory is created on
// first use, not here.
func NewSink(dir string) *Sink {
	return &Sink{dir: dir}
}

// Dir returns the failed-files directory.
func (s *Sink) Dir() string {
	return s.dir
}

// 📁 MoveToFailed relocates a file into the failed directory, suffixing the
// stem with a timestamp when a same-named file is already there. Returns the
// file's resting place.
func (s *Sink) MoveToFailed(ctx context.Context, path string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", errors.Errorf("creating failed directory: %w", err)
	}

	name := filepath.Base(path)
	dest := filepath.Join(s.dir, name)
	if fileExists(dest) {
		ext := filepath.Ext(name)
		stem := strings.TrimSuffix(name, ext)
		dest = filepath.Join(s.dir, stem+"_"+time.Now().Format(timestampLayout)+ext)
	}

	if err := moveFile(path, dest); err != nil {
		return "", errors.Errorf("moving %s to failed directory: %w", path, err)
	}

	zerolog.Ctx(ctx).Warn().Str("file", name).Str("failed_path", dest).Msg("file moved to failed directory")
	return dest, nil
}
