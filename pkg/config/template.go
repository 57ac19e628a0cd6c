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

package config

import (
	"fmt"
	"os"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// starterTemplate is the config file written by the init command. Comments
// are part of the file on purpose: the config is handed to artists who edit
// it by hand.
const starterTemplate = `# handoff project configuration
# Give this file to the artists; they run: handoff -c <this file> setup

project:
  name: %q
  # Root inside the repository that receives assets.
  asset_root: %q

git:
  repository: %q
  branch: "main"
  # Placeholders: {module} {category} {feature} {file_count} {file_list}
  # commit_template: "feat(assets): Add {category}: {feature}"

naming:
  # Must define named groups: module, category, feature. Optional: variant, ext.
  pattern: '^(?P<module>\w+)_(?P<category>\w+)_(?P<feature>[\w-]+)\.(?P<ext>\w+)$'
  example: "GameRes_Character_Hero.fbx"

path_template: "{module}/{category}/{feature}/"

workspace:
  # Resolved relative to this file when not absolute.
  base: "./"
`

// 📝 WriteStarter writes a commented starter config for a new project.
// Returns the path the config was written to.
func WriteStarter(path, projectName, gitURL, assetRoot string) (string, error) {
	if assetRoot == "" {
		assetRoot = DefaultAssetRoot
	}
	if path == "" {
		safe := strings.ToLower(projectName)
		safe = strings.ReplaceAll(safe, " ", "-")
		safe = strings.ReplaceAll(safe, "_", "-")
		path = safe + ".yaml"
	}

	content := fmt.Sprintf(starterTemplate, projectName, assetRoot, gitURL)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", errors.Errorf("writing config file %s: %w", path, err)
	}
	return path, nil
}
