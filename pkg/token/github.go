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

package token

import (
	"context"
	"net/url"
	"strings"

	"github.com/google/go-github/v60/github"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ✅ Validate checks a token against the GitHub API by fetching the
// authenticated user. Returns the login the token belongs to.
func Validate(ctx context.Context, tok string) (string, error) {
	client := github.NewClient(nil).WithAuthToken(tok)

	me, _, err := client.Users.Get(ctx, "")
	if err != nil {
		return "", errors.Errorf("validating token against GitHub: %w", err)
	}

	login := me.GetLogin()
	zerolog.Ctx(ctx).Debug().Str("login", login).Msg("token validated")
	return login, nil
}

// 🔗 InjectURL embeds a token into an https GitHub remote URL so that clone
// and push work without an interactive credential prompt. Non-GitHub URLs
// are returned unchanged.
func InjectURL(remoteURL, tok string) string {
	if tok == "" || !strings.HasPrefix(remoteURL, "https://github.com") {
		return remoteURL
	}

	u, err := url.Parse(remoteURL)
	if err != nil {
		return remoteURL
	}
	u.User = url.UserPassword("x-access-token", tok)
	return u.String()
}
