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

// Package token stores access tokens encrypted at rest, keyed by a machine
// fingerprint. This keeps tokens out of plain text on shared artist machines;
// it is not a hard security boundary.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"os"
	"os/user"
	"path/filepath"
	"sort"
	"strings"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/crypto/nacl/secretbox"
)

// storageDirName is the per-user directory holding the encrypted blob.
const storageDirName = ".handoff"

// 🔐 Storage is an encrypted multi-project token store.
type Storage struct {
	file string
	key  [32]byte
}

// 🏭 NewStorage opens (or lazily creates) the token store for the current
// user and machine.
func NewStorage() (*Storage, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.Errorf("resolving home directory: %w", err)
	}

	dir := filepath.Join(home, storageDirName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Errorf("creating storage directory: %w", err)
	}

	return &Storage{
		file: filepath.Join(dir, "tokens.enc"),
		key:  machineKey(),
	}, nil
}

// machineKey derives the encryption key from machine identity. The same
// machine and user always derive the same key; a copied blob is useless
// elsewhere.
func machineKey() [32]byte {
	host, _ := os.Hostname()
	username := ""
	if u, err := user.Current(); err == nil {
		username = u.Username
	}

	id := host + username
	if strings.TrimSpace(id) == "" {
		id = "default_machine"
	}
	return sha256.Sum256([]byte(id))
}

// 💾 Save stores a token for a project.
func (s *Storage) Save(project, tok string) error {
	tokens := s.load()
	tokens[project] = tok
	return s.save(tokens)
}

// 🔍 Get returns the stored token for a project, if any.
func (s *Storage) Get(project string) (string, bool) {
	tok, ok := s.load()[project]
	return tok, ok
}

// 🗑️ Remove deletes a project's token. Removing a missing token is a no-op.
func (s *Storage) Remove(project string) error {
	tokens := s.load()
	if _, ok := tokens[project]; !ok {
		return nil
	}
	delete(tokens, project)
	return s.save(tokens)
}

// 📋 Projects lists the projects with a stored token.
func (s *Storage) Projects() []string {
	tokens := s.load()
	projects := make([]string, 0, len(tokens))
	for name := range tokens {
		projects = append(projects, name)
	}
	sort.Strings(projects)
	return projects
}

// load reads and decrypts the blob. A missing, corrupt, or undecryptable
// file reads as empty rather than failing: the store is rebuilt by the next
// save.
func (s *Storage) load() map[string]string {
	blob, err := os.ReadFile(s.file)
	if err != nil || len(blob) < 24 {
		return map[string]string{}
	}

	var nonce [24]byte
	copy(nonce[:], blob[:24])
	plain, ok := secretbox.Open(nil, blob[24:], &nonce, &s.key)
	if !ok {
		return map[string]string{}
	}

	var tokens map[string]string
	if err := json.Unmarshal(plain, &tokens); err != nil {
		return map[string]string{}
	}
	return tokens
}

func (s *Storage) save(tokens map[string]string) error {
	plain, err := json.Marshal(tokens)
	if err != nil {
		return errors.Errorf("encoding tokens: %w", err)
	}

	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return errors.Errorf("generating nonce: %w", err)
	}

	blob := secretbox.Seal(nonce[:], plain, &nonce, &s.key)
	if err := os.WriteFile(s.file, blob, 0o600); err != nil {
		return errors.Errorf("writing token file: %w", err)
	}
	return nil
}
