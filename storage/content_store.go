/*
 * Copyright (C) 2025 Gaia-X dataspace community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 *
 */

// Package storage provides the filesystem and SQL persistence for the trust node.
package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gaiax-dataspace/trustnode/core"
	"github.com/gaiax-dataspace/trustnode/storage/log"
)

// FileContentStore stores credential bodies on disk, keyed by contract id.
// Intermediate directories are created as needed.
type FileContentStore struct {
	root string
}

// NewFileContentStore creates a content store rooted at the given directory.
func NewFileContentStore(root string) *FileContentStore {
	return &FileContentStore{root: root}
}

// Store writes the data under the given key, creating intermediate paths.
// An existing entry is overwritten: the stored credential body evolves as
// signatures are added.
func (s *FileContentStore) Store(key string, data []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Read returns the data stored under the given key.
func (s *FileContentStore) Read(key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, core.NewNotFoundError("no stored content for key %s", key)
	}
	return data, err
}

// Delete removes the data stored under the given key. Deleting a key that does not exist is not an error.
func (s *FileContentStore) Delete(key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	log.Logger().WithField(core.LogFieldContractID, key).Debug("Deleted stored credential body")
	return nil
}

func (s *FileContentStore) path(key string) (string, error) {
	if key == "" || key != filepath.Base(key) {
		// keys are contract ids, anything path-like is malicious or a bug
		return "", core.NewClientError("invalid content store key: %s", key)
	}
	return filepath.Join(s.root, key+".json"), nil
}
