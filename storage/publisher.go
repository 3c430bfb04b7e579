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

package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gaiax-dataspace/trustnode/core"
)

const didDocumentFile = "did.json"
const certificateFile = "certificate.pem"

// FilePublisher persists participant onboarding artifacts under a web root, so
// <root>/<slug>/did.json and <root>/<slug>/certificate.pem can be served at the
// URLs a did:web identifier resolves to. Artifacts are immutable: publishing an
// already-published artifact fails.
type FilePublisher struct {
	root string
}

// NewFilePublisher creates a publisher rooted at the given directory.
func NewFilePublisher(root string) *FilePublisher {
	return &FilePublisher{root: root}
}

// PublishDIDDocument writes the participant's DID document.
func (p *FilePublisher) PublishDIDDocument(slug string, document []byte) error {
	return p.write(slug, didDocumentFile, document)
}

// PublishCertificateChain writes the participant's certificate chain.
func (p *FilePublisher) PublishCertificateChain(slug string, chainPEM []byte) error {
	return p.write(slug, certificateFile, chainPEM)
}

// CertificateChain returns the published certificate chain of a local participant.
func (p *FilePublisher) CertificateChain(slug string) ([]byte, error) {
	if err := validSlug(slug); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(p.root, slug, certificateFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, core.NewNotFoundError("participant %s has no published certificate chain", slug)
	}
	return data, err
}

func (p *FilePublisher) write(slug, name string, data []byte) error {
	if err := validSlug(slug); err != nil {
		return err
	}
	dir := filepath.Join(p.root, slug)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err == nil {
		return core.NewClientError("%s is already published for participant %s", name, slug)
	}
	return os.WriteFile(path, data, 0600)
}

func validSlug(slug string) error {
	if slug == "" || slug != filepath.Base(slug) {
		return core.NewClientError("invalid participant slug: %s", slug)
	}
	return nil
}
