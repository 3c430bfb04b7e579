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

package jsonld

import (
	"embed"
	"fmt"
	"net/url"

	"github.com/piprate/json-gold/ld"
)

//go:embed assets/contexts/*.ldjson
var assets embed.FS

// embeddedFSDocumentLoader tries to load documents from an embedded filesystem.
type embeddedFSDocumentLoader struct {
	fs         embed.FS
	nextLoader ld.DocumentLoader
}

// NewEmbeddedFSDocumentLoader creates a new embeddedFSDocumentLoader for an embedded filesystem.
func NewEmbeddedFSDocumentLoader(fs embed.FS, nextLoader ld.DocumentLoader) ld.DocumentLoader {
	return &embeddedFSDocumentLoader{
		fs:         fs,
		nextLoader: nextLoader,
	}
}

// LoadDocument tries to load the document from the embedded filesystem.
// If the document is not a file or could not be found it tries the nextLoader.
func (e embeddedFSDocumentLoader) LoadDocument(path string) (*ld.RemoteDocument, error) {
	parsedURL, err := url.Parse(path)
	if err != nil {
		return nil, ld.NewJsonLdError(ld.LoadingDocumentFailed, fmt.Sprintf("error parsing URL: %s", path))
	}

	protocol := parsedURL.Scheme
	if protocol != "http" && protocol != "https" {
		remoteDoc := &ld.RemoteDocument{}
		remoteDoc.DocumentURL = path
		file, err := e.fs.Open(path)
		if err != nil {
			if e.nextLoader != nil {
				return e.nextLoader.LoadDocument(path)
			}
			return nil, ld.NewJsonLdError(ld.LoadingDocumentFailed, err)
		}
		defer file.Close()
		remoteDoc.Document, err = ld.DocumentFromReader(file)
		if err != nil {
			return nil, err
		}
		return remoteDoc, nil
	}
	if e.nextLoader != nil {
		return e.nextLoader.LoadDocument(path)
	}
	return nil, ld.NewJsonLdError(ld.LoadingDocumentFailed, nil)
}

// NewContextLoader creates a new JSON-LD context loader with the embedded FS as first loader.
// It loads the most used contexts from the embedded FS. This ensures the contents cannot be altered.
// If allowExternalCalls is set to true, it also loads external contexts from the internet.
func NewContextLoader(allowExternalCalls bool) (ld.DocumentLoader, error) {
	var nextLoader ld.DocumentLoader
	if allowExternalCalls {
		nextLoader = ld.NewDefaultDocumentLoader(nil)
	}
	loader := ld.NewCachingDocumentLoader(NewEmbeddedFSDocumentLoader(assets, nextLoader))
	if err := loader.PreloadWithMapping(map[string]string{
		"https://www.w3.org/2018/credentials/v1":                             "assets/contexts/w3c-credentials-v1.ldjson",
		"https://www.w3.org/ns/did/v1":                                       "assets/contexts/w3c-did-v1.ldjson",
		"https://w3c-ccg.github.io/lds-jws2020/contexts/lds-jws2020-v1.json": "assets/contexts/lds-jws2020-v1.ldjson",
		"https://registry.gaia-x.eu/v2206/api/shape":                         "assets/contexts/gaia-x-trustframework-v1.ldjson",
		"https://schema.org":                                                 "assets/contexts/schema-org.ldjson",
	}); err != nil {
		return nil, fmt.Errorf("unable to preload ld-contexts: %w", err)
	}
	return loader, nil
}
