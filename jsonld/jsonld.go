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

// Package jsonld canonicalizes JSON-LD credentials so they can be hashed, signed and pinned.
package jsonld

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/piprate/json-gold/ld"

	"github.com/gaiax-dataspace/trustnode/core"
)

// ErrInvalidDocument is returned when a document cannot be interpreted as JSON-LD,
// or canonicalizes to the empty dataset (meaning none of its terms are mapped by a context).
var ErrInvalidDocument = errors.New("document is not valid JSON-LD")

// Canonicalizer normalizes JSON-LD documents with the URDNA2015 algorithm and hashes the result.
// Determinism is the whole point: two semantically identical documents must hash identically,
// any semantic change must change the hash.
type Canonicalizer struct {
	loader ld.DocumentLoader
}

// NewCanonicalizer creates a Canonicalizer that resolves contexts from the embedded
// filesystem only. Remote context resolution is disabled so hashing stays offline
// and cannot be influenced by a compromised context host.
func NewCanonicalizer() (*Canonicalizer, error) {
	loader, err := NewContextLoader(false)
	if err != nil {
		return nil, err
	}
	return &Canonicalizer{loader: loader}, nil
}

// Canonicalize normalizes the document according to the URDNA2015 [RDF-DATASET-NORMALIZATION]
// algorithm and returns the canonical N-Quads representation.
func (c *Canonicalizer) Canonicalize(document map[string]interface{}) ([]byte, error) {
	// round-trip through JSON so the processor sees plain maps/slices, whatever the caller passed in
	var input map[string]interface{}
	asJSON, err := json.Marshal(document)
	if err != nil {
		return nil, core.WrapError(ErrInvalidDocument, err)
	}
	if err := json.Unmarshal(asJSON, &input); err != nil {
		return nil, core.WrapError(ErrInvalidDocument, err)
	}

	proc := ld.NewJsonLdProcessor()
	options := ld.NewJsonLdOptions("")
	options.DocumentLoader = c.loader
	options.Format = "application/n-quads"
	options.Algorithm = "URDNA2015"

	result, err := proc.Normalize(input, options)
	if err != nil {
		return nil, core.WrapError(ErrInvalidDocument, fmt.Errorf("unable to normalize document: %w", err))
	}
	normalized, ok := result.(string)
	if !ok {
		return nil, core.WrapError(ErrInvalidDocument, fmt.Errorf("unexpected normalization result type %T", result))
	}
	if len(normalized) == 0 {
		// no term of the document is mapped by any context, signing this would sign nothing
		return nil, core.WrapError(ErrInvalidDocument, errors.New("document canonicalizes to the empty dataset"))
	}
	return []byte(normalized), nil
}

// Hash canonicalizes the document and returns the hex-encoded SHA-256 digest of the canonical form.
// The document must not contain a proof; use Fingerprint for documents that may carry one.
func (c *Canonicalizer) Hash(document map[string]interface{}) (string, error) {
	canonical, err := c.Canonicalize(document)
	if err != nil {
		return "", err
	}
	digest := sha256.Sum256(canonical)
	return hex.EncodeToString(digest[:]), nil
}

// Fingerprint hashes the document with its proof removed.
// It is used both for signing (the fingerprint is the signed message) and for
// pinning (future fetches of the same document must produce the same fingerprint).
func (c *Canonicalizer) Fingerprint(document map[string]interface{}) (string, error) {
	withoutProof, err := CopyWithoutProof(document)
	if err != nil {
		return "", err
	}
	return c.Hash(withoutProof)
}

// CopyWithoutProof returns a deep copy of the document with the proof field removed.
func CopyWithoutProof(document map[string]interface{}) (map[string]interface{}, error) {
	asJSON, err := json.Marshal(document)
	if err != nil {
		return nil, core.WrapError(ErrInvalidDocument, err)
	}
	var cp map[string]interface{}
	if err := json.Unmarshal(asJSON, &cp); err != nil {
		return nil, core.WrapError(ErrInvalidDocument, err)
	}
	delete(cp, "proof")
	return cp, nil
}
