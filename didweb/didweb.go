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

// Package didweb derives, resolves and creates did:web identities for Gaia-X participants.
package didweb

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/nuts-foundation/go-did/did"
)

// MethodName is the only supported DID method.
const MethodName = "web"

// VerificationMethodName is the single fixed verification method name used throughout.
// Multi-algorithm verification methods are a non-goal.
const VerificationMethodName = "JWK2020-RSA"

// pathPrefix is the path segment under which participant artifacts are published.
const pathPrefix = "gaia-x"

// ErrUnsupportedMethod is returned when a DID with a method other than did:web is resolved.
var ErrUnsupportedMethod = errors.New("only did:web is supported")

// EscapeDomain percent-encodes the colon separating host and port, per the did:web method.
func EscapeDomain(domain string) string {
	return strings.ReplaceAll(domain, ":", "%3A")
}

// DID derives the did:web identifier of the participant with the given slug on the given domain.
func DID(domain, slug string) string {
	return "did:" + MethodName + ":" + EscapeDomain(domain) + ":" + pathPrefix + ":" + slug
}

// DIDWithVerification returns the DID URL of the participant's verification method.
func DIDWithVerification(domain, slug string) string {
	return DID(domain, slug) + "#" + VerificationMethodName
}

// ResolveDocumentURL maps a did:web identifier to the HTTPS URL of its DID document,
// following the did:web read (resolve) algorithm: the first colon-separated part is the
// authority, the remaining parts are path segments. A DID without path segments resolves
// under /.well-known/.
func ResolveDocumentURL(identifier string) (*url.URL, error) {
	id, err := did.ParseDID(identifier)
	if err != nil {
		return nil, fmt.Errorf("invalid did: %w", err)
	}
	if id.Method != MethodName {
		return nil, ErrUnsupportedMethod
	}

	parts := strings.Split(id.ID, ":")
	domain, err := url.PathUnescape(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid did:web: %w", err)
	}

	segments := parts[1:]
	if len(segments) == 0 {
		segments = []string{".well-known"}
	}
	segments = append(segments, "did.json")

	return url.Parse("https://" + domain + "/" + strings.Join(segments, "/"))
}
