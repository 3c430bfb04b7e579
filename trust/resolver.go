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

// Package trust fetches and validates the remote documents a participant's trust
// rests on: its Participant credential, its DID document and its certificate chain.
package trust

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gaiax-dataspace/trustnode/core"
	"github.com/gaiax-dataspace/trustnode/credential"
	"github.com/gaiax-dataspace/trustnode/didweb"
	"github.com/gaiax-dataspace/trustnode/trust/log"
)

// Resolver fetches remote trust documents over HTTPS.
type Resolver struct {
	HTTPClient *http.Client
}

// NewResolver creates a Resolver with the default strict HTTP client.
func NewResolver() *Resolver {
	return &Resolver{HTTPClient: core.NewStrictHTTPClient(core.DefaultHTTPTimeout)}
}

// FetchOptions control how fetched documents are validated.
type FetchOptions struct {
	// SkipValidation skips schema validation of the fetched document.
	// After the initial proposal, re-fetches only need fingerprint comparison for tamper
	// detection; re-validating would reject legitimately-evolving-but-unpinned fields.
	SkipValidation bool
}

// FetchParticipant fetches and parses a remote Participant credential. Unless skipped,
// the credential is validated against the Participant credential schema and its proof's
// verificationMethod must belong to its issuer DID.
func (r *Resolver) FetchParticipant(ctx context.Context, rawURL string, options FetchOptions) (credential.Document, error) {
	document, err := r.fetchJSON(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if options.SkipValidation {
		return document, nil
	}
	if err := ValidateParticipantCredential(document); err != nil {
		return nil, err
	}

	issuer, _ := document["issuer"].(string)
	proofs, err := credential.Proofs(document)
	if err != nil {
		return nil, err
	}
	if len(proofs) != 1 {
		return nil, core.NewClientError("Participant credential must carry exactly 1 proof, got %d", len(proofs))
	}
	if issuer+"#"+didweb.VerificationMethodName != proofs[0].VerificationMethod {
		return nil, core.NewClientError("Participant credential proof does not belong to its issuer %s", issuer)
	}
	return document, nil
}

// FetchDIDDocument fetches and parses a remote DID document,
// validated against the DID document schema unless skipped.
func (r *Resolver) FetchDIDDocument(ctx context.Context, rawURL string, options FetchOptions) (credential.Document, error) {
	document, err := r.fetchJSON(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if options.SkipValidation {
		return document, nil
	}
	if err := ValidateDIDDocument(document); err != nil {
		return nil, err
	}
	return document, nil
}

// FetchCertificate fetches the document at the given x5u URL and extracts the first
// PEM-encoded certificate from it.
func (r *Resolver) FetchCertificate(ctx context.Context, x5u string) ([]byte, error) {
	body, err := r.fetch(ctx, x5u)
	if err != nil {
		return nil, err
	}
	certPEM := FirstCertificateBlock(body)
	if certPEM == nil {
		return nil, core.NewClientError("%s does not contain a PEM encoded certificate", x5u)
	}
	return certPEM, nil
}

func (r *Resolver) fetchJSON(ctx context.Context, rawURL string) (credential.Document, error) {
	body, err := r.fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	var document credential.Document
	if err := json.Unmarshal(body, &document); err != nil {
		return nil, core.NewClientError("%s did not return valid JSON: %v", rawURL, err)
	}
	return document, nil
}

func (r *Resolver) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, core.NewClientError("invalid URL %s: %v", rawURL, err)
	}
	response, err := r.HTTPClient.Do(request)
	if err != nil {
		return nil, core.NewClientError("%s is unreachable: %v", rawURL, err)
	}
	defer response.Body.Close()
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, core.NewClientError("%s is unreachable: server returned HTTP %d", rawURL, response.StatusCode)
	}
	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, core.NewClientError("%s is unreachable: %v", rawURL, err)
	}
	log.Logger().WithField(core.LogFieldURL, rawURL).Debug("Fetched remote trust document")
	return body, nil
}
