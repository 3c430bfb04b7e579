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

package credential

import (
	"crypto"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"

	"github.com/gaiax-dataspace/trustnode/didweb"
	"github.com/gaiax-dataspace/trustnode/jsonld"
)

// Signer produces detached JWS proofs over credential fingerprints.
// Signing is stateless and pure given its inputs; private keys are held by the
// caller and never retained.
type Signer struct {
	Canonicalizer *jsonld.Canonicalizer
	DIDs          *didweb.Manager
}

// Sign computes the credential's fingerprint, signs it with a detached unencoded-payload
// JWS (PS256) and returns a copy of the credential carrying the resulting proof.
// The fingerprint is the signed message: the exact hash that is pinned for tamper
// detection, with no secondary encoding step in between.
func (s Signer) Sign(slug string, document Document, key crypto.Signer) (Document, error) {
	withoutProof, err := jsonld.CopyWithoutProof(document)
	if err != nil {
		return nil, err
	}
	fingerprint, err := s.Canonicalizer.Hash(withoutProof)
	if err != nil {
		return nil, err
	}

	detached, err := SignDetached([]byte(fingerprint), key)
	if err != nil {
		return nil, err
	}

	proof := Proof{
		Type:               ProofType,
		Created:            time.Now().UTC().Truncate(time.Second),
		ProofPurpose:       ProofPurposeAssertion,
		VerificationMethod: s.DIDs.DIDWithVerification(slug),
		JWS:                detached,
	}
	return WithProof(Document(withoutProof), proof)
}

// SignDetached signs the payload as a detached, unencoded-payload JWS
// (RFC 7797, header {"b64": false, "crit": ["b64"]}) and returns the
// compact "header..signature" form.
func SignDetached(payload []byte, key crypto.Signer) (string, error) {
	headers := jws.NewHeaders()
	if err := headers.Set("b64", false); err != nil {
		return "", err
	}
	if err := headers.Set(jws.CriticalKey, []string{"b64"}); err != nil {
		return "", err
	}
	signature, err := jws.Sign(nil, jws.WithKey(jwa.PS256, key, jws.WithProtectedHeaders(headers)), jws.WithDetachedPayload(payload))
	if err != nil {
		return "", err
	}
	return string(signature), nil
}
