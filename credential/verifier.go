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
	"strings"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"

	"github.com/gaiax-dataspace/trustnode/core"
	"github.com/gaiax-dataspace/trustnode/jsonld"
)

// acceptedAlgorithms are the RSA JWS algorithms accepted when verifying proofs.
var acceptedAlgorithms = map[jwa.SignatureAlgorithm]bool{
	jwa.PS256: true,
	jwa.PS384: true,
	jwa.PS512: true,
	jwa.RS256: true,
	jwa.RS384: true,
	jwa.RS512: true,
}

// Verifier verifies detached JWS proofs against recomputed credential fingerprints.
type Verifier struct {
	Canonicalizer *jsonld.Canonicalizer
}

// Verify recomputes the fingerprint of the credential (proof removed) and verifies the
// credential's single proof against the given public key. It returns false specifically
// when the signature does not verify; malformed input propagates as an error.
func (v Verifier) Verify(document Document, publicKey crypto.PublicKey) (bool, error) {
	proofs, err := Proofs(document)
	if err != nil {
		return false, err
	}
	if len(proofs) != 1 {
		return false, core.NewClientError("expected exactly 1 proof, got %d", len(proofs))
	}

	fingerprint, err := v.Canonicalizer.Fingerprint(document)
	if err != nil {
		return false, err
	}
	return VerifyDetached(proofs[0].JWS, []byte(fingerprint), publicKey)
}

// VerifyDetached verifies a compact detached JWS ("header..signature") against the given
// payload and public key.
func VerifyDetached(detachedJWS string, payload []byte, publicKey crypto.PublicKey) (bool, error) {
	parts := strings.Split(detachedJWS, ".")
	if len(parts) != 3 || parts[1] != "" {
		return false, core.NewClientError("proof does not contain a detached JWS")
	}

	message, err := jws.Parse([]byte(detachedJWS))
	if err != nil {
		return false, core.NewClientError("invalid JWS: %v", err)
	}
	if len(message.Signatures()) != 1 {
		return false, core.NewClientError("incorrect number of signatures in JWS")
	}
	alg := message.Signatures()[0].ProtectedHeaders().Algorithm()
	if !acceptedAlgorithms[alg] {
		return false, core.NewClientError("unsupported JWS algorithm: %s", alg)
	}

	if _, err := jws.Verify([]byte(detachedJWS), jws.WithKey(alg, publicKey), jws.WithDetachedPayload(payload)); err != nil {
		// the signature does not match the recomputed fingerprint
		return false, nil
	}
	return true, nil
}
