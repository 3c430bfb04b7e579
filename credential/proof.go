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

// Package credential signs and verifies Gaia-X verifiable credentials with
// detached JWS proofs over their canonicalized fingerprints.
package credential

import (
	"encoding/json"
	"time"

	ssi "github.com/nuts-foundation/go-did"

	"github.com/gaiax-dataspace/trustnode/core"
)

// ProofType is the single proof type produced and accepted by this node.
const ProofType = ssi.JsonWebSignature2020

// ProofPurposeAssertion is the proof purpose for all credential proofs.
const ProofPurposeAssertion = "assertionMethod"

// Document is an arbitrary JSON credential document.
type Document map[string]interface{}

// Proof is a single signature object embedded in a credential's proof field.
type Proof struct {
	Type               ssi.ProofType `json:"type"`
	Created            time.Time     `json:"created"`
	ProofPurpose       string        `json:"proofPurpose"`
	VerificationMethod string        `json:"verificationMethod"`
	JWS                string        `json:"jws"`
}

// Proofs extracts the proof objects from a credential. A proof field holding a single
// object (one signature) and one holding an array (multi-party) are both accepted.
func Proofs(document Document) ([]Proof, error) {
	raw, ok := document["proof"]
	if !ok {
		return nil, core.NewClientError("credential has no proof")
	}

	asJSON, err := json.Marshal(raw)
	if err != nil {
		return nil, core.NewClientError("invalid proof: %v", err)
	}

	switch raw.(type) {
	case []interface{}:
		var proofs []Proof
		if err := json.Unmarshal(asJSON, &proofs); err != nil {
			return nil, core.NewClientError("invalid proof: %v", err)
		}
		return proofs, nil
	default:
		var proof Proof
		if err := json.Unmarshal(asJSON, &proof); err != nil {
			return nil, core.NewClientError("invalid proof: %v", err)
		}
		return []Proof{proof}, nil
	}
}

// WithProof returns a copy of the document carrying the given proofs:
// a single object when one proof is given, an array otherwise.
func WithProof(document Document, proofs ...Proof) (Document, error) {
	asJSON, err := json.Marshal(document)
	if err != nil {
		return nil, err
	}
	var cp Document
	if err := json.Unmarshal(asJSON, &cp); err != nil {
		return nil, err
	}
	if len(proofs) == 1 {
		cp["proof"] = toMap(proofs[0])
	} else {
		asMaps := make([]interface{}, len(proofs))
		for i, proof := range proofs {
			asMaps[i] = toMap(proof)
		}
		cp["proof"] = asMaps
	}
	return cp, nil
}

func toMap(proof Proof) map[string]interface{} {
	asJSON, _ := json.Marshal(proof)
	var asMap map[string]interface{}
	_ = json.Unmarshal(asJSON, &asMap)
	return asMap
}

// ProofPair tags the two proofs of a fully-signed Data Product Contract credential by party.
// Resolving the pair once by verificationMethod removes positional-indexing bugs when the
// signatures are verified independently.
type ProofPair struct {
	Consumer Proof
	Producer Proof
}

// ResolveProofPair splits the proofs of a two-party credential into the consumer's and the
// producer's, matching the consumer by verificationMethod. Exactly two proofs are required.
func ResolveProofPair(proofs []Proof, consumerVerificationMethod string) (ProofPair, error) {
	if len(proofs) != 2 {
		return ProofPair{}, core.NewClientError("expected exactly 2 proofs, got %d", len(proofs))
	}
	switch consumerVerificationMethod {
	case proofs[0].VerificationMethod:
		return ProofPair{Consumer: proofs[0], Producer: proofs[1]}, nil
	case proofs[1].VerificationMethod:
		return ProofPair{Consumer: proofs[1], Producer: proofs[0]}, nil
	default:
		return ProofPair{}, core.NewClientError("no proof matches the consumer verification method %s", consumerVerificationMethod)
	}
}
