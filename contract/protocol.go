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

// Package contract implements the Data Product Contract signing protocol between a
// producer (this node) and a remote consumer. A contract moves through a fixed state
// machine; every transition re-checks the trust anchors pinned at proposal time before
// touching the stored credential.
package contract

import (
	"context"
	"crypto"
	"crypto/subtle"
	_ "embed"
	"encoding/json"
	"time"

	"github.com/cbroglie/mustache"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gaiax-dataspace/trustnode/contract/log"
	"github.com/gaiax-dataspace/trustnode/core"
	"github.com/gaiax-dataspace/trustnode/credential"
	"github.com/gaiax-dataspace/trustnode/didweb"
	"github.com/gaiax-dataspace/trustnode/jsonld"
	"github.com/gaiax-dataspace/trustnode/token"
	"github.com/gaiax-dataspace/trustnode/trust"
)

//go:embed assets/proposal-credential.mustache
var proposalTemplate string

// Protocol drives the contract signing state machine. All collaborators are injected;
// the protocol itself holds no mutable state, the contract row is the sole mutation point.
type Protocol struct {
	Resolver      *trust.Resolver
	DIDs          *didweb.Manager
	Signer        credential.Signer
	Verifier      credential.Verifier
	Canonicalizer *jsonld.Canonicalizer
	Contracts     *Store
	Content       ContentStore
	Tokens        TokenIssuer
	Certificates  CertificateSource
	Products      DataProductSource
}

// Propose resolves and verifies the consumer's trust documents, builds a usage-contract
// proposal credential for the data product and persists a new contract with the four
// trust fingerprints pinned. The returned proposal is unsigned, the consumer signs it
// out-of-band and submits it through AcceptConsumerSignature.
func (p *Protocol) Propose(ctx context.Context, dataProduct DataProduct, consumerParticipantURL string) (*Record, credential.Document, error) {
	participant, err := p.Resolver.FetchParticipant(ctx, consumerParticipantURL, trust.FetchOptions{})
	if err != nil {
		return nil, nil, err
	}
	consumerDID, _ := participant["issuer"].(string)

	didDocument, certificatePEM, err := p.fetchConsumerTrustChain(ctx, consumerDID, trust.FetchOptions{})
	if err != nil {
		return nil, nil, err
	}

	publicKey, err := trust.PublicKeyFromCertificate(certificatePEM)
	if err != nil {
		return nil, nil, err
	}
	valid, err := p.Verifier.Verify(participant, publicKey)
	if err != nil {
		return nil, nil, err
	}
	if !valid {
		return nil, nil, core.NewClientError("Participant credential signature verification failed")
	}

	contractID := uuid.NewString()
	proposal, err := p.renderProposal(contractID, dataProduct, consumerDID)
	if err != nil {
		return nil, nil, err
	}

	proposalFingerprint, err := p.Canonicalizer.Fingerprint(proposal)
	if err != nil {
		return nil, nil, err
	}
	participantFingerprint, err := p.Canonicalizer.Fingerprint(participant)
	if err != nil {
		return nil, nil, err
	}
	didFingerprint, err := p.Canonicalizer.Fingerprint(didDocument)
	if err != nil {
		return nil, nil, err
	}

	record := &Record{
		ID:                             contractID,
		DataProductID:                  dataProduct.ID,
		ConsumerParticipant:            consumerParticipantURL,
		ConsumerDID:                    consumerDID,
		ProposalFingerprint:            proposalFingerprint,
		ConsumerParticipantFingerprint: participantFingerprint,
		ConsumerDIDFingerprint:         didFingerprint,
		ConsumerCertificateFingerprint: trust.CertificateFingerprint(certificatePEM),
		State:                          StateConsumerSignaturePending,
	}
	if err := p.Contracts.Create(record); err != nil {
		return nil, nil, err
	}

	log.Logger().WithFields(logrus.Fields{
		core.LogFieldContractID:    record.ID,
		core.LogFieldDataProductID: dataProduct.ID,
		core.LogFieldDID:           consumerDID,
		core.LogFieldFingerprint:   proposalFingerprint,
	}).Info("Proposed contract")
	return record, proposal, nil
}

// AcceptConsumerSignature accepts the consumer-signed proposal. The submitted credential
// must fingerprint-match the pinned proposal, the consumer's remote trust documents must
// still match their pinned fingerprints and the signature must verify against the
// consumer's certificate. Only then is the credential persisted and the contract moved
// to PRODUCER_SIGNATURE_PENDING. Any failure leaves the contract untouched.
func (p *Protocol) AcceptConsumerSignature(ctx context.Context, contractID string, signed credential.Document) (*Record, error) {
	record, err := p.Contracts.Get(contractID)
	if err != nil {
		return nil, err
	}
	if record.State != StateConsumerSignaturePending {
		return nil, wrongStateError(record, StateConsumerSignaturePending)
	}

	fingerprint, err := p.Canonicalizer.Fingerprint(signed)
	if err != nil {
		return nil, err
	}
	if fingerprint != record.ProposalFingerprint {
		return nil, core.NewClientError("the contract has been tampered with")
	}

	publicKey, err := p.verifyPinnedConsumer(ctx, record)
	if err != nil {
		return nil, err
	}

	proofs, err := credential.Proofs(signed)
	if err != nil {
		return nil, err
	}
	if len(proofs) != 1 {
		return nil, core.NewClientError("expected exactly 1 proof, got %d", len(proofs))
	}
	valid, err := p.Verifier.Verify(signed, publicKey)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, core.NewClientError("signature verification failed")
	}

	body, err := json.Marshal(signed)
	if err != nil {
		return nil, err
	}
	if err := p.Content.Store(record.ID, body); err != nil {
		return nil, err
	}

	record, err = p.Contracts.UpdateState(record.ID, StateConsumerSignaturePending, StateProducerSignaturePending, func(r *Record) {
		r.ConsumerProofSignature = proofs[0].JWS
	})
	if err != nil {
		return nil, err
	}

	log.Logger().WithFields(logrus.Fields{
		core.LogFieldContractID:    record.ID,
		core.LogFieldContractState: record.State,
	}).Info("Accepted consumer signature")
	return record, nil
}

// CounterSign adds the producer's signature to the consumer-signed credential and moves
// the contract to READY_TO_BE_CLAIMED. The final document carries both proofs in
// signing order, consumer first.
func (p *Protocol) CounterSign(contractID string, producerKey crypto.Signer) (*Record, error) {
	record, err := p.Contracts.Get(contractID)
	if err != nil {
		return nil, err
	}
	if record.State != StateProducerSignaturePending {
		return nil, wrongStateError(record, StateProducerSignaturePending)
	}
	product, err := p.Products.Get(record.DataProductID)
	if err != nil {
		return nil, err
	}

	body, err := p.Content.Read(record.ID)
	if err != nil {
		return nil, err
	}
	var document credential.Document
	if err := json.Unmarshal(body, &document); err != nil {
		return nil, core.NewClientError("stored credential is not valid JSON: %v", err)
	}
	existingProofs, err := credential.Proofs(document)
	if err != nil {
		return nil, err
	}

	signedByProducer, err := p.Signer.Sign(product.OwnerSlug, document, producerKey)
	if err != nil {
		return nil, err
	}
	producerProofs, err := credential.Proofs(signedByProducer)
	if err != nil {
		return nil, err
	}

	combined, err := credential.WithProof(document, append(existingProofs, producerProofs[0])...)
	if err != nil {
		return nil, err
	}
	asJSON, err := json.Marshal(combined)
	if err != nil {
		return nil, err
	}
	if err := p.Content.Store(record.ID, asJSON); err != nil {
		return nil, err
	}

	record, err = p.Contracts.UpdateState(record.ID, StateProducerSignaturePending, StateReadyToBeClaimed, nil)
	if err != nil {
		return nil, err
	}

	log.Logger().WithFields(logrus.Fields{
		core.LogFieldContractID:    record.ID,
		core.LogFieldContractState: record.State,
	}).Info("Counter-signed contract")
	return record, nil
}

// Claim hands the fully-signed credential to the consumer. The caller authenticates by
// presenting the exact JWS it produced when signing the proposal. Claiming finalizes
// the contract, so it succeeds exactly once.
func (p *Protocol) Claim(contractID string, bearerToken string) (credential.Document, error) {
	record, err := p.Contracts.Get(contractID)
	if err != nil {
		return nil, err
	}
	switch record.State {
	case StateConsumerSignaturePending, StateProducerSignaturePending:
		return nil, core.NewClientError("contract %s is not yet signed by both parties", record.ID)
	case StateRejected:
		return nil, core.NewClientError("contract %s is already rejected", record.ID)
	case StateFinalized:
		return nil, core.NewClientError("contract %s is already finalized", record.ID)
	}
	if bearerToken == "" ||
		subtle.ConstantTimeCompare([]byte(bearerToken), []byte(record.ConsumerProofSignature)) != 1 {
		return nil, core.NewAuthorizationError("bearer token does not match the consumer signature")
	}

	body, err := p.Content.Read(record.ID)
	if err != nil {
		return nil, err
	}
	var document credential.Document
	if err := json.Unmarshal(body, &document); err != nil {
		return nil, core.NewClientError("stored credential is not valid JSON: %v", err)
	}

	if _, err := p.Contracts.UpdateState(record.ID, StateReadyToBeClaimed, StateFinalized, nil); err != nil {
		return nil, err
	}

	log.Logger().WithField(core.LogFieldContractID, record.ID).Info("Contract claimed and finalized")
	return document, nil
}

// Reject rejects a contract that is not yet finalized. The stored credential body, if
// any was persisted, is deleted.
func (p *Protocol) Reject(contractID string) (*Record, error) {
	record, err := p.Contracts.Get(contractID)
	if err != nil {
		return nil, err
	}
	switch record.State {
	case StateFinalized:
		return nil, core.NewClientError("contract %s is already finalized", record.ID)
	case StateRejected:
		return nil, core.NewClientError("contract %s is already rejected", record.ID)
	}
	if record.State != StateConsumerSignaturePending {
		if err := p.Content.Delete(record.ID); err != nil {
			return nil, err
		}
	}

	record, err = p.Contracts.UpdateState(record.ID, record.State, StateRejected, nil)
	if err != nil {
		return nil, err
	}

	log.Logger().WithField(core.LogFieldContractID, record.ID).Info("Contract rejected")
	return record, nil
}

// IssueAccessToken redeems a fully-signed contract credential for a short-lived access
// token scoped to the data product's route. Both embedded signatures are independently
// re-verified: the consumer's via the fingerprints pinned at proposal time, the
// producer's via the locally stored certificate of the data product's owner. The
// producer proof must belong to the owner, a credential counter-signed by an unrelated
// third party is rejected.
func (p *Protocol) IssueAccessToken(ctx context.Context, signed credential.Document) (*token.Record, error) {
	fingerprint, err := p.Canonicalizer.Fingerprint(signed)
	if err != nil {
		return nil, err
	}
	record, err := p.Contracts.GetByProposalFingerprint(fingerprint)
	if err != nil {
		return nil, err
	}
	if record.State != StateFinalized {
		return nil, core.NewClientError("contract %s is not finalized", record.ID)
	}
	product, err := p.Products.Get(record.DataProductID)
	if err != nil {
		return nil, err
	}

	proofs, err := credential.Proofs(signed)
	if err != nil {
		return nil, err
	}
	pair, err := credential.ResolveProofPair(proofs, record.ConsumerDID+"#"+didweb.VerificationMethodName)
	if err != nil {
		return nil, err
	}
	if pair.Producer.VerificationMethod != p.DIDs.DIDWithVerification(product.OwnerSlug) {
		return nil, core.NewAuthenticationError("producer proof does not belong to the data product owner")
	}

	consumerKey, err := p.verifyPinnedConsumer(ctx, record)
	if err != nil {
		return nil, err
	}
	if err := verifyProof(pair.Consumer, fingerprint, consumerKey); err != nil {
		return nil, err
	}

	producerChain, err := p.Certificates.CertificateChain(product.OwnerSlug)
	if err != nil {
		return nil, err
	}
	producerKey, err := trust.PublicKeyFromCertificate(producerChain)
	if err != nil {
		return nil, err
	}
	if err := verifyProof(pair.Producer, fingerprint, producerKey); err != nil {
		return nil, err
	}

	issued, err := p.Tokens.Issue(token.IssueRequest{Route: product.Route})
	if err != nil {
		return nil, err
	}

	log.Logger().WithFields(logrus.Fields{
		core.LogFieldContractID:    record.ID,
		core.LogFieldDataProductID: product.ID,
		core.LogFieldRoute:         product.Route,
	}).Info("Issued access token")
	return issued, nil
}

// fetchConsumerTrustChain resolves the consumer's DID document and the certificate it
// points to.
func (p *Protocol) fetchConsumerTrustChain(ctx context.Context, consumerDID string, options trust.FetchOptions) (credential.Document, []byte, error) {
	documentURL, err := didweb.ResolveDocumentURL(consumerDID)
	if err != nil {
		return nil, nil, core.NewClientError("invalid consumer DID: %v", err)
	}
	didDocument, err := p.Resolver.FetchDIDDocument(ctx, documentURL.String(), options)
	if err != nil {
		return nil, nil, err
	}
	x5u, err := trust.CertificateURLFromDIDDocument(didDocument)
	if err != nil {
		return nil, nil, err
	}
	certificatePEM, err := p.Resolver.FetchCertificate(ctx, x5u)
	if err != nil {
		return nil, nil, err
	}
	return didDocument, certificatePEM, nil
}

// verifyPinnedConsumer re-fetches the consumer's trust documents without schema
// validation and requires each to still match the fingerprint pinned at proposal time.
// A changed remote document means the consumer's identity was tampered with (or
// rotated) since the proposal and the operation must fail closed.
func (p *Protocol) verifyPinnedConsumer(ctx context.Context, record *Record) (crypto.PublicKey, error) {
	options := trust.FetchOptions{SkipValidation: true}

	participant, err := p.Resolver.FetchParticipant(ctx, record.ConsumerParticipant, options)
	if err != nil {
		return nil, err
	}
	participantFingerprint, err := p.Canonicalizer.Fingerprint(participant)
	if err != nil {
		return nil, err
	}
	if participantFingerprint != record.ConsumerParticipantFingerprint {
		return nil, core.NewClientError("the consumer Participant credential has been tampered with")
	}

	didDocument, certificatePEM, err := p.fetchConsumerTrustChain(ctx, record.ConsumerDID, options)
	if err != nil {
		return nil, err
	}
	didFingerprint, err := p.Canonicalizer.Fingerprint(didDocument)
	if err != nil {
		return nil, err
	}
	if didFingerprint != record.ConsumerDIDFingerprint {
		return nil, core.NewClientError("the consumer DID document has been tampered with")
	}
	if trust.CertificateFingerprint(certificatePEM) != record.ConsumerCertificateFingerprint {
		return nil, core.NewClientError("the consumer certificate has been tampered with")
	}

	return trust.PublicKeyFromCertificate(certificatePEM)
}

func verifyProof(proof credential.Proof, fingerprint string, publicKey crypto.PublicKey) error {
	valid, err := credential.VerifyDetached(proof.JWS, []byte(fingerprint), publicKey)
	if err != nil {
		return err
	}
	if !valid {
		return core.NewAuthenticationError("signature verification failed for %s", proof.VerificationMethod)
	}
	return nil
}

func (p *Protocol) renderProposal(contractID string, dataProduct DataProduct, consumerDID string) (credential.Document, error) {
	mustache.AllowMissingVariables = false
	rendered, err := mustache.Render(proposalTemplate, map[string]string{
		"contractId":      contractID,
		"producerDid":     p.DIDs.DID(dataProduct.OwnerSlug),
		"consumerDid":     consumerDID,
		"dataProductId":   dataProduct.ID,
		"termsOfUsageUrl": dataProduct.TermsOfUsageURL,
		"issuanceDate":    time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}
	var proposal credential.Document
	if err := json.Unmarshal([]byte(rendered), &proposal); err != nil {
		return nil, err
	}
	return proposal, nil
}

func wrongStateError(record *Record, expected State) error {
	return core.NewClientError("contract %s is in state %s, expected %s", record.ID, record.State, expected)
}
