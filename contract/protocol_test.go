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

package contract

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaiax-dataspace/trustnode/core"
	"github.com/gaiax-dataspace/trustnode/credential"
	"github.com/gaiax-dataspace/trustnode/didweb"
	"github.com/gaiax-dataspace/trustnode/jsonld"
	"github.com/gaiax-dataspace/trustnode/storage"
	"github.com/gaiax-dataspace/trustnode/test/pki"
	"github.com/gaiax-dataspace/trustnode/token"
	"github.com/gaiax-dataspace/trustnode/trust"
)

// consumerHost serves the consumer's trust documents over TLS. Documents can be
// swapped after the proposal to exercise the fingerprint pinning.
type consumerHost struct {
	mu        sync.Mutex
	documents map[string][]byte
}

func (h *consumerHost) set(path string, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.documents[path] = data
}

func (h *consumerHost) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	data, ok := h.documents[r.URL.Path]
	h.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	_, _ = w.Write(data)
}

type protocolEnv struct {
	protocol       *Protocol
	host           *consumerHost
	product        DataProduct
	participantURL string
	participant    credential.Document
	consumerKey    *rsa.PrivateKey
	consumerSigner credential.Signer
	producerKey    *rsa.PrivateKey
}

func newProtocolEnv(t *testing.T) *protocolEnv {
	canonicalizer, err := jsonld.NewCanonicalizer()
	require.NoError(t, err)

	host := &consumerHost{documents: map[string][]byte{}}
	server := httptest.NewTLSServer(host)
	t.Cleanup(server.Close)
	serverHost := strings.TrimPrefix(server.URL, "https://")

	// consumer identity, published on the test server
	consumerDIDs := didweb.NewManager(serverHost, nil)
	consumerKey, consumerCertPEM := pki.GenerateRSACertificate(t, "consumer")
	didDocument := credential.Document{
		"@context": []interface{}{
			"https://www.w3.org/ns/did/v1",
			"https://w3c-ccg.github.io/lds-jws2020/contexts/lds-jws2020-v1.json",
		},
		"id": consumerDIDs.DID("consumer"),
		"verificationMethod": []interface{}{
			map[string]interface{}{
				"id":         consumerDIDs.DIDWithVerification("consumer"),
				"type":       "JsonWebKey2020",
				"controller": consumerDIDs.DID("consumer"),
				"publicKeyJwk": map[string]interface{}{
					"kty": "RSA",
					"alg": "RS256",
					"x5u": server.URL + "/gaia-x/consumer/certificate.pem",
				},
			},
		},
	}
	host.set("/gaia-x/consumer/did.json", mustMarshal(t, didDocument))
	host.set("/gaia-x/consumer/certificate.pem", consumerCertPEM)

	consumerSigner := credential.Signer{Canonicalizer: canonicalizer, DIDs: consumerDIDs}
	participant := credential.Document{
		"@context": []interface{}{
			"https://www.w3.org/2018/credentials/v1",
			"https://w3c-ccg.github.io/lds-jws2020/contexts/lds-jws2020-v1.json",
			"https://registry.gaia-x.eu/v2206/api/shape",
		},
		"type":         "VerifiableCredential",
		"id":           server.URL + "/participant.json",
		"issuer":       consumerDIDs.DID("consumer"),
		"issuanceDate": "2026-08-28T00:00:00Z",
		"credentialSubject": map[string]interface{}{
			"id":           consumerDIDs.DID("consumer"),
			"gx:legalName": "Consumer Corp",
		},
	}
	signedParticipant, err := consumerSigner.Sign("consumer", participant, consumerKey)
	require.NoError(t, err)
	host.set("/participant.json", mustMarshal(t, signedParticipant))

	// producer identity, published locally
	publisher := storage.NewFilePublisher(t.TempDir())
	producerDIDs := didweb.NewManager("producer.example.com", publisher)
	producerKey, producerCertPEM := pki.GenerateRSACertificate(t, "producer")
	require.NoError(t, producerDIDs.CreateDID("producer", producerCertPEM))

	resolver := trust.NewResolver()
	resolver.HTTPClient = server.Client()

	db, err := storage.OpenDB(storage.SQLConfig{
		ConnectionString: "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	}, &Record{})
	require.NoError(t, err)

	product := DataProduct{
		ID:              uuid.NewString(),
		OwnerSlug:       "producer",
		Route:           "https://producer.example.com/data/weather",
		TermsOfUsageURL: "https://producer.example.com/terms.json",
	}

	return &protocolEnv{
		protocol: &Protocol{
			Resolver:      resolver,
			DIDs:          producerDIDs,
			Signer:        credential.Signer{Canonicalizer: canonicalizer, DIDs: producerDIDs},
			Verifier:      credential.Verifier{Canonicalizer: canonicalizer},
			Canonicalizer: canonicalizer,
			Contracts:     NewStore(db),
			Content:       storage.NewFileContentStore(t.TempDir()),
			Tokens:        token.NewCacheIssuer(),
			Certificates:  publisher,
			Products:      DataProductSet{product},
		},
		host:           host,
		product:        product,
		participantURL: server.URL + "/participant.json",
		participant:    participant,
		consumerKey:    consumerKey,
		consumerSigner: consumerSigner,
		producerKey:    producerKey,
	}
}

func mustMarshal(t *testing.T, document interface{}) []byte {
	data, err := json.Marshal(document)
	require.NoError(t, err)
	return data
}

// signProposal signs the proposal the way the consumer would, out-of-band.
func (env *protocolEnv) signProposal(t *testing.T, proposal credential.Document) credential.Document {
	signed, err := env.consumerSigner.Sign("consumer", proposal, env.consumerKey)
	require.NoError(t, err)
	return signed
}

func TestProtocol_EndToEnd(t *testing.T) {
	env := newProtocolEnv(t)
	ctx := context.Background()

	// producer proposes
	record, proposal, err := env.protocol.Propose(ctx, env.product, env.participantURL)
	require.NoError(t, err)
	assert.Equal(t, StateConsumerSignaturePending, record.State)
	assert.NotEmpty(t, record.ProposalFingerprint)
	assert.NotEmpty(t, record.ConsumerParticipantFingerprint)
	assert.NotEmpty(t, record.ConsumerDIDFingerprint)
	assert.NotEmpty(t, record.ConsumerCertificateFingerprint)

	// consumer signs and submits
	signed := env.signProposal(t, proposal)
	record, err = env.protocol.AcceptConsumerSignature(ctx, record.ID, signed)
	require.NoError(t, err)
	assert.Equal(t, StateProducerSignaturePending, record.State)
	assert.NotEmpty(t, record.ConsumerProofSignature)
	bearerToken := record.ConsumerProofSignature

	// producer counter-signs
	record, err = env.protocol.CounterSign(record.ID, env.producerKey)
	require.NoError(t, err)
	assert.Equal(t, StateReadyToBeClaimed, record.State)

	// consumer claims with its own signature as bearer token
	claimed, err := env.protocol.Claim(record.ID, bearerToken)
	require.NoError(t, err)
	proofs, err := credential.Proofs(claimed)
	require.NoError(t, err)
	require.Len(t, proofs, 2)
	assert.Equal(t, bearerToken, proofs[0].JWS)
	assert.Equal(t, env.protocol.DIDs.DIDWithVerification("producer"), proofs[1].VerificationMethod)

	// a second claim is rejected
	_, err = env.protocol.Claim(record.ID, bearerToken)
	assert.ErrorContains(t, err, "already finalized")

	// the fully-signed credential redeems an access token for the product route
	issued, err := env.protocol.IssueAccessToken(ctx, claimed)
	require.NoError(t, err)
	assert.Equal(t, env.product.Route, issued.Route)
	assert.True(t, issued.Active)
	assert.WithinDuration(t, time.Now().Add(token.DefaultTTL), issued.ValidTill, time.Minute)
}

func TestProtocol_Propose(t *testing.T) {
	ctx := context.Background()
	t.Run("proposal canonicalizes to the pinned fingerprint", func(t *testing.T) {
		env := newProtocolEnv(t)

		record, proposal, err := env.protocol.Propose(ctx, env.product, env.participantURL)

		require.NoError(t, err)
		// the credential ids must be absolute IRIs, a bare UUID would canonicalize
		// to the empty dataset and no fingerprint could ever be pinned
		assert.Equal(t, "urn:uuid:"+record.ID, proposal["id"])
		fingerprint, err := env.protocol.Canonicalizer.Fingerprint(proposal)
		require.NoError(t, err)
		assert.NotEmpty(t, fingerprint)
		assert.Equal(t, record.ProposalFingerprint, fingerprint)
	})
	t.Run("unreachable participant", func(t *testing.T) {
		env := newProtocolEnv(t)

		_, _, err := env.protocol.Propose(ctx, env.product, "https://unknown.invalid/participant.json")

		assert.True(t, core.IsClientError(err))
	})
	t.Run("participant signature does not verify", func(t *testing.T) {
		env := newProtocolEnv(t)
		// alter the served credential body without re-signing
		tampered := make(credential.Document)
		for k, v := range env.participant {
			tampered[k] = v
		}
		signed := env.signProposal(t, tampered)
		signed["issuanceDate"] = "2026-08-29T00:00:00Z"
		env.host.set("/participant.json", mustMarshal(t, signed))

		_, _, err := env.protocol.Propose(ctx, env.product, env.participantURL)

		assert.ErrorContains(t, err, "signature verification failed")
	})
}

func TestProtocol_AcceptConsumerSignature(t *testing.T) {
	ctx := context.Background()
	t.Run("submitted credential tampered", func(t *testing.T) {
		env := newProtocolEnv(t)
		record, proposal, err := env.protocol.Propose(ctx, env.product, env.participantURL)
		require.NoError(t, err)
		proposal["credentialSubject"].(map[string]interface{})["gx:termsOfUsage"] = "https://evil.example.com/terms.json"

		_, err = env.protocol.AcceptConsumerSignature(ctx, record.ID, env.signProposal(t, proposal))

		assert.ErrorContains(t, err, "tampered with")
	})
	t.Run("remote participant changed since proposal", func(t *testing.T) {
		env := newProtocolEnv(t)
		record, proposal, err := env.protocol.Propose(ctx, env.product, env.participantURL)
		require.NoError(t, err)
		// the consumer re-publishes a different, still validly signed credential
		changed := make(credential.Document)
		for k, v := range env.participant {
			changed[k] = v
		}
		changed["issuanceDate"] = "2026-08-29T00:00:00Z"
		resigned, err := env.consumerSigner.Sign("consumer", changed, env.consumerKey)
		require.NoError(t, err)
		env.host.set("/participant.json", mustMarshal(t, resigned))

		_, err = env.protocol.AcceptConsumerSignature(ctx, record.ID, env.signProposal(t, proposal))

		assert.ErrorContains(t, err, "Participant credential has been tampered with")
	})
	t.Run("wrong state", func(t *testing.T) {
		env := newProtocolEnv(t)
		record, proposal, err := env.protocol.Propose(ctx, env.product, env.participantURL)
		require.NoError(t, err)
		signed := env.signProposal(t, proposal)
		_, err = env.protocol.AcceptConsumerSignature(ctx, record.ID, signed)
		require.NoError(t, err)

		_, err = env.protocol.AcceptConsumerSignature(ctx, record.ID, signed)

		assert.True(t, core.IsClientError(err))
	})
	t.Run("unknown contract", func(t *testing.T) {
		env := newProtocolEnv(t)

		_, err := env.protocol.AcceptConsumerSignature(ctx, uuid.NewString(), credential.Document{})

		assert.True(t, core.IsNotFoundError(err))
	})
}

func TestProtocol_Claim(t *testing.T) {
	ctx := context.Background()
	t.Run("not yet signed", func(t *testing.T) {
		env := newProtocolEnv(t)
		record, _, err := env.protocol.Propose(ctx, env.product, env.participantURL)
		require.NoError(t, err)

		_, err = env.protocol.Claim(record.ID, "anything")

		assert.ErrorContains(t, err, "not yet signed")
	})
	t.Run("wrong bearer token", func(t *testing.T) {
		env := newProtocolEnv(t)
		record, proposal, err := env.protocol.Propose(ctx, env.product, env.participantURL)
		require.NoError(t, err)
		_, err = env.protocol.AcceptConsumerSignature(ctx, record.ID, env.signProposal(t, proposal))
		require.NoError(t, err)
		_, err = env.protocol.CounterSign(record.ID, env.producerKey)
		require.NoError(t, err)

		_, err = env.protocol.Claim(record.ID, "not-the-consumer-signature")

		assert.True(t, core.IsAuthorizationError(err))
	})
}

func TestProtocol_Reject(t *testing.T) {
	ctx := context.Background()
	t.Run("rejecting a consumer-signed contract deletes the stored body", func(t *testing.T) {
		env := newProtocolEnv(t)
		record, proposal, err := env.protocol.Propose(ctx, env.product, env.participantURL)
		require.NoError(t, err)
		_, err = env.protocol.AcceptConsumerSignature(ctx, record.ID, env.signProposal(t, proposal))
		require.NoError(t, err)

		record, err = env.protocol.Reject(record.ID)

		require.NoError(t, err)
		assert.Equal(t, StateRejected, record.State)
		_, err = env.protocol.Content.Read(record.ID)
		assert.True(t, core.IsNotFoundError(err))
	})
	t.Run("already rejected", func(t *testing.T) {
		env := newProtocolEnv(t)
		record, _, err := env.protocol.Propose(ctx, env.product, env.participantURL)
		require.NoError(t, err)
		_, err = env.protocol.Reject(record.ID)
		require.NoError(t, err)

		_, err = env.protocol.Reject(record.ID)

		assert.ErrorContains(t, err, "already rejected")
	})
}

func TestProtocol_IssueAccessToken(t *testing.T) {
	ctx := context.Background()
	t.Run("contract not finalized", func(t *testing.T) {
		env := newProtocolEnv(t)
		record, proposal, err := env.protocol.Propose(ctx, env.product, env.participantURL)
		require.NoError(t, err)
		signed := env.signProposal(t, proposal)
		_, err = env.protocol.AcceptConsumerSignature(ctx, record.ID, signed)
		require.NoError(t, err)

		_, err = env.protocol.IssueAccessToken(ctx, signed)

		assert.ErrorContains(t, err, "not finalized")
	})
	t.Run("no matching contract", func(t *testing.T) {
		env := newProtocolEnv(t)
		document := credential.Document{
			"@context": []interface{}{"https://www.w3.org/2018/credentials/v1"},
			"type":     "VerifiableCredential",
			"issuer":   "did:web:unknown.example.com:gaia-x:unknown",
		}

		_, err := env.protocol.IssueAccessToken(ctx, document)

		assert.True(t, core.IsNotFoundError(err))
	})
	t.Run("producer proof not signed by the data product owner", func(t *testing.T) {
		env := newProtocolEnv(t)
		record, proposal, err := env.protocol.Propose(ctx, env.product, env.participantURL)
		require.NoError(t, err)
		signed := env.signProposal(t, proposal)
		_, err = env.protocol.AcceptConsumerSignature(ctx, record.ID, signed)
		require.NoError(t, err)
		record, err = env.protocol.CounterSign(record.ID, env.producerKey)
		require.NoError(t, err)
		_, err = env.protocol.Claim(record.ID, record.ConsumerProofSignature)
		require.NoError(t, err)

		// both proofs signed by the consumer: no proof belongs to the owner
		consumerProofs, err := credential.Proofs(signed)
		require.NoError(t, err)
		doubleSigned, err := credential.WithProof(signed, consumerProofs[0], consumerProofs[0])
		require.NoError(t, err)

		_, err = env.protocol.IssueAccessToken(ctx, doubleSigned)

		assert.ErrorContains(t, err, "does not belong to the data product owner")
	})
}
