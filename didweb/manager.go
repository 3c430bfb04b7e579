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

package didweb

import (
	"crypto/x509"
	_ "embed"
	"encoding/json"
	"encoding/pem"
	"fmt"

	"github.com/cbroglie/mustache"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/nuts-foundation/go-did/did"
	"github.com/sirupsen/logrus"

	"github.com/gaiax-dataspace/trustnode/core"
	"github.com/gaiax-dataspace/trustnode/didweb/log"
)

//go:embed assets/did-document.mustache
var didDocumentTemplate string

// Publisher persists a participant's immutable onboarding artifacts (DID document and
// certificate chain) so they can be served at their well-known URLs.
type Publisher interface {
	PublishDIDDocument(slug string, document []byte) error
	PublishCertificateChain(slug string, chainPEM []byte) error
}

// signatureAlgorithms maps the signature algorithm of the leaf certificate
// (decoded from its OID by crypto/x509) to the JWS algorithm advertised in the DID document.
var signatureAlgorithms = map[x509.SignatureAlgorithm]jwa.SignatureAlgorithm{
	x509.SHA256WithRSA:    jwa.RS256,
	x509.SHA384WithRSA:    jwa.RS384,
	x509.SHA512WithRSA:    jwa.RS512,
	x509.SHA256WithRSAPSS: jwa.PS256,
	x509.SHA384WithRSAPSS: jwa.PS384,
	x509.SHA512WithRSAPSS: jwa.PS512,
	x509.ECDSAWithSHA256:  jwa.ES256,
	x509.ECDSAWithSHA384:  jwa.ES384,
	x509.ECDSAWithSHA512:  jwa.ES512,
}

// Manager creates and derives did:web identities for participants hosted on a single domain.
type Manager struct {
	domain    string
	publisher Publisher
}

// NewManager creates a Manager for participants hosted on the given domain.
func NewManager(domain string, publisher Publisher) *Manager {
	return &Manager{domain: domain, publisher: publisher}
}

// Domain returns the domain the manager creates DIDs for.
func (m *Manager) Domain() string {
	return m.domain
}

// DID derives the did:web identifier for the given participant slug.
func (m *Manager) DID(slug string) string {
	return DID(m.domain, slug)
}

// DIDWithVerification derives the DID URL of the participant's verification method.
func (m *Manager) DIDWithVerification(slug string) string {
	return DIDWithVerification(m.domain, slug)
}

// CertificateURL returns the public URL of the participant's certificate chain,
// used as the x5u of the verification method.
func (m *Manager) CertificateURL(slug string) string {
	return "https://" + m.domain + "/" + pathPrefix + "/" + slug + "/certificate.pem"
}

// CreateDID builds the participant's DID document from its X.509 certificate chain and
// publishes both the chain and the document. The leaf certificate (first in the chain)
// determines the JWS algorithm and public key of the single verification method.
// Certificate parsing failure is fatal and aborts participant onboarding.
func (m *Manager) CreateDID(slug string, chainPEM []byte) error {
	block, _ := pem.Decode(chainPEM)
	if block == nil || block.Type != "CERTIFICATE" {
		return core.NewClientError("certificate chain does not contain a PEM encoded certificate")
	}
	leaf, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return core.NewClientError("unable to parse leaf certificate: %v", err)
	}

	alg, ok := signatureAlgorithms[leaf.SignatureAlgorithm]
	if !ok {
		return core.NewClientError("unsupported certificate signature algorithm: %s", leaf.SignatureAlgorithm)
	}

	key, err := jwk.FromRaw(leaf.PublicKey)
	if err != nil {
		return fmt.Errorf("unable to convert certificate public key to JWK: %w", err)
	}
	if err := key.Set(jwk.AlgorithmKey, alg); err != nil {
		return err
	}
	if err := key.Set(jwk.X509URLKey, m.CertificateURL(slug)); err != nil {
		return err
	}
	keyAsJSON, err := json.Marshal(key)
	if err != nil {
		return fmt.Errorf("unable to marshal JWK: %w", err)
	}

	mustache.AllowMissingVariables = false
	rendered, err := mustache.Render(didDocumentTemplate, map[string]string{
		"did":                m.DID(slug),
		"verificationMethod": m.DIDWithVerification(slug),
		"jwk":                string(keyAsJSON),
	})
	if err != nil {
		return fmt.Errorf("unable to render DID document: %w", err)
	}

	// guard against a broken template before anything is published
	var document did.Document
	if err := document.UnmarshalJSON([]byte(rendered)); err != nil {
		return fmt.Errorf("rendered DID document is invalid: %w", err)
	}

	if err := m.publisher.PublishCertificateChain(slug, chainPEM); err != nil {
		return fmt.Errorf("unable to publish certificate chain: %w", err)
	}
	if err := m.publisher.PublishDIDDocument(slug, []byte(rendered)); err != nil {
		return fmt.Errorf("unable to publish DID document: %w", err)
	}

	log.Logger().WithFields(logrus.Fields{
		core.LogFieldSlug: slug,
		core.LogFieldDID:  m.DID(slug),
	}).Info("Created and published DID document")
	return nil
}
