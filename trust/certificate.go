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

package trust

import (
	"crypto"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"

	"github.com/gaiax-dataspace/trustnode/core"
	"github.com/gaiax-dataspace/trustnode/credential"
)

// FirstCertificateBlock returns the first CERTIFICATE PEM block in the given data,
// re-encoded as PEM, or nil when there is none.
func FirstCertificateBlock(data []byte) []byte {
	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			return nil
		}
		if block.Type == "CERTIFICATE" {
			return pem.EncodeToMemory(block)
		}
	}
}

// PublicKeyFromCertificate parses the first certificate in the PEM data and returns its public key.
func PublicKeyFromCertificate(certPEM []byte) (crypto.PublicKey, error) {
	block := FirstCertificateBlock(certPEM)
	if block == nil {
		return nil, core.NewClientError("no PEM encoded certificate found")
	}
	decoded, _ := pem.Decode(block)
	certificate, err := x509.ParseCertificate(decoded.Bytes)
	if err != nil {
		return nil, core.NewClientError("unable to parse certificate: %v", err)
	}
	return certificate.PublicKey, nil
}

// CertificateURLFromDIDDocument returns the x5u of the DID document's single
// verification method, the URL where the subject's certificate chain is served.
func CertificateURLFromDIDDocument(document credential.Document) (string, error) {
	methods, _ := document["verificationMethod"].([]interface{})
	if len(methods) != 1 {
		return "", core.NewClientError("DID document must carry exactly 1 verification method")
	}
	method, _ := methods[0].(map[string]interface{})
	jwk, _ := method["publicKeyJwk"].(map[string]interface{})
	x5u, _ := jwk["x5u"].(string)
	if x5u == "" {
		return "", core.NewClientError("DID document verification method has no certificate URL (x5u)")
	}
	return x5u, nil
}

// CertificateFingerprint returns the hex-encoded SHA-256 digest of the PEM-encoded
// certificate, used for fingerprint pinning. Certificates are not JSON documents,
// so the digest is computed over the exact PEM bytes as served.
func CertificateFingerprint(certPEM []byte) string {
	digest := sha256.Sum256(certPEM)
	return hex.EncodeToString(digest[:])
}
