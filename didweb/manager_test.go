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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaiax-dataspace/trustnode/core"
	"github.com/gaiax-dataspace/trustnode/test/pki"
)

type publisherMock struct {
	documents map[string][]byte
	chains    map[string][]byte
	err       error
}

func newPublisherMock() *publisherMock {
	return &publisherMock{documents: map[string][]byte{}, chains: map[string][]byte{}}
}

func (p *publisherMock) PublishDIDDocument(slug string, document []byte) error {
	if p.err != nil {
		return p.err
	}
	p.documents[slug] = document
	return nil
}

func (p *publisherMock) PublishCertificateChain(slug string, chainPEM []byte) error {
	if p.err != nil {
		return p.err
	}
	p.chains[slug] = chainPEM
	return nil
}

func TestManager_CreateDID(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		publisher := newPublisherMock()
		manager := NewManager("dataspace.example", publisher)
		_, chainPEM := pki.GenerateRSACertificate(t, "hospital-a")

		err := manager.CreateDID("hospital-a", chainPEM)

		require.NoError(t, err)
		assert.Equal(t, chainPEM, publisher.chains["hospital-a"])

		var document map[string]interface{}
		require.NoError(t, json.Unmarshal(publisher.documents["hospital-a"], &document))
		assert.Equal(t, "did:web:dataspace.example:gaia-x:hospital-a", document["id"])
		assert.Equal(t, "did:web:dataspace.example:gaia-x:hospital-a", document["issuer"])

		methods := document["verificationMethod"].([]interface{})
		require.Len(t, methods, 1)
		method := methods[0].(map[string]interface{})
		assert.Equal(t, "did:web:dataspace.example:gaia-x:hospital-a#JWK2020-RSA", method["id"])
		assert.Equal(t, "JsonWebKey2020", method["type"])

		publicKeyJwk := method["publicKeyJwk"].(map[string]interface{})
		assert.Equal(t, "RSA", publicKeyJwk["kty"])
		assert.Equal(t, "RS256", publicKeyJwk["alg"])
		assert.Equal(t, "https://dataspace.example/gaia-x/hospital-a/certificate.pem", publicKeyJwk["x5u"])
	})

	t.Run("error - not PEM", func(t *testing.T) {
		manager := NewManager("dataspace.example", newPublisherMock())

		err := manager.CreateDID("hospital-a", []byte("garbage"))

		assert.True(t, core.IsClientError(err))
		assert.ErrorContains(t, err, "PEM encoded certificate")
	})

	t.Run("error - unsupported signature algorithm", func(t *testing.T) {
		manager := NewManager("dataspace.example", newPublisherMock())
		chainPEM := pki.GenerateEd25519Certificate(t, "hospital-a")

		err := manager.CreateDID("hospital-a", chainPEM)

		assert.True(t, core.IsClientError(err))
		assert.ErrorContains(t, err, "unsupported certificate signature algorithm")
	})

	t.Run("error - nothing is published when the publisher fails", func(t *testing.T) {
		publisher := newPublisherMock()
		publisher.err = assert.AnError
		manager := NewManager("dataspace.example", publisher)
		_, chainPEM := pki.GenerateRSACertificate(t, "hospital-a")

		err := manager.CreateDID("hospital-a", chainPEM)

		assert.ErrorIs(t, err, assert.AnError)
		assert.Empty(t, publisher.documents)
	})
}
