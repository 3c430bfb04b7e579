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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDID(t *testing.T) {
	t.Run("plain domain", func(t *testing.T) {
		assert.Equal(t, "did:web:dataspace.example:gaia-x:hospital-a", DID("dataspace.example", "hospital-a"))
	})

	t.Run("domain with port is percent-encoded", func(t *testing.T) {
		assert.Equal(t, "did:web:dataspace.example%3A8443:gaia-x:hospital-a", DID("dataspace.example:8443", "hospital-a"))
	})
}

func TestDIDWithVerification(t *testing.T) {
	assert.Equal(t, "did:web:dataspace.example:gaia-x:hospital-a#JWK2020-RSA",
		DIDWithVerification("dataspace.example", "hospital-a"))
}

func TestResolveDocumentURL(t *testing.T) {
	t.Run("domain only resolves under .well-known", func(t *testing.T) {
		actual, err := ResolveDocumentURL("did:web:dataspace.example")

		require.NoError(t, err)
		assert.Equal(t, "https://dataspace.example/.well-known/did.json", actual.String())
	})

	t.Run("path segments map to a URL path", func(t *testing.T) {
		actual, err := ResolveDocumentURL("did:web:dataspace.example:gaia-x:hospital-a")

		require.NoError(t, err)
		assert.Equal(t, "https://dataspace.example/gaia-x/hospital-a/did.json", actual.String())
	})

	t.Run("percent-encoded port is restored", func(t *testing.T) {
		actual, err := ResolveDocumentURL("did:web:dataspace.example%3A8443:gaia-x:hospital-a")

		require.NoError(t, err)
		assert.Equal(t, "https://dataspace.example:8443/gaia-x/hospital-a/did.json", actual.String())
	})

	t.Run("other DID methods are rejected", func(t *testing.T) {
		_, err := ResolveDocumentURL("did:key:z6MkpTHR8VNsBxYAAWHut2Geadd9jSwuBV8xRoAnwWsdvktH")

		assert.ErrorIs(t, err, ErrUnsupportedMethod)
	})

	t.Run("malformed DID is rejected", func(t *testing.T) {
		_, err := ResolveDocumentURL("not-a-did")

		assert.ErrorContains(t, err, "invalid did")
	})
}
