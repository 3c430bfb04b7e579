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

package token

import (
	"testing"
	"time"

	"github.com/gaiax-dataspace/trustnode/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheIssuer_Issue(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		issuer := NewCacheIssuer()

		record, err := issuer.Issue(IssueRequest{Route: "https://provider.example.com/data/1"})

		require.NoError(t, err)
		assert.NotEmpty(t, record.Token)
		assert.Equal(t, "https://provider.example.com/data/1", record.Route)
		assert.True(t, record.Active)
		assert.WithinDuration(t, time.Now().Add(DefaultTTL), record.ValidTill, time.Minute)
	})
	t.Run("missing route", func(t *testing.T) {
		issuer := NewCacheIssuer()

		_, err := issuer.Issue(IssueRequest{})

		assert.True(t, core.IsClientError(err))
	})
	t.Run("tokens are unique", func(t *testing.T) {
		issuer := NewCacheIssuer()

		first, err := issuer.Issue(IssueRequest{Route: "https://example.com/a"})
		require.NoError(t, err)
		second, err := issuer.Issue(IssueRequest{Route: "https://example.com/a"})
		require.NoError(t, err)

		assert.NotEqual(t, first.Token, second.Token)
	})
}

func TestCacheIssuer_Resolve(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		issuer := NewCacheIssuer()
		issued, err := issuer.Issue(IssueRequest{Route: "https://example.com/a"})
		require.NoError(t, err)

		resolved, err := issuer.Resolve(issued.Token)

		require.NoError(t, err)
		assert.Equal(t, issued.Route, resolved.Route)
	})
	t.Run("unknown token", func(t *testing.T) {
		issuer := NewCacheIssuer()

		_, err := issuer.Resolve("not-a-token")

		assert.True(t, core.IsAuthenticationError(err))
	})
	t.Run("expired token", func(t *testing.T) {
		issuer := NewCacheIssuer()
		issued, err := issuer.Issue(IssueRequest{Route: "https://example.com/a", TTL: time.Hour})
		require.NoError(t, err)
		issuer.nowFunc = func() time.Time { return time.Now().Add(2 * time.Hour) }

		_, err = issuer.Resolve(issued.Token)

		assert.True(t, core.IsAuthenticationError(err))
	})
}
