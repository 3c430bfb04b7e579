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

// Package token issues short-lived bearer tokens granting access to a data product route.
package token

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/gaiax-dataspace/trustnode/core"
	"github.com/gaiax-dataspace/trustnode/token/log"
)

// DefaultTTL is the validity period of issued access tokens.
const DefaultTTL = 10 * time.Minute

// IssueRequest describes the access grant to issue a token for.
type IssueRequest struct {
	// Route is the data product route the token grants access to.
	Route string
	// TTL overrides DefaultTTL when non-zero.
	TTL time.Duration
}

// Record is an issued access token as handed out to (and later presented by) a consumer.
type Record struct {
	Token     string    `json:"token"`
	Route     string    `json:"route"`
	Active    bool      `json:"active"`
	ValidTill time.Time `json:"validTill"`
}

// CacheIssuer issues access tokens and keeps them in an in-memory cache until they expire.
// Tokens do not survive a restart, consumers are expected to redeem them right away.
type CacheIssuer struct {
	tokens  *cache.Cache
	nowFunc func() time.Time
}

func NewCacheIssuer() *CacheIssuer {
	return &CacheIssuer{
		tokens:  cache.New(DefaultTTL, DefaultTTL),
		nowFunc: time.Now,
	}
}

// Issue creates a new access token for the given route.
func (i *CacheIssuer) Issue(request IssueRequest) (*Record, error) {
	if request.Route == "" {
		return nil, core.NewClientError("missing route")
	}
	ttl := request.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}
	record := &Record{
		Token:     uuid.NewString(),
		Route:     request.Route,
		Active:    true,
		ValidTill: i.nowFunc().Add(ttl).UTC(),
	}
	i.tokens.Set(record.Token, record, ttl)
	log.Logger().WithFields(logrus.Fields{
		core.LogFieldTokenID: record.Token,
		core.LogFieldRoute:   record.Route,
	}).Debug("Issued access token")
	return record, nil
}

// Resolve returns the token record for the given token value.
// Expired or unknown tokens yield an AuthenticationError.
func (i *CacheIssuer) Resolve(token string) (*Record, error) {
	value, ok := i.tokens.Get(token)
	if !ok {
		return nil, core.NewAuthenticationError("unknown or expired access token")
	}
	record := value.(*Record)
	if !record.Active || i.nowFunc().After(record.ValidTill) {
		return nil, core.NewAuthenticationError("unknown or expired access token")
	}
	return record, nil
}
