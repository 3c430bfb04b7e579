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
	"github.com/gaiax-dataspace/trustnode/core"
	"github.com/gaiax-dataspace/trustnode/token"
)

// DataProduct is an offering owned by one of this node's participants.
type DataProduct struct {
	ID              string `koanf:"id"`
	OwnerSlug       string `koanf:"owner"`
	Route           string `koanf:"route"`
	TermsOfUsageURL string `koanf:"termsofusage"`
}

// DataProductSource resolves data products by id.
type DataProductSource interface {
	Get(id string) (*DataProduct, error)
}

// DataProductSet is a fixed set of data products, typically loaded from config.
type DataProductSet []DataProduct

func (s DataProductSet) Get(id string) (*DataProduct, error) {
	for _, product := range s {
		if product.ID == id {
			return &product, nil
		}
	}
	return nil, core.NewNotFoundError("data product %s not found", id)
}

// ContentStore persists signed credential bodies, keyed by contract id.
type ContentStore interface {
	Store(key string, data []byte) error
	Read(key string) ([]byte, error)
	Delete(key string) error
}

// TokenIssuer hands out route-scoped access tokens for finalized contracts.
type TokenIssuer interface {
	Issue(request token.IssueRequest) (*token.Record, error)
}

// CertificateSource provides the locally stored certificate chain of this node's
// own participants, used to verify producer counter-signatures.
type CertificateSource interface {
	CertificateChain(slug string) ([]byte, error)
}
