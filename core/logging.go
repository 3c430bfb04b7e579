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

package core

const (
	// LogFieldModule is the log field for the module name.
	LogFieldModule = "module"

	// LogFieldDID is the log field key for a did:web identifier.
	LogFieldDID = "did"
	// LogFieldSlug is the log field key for a participant slug.
	LogFieldSlug = "slug"
	// LogFieldURL is the log field key for the URL of a remote document.
	LogFieldURL = "url"

	// LogFieldContractID is the log field key for the ID of a Data Product Contract.
	LogFieldContractID = "contractID"
	// LogFieldContractState is the log field key for the state of a Data Product Contract.
	LogFieldContractState = "contractState"
	// LogFieldDataProductID is the log field key for the ID of a Data Product.
	LogFieldDataProductID = "dataProductID"
	// LogFieldRoute is the log field key for the protected route a Data Product gates.
	LogFieldRoute = "route"

	// LogFieldFingerprint is the log field key for the fingerprint of a canonicalized document.
	LogFieldFingerprint = "fingerprint"
	// LogFieldTokenID is the log field key for the ID of an issued access token.
	LogFieldTokenID = "tokenID"
)
