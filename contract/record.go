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

import "time"

// Record is a Data Product Contract row.
// The four fingerprint columns are pinned once at proposal time and only ever compared
// against afterwards, never recomputed from the remote documents.
// The signed credential body itself lives in the content store, keyed by ID.
type Record struct {
	ID                  string `gorm:"primaryKey"`
	DataProductID       string
	ConsumerParticipant string
	ConsumerDID         string `gorm:"column:consumer_did"`

	ProposalFingerprint            string `gorm:"uniqueIndex"`
	ConsumerParticipantFingerprint string
	ConsumerDIDFingerprint         string `gorm:"column:consumer_did_fingerprint"`
	ConsumerCertificateFingerprint string

	// ConsumerProofSignature is the consumer's raw JWS, presented later as the bearer
	// token to claim the finalized contract.
	ConsumerProofSignature string
	State                  State

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Record) TableName() string {
	return "data_product_contract"
}
