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
	"errors"

	"gorm.io/gorm"

	"github.com/gaiax-dataspace/trustnode/core"
)

// Store persists contract records.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(record *Record) error {
	err := s.db.Create(record).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return core.NewClientError("a contract for this proposal already exists")
	}
	return err
}

func (s *Store) Get(id string) (*Record, error) {
	var record Record
	err := s.db.First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, core.NewNotFoundError("contract %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetByProposalFingerprint looks up the contract whose pinned proposal fingerprint
// matches the given value.
func (s *Store) GetByProposalFingerprint(fingerprint string) (*Record, error) {
	var record Record
	err := s.db.First(&record, "proposal_fingerprint = ?", fingerprint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, core.NewNotFoundError("no contract matches the credential")
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// UpdateState transitions the contract from one state to another, optionally mutating
// other columns through mutate. The update is conditional on the stored state still
// being the expected one, so concurrent transition attempts on the same contract cannot
// race past each other: the loser's update matches zero rows and fails.
func (s *Store) UpdateState(id string, from State, to State, mutate func(*Record)) (*Record, error) {
	record, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	record.State = to
	if mutate != nil {
		mutate(record)
	}
	result := s.db.Model(&Record{}).
		Where("id = ? AND state = ?", id, from).
		Updates(map[string]interface{}{
			"state":                    record.State,
			"consumer_proof_signature": record.ConsumerProofSignature,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		current, err := s.Get(id)
		if err != nil {
			return nil, err
		}
		return nil, core.NewClientError("contract %s is in state %s, expected %s", id, current.State, from)
	}
	return record, nil
}
