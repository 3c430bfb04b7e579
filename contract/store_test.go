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
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaiax-dataspace/trustnode/core"
	"github.com/gaiax-dataspace/trustnode/storage"
)

func testStore(t *testing.T) *Store {
	db, err := storage.OpenDB(storage.SQLConfig{
		ConnectionString: "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	}, &Record{})
	require.NoError(t, err)
	return NewStore(db)
}

func testRecord() *Record {
	return &Record{
		ID:                             uuid.NewString(),
		DataProductID:                  uuid.NewString(),
		ConsumerParticipant:            "https://consumer.example.com/participant.json",
		ConsumerDID:                    "did:web:consumer.example.com:gaia-x:consumer",
		ProposalFingerprint:            uuid.NewString(),
		ConsumerParticipantFingerprint: "aa",
		ConsumerDIDFingerprint:         "bb",
		ConsumerCertificateFingerprint: "cc",
		State:                          StateConsumerSignaturePending,
	}
}

func TestStore_Create(t *testing.T) {
	t.Run("create and get", func(t *testing.T) {
		store := testStore(t)
		record := testRecord()

		require.NoError(t, store.Create(record))

		actual, err := store.Get(record.ID)
		require.NoError(t, err)
		assert.Equal(t, record.ProposalFingerprint, actual.ProposalFingerprint)
		assert.Equal(t, StateConsumerSignaturePending, actual.State)
	})
	t.Run("duplicate proposal fingerprint", func(t *testing.T) {
		store := testStore(t)
		first := testRecord()
		require.NoError(t, store.Create(first))
		second := testRecord()
		second.ProposalFingerprint = first.ProposalFingerprint

		err := store.Create(second)

		assert.True(t, core.IsClientError(err))
	})
}

func TestStore_Get(t *testing.T) {
	t.Run("unknown id", func(t *testing.T) {
		store := testStore(t)

		_, err := store.Get(uuid.NewString())

		assert.True(t, core.IsNotFoundError(err))
	})
}

func TestStore_GetByProposalFingerprint(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		store := testStore(t)
		record := testRecord()
		require.NoError(t, store.Create(record))

		actual, err := store.GetByProposalFingerprint(record.ProposalFingerprint)

		require.NoError(t, err)
		assert.Equal(t, record.ID, actual.ID)
	})
	t.Run("no match", func(t *testing.T) {
		store := testStore(t)

		_, err := store.GetByProposalFingerprint("unknown")

		assert.True(t, core.IsNotFoundError(err))
	})
}

func TestStore_UpdateState(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		store := testStore(t)
		record := testRecord()
		require.NoError(t, store.Create(record))

		updated, err := store.UpdateState(record.ID, StateConsumerSignaturePending, StateProducerSignaturePending, func(r *Record) {
			r.ConsumerProofSignature = "eyJhbGciOiJQUzI1NiJ9..c2ln"
		})

		require.NoError(t, err)
		assert.Equal(t, StateProducerSignaturePending, updated.State)
		actual, err := store.Get(record.ID)
		require.NoError(t, err)
		assert.Equal(t, StateProducerSignaturePending, actual.State)
		assert.Equal(t, "eyJhbGciOiJQUzI1NiJ9..c2ln", actual.ConsumerProofSignature)
	})
	t.Run("stale expected state performs no mutation", func(t *testing.T) {
		store := testStore(t)
		record := testRecord()
		require.NoError(t, store.Create(record))

		_, err := store.UpdateState(record.ID, StateProducerSignaturePending, StateReadyToBeClaimed, nil)

		assert.True(t, core.IsClientError(err))
		actual, getErr := store.Get(record.ID)
		require.NoError(t, getErr)
		assert.Equal(t, StateConsumerSignaturePending, actual.State)
	})
	t.Run("unknown id", func(t *testing.T) {
		store := testStore(t)

		_, err := store.UpdateState(uuid.NewString(), StateConsumerSignaturePending, StateRejected, nil)

		assert.True(t, core.IsNotFoundError(err))
	})
}
