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

// State is the signing state of a Data Product Contract.
// The values are stored in the database and must not change.
type State string

const (
	// StateConsumerSignaturePending is the initial state: a proposal exists and awaits the consumer's signature.
	StateConsumerSignaturePending State = "CONSUMER_SIGNATURE_PENDING"
	// StateProducerSignaturePending means the consumer signed and the producer's counter-signature is pending.
	StateProducerSignaturePending State = "PRODUCER_SIGNATURE_PENDING"
	// StateReadyToBeClaimed means both parties signed and the consumer may claim the contract once.
	StateReadyToBeClaimed State = "READY_TO_BE_CLAIMED"
	// StateFinalized is terminal: the contract has been claimed.
	StateFinalized State = "FINALIZED"
	// StateRejected is terminal: either party rejected the contract before finalization.
	StateRejected State = "REJECTED"
)

func (s State) String() string {
	return string(s)
}
