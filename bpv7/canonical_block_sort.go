// SPDX-FileCopyrightText: 2020 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bpv7

// canonicalBlockNumberSort implements sort.Interface to sort []CanonicalBlock based on their block number.
// The sorting is in ascending order. An exception is the payload block, which occurs in the last position despite
// having the lowest possible block number of 1.
//
// This allows a deterministic sorting of CanonicalBlocks, e.g., necessary for the BundleBuilder.
type canonicalBlockNumberSort []CanonicalBlock

// Len of elements within the array.
func (cbns canonicalBlockNumberSort) Len() int {
	return len(cbns)
}

// Less is true iff element i should be sorted before element j.
//
// The Payload Block always sorts last: its block number is required by CanonicalBlock.CheckValid to equal
// ExtBlockTypePayloadBlock (1), so comparing the block number against that constant identifies it without
// touching the block's Value.
func (cbns canonicalBlockNumberSort) Less(i, j int) bool {
	if cbns[i].BlockNumber == ExtBlockTypePayloadBlock {
		return false
	} else if cbns[j].BlockNumber == ExtBlockTypePayloadBlock {
		return true
	} else {
		return cbns[i].BlockNumber < cbns[j].BlockNumber
	}
}

// Swap elements i and j.
func (cbns canonicalBlockNumberSort) Swap(i, j int) {
	cbns[i], cbns[j] = cbns[j], cbns[i]
}
