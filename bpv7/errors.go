// SPDX-FileCopyrightText: 2022 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bpv7

import "errors"

// The following sentinel errors classify the ways a bundle, block or security operation can fail. They are meant
// to be wrapped with additional context via fmt.Errorf's "%w" verb and inspected by callers with errors.Is, rather
// than being returned bare.
var (
	// ErrInvalidBundle marks a Bundle.CheckValid failure not attributable to a single block.
	ErrInvalidBundle = errors.New("invalid bundle")

	// ErrInvalidPrimaryBlock marks a PrimaryBlock.CheckValid failure.
	ErrInvalidPrimaryBlock = errors.New("invalid primary block")

	// ErrInvalidCanonicalBlock marks a CanonicalBlock.CheckValid failure.
	ErrInvalidCanonicalBlock = errors.New("invalid canonical block")

	// ErrDuplicateBlockNumber marks two canonical blocks sharing a block number.
	ErrDuplicateBlockNumber = errors.New("duplicate block number")

	// ErrMissingPayloadBlock marks a bundle without exactly one Payload Block.
	ErrMissingPayloadBlock = errors.New("missing payload block")

	// ErrCRCMismatch marks a block whose computed CRC does not match its encoded CRC.
	ErrCRCMismatch = errors.New("crc mismatch")

	// ErrInvalidEID marks an EndpointID which failed CheckValid.
	ErrInvalidEID = errors.New("invalid endpoint id")

	// ErrIntegrityMismatch marks a BIB security result whose HMAC does not match the recomputed value.
	ErrIntegrityMismatch = errors.New("integrity mismatch")

	// ErrMissingSecurityTarget marks a security target block number without a matching canonical block, a
	// security target without a corresponding security result, or a security block without any security target.
	ErrMissingSecurityTarget = errors.New("missing security target")

	// ErrUnsupportedShaVariant marks a BIB-HMAC-SHA2 shaVariant security parameter outside {5, 6, 7}.
	ErrUnsupportedShaVariant = errors.New("unsupported sha variant")

	// ErrBuilderIncomplete marks a BundleBuilder.Build call missing a required field.
	ErrBuilderIncomplete = errors.New("incomplete bundle builder state")

	// ErrInvalidControlFlags marks a BlockControlFlags/BundleControlFlags combination that violates a MUST/MUST NOT
	// constraint on the flags themselves.
	ErrInvalidControlFlags = errors.New("invalid control flags")

	// ErrInvalidSecurityBlock marks an AbstractSecurityBlock.CheckValid failure, e.g. a security targets/results
	// mismatch or a malformed security context parameters field.
	ErrInvalidSecurityBlock = errors.New("invalid security block")
)
