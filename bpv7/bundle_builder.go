// SPDX-FileCopyrightText: 2019, 2020, 2022 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bpv7

import (
	"fmt"
	"time"
)

// BundleBuilder is a fluent interface for constructing a Bundle. Each method returns the same *BundleBuilder,
// so calls can be chained; the first error encountered is sticky and short-circuits every following call.
type BundleBuilder struct {
	err error

	primary          PrimaryBlock
	canonicals       []CanonicalBlock
	canonicalCounter uint64
	crcType          CRCType
}

// Builder creates a new, empty BundleBuilder.
func Builder() *BundleBuilder {
	return &BundleBuilder{
		primary:          PrimaryBlock{Version: dtnVersion},
		canonicals:       []CanonicalBlock{},
		canonicalCounter: 2,
		crcType:          CRCNo,
	}
}

// Error returns the first error encountered while building, if any.
func (bldr *BundleBuilder) Error() error {
	return bldr.err
}

// CRC sets the CRC type for every block of the resulting Bundle.
func (bldr *BundleBuilder) CRC(crcType CRCType) *BundleBuilder {
	if bldr.err == nil {
		bldr.crcType = crcType
	}

	return bldr
}

// Build finalizes and validates the Bundle. ReportTo defaults to the source node if unset.
func (bldr *BundleBuilder) Build() (bndl Bundle, err error) {
	if bldr.err != nil {
		err = bldr.err
		return
	}

	if bldr.primary.ReportTo == (EndpointID{}) {
		bldr.primary.ReportTo = bldr.primary.SourceNode
	}

	if bldr.primary.SourceNode == (EndpointID{}) || bldr.primary.Destination == (EndpointID{}) {
		err = fmt.Errorf("%w: both source and destination must be set", ErrBuilderIncomplete)
		return
	}

	bndl, err = NewBundle(bldr.primary, bldr.canonicals)
	if err == nil {
		bndl.SetCRCType(bldr.crcType)
	}

	return
}

// bldrParseEndpoint returns an EndpointID for a given EndpointID or a URI string.
func bldrParseEndpoint(eid interface{}) (e EndpointID, err error) {
	switch v := eid.(type) {
	case EndpointID:
		e = v
	case string:
		e, err = NewEndpointID(v)
	default:
		err = fmt.Errorf("%T is neither an EndpointID nor a string", eid)
	}
	return
}

// bldrParseLifetime returns a millisecond count for a given number, time.Duration or duration string.
func bldrParseLifetime(duration interface{}) (ms uint64, err error) {
	switch v := duration.(type) {
	case uint64:
		ms = v
	case int:
		if v <= 0 {
			err = fmt.Errorf("lifetime %d must be positive", v)
		} else {
			ms = uint64(v)
		}
	case time.Duration:
		if v <= 0 {
			err = fmt.Errorf("lifetime %s must be positive", v)
		} else {
			ms = uint64(v.Milliseconds())
		}
	case string:
		dur, durErr := time.ParseDuration(v)
		if durErr != nil {
			err = durErr
		} else if dur <= 0 {
			err = fmt.Errorf("lifetime's duration %s must be positive", dur)
		} else {
			ms = uint64(dur.Milliseconds())
		}
	default:
		err = fmt.Errorf("%T is neither a number nor a duration string", duration)
	}
	return
}

// Destination sets the Bundle's destination endpoint, accepting an EndpointID or a URI string.
func (bldr *BundleBuilder) Destination(eid interface{}) *BundleBuilder {
	if bldr.err != nil {
		return bldr
	}

	if e, err := bldrParseEndpoint(eid); err != nil {
		bldr.err = err
	} else {
		bldr.primary.Destination = e
	}

	return bldr
}

// Source sets the Bundle's source endpoint, accepting an EndpointID or a URI string.
func (bldr *BundleBuilder) Source(eid interface{}) *BundleBuilder {
	if bldr.err != nil {
		return bldr
	}

	if e, err := bldrParseEndpoint(eid); err != nil {
		bldr.err = err
	} else {
		bldr.primary.SourceNode = e
	}

	return bldr
}

// ReportTo sets the Bundle's report-to endpoint, accepting an EndpointID or a URI string.
func (bldr *BundleBuilder) ReportTo(eid interface{}) *BundleBuilder {
	if bldr.err != nil {
		return bldr
	}

	if e, err := bldrParseEndpoint(eid); err != nil {
		bldr.err = err
	} else {
		bldr.primary.ReportTo = e
	}

	return bldr
}

func (bldr *BundleBuilder) creationTimestamp(t DtnTime) *BundleBuilder {
	if bldr.err == nil {
		bldr.primary.CreationTimestamp = NewCreationTimestamp(t, 0)
	}

	return bldr
}

// CreationTimestampEpoch sets the creation timestamp to the DTN epoch. No Bundle Age Block is added, and Build
// does not require one.
func (bldr *BundleBuilder) CreationTimestampEpoch() *BundleBuilder {
	return bldr.creationTimestamp(DtnTimeEpoch)
}

// CreationTimestampNow sets the creation timestamp to the current time.
func (bldr *BundleBuilder) CreationTimestampNow() *BundleBuilder {
	return bldr.creationTimestamp(DtnTimeNow())
}

// CreationTimestampTime sets the creation timestamp to the given time.Time.
func (bldr *BundleBuilder) CreationTimestampTime(t time.Time) *BundleBuilder {
	return bldr.creationTimestamp(DtnTimeFromTime(t))
}

// Lifetime sets the Bundle's lifetime, accepting a millisecond count, a time.Duration or a duration string.
func (bldr *BundleBuilder) Lifetime(duration interface{}) *BundleBuilder {
	if bldr.err != nil {
		return bldr
	}

	if ms, msErr := bldrParseLifetime(duration); msErr != nil {
		bldr.err = msErr
	} else {
		bldr.primary.Lifetime = ms
	}

	return bldr
}

// BundleCtrlFlags sets the Bundle Processing Control Flags.
func (bldr *BundleBuilder) BundleCtrlFlags(bcf BundleControlFlags) *BundleBuilder {
	if bldr.err == nil {
		bldr.primary.BundleControlFlags = bcf
	}

	return bldr
}

// canonical appends an ExtensionBlock, assigning it the next free block number unless it is the Payload Block,
// which is always numbered 1.
func (bldr *BundleBuilder) canonical(value ExtensionBlock, bcf BlockControlFlags) *BundleBuilder {
	if bldr.err != nil {
		return bldr
	}

	var blockNumber uint64 = 1
	if value.BlockTypeCode() != ExtBlockTypePayloadBlock {
		blockNumber = bldr.canonicalCounter
		bldr.canonicalCounter++
	}

	bldr.canonicals = append(bldr.canonicals, NewCanonicalBlock(blockNumber, bcf, value))

	return bldr
}

// bundleCtrlFlagsArg extracts an optional trailing BlockControlFlags argument, defaulting to zero.
func bundleCtrlFlagsArg(flags []BlockControlFlags) BlockControlFlags {
	if len(flags) == 0 {
		return 0
	}

	return flags[0]
}

// BundleAgeBlock adds a Bundle Age Block with the given age, accepting a millisecond count, a time.Duration or
// a duration string.
func (bldr *BundleBuilder) BundleAgeBlock(age interface{}, bcf ...BlockControlFlags) *BundleBuilder {
	if bldr.err != nil {
		return bldr
	}

	// An age of zero is valid, although bldrParseLifetime rejects a zero lifetime.
	var ms uint64
	switch age {
	case 0, time.Duration(0):
	default:
		var err error
		if ms, err = bldrParseLifetime(age); err != nil {
			bldr.err = err
			return bldr
		}
	}

	return bldr.canonical(NewBundleAgeBlock(ms), bundleCtrlFlagsArg(bcf))
}

// HopCountBlock adds a Hop Count Block with the given hop limit.
func (bldr *BundleBuilder) HopCountBlock(limit uint8, bcf ...BlockControlFlags) *BundleBuilder {
	return bldr.canonical(NewHopCountBlock(limit), bundleCtrlFlagsArg(bcf))
}

// PayloadBlock adds the Payload Block carrying data.
func (bldr *BundleBuilder) PayloadBlock(data []byte, bcf ...BlockControlFlags) *BundleBuilder {
	return bldr.canonical(NewPayloadBlock(data), bundleCtrlFlagsArg(bcf))
}

// PreviousNodeBlock adds a Previous Node Block, accepting an EndpointID or a URI string.
func (bldr *BundleBuilder) PreviousNodeBlock(eid interface{}, bcf ...BlockControlFlags) *BundleBuilder {
	if bldr.err != nil {
		return bldr
	}

	e, err := bldrParseEndpoint(eid)
	if err != nil {
		bldr.err = err
		return bldr
	}

	return bldr.canonical(NewPreviousNodeBlock(e), bundleCtrlFlagsArg(bcf))
}
