// SPDX-FileCopyrightText: 2018, 2019, 2020, 2022 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bpv7

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dtn7/cboring"
)

// EndpointType is the "scheme-specific part" of an EndpointID, as defined in section 4.2.5.1. Each supported URI
// scheme, e.g., "dtn" or "ipn", implements this interface.
type EndpointType interface {
	// SchemeName is the human-readable name of this endpoint's URI scheme, e.g., "dtn".
	SchemeName() string

	// SchemeNo is the numeric code point for this endpoint's URI scheme, as registered by IANA.
	SchemeNo() uint64

	// Authority is the authority part of the Endpoint URI, e.g., "foo" for "dtn://foo/bar".
	Authority() string

	// Path is the path part of the Endpoint URI, e.g., "/bar" for "dtn://foo/bar".
	Path() string

	// IsSingleton reports whether this Endpoint addresses at most one node.
	IsSingleton() bool

	// CheckValid returns an array of errors for incorrect data.
	CheckValid() error

	// MarshalCbor writes this EndpointType's scheme-specific part, without the leading scheme number.
	MarshalCbor(w io.Writer) error

	fmt.Stringer
}

// EndpointID represents an Endpoint ID as defined in section 4.2.5.1. The "scheme name" is coded as an EndpointType
// implementation, dispatched on the "scheme number" during CBOR decoding.
type EndpointID struct {
	EndpointType
}

// NewEndpointID creates a new EndpointID from a "scheme://ssp"-like URI. Currently the "dtn" and "ipn" URI schemes
// are supported.
func NewEndpointID(uri string) (EndpointID, error) {
	switch {
	case strings.HasPrefix(uri, "dtn:"):
		et, err := NewDtnEndpoint(uri)
		return EndpointID{et}, err

	case strings.HasPrefix(uri, "ipn:"):
		et, err := NewIpnEndpoint(uri)
		return EndpointID{et}, err

	default:
		return EndpointID{}, fmt.Errorf("EndpointID: unsupported or missing URI scheme in %q", uri)
	}
}

// MustNewEndpointID returns a new EndpointID as NewEndpointID, but panics in case of an error.
func MustNewEndpointID(uri string) EndpointID {
	eid, err := NewEndpointID(uri)
	if err != nil {
		panic(err)
	}

	return eid
}

// CheckValid returns an array of errors for incorrect data.
func (eid EndpointID) CheckValid() error {
	if eid.EndpointType == nil {
		return fmt.Errorf("%w: no EndpointType present", ErrInvalidEID)
	}

	if err := eid.EndpointType.CheckValid(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEID, err)
	}

	return nil
}

// SameNode checks if both EndpointIDs address the same node, disregarding a demultiplexer or service number.
func (eid EndpointID) SameNode(other EndpointID) bool {
	if eid.EndpointType == nil || other.EndpointType == nil {
		// An unset EndpointID counts as dtn:none.
		isNone := func(e EndpointID) bool { return e.EndpointType == nil || e == DtnNone() }
		return isNone(eid) && isNone(other)
	}

	if eid.SchemeNo() != other.SchemeNo() {
		return false
	}

	return eid.Authority() == other.Authority()
}

func (eid EndpointID) String() string {
	if eid.EndpointType == nil {
		return "none:none"
	}

	return eid.EndpointType.String()
}

// MarshalCbor writes this EndpointID's CBOR representation, a 2-element array of [SchemeNo, ssp].
func (eid EndpointID) MarshalCbor(w io.Writer) error {
	if eid.EndpointType == nil {
		return fmt.Errorf("EndpointID: no EndpointType present")
	}

	if err := cboring.WriteArrayLength(2, w); err != nil {
		return err
	}
	if err := cboring.WriteUInt(eid.SchemeNo(), w); err != nil {
		return err
	}

	return eid.EndpointType.MarshalCbor(w)
}

// UnmarshalCbor reads an EndpointID's CBOR representation, dispatching on the leading scheme number.
func (eid *EndpointID) UnmarshalCbor(r io.Reader) error {
	if n, err := cboring.ReadArrayLength(r); err != nil {
		return err
	} else if n != 2 {
		return fmt.Errorf("EndpointID: expected array of 2 elements, got %d", n)
	}

	schemeNo, err := cboring.ReadUInt(r)
	if err != nil {
		return err
	}

	switch schemeNo {
	case dtnEndpointSchemeNo:
		var e DtnEndpoint
		if err := e.UnmarshalCbor(r); err != nil {
			return err
		}
		eid.EndpointType = e

	case ipnEndpointSchemeNo:
		var e IpnEndpoint
		if err := e.UnmarshalCbor(r); err != nil {
			return err
		}
		eid.EndpointType = e

	default:
		return fmt.Errorf("EndpointID: unknown scheme number %d", schemeNo)
	}

	return nil
}

// MarshalJSON writes this EndpointID as a JSON string.
func (eid EndpointID) MarshalJSON() ([]byte, error) {
	return json.Marshal(eid.String())
}
